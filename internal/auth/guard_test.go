package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/multi-user-blog/internal/model"
)

func TestOwnsResource(t *testing.T) {
	alice := &model.User{ID: 1, Name: "alice"}
	bob := &model.User{ID: 2, Name: "bob"}
	post := &model.Post{ID: 10, Author: "alice"}
	comment := &model.Comment{ID: 20, PostID: 10, Author: "bob"}

	assert.True(t, OwnsResource(alice, post))
	assert.False(t, OwnsResource(bob, post))
	assert.True(t, OwnsResource(bob, comment))
	assert.False(t, OwnsResource(alice, comment))

	assert.False(t, OwnsResource(&model.User{Name: "Alice"}, post), "names compare exactly")
	assert.False(t, OwnsResource(&model.User{Name: ""}, &model.Post{Author: ""}))
	assert.False(t, OwnsResource(nil, post))
	assert.False(t, OwnsResource(alice, nil))

	var missing *model.Post
	assert.False(t, OwnsResource(alice, missing))
}

func TestCanLike(t *testing.T) {
	alice := &model.User{ID: 1, Name: "alice"}
	bob := &model.User{ID: 2, Name: "bob"}
	post := &model.Post{ID: 10, Author: "bob"}

	assert.True(t, CanLike(alice, post))
	assert.False(t, CanLike(bob, post))
	assert.False(t, CanLike(nil, post))
	assert.False(t, CanLike(alice, nil))
}
