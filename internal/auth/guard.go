package auth

import "github.com/iliyamo/multi-user-blog/internal/model"

// Ownable is a resource with a recorded author.
type Ownable interface {
	AuthorName() string
}

// OwnsResource reports whether u is the recorded author of r. It is the
// only check gating edits and deletes of posts and comments.
func OwnsResource(u *model.User, r Ownable) bool {
	if u == nil || r == nil {
		return false
	}
	author := r.AuthorName()
	return author != "" && u.Name == author
}

// CanLike reports whether u may like p: anyone but the author.
func CanLike(u *model.User, p *model.Post) bool {
	if u == nil || p == nil {
		return false
	}
	return u.Name != p.Author
}
