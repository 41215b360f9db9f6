package router_test

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/multi-user-blog/internal/auth"
	"github.com/iliyamo/multi-user-blog/internal/database/dbtest"
	"github.com/iliyamo/multi-user-blog/internal/handler"
	"github.com/iliyamo/multi-user-blog/internal/queue"
	"github.com/iliyamo/multi-user-blog/internal/repository"
	"github.com/iliyamo/multi-user-blog/internal/router"
)

type recorder struct {
	events chan queue.ActivityEvent
}

func (r *recorder) Publish(_ context.Context, ev queue.ActivityEvent) error {
	r.events <- ev
	return nil
}

func (r *recorder) next(t *testing.T) queue.ActivityEvent {
	t.Helper()
	select {
	case ev := <-r.events:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no activity event published")
		return queue.ActivityEvent{}
	}
}

type testApp struct {
	e      *echo.Echo
	events *recorder
}

func newApp(t *testing.T) *testApp {
	t.Helper()
	db := dbtest.Open(t)

	codec, err := auth.NewTokenCodec("test-secret")
	require.NoError(t, err)
	creds := auth.NewCredentialStore(repository.NewUserRepo(db), auth.NewPasswordHasher(auth.SchemeSHA256, 0, 0))
	sessions := auth.NewSessionManager(codec, creds)
	events := &recorder{events: make(chan queue.ActivityEvent, 64)}

	e := router.New(router.Deps{
		Logger:   zerolog.Nop(),
		Sessions: sessions,
		Auth:     handler.NewAuthHandler(creds, sessions, events),
		Blog: handler.NewBlogHandler(
			repository.NewPostRepo(db),
			repository.NewCommentRepo(db),
			repository.NewLikeRepo(db),
			events,
		),
	})
	return &testApp{e: e, events: events}
}

func sessionCookie(t *testing.T, res apitest.Result) string {
	t.Helper()
	for _, ck := range res.Response.Cookies() {
		if ck.Name == auth.CookieName {
			return ck.Value
		}
	}
	t.Fatal("no session cookie set")
	return ""
}

// signup registers name and returns its session cookie value.
func (a *testApp) signup(t *testing.T, name string) string {
	t.Helper()
	res := apitest.New().Handler(a.e).
		Post("/signup").
		JSON(fmt.Sprintf(`{"username":%q,"password":"secret123","verify":"secret123"}`, name)).
		Expect(t).
		Status(http.StatusCreated).
		Assert(jsonpath.Equal("$.user.username", name)).
		End()
	ev := a.events.next(t)
	assert.Equal(t, queue.KindUserRegistered, ev.Kind)
	return sessionCookie(t, res)
}

func (a *testApp) createPost(t *testing.T, cookie, title string) {
	t.Helper()
	apitest.New().Handler(a.e).
		Post("/posts").
		Cookie(auth.CookieName, cookie).
		JSON(fmt.Sprintf(`{"title":%q,"content":"body of %s"}`, title, title)).
		Expect(t).
		Status(http.StatusCreated).
		Assert(jsonpath.Equal("$.title", title)).
		End()
	assert.Equal(t, queue.KindPostCreated, a.events.next(t).Kind)
}

func TestHealth(t *testing.T) {
	apitest.New().Handler(newApp(t).e).
		Get("/healthz").
		Expect(t).
		Status(http.StatusOK).
		Body("ok").
		End()
}

func TestSignup(t *testing.T) {
	app := newApp(t)
	cookie := app.signup(t, "alice")
	assert.True(t, strings.HasPrefix(cookie, "1|"), cookie)

	apitest.New().Handler(app.e).
		Post("/signup").
		JSON(`{"username":"alice","password":"other","verify":"other"}`).
		Expect(t).
		Status(http.StatusConflict).
		Assert(jsonpath.Equal("$.error", "That user already exists.")).
		End()

	apitest.New().Handler(app.e).
		Post("/signup").
		JSON(`{"username":"a","password":"secret123","verify":"secret321","email":"nope"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Equal("$.fields.username", auth.ReasonUsername)).
		Assert(jsonpath.Equal("$.fields.verify", auth.ReasonVerify)).
		Assert(jsonpath.Equal("$.fields.email", auth.ReasonEmail)).
		End()
}

func TestLoginAndSession(t *testing.T) {
	app := newApp(t)
	app.signup(t, "alice")

	for _, body := range []string{
		`{"username":"alice","password":"wrong"}`,
		`{"username":"nobody","password":"secret123"}`,
	} {
		apitest.New().Handler(app.e).
			Post("/login").
			JSON(body).
			Expect(t).
			Status(http.StatusUnauthorized).
			Body(`{"error":"Invalid login"}`).
			End()
	}

	res := apitest.New().Handler(app.e).
		Post("/login").
		JSON(`{"username":"alice","password":"secret123"}`).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.user.username", "alice")).
		End()
	cookie := sessionCookie(t, res)

	apitest.New().Handler(app.e).
		Get("/me").
		Cookie(auth.CookieName, cookie).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.user.username", "alice")).
		End()

	sig := strings.SplitN(cookie, "|", 2)[1]
	apitest.New().Handler(app.e).
		Get("/me").
		Cookie(auth.CookieName, "2|"+sig).
		Expect(t).
		Status(http.StatusUnauthorized).
		End()

	apitest.New().Handler(app.e).
		Get("/me").
		Expect(t).
		Status(http.StatusUnauthorized).
		End()
}

func TestLogout(t *testing.T) {
	app := newApp(t)
	cookie := app.signup(t, "alice")

	res := apitest.New().Handler(app.e).
		Post("/logout").
		Cookie(auth.CookieName, cookie).
		Expect(t).
		Status(http.StatusNoContent).
		End()

	var cleared *http.Cookie
	for _, ck := range res.Response.Cookies() {
		if ck.Name == auth.CookieName {
			cleared = ck
		}
	}
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Equal(t, "/", cleared.Path)
}

func TestPosts_PublicReads(t *testing.T) {
	app := newApp(t)
	alice := app.signup(t, "alice")
	app.createPost(t, alice, "first")
	app.createPost(t, alice, "second")

	for _, path := range []string{"/", "/posts"} {
		apitest.New().Handler(app.e).
			Get(path).
			Expect(t).
			Status(http.StatusOK).
			Assert(jsonpath.Len("$.items", 2)).
			Assert(jsonpath.Equal("$.items[0].title", "second")).
			End()
	}

	apitest.New().Handler(app.e).
		Get("/posts/1").
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.post.author", "alice")).
		Assert(jsonpath.Equal("$.likes", float64(0))).
		Assert(jsonpath.Len("$.comments", 0)).
		End()

	apitest.New().Handler(app.e).
		Get("/users/alice/posts").
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Len("$.items", 2)).
		End()

	apitest.New().Handler(app.e).
		Get("/posts/99").
		Expect(t).
		Status(http.StatusNotFound).
		End()

	apitest.New().Handler(app.e).
		Get("/posts/abc").
		Expect(t).
		Status(http.StatusBadRequest).
		End()
}

func TestPosts_WritesNeedSession(t *testing.T) {
	app := newApp(t)

	apitest.New().Handler(app.e).
		Post("/posts").
		JSON(`{"title":"t","content":"c"}`).
		Expect(t).
		Status(http.StatusUnauthorized).
		End()

	alice := app.signup(t, "alice")
	apitest.New().Handler(app.e).
		Post("/posts").
		Cookie(auth.CookieName, alice).
		JSON(`{"title":"  ","content":"c"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Equal("$.error", "title and content please!")).
		End()
}

func TestPosts_OnlyAuthorMayChange(t *testing.T) {
	app := newApp(t)
	alice := app.signup(t, "alice")
	bob := app.signup(t, "bob")
	app.createPost(t, alice, "mine")

	apitest.New().Handler(app.e).
		Put("/posts/1").
		Cookie(auth.CookieName, bob).
		JSON(`{"title":"hijacked","content":"x"}`).
		Expect(t).
		Status(http.StatusForbidden).
		End()

	apitest.New().Handler(app.e).
		Delete("/posts/1").
		Cookie(auth.CookieName, bob).
		Expect(t).
		Status(http.StatusForbidden).
		End()

	// a missing post is reported as such, not as forbidden
	apitest.New().Handler(app.e).
		Delete("/posts/42").
		Cookie(auth.CookieName, bob).
		Expect(t).
		Status(http.StatusNotFound).
		End()

	apitest.New().Handler(app.e).
		Get("/posts/1").
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.post.title", "mine")).
		End()

	apitest.New().Handler(app.e).
		Patch("/posts/1").
		Cookie(auth.CookieName, alice).
		JSON(`{"title":"","content":"x"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		End()

	apitest.New().Handler(app.e).
		Patch("/posts/1").
		Cookie(auth.CookieName, alice).
		JSON(`{"title":"still mine","content":"edited"}`).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.title", "still mine")).
		Assert(jsonpath.Equal("$.author", "alice")).
		End()
	assert.Equal(t, queue.KindPostEdited, app.events.next(t).Kind)

	apitest.New().Handler(app.e).
		Delete("/posts/1").
		Cookie(auth.CookieName, alice).
		Expect(t).
		Status(http.StatusNoContent).
		End()
	ev := app.events.next(t)
	assert.Equal(t, queue.KindPostDeleted, ev.Kind)
	assert.Equal(t, uint64(1), ev.PostID)

	apitest.New().Handler(app.e).
		Get("/posts/1").
		Expect(t).
		Status(http.StatusNotFound).
		End()
}

func TestComments(t *testing.T) {
	app := newApp(t)
	alice := app.signup(t, "alice")
	bob := app.signup(t, "bob")
	app.createPost(t, alice, "post")

	apitest.New().Handler(app.e).
		Post("/posts/9/comments").
		Cookie(auth.CookieName, bob).
		JSON(`{"content":"hello"}`).
		Expect(t).
		Status(http.StatusNotFound).
		End()

	apitest.New().Handler(app.e).
		Post("/posts/1/comments").
		Cookie(auth.CookieName, bob).
		JSON(`{"content":""}`).
		Expect(t).
		Status(http.StatusBadRequest).
		End()

	apitest.New().Handler(app.e).
		Post("/posts/1/comments").
		Cookie(auth.CookieName, bob).
		JSON(`{"content":"nice post"}`).
		Expect(t).
		Status(http.StatusCreated).
		Assert(jsonpath.Equal("$.author", "bob")).
		End()
	ev := app.events.next(t)
	assert.Equal(t, queue.KindCommentCreated, ev.Kind)
	assert.Equal(t, uint64(1), ev.CommentID)

	// the post author does not own other people's comments
	apitest.New().Handler(app.e).
		Put("/comments/1").
		Cookie(auth.CookieName, alice).
		JSON(`{"content":"rewritten"}`).
		Expect(t).
		Status(http.StatusForbidden).
		End()

	apitest.New().Handler(app.e).
		Put("/comments/1").
		Cookie(auth.CookieName, bob).
		JSON(`{"content":"very nice post"}`).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.content", "very nice post")).
		End()
	assert.Equal(t, queue.KindCommentEdited, app.events.next(t).Kind)

	apitest.New().Handler(app.e).
		Get("/posts/1").
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.comment_count", float64(1))).
		Assert(jsonpath.Equal("$.comments[0].content", "very nice post")).
		End()

	apitest.New().Handler(app.e).
		Delete("/comments/1").
		Cookie(auth.CookieName, alice).
		Expect(t).
		Status(http.StatusForbidden).
		End()

	apitest.New().Handler(app.e).
		Delete("/comments/1").
		Cookie(auth.CookieName, bob).
		Expect(t).
		Status(http.StatusNoContent).
		End()
	assert.Equal(t, queue.KindCommentDeleted, app.events.next(t).Kind)

	apitest.New().Handler(app.e).
		Delete("/comments/1").
		Cookie(auth.CookieName, bob).
		Expect(t).
		Status(http.StatusNotFound).
		End()
}

func TestLikes(t *testing.T) {
	app := newApp(t)
	alice := app.signup(t, "alice")
	bob := app.signup(t, "bob")
	app.createPost(t, bob, "bob's post")

	apitest.New().Handler(app.e).
		Post("/posts/1/like").
		Cookie(auth.CookieName, bob).
		Expect(t).
		Status(http.StatusForbidden).
		End()

	apitest.New().Handler(app.e).
		Post("/posts/1/like").
		Cookie(auth.CookieName, alice).
		Expect(t).
		Status(http.StatusOK).
		Body(`{"liked":true,"likes":1}`).
		End()
	apitest.New().Handler(app.e).
		Get("/posts/1").
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.likes", float64(1))).
		Assert(jsonpath.Contains("$.liked_by", "alice")).
		End()
	ev := app.events.next(t)
	assert.Equal(t, queue.KindLikeToggled, ev.Kind)
	require.NotNil(t, ev.Liked)
	assert.True(t, *ev.Liked)

	apitest.New().Handler(app.e).
		Post("/posts/1/like").
		Cookie(auth.CookieName, alice).
		Expect(t).
		Status(http.StatusOK).
		Body(`{"liked":false,"likes":0}`).
		End()
	ev = app.events.next(t)
	require.NotNil(t, ev.Liked)
	assert.False(t, *ev.Liked)

	apitest.New().Handler(app.e).
		Post("/posts/5/like").
		Cookie(auth.CookieName, alice).
		Expect(t).
		Status(http.StatusNotFound).
		End()

	apitest.New().Handler(app.e).
		Post("/posts/1/like").
		Expect(t).
		Status(http.StatusUnauthorized).
		End()
}
