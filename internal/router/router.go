// Package router wires handlers and middleware onto an Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/multi-user-blog/internal/handler"
	"github.com/iliyamo/multi-user-blog/internal/middleware"
)

// Deps is everything the HTTP surface needs.
type Deps struct {
	Logger   zerolog.Logger
	Sessions middleware.SessionResolver
	Auth     *handler.AuthHandler
	Blog     *handler.BlogHandler
	// Cache wraps the public read routes. Nil disables caching.
	Cache echo.MiddlewareFunc
}

// New builds the Echo instance with every route registered. Each request
// gets a logger first, then its session is resolved, so handlers and
// later middleware can rely on both.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(middleware.LoadSession(d.Sessions))

	RegisterRoutes(e)
	RegisterAuth(e, d.Auth)
	RegisterBlog(e, d.Blog, d.Cache)
	return e
}

// RegisterRoutes registers routes that neither read nor require a session.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers signup, login and logout. Only /me needs an
// existing session; logout works for anyone and just clears the cookie.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	e.POST("/signup", a.Signup)
	e.POST("/login", a.Login)
	e.POST("/logout", a.Logout)
	e.GET("/logout", a.Logout)
	e.GET("/me", a.Me, middleware.RequireUser)
}

// RegisterBlog registers the post, comment and like routes. Reads are
// public and go through cache; every write requires a session and the
// handlers themselves enforce ownership.
func RegisterBlog(e *echo.Echo, b *handler.BlogHandler, cache echo.MiddlewareFunc) {
	var pub []echo.MiddlewareFunc
	if cache != nil {
		pub = append(pub, cache)
	}
	e.GET("/", b.FrontPage, pub...)
	e.GET("/posts", b.FrontPage, pub...)
	e.GET("/posts/:id", b.GetPost, pub...)
	e.GET("/users/:name/posts", b.UserPosts, pub...)

	auth := middleware.RequireUser

	// ---- Posts ----
	e.POST("/posts", b.CreatePost, auth)
	e.PUT("/posts/:id", b.EditPost, auth)
	e.PATCH("/posts/:id", b.EditPost, auth)
	e.DELETE("/posts/:id", b.DeletePost, auth)

	// ---- Comments ----
	e.POST("/posts/:id/comments", b.CreateComment, auth)
	e.PUT("/comments/:id", b.EditComment, auth)
	e.PATCH("/comments/:id", b.EditComment, auth)
	e.DELETE("/comments/:id", b.DeleteComment, auth)

	// ---- Likes ----
	e.POST("/posts/:id/like", b.ToggleLike, auth)
}
