// Package handler exposes the blog's HTTP handlers.
// This file implements the post endpoints. Reads are public; writes
// require a session, and edits and deletes are refused unless the caller
// wrote the post. A post is always looked up before the ownership check so
// a missing post answers 404 rather than 403.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/multi-user-blog/internal/auth"
	"github.com/iliyamo/multi-user-blog/internal/middleware"
	"github.com/iliyamo/multi-user-blog/internal/model"
	"github.com/iliyamo/multi-user-blog/internal/queue"
	"github.com/iliyamo/multi-user-blog/internal/repository"
)

// BlogHandler aggregates the repositories behind posts, comments and likes.
type BlogHandler struct {
	Posts    *repository.PostRepo
	Comments *repository.CommentRepo
	Likes    *repository.LikeRepo
	Events   EventPublisher
}

func NewBlogHandler(posts *repository.PostRepo, comments *repository.CommentRepo, likes *repository.LikeRepo, events EventPublisher) *BlogHandler {
	return &BlogHandler{Posts: posts, Comments: comments, Likes: likes, Events: events}
}

type postReq struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type postPart struct {
	ID           uint64    `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Author       string    `json:"author"`
	Created      time.Time `json:"created"`
	LastModified time.Time `json:"last_modified"`
}

func toPostPart(p *model.Post) postPart {
	return postPart{
		ID:           p.ID,
		Title:        p.Title,
		Content:      p.Content,
		Author:       p.Author,
		Created:      p.CreatedAt,
		LastModified: p.UpdatedAt,
	}
}

func toPostParts(ps []*model.Post) []postPart {
	out := make([]postPart, 0, len(ps))
	for _, p := range ps {
		out = append(out, toPostPart(p))
	}
	return out
}

func activity(kind, user string, postID uint64) queue.ActivityEvent {
	return queue.ActivityEvent{
		Kind:       kind,
		Username:   user,
		PostID:     postID,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
}

// FrontPage lists the most recent posts, newest first.
func (h *BlogHandler) FrontPage(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	posts, err := h.Posts.ListRecent(ctx, repository.FrontPageLimit)
	if err != nil {
		return internalError(c, "list posts", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": toPostParts(posts)})
}

// UserPosts lists every post written by the :name user.
func (h *BlogHandler) UserPosts(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	posts, err := h.Posts.ListByAuthor(ctx, c.Param("name"))
	if err != nil {
		return internalError(c, "list posts", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": toPostParts(posts)})
}

// GetPost returns a post with its comments, like count and the names of
// the users who liked it.
func (h *BlogHandler) GetPost(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	p, err := h.lookupPost(ctx, c)
	if err != nil {
		return lookupFailed(c, "post", err)
	}
	comments, err := h.Comments.ListByPost(ctx, p.ID)
	if err != nil {
		return internalError(c, "list comments", err)
	}
	likes, err := h.Likes.ListByPost(ctx, p.ID)
	if err != nil {
		return internalError(c, "list likes", err)
	}
	likedBy := make([]string, 0, len(likes))
	for _, l := range likes {
		likedBy = append(likedBy, l.Username)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"post":          toPostPart(p),
		"comments":      toCommentParts(comments),
		"comment_count": len(comments),
		"likes":         len(likes),
		"liked_by":      likedBy,
	})
}

// CreatePost stores a new post authored by the caller.
func (h *BlogHandler) CreatePost(c echo.Context) error {
	u := middleware.CurrentUser(c)
	if u == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "login required"})
	}
	req, ok := bindPost(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and content please!"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	p := &model.Post{Title: req.Title, Content: req.Content, Author: u.Name}
	if err := h.Posts.Create(ctx, p); err != nil {
		return internalError(c, "create post", err)
	}
	emit(ctx, h.Events, activity(queue.KindPostCreated, u.Name, p.ID))
	return c.JSON(http.StatusCreated, toPostPart(p))
}

// EditPost replaces the title and content of a post the caller owns.
func (h *BlogHandler) EditPost(c echo.Context) error {
	u := middleware.CurrentUser(c)
	if u == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "login required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	p, err := h.lookupPost(ctx, c)
	if err != nil {
		return lookupFailed(c, "post", err)
	}
	if !auth.OwnsResource(u, p) {
		return forbidden(c)
	}
	req, ok := bindPost(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and content please!"})
	}
	p.Title, p.Content = req.Title, req.Content
	if err := h.Posts.Update(ctx, p); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
		}
		return internalError(c, "update post", err)
	}
	emit(ctx, h.Events, activity(queue.KindPostEdited, u.Name, p.ID))
	return c.JSON(http.StatusOK, toPostPart(p))
}

// DeletePost removes a post the caller owns together with its comments
// and likes.
func (h *BlogHandler) DeletePost(c echo.Context) error {
	u := middleware.CurrentUser(c)
	if u == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "login required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	p, err := h.lookupPost(ctx, c)
	if err != nil {
		return lookupFailed(c, "post", err)
	}
	if !auth.OwnsResource(u, p) {
		return forbidden(c)
	}
	if err := h.Posts.Delete(ctx, p.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
		}
		return internalError(c, "delete post", err)
	}
	emit(ctx, h.Events, activity(queue.KindPostDeleted, u.Name, p.ID))
	return c.NoContent(http.StatusNoContent)
}

// bindPost reads a post body. Both fields must be non-blank.
func bindPost(c echo.Context) (postReq, bool) {
	var req postReq
	if err := c.Bind(&req); err != nil {
		return req, false
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Content) == "" {
		return req, false
	}
	return req, true
}
