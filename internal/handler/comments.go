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

type commentReq struct {
	Content string `json:"content"`
}

type commentPart struct {
	ID           uint64    `json:"id"`
	PostID       uint64    `json:"post_id"`
	Content      string    `json:"content"`
	Author       string    `json:"author"`
	Created      time.Time `json:"created"`
	LastModified time.Time `json:"last_modified"`
}

func toCommentPart(cm *model.Comment) commentPart {
	return commentPart{
		ID:           cm.ID,
		PostID:       cm.PostID,
		Content:      cm.Content,
		Author:       cm.Author,
		Created:      cm.CreatedAt,
		LastModified: cm.UpdatedAt,
	}
}

func toCommentParts(cs []*model.Comment) []commentPart {
	out := make([]commentPart, 0, len(cs))
	for _, cm := range cs {
		out = append(out, toCommentPart(cm))
	}
	return out
}

func bindComment(c echo.Context) (string, bool) {
	var req commentReq
	if err := c.Bind(&req); err != nil {
		return "", false
	}
	if strings.TrimSpace(req.Content) == "" {
		return "", false
	}
	return req.Content, true
}

func commentActivity(kind, user string, cm *model.Comment) queue.ActivityEvent {
	ev := activity(kind, user, cm.PostID)
	ev.CommentID = cm.ID
	return ev
}

// CreateComment adds a comment by the caller to the :id post.
func (h *BlogHandler) CreateComment(c echo.Context) error {
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
	content, ok := bindComment(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "comment content please!"})
	}
	cm := &model.Comment{PostID: p.ID, Content: content, Author: u.Name}
	if err := h.Comments.Create(ctx, cm); err != nil {
		return internalError(c, "create comment", err)
	}
	emit(ctx, h.Events, commentActivity(queue.KindCommentCreated, u.Name, cm))
	return c.JSON(http.StatusCreated, toCommentPart(cm))
}

// EditComment replaces the content of a comment the caller wrote.
func (h *BlogHandler) EditComment(c echo.Context) error {
	u := middleware.CurrentUser(c)
	if u == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "login required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	cm, err := h.lookupComment(ctx, c)
	if err != nil {
		return lookupFailed(c, "comment", err)
	}
	if !auth.OwnsResource(u, cm) {
		return forbidden(c)
	}
	content, ok := bindComment(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "comment content please!"})
	}
	cm.Content = content
	if err := h.Comments.UpdateContent(ctx, cm); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "comment not found"})
		}
		return internalError(c, "update comment", err)
	}
	emit(ctx, h.Events, commentActivity(queue.KindCommentEdited, u.Name, cm))
	return c.JSON(http.StatusOK, toCommentPart(cm))
}

// DeleteComment removes a comment the caller wrote.
func (h *BlogHandler) DeleteComment(c echo.Context) error {
	u := middleware.CurrentUser(c)
	if u == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "login required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	cm, err := h.lookupComment(ctx, c)
	if err != nil {
		return lookupFailed(c, "comment", err)
	}
	if !auth.OwnsResource(u, cm) {
		return forbidden(c)
	}
	if err := h.Comments.Delete(ctx, cm.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "comment not found"})
		}
		return internalError(c, "delete comment", err)
	}
	emit(ctx, h.Events, commentActivity(queue.KindCommentDeleted, u.Name, cm))
	return c.NoContent(http.StatusNoContent)
}
