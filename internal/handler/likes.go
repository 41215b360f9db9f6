package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/multi-user-blog/internal/auth"
	"github.com/iliyamo/multi-user-blog/internal/middleware"
	"github.com/iliyamo/multi-user-blog/internal/queue"
)

// ToggleLike likes the :id post for the caller, or unlikes it when the
// caller already did. Authors cannot like their own posts.
func (h *BlogHandler) ToggleLike(c echo.Context) error {
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
	if !auth.CanLike(u, p) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you can't like your own post"})
	}
	liked, err := h.Likes.Toggle(ctx, p.ID, u.Name)
	if err != nil {
		return internalError(c, "toggle like", err)
	}
	n, err := h.Likes.CountByPost(ctx, p.ID)
	if err != nil {
		return internalError(c, "count likes", err)
	}
	ev := activity(queue.KindLikeToggled, u.Name, p.ID)
	ev.Liked = &liked
	emit(ctx, h.Events, ev)
	return c.JSON(http.StatusOK, echo.Map{"liked": liked, "likes": n})
}
