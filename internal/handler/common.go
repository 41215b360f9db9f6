package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/multi-user-blog/internal/logutil"
	"github.com/iliyamo/multi-user-blog/internal/model"
	"github.com/iliyamo/multi-user-blog/internal/queue"
	"github.com/iliyamo/multi-user-blog/internal/repository"
)

// dbTimeout bounds the storage work of a single request.
const dbTimeout = 5 * time.Second

// EventPublisher delivers activity events to the broker.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.ActivityEvent) error
}

var errInvalidID = errors.New("invalid id")

// parseID reads a positive numeric route parameter.
func parseID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errInvalidID
	}
	return id, nil
}

// lookupPost resolves the :id route parameter to an existing post. It
// returns errInvalidID, repository.ErrNotFound or a storage error.
func (h *BlogHandler) lookupPost(ctx context.Context, c echo.Context) (*model.Post, error) {
	id, err := parseID(c, "id")
	if err != nil {
		return nil, err
	}
	return h.Posts.GetByID(ctx, id)
}

// lookupComment resolves the :id route parameter to an existing comment.
func (h *BlogHandler) lookupComment(ctx context.Context, c echo.Context) (*model.Comment, error) {
	id, err := parseID(c, "id")
	if err != nil {
		return nil, err
	}
	return h.Comments.GetByID(ctx, id)
}

// lookupFailed writes the response for an error returned by a lookup.
func lookupFailed(c echo.Context, what string, err error) error {
	switch {
	case errors.Is(err, errInvalidID):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": what + " not found"})
	default:
		return internalError(c, "lookup "+what, err)
	}
}

func forbidden(c echo.Context) error {
	return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
}

// internalError logs err and hides it from the client.
func internalError(c echo.Context, op string, err error) error {
	log := logutil.GetOrDefault(c.Request().Context())
	log.Error().Err(err).Str("op", op).Msg("request failed")
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": op + " failed"})
}

// emit publishes ev in the background. Broker trouble never fails or
// slows down the request that caused the event.
func emit(ctx context.Context, events EventPublisher, ev queue.ActivityEvent) {
	if events == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		_ = events.Publish(ctx, ev)
	}()
}
