package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/multi-user-blog/internal/auth"
	"github.com/iliyamo/multi-user-blog/internal/logutil"
	"github.com/iliyamo/multi-user-blog/internal/model"
)

// SessionResolver turns a raw cookie value into a user.
type SessionResolver interface {
	Resolve(ctx context.Context, raw string) (*model.User, bool)
}

// LoadSession resolves the user_id cookie once per request. A valid
// session stores the user in the context (see CurrentUser); a missing,
// malformed or tampered cookie leaves the request anonymous. It never
// rejects a request on its own; wrap protected routes with RequireUser.
func LoadSession(sessions SessionResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ck, err := c.Cookie(auth.CookieName)
			if err != nil || ck.Value == "" {
				return next(c)
			}
			ctx := c.Request().Context()
			u, ok := sessions.Resolve(ctx, ck.Value)
			if !ok {
				log := logutil.GetOrDefault(ctx)
				log.Debug().Msg("rejected session cookie")
				return next(c)
			}
			SetCurrentUser(c, u)
			log := logutil.GetOrDefault(ctx).With().Str("user.name", u.Name).Logger()
			c.SetRequest(c.Request().WithContext(logutil.WithLogger(ctx, log)))
			return next(c)
		}
	}
}

// RequireUser rejects anonymous requests with 401. It expects LoadSession
// to have run earlier in the chain.
func RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if CurrentUser(c) == nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "login required"})
		}
		return next(c)
	}
}
