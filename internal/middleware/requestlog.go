package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/multi-user-blog/internal/logutil"
)

// RequestLogger attaches a request scoped logger to the request context
// and writes one line per request once the handler chain returns.
func RequestLogger(base zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			reqLog := base.With().
				Str("http.method", req.Method).
				Str("http.path", req.URL.Path).
				Str("http.remote", c.RealIP()).
				Logger()
			c.SetRequest(req.WithContext(logutil.WithLogger(req.Context(), reqLog)))

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			ev := reqLog.Info()
			if status >= 500 {
				ev = reqLog.Error().Err(err)
			}
			ev.Int("http.status", status).
				Str("user.name", currentUserName(c)).
				Dur("took", time.Since(start)).
				Msg("request")
			return nil
		}
	}
}
