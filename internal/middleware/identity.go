package middleware

// identity.go holds the context key under which LoadSession stores the
// resolved user, plus accessors used by handlers and other middleware.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/multi-user-blog/internal/model"
)

const userKey = "user"

// CurrentUser returns the user resolved from the session cookie, or nil
// for an anonymous request.
func CurrentUser(c echo.Context) *model.User {
	u, _ := c.Get(userKey).(*model.User)
	return u
}

// SetCurrentUser stores u as the request's identity.
func SetCurrentUser(c echo.Context, u *model.User) {
	c.Set(userKey, u)
}

// currentUserName returns the resolved username or "anon".
func currentUserName(c echo.Context) string {
	if u := CurrentUser(c); u != nil {
		return u.Name
	}
	return "anon"
}
