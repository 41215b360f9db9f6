package middleware

import (
	"context"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"

	"github.com/iliyamo/multi-user-blog/internal/model"
)

type fixedSessions map[string]*model.User

func (f fixedSessions) Resolve(_ context.Context, raw string) (*model.User, bool) {
	u, ok := f[raw]
	return u, ok
}

func newSessionApp() *echo.Echo {
	e := echo.New()
	e.Use(LoadSession(fixedSessions{"7|good": {ID: 7, Name: "alice"}}))
	e.GET("/whoami", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"name": currentUserName(c)})
	})
	e.GET("/private", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"name": CurrentUser(c).Name})
	}, RequireUser)
	return e
}

func TestLoadSession(t *testing.T) {
	app := newSessionApp()

	apitest.New().Handler(app).
		Get("/whoami").
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.name", "anon")).
		End()

	apitest.New().Handler(app).
		Get("/whoami").
		Cookie("user_id", "7|good").
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.name", "alice")).
		End()

	apitest.New().Handler(app).
		Get("/whoami").
		Cookie("user_id", "7|forged").
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.name", "anon")).
		End()
}

func TestRequireUser(t *testing.T) {
	app := newSessionApp()

	apitest.New().Handler(app).
		Get("/private").
		Expect(t).
		Status(http.StatusUnauthorized).
		Assert(jsonpath.Equal("$.error", "login required")).
		End()

	apitest.New().Handler(app).
		Get("/private").
		Cookie("user_id", "8|forged").
		Expect(t).
		Status(http.StatusUnauthorized).
		End()

	apitest.New().Handler(app).
		Get("/private").
		Cookie("user_id", "7|good").
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.name", "alice")).
		End()
}
