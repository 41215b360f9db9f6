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
)

// AuthHandler bundles dependencies for signup, login and logout.
type AuthHandler struct {
	Users    *auth.CredentialStore
	Sessions *auth.SessionManager
	Events   EventPublisher
}

func NewAuthHandler(users *auth.CredentialStore, sessions *auth.SessionManager, events EventPublisher) *AuthHandler {
	return &AuthHandler{Users: users, Sessions: sessions, Events: events}
}

// ----- DTOs -----

type signupReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Verify   string `json:"verify"`
	Email    string `json:"email"`
}
type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userPart struct {
	ID       uint64    `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email,omitempty"`
	Created  time.Time `json:"created"`
}

func toUserPart(u *model.User) userPart {
	return userPart{ID: u.ID, Username: u.Name, Email: u.Email, Created: u.CreatedAt}
}

// Signup validates the form, registers the user and logs them in.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.TrimSpace(req.Email)
	if errs := auth.ValidateSignup(req.Username, req.Password, req.Verify, req.Email); len(errs) > 0 {
		fields := make(map[string]string, len(errs))
		for _, e := range errs {
			fields[e.Field] = e.Reason
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid signup", "fields": fields})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.Register(ctx, req.Username, req.Password, req.Email)
	if err != nil {
		var verr *auth.ValidationError
		switch {
		case errors.Is(err, auth.ErrDuplicateUsername):
			return c.JSON(http.StatusConflict, echo.Map{
				"error":  "That user already exists.",
				"fields": map[string]string{"username": "That user already exists."},
			})
		case errors.As(err, &verr):
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error":  "invalid signup",
				"fields": map[string]string{verr.Field: verr.Reason},
			})
		}
		return internalError(c, "create user", err)
	}
	if err := h.setSession(c, u); err != nil {
		return internalError(c, "issue session", err)
	}
	emit(ctx, h.Events, queue.ActivityEvent{
		Kind:       queue.KindUserRegistered,
		Username:   u.Name,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
	return c.JSON(http.StatusCreated, echo.Map{"user": toUserPart(u)})
}

// Login checks the credentials and sets the session cookie. Unknown
// users and wrong passwords get the same answer.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid login"})
		}
		return internalError(c, "login", err)
	}
	if err := h.setSession(c, u); err != nil {
		return internalError(c, "issue session", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": toUserPart(u)})
}

// Logout clears the session cookie. It succeeds for anonymous callers too.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(h.Sessions.Clear())
	return c.NoContent(http.StatusNoContent)
}

// Me returns the logged-in user.
func (h *AuthHandler) Me(c echo.Context) error {
	u := middleware.CurrentUser(c)
	if u == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "login required"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": toUserPart(u)})
}

func (h *AuthHandler) setSession(c echo.Context, u *model.User) error {
	tok, err := h.Sessions.Issue(u)
	if err != nil {
		return err
	}
	c.SetCookie(h.Sessions.Cookie(tok))
	return nil
}
