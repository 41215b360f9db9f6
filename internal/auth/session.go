package auth

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/iliyamo/multi-user-blog/internal/logutil"
	"github.com/iliyamo/multi-user-blog/internal/model"
	"github.com/iliyamo/multi-user-blog/internal/repository"
)

// CookieName is the cookie carrying the signed session token.
const CookieName = "user_id"

// UserLookup resolves a user id to its record.
type UserLookup interface {
	ByID(ctx context.Context, id uint64) (*model.User, error)
}

// SessionManager issues and resolves stateless session tokens. The
// server keeps no session state: a token stays valid until the codec's
// secret changes, and logging out only replaces the client's cookie.
type SessionManager struct {
	codec *TokenCodec
	users UserLookup
}

func NewSessionManager(codec *TokenCodec, users UserLookup) *SessionManager {
	return &SessionManager{codec: codec, users: users}
}

// Issue signs the decimal id of u.
func (m *SessionManager) Issue(u *model.User) (Token, error) {
	return m.codec.Sign(strconv.FormatUint(u.ID, 10))
}

// Resolve maps a raw cookie value back to its user. It reports false for
// an invalid or malformed token and for an id that no longer exists.
// Storage faults are logged and also reported as false.
func (m *SessionManager) Resolve(ctx context.Context, raw string) (*model.User, bool) {
	payload, ok := m.codec.Verify(raw)
	if !ok {
		return nil, false
	}
	id, err := strconv.ParseUint(payload, 10, 64)
	if err != nil {
		return nil, false
	}
	u, err := m.users.ByID(ctx, id)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log := logutil.GetOrDefault(ctx)
			log.Error().Err(err).Uint64("user.id", id).Msg("unable to resolve session")
		}
		return nil, false
	}
	return u, true
}

// Cookie wraps t as the session cookie.
func (m *SessionManager) Cookie(t Token) *http.Cookie {
	return &http.Cookie{Name: CookieName, Value: t.String(), Path: "/"}
}

// Clear returns the cookie that replaces the session on logout.
func (m *SessionManager) Clear() *http.Cookie {
	return &http.Cookie{Name: CookieName, Value: "", Path: "/"}
}
