// Package auth holds the blog's authentication and authorization core:
// password hashing, signed session tokens, the credential store, session
// resolution and the ownership guard used before any post or comment is
// changed.
//
// Every failure here is recoverable. Callers translate the sentinel
// errors below into HTTP responses; nothing in the package panics on user
// supplied input.
package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateUsername is returned by Register when the name is taken.
	ErrDuplicateUsername = errors.New("username already exists")

	// ErrInvalidCredentials covers both an unknown user and a wrong
	// password so callers cannot tell the two apart.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmptySecret is returned when a TokenCodec is built without key material.
	ErrEmptySecret = errors.New("token secret must not be empty")

	// ErrInvalidPayload is returned by Sign for payloads containing the separator.
	ErrInvalidPayload = errors.New("token payload must not contain '|'")
)

// ValidationError reports a rejected input field together with a message
// suitable for showing to the user.
type ValidationError struct {
	Field  string
	Reason string
}

func (v *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", v.Field, v.Reason)
}
