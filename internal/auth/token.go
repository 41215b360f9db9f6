package auth

import (
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Token is an authenticated, unencrypted value: the payload travels in
// plain text next to a lowercase hex HMAC-SHA256 of it.
type Token struct {
	Payload   string
	Signature string
}

// String serializes the token as `payload|signature`.
func (t Token) String() string { return t.Payload + "|" + t.Signature }

// ParseToken splits raw on the first '|'. It only checks structure; use
// TokenCodec.Verify to check the signature.
func ParseToken(raw string) (Token, bool) {
	payload, sig, ok := strings.Cut(raw, "|")
	if !ok || sig == "" {
		return Token{}, false
	}
	return Token{Payload: payload, Signature: sig}, true
}

// TokenCodec signs and verifies tokens with a single server secret fixed
// at construction. Rotating the secret means building a new codec, which
// invalidates every token issued by the old one.
type TokenCodec struct {
	secret []byte
	method *jwt.SigningMethodHMAC
}

// NewTokenCodec returns a codec keyed with secret.
func NewTokenCodec(secret string) (*TokenCodec, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &TokenCodec{secret: []byte(secret), method: jwt.SigningMethodHS256}, nil
}

func (c *TokenCodec) mac(payload string) (string, error) {
	sig, err := c.method.Sign(payload, c.secret)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sig), nil
}

// Sign returns payload together with its MAC.
func (c *TokenCodec) Sign(payload string) (Token, error) {
	if strings.Contains(payload, "|") {
		return Token{}, ErrInvalidPayload
	}
	sig, err := c.mac(payload)
	if err != nil {
		return Token{}, err
	}
	return Token{Payload: payload, Signature: sig}, nil
}

// Verify returns the payload of raw when its signature matches. A
// missing, malformed or tampered token yields ("", false).
func (c *TokenCodec) Verify(raw string) (string, bool) {
	tok, ok := ParseToken(raw)
	if !ok {
		return "", false
	}
	want, err := c.Sign(tok.Payload)
	if err != nil {
		return "", false
	}
	if subtle.ConstantTimeCompare([]byte(want.String()), []byte(raw)) != 1 {
		return "", false
	}
	return tok.Payload, true
}
