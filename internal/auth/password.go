package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"io"
	"math/big"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Scheme selects how new password records are produced. Verify accepts
// records of either scheme regardless of the configured one.
type Scheme string

const (
	SchemeSHA256 Scheme = "sha256"
	SchemeBcrypt Scheme = "bcrypt"
)

// DefaultSaltLength matches the salt size of records created by the first
// version of the blog. Longer salts are accepted and verified the same way.
const DefaultSaltLength = 5

const saltAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// HashRecord is a salted SHA-256 password record, serialized as
// `salt|hexdigest`.
type HashRecord struct {
	Salt   string
	Digest string
}

func (r HashRecord) String() string { return r.Salt + "|" + r.Digest }

// ParseHashRecord splits a serialized record. It reports false when the
// separator is missing or either half is empty.
func ParseHashRecord(s string) (HashRecord, bool) {
	salt, digest, ok := strings.Cut(s, "|")
	if !ok || salt == "" || digest == "" {
		return HashRecord{}, false
	}
	return HashRecord{Salt: salt, Digest: digest}, true
}

// HashWithSalt computes sha256(name + password + salt). The same inputs
// always produce the same record.
func HashWithSalt(name, password, salt string) HashRecord {
	sum := sha256.Sum256([]byte(name + password + salt))
	return HashRecord{Salt: salt, Digest: hex.EncodeToString(sum[:])}
}

// MakeSalt draws n letters uniformly from r.
func MakeSalt(r io.Reader, n int) (string, error) {
	max := big.NewInt(int64(len(saltAlphabet)))
	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(r, max)
		if err != nil {
			return "", fmt.Errorf("make salt: %w", err)
		}
		buf[i] = saltAlphabet[idx.Int64()]
	}
	return string(buf), nil
}

// PasswordHasher creates and checks stored password records. It holds no
// mutable state and is safe for concurrent use.
type PasswordHasher struct {
	scheme     Scheme
	saltLength int
	bcryptCost int
	random     io.Reader
}

// NewPasswordHasher returns a hasher producing records of the given
// scheme. Non-positive lengths fall back to DefaultSaltLength and an out
// of range bcrypt cost falls back to bcrypt.DefaultCost.
func NewPasswordHasher(scheme Scheme, saltLength, bcryptCost int) *PasswordHasher {
	if scheme != SchemeBcrypt {
		scheme = SchemeSHA256
	}
	if saltLength <= 0 {
		saltLength = DefaultSaltLength
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &PasswordHasher{scheme: scheme, saltLength: saltLength, bcryptCost: bcryptCost, random: rand.Reader}
}

// Hash creates a new stored record for name/password with a fresh salt.
func (h *PasswordHasher) Hash(name, password string) (string, error) {
	if h.scheme == SchemeBcrypt {
		b, err := bcrypt.GenerateFromPassword([]byte(password), h.bcryptCost)
		if err != nil {
			return "", fmt.Errorf("bcrypt: %w", err)
		}
		return string(b), nil
	}
	salt, err := MakeSalt(h.random, h.saltLength)
	if err != nil {
		return "", err
	}
	return HashWithSalt(name, password, salt).String(), nil
}

// Verify reports whether password is the one stored in record for name.
// A malformed record never verifies.
func (h *PasswordHasher) Verify(name, password, record string) bool {
	if isBcrypt(record) {
		return bcrypt.CompareHashAndPassword([]byte(record), []byte(password)) == nil
	}
	parsed, ok := ParseHashRecord(record)
	if !ok {
		return false
	}
	want := HashWithSalt(name, password, parsed.Salt).String()
	return subtle.ConstantTimeCompare([]byte(want), []byte(record)) == 1
}

func isBcrypt(record string) bool {
	return strings.HasPrefix(record, "$2a$") || strings.HasPrefix(record, "$2b$") || strings.HasPrefix(record, "$2y$")
}
