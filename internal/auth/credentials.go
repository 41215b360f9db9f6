package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/multi-user-blog/internal/logutil"
	"github.com/iliyamo/multi-user-blog/internal/model"
	"github.com/iliyamo/multi-user-blog/internal/repository"
)

// UserRepository is the persistence the credential store needs. Create
// must be an atomic insert-if-absent on the name and report a collision
// as repository.ErrDuplicateUsername; lookups report a miss as
// repository.ErrNotFound.
type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	GetByName(ctx context.Context, name string) (*model.User, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
}

// CredentialStore owns user records: registration, lookups and password
// login.
type CredentialStore struct {
	users  UserRepository
	hasher *PasswordHasher
	// decoy is verified when the user does not exist so a miss costs
	// about as much as a wrong password.
	decoy string
}

func NewCredentialStore(users UserRepository, hasher *PasswordHasher) *CredentialStore {
	return &CredentialStore{
		users:  users,
		hasher: hasher,
		decoy:  HashWithSalt("", "", strings.Repeat("x", DefaultSaltLength)).String(),
	}
}

// Register validates and stores a new user. It returns a
// *ValidationError for a malformed field and ErrDuplicateUsername when
// the name is already registered, including when a concurrent signup for
// the same name won the insert.
func (s *CredentialStore) Register(ctx context.Context, name, password, email string) (*model.User, error) {
	email = strings.TrimSpace(email)
	switch {
	case !ValidUsername(name):
		return nil, &ValidationError{Field: "username", Reason: ReasonUsername}
	case !ValidPassword(password):
		return nil, &ValidationError{Field: "password", Reason: ReasonPassword}
	case !ValidEmail(email):
		return nil, &ValidationError{Field: "email", Reason: ReasonEmail}
	}
	hash, err := s.hasher.Hash(name, password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &model.User{Name: name, PasswordHash: hash, Email: email}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	log := logutil.GetOrDefault(ctx)
	log.Info().Uint64("user.id", u.ID).Str("user.name", u.Name).Msg("user registered")
	return u, nil
}

// ByName returns the user called name or repository.ErrNotFound.
func (s *CredentialStore) ByName(ctx context.Context, name string) (*model.User, error) {
	return s.users.GetByName(ctx, name)
}

// ByID returns the user with the given id or repository.ErrNotFound.
func (s *CredentialStore) ByID(ctx context.Context, id uint64) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}

// Login returns the user when name exists and password matches. Both a
// missing user and a wrong password yield ErrInvalidCredentials; only
// storage faults surface as other errors.
func (s *CredentialStore) Login(ctx context.Context, name, password string) (*model.User, error) {
	u, err := s.users.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.hasher.Verify(name, password, s.decoy)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !s.hasher.Verify(name, password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}
