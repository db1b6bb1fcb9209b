// Package auth implements the identity service: registration, password and
// federated authentication, and bearer token issue/verify.
package auth

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/contactshub/server/internal/auth/credentials"
	"github.com/contactshub/server/internal/auth/token"
	"github.com/contactshub/server/internal/auth/user"
	"github.com/contactshub/server/internal/platform/errors"
	"github.com/contactshub/server/internal/storage"
)

// Service registers and authenticates users.
type Service struct {
	store       storage.UserStore
	tokens      token.Issuer
	idGenerator func() string
	clock       func() time.Time
}

// NewService builds an identity service over the given user store.
func NewService(store storage.UserStore, tokens token.Issuer) *Service {
	return &Service{
		store:       store,
		tokens:      tokens,
		idGenerator: uuid.NewString,
		clock:       time.Now,
	}
}

var errInvalidCredentials = errors.New(errors.CodeInvalidCredentials, "invalid credentials")

// Register creates a password-based account. The email is canonicalized
// before the uniqueness check; the password is stored only as a bcrypt hash.
func (s *Service) Register(ctx context.Context, name, email, password string) (user.User, error) {
	name = strings.TrimSpace(name)
	email = user.CanonicalEmail(email)
	if name == "" {
		return user.User{}, errors.New(errors.CodeUserNameEmpty, "name is required")
	}
	if email == "" {
		return user.User{}, errors.New(errors.CodeUserEmailEmpty, "email is required")
	}
	hash, err := credentials.Hash(password)
	if err != nil {
		return user.User{}, err
	}

	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return user.User{}, storage.ErrEmailInUse
	} else if !stderrors.Is(err, storage.ErrNotFound) {
		return user.User{}, err
	}

	u := user.User{
		ID:           s.idGenerator(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.clock().UTC(),
	}
	if err := u.Validate(); err != nil {
		return user.User{}, err
	}
	// The store's unique index backstops the read-then-write race above.
	if err := s.store.PutUser(ctx, u); err != nil {
		return user.User{}, err
	}
	return u, nil
}

// AuthenticatePassword authenticates an email/password pair. Unknown email,
// federated-only account, and wrong password are indistinguishable to the
// caller so account existence never leaks.
func (s *Service) AuthenticatePassword(ctx context.Context, email, password string) (user.User, error) {
	email = user.CanonicalEmail(email)
	if email == "" || password == "" {
		return user.User{}, errInvalidCredentials
	}
	u, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return user.User{}, errInvalidCredentials
		}
		return user.User{}, err
	}
	if !u.HasPassword() || !credentials.Verify(password, u.PasswordHash) {
		return user.User{}, errInvalidCredentials
	}
	return u, nil
}

// AuthenticateFederated resolves an already-verified federated identity to
// an account, creating one on first login. The upsert is keyed on the
// (provider, external id) pair; a password account sharing the same email is
// never merged.
func (s *Service) AuthenticateFederated(ctx context.Context, provider, externalID, email, name string) (user.User, error) {
	provider = strings.TrimSpace(provider)
	externalID = strings.TrimSpace(externalID)
	email = user.CanonicalEmail(email)
	name = strings.TrimSpace(name)
	if provider == "" || externalID == "" || email == "" || name == "" {
		return user.User{}, errors.New(errors.CodeFederatedIdentityInvalid, "provider, external id, email and name are required")
	}

	u, err := s.store.GetUserByFederatedIdentity(ctx, provider, externalID)
	if err == nil {
		return u, nil
	}
	if !stderrors.Is(err, storage.ErrNotFound) {
		return user.User{}, err
	}

	u = user.User{
		ID:            s.idGenerator(),
		Name:          name,
		Email:         email,
		OAuthProvider: provider,
		OAuthID:       externalID,
		CreatedAt:     s.clock().UTC(),
	}
	if err := u.Validate(); err != nil {
		return user.User{}, err
	}
	if err := s.store.PutUser(ctx, u); err != nil {
		return user.User{}, err
	}
	return u, nil
}

// GetUser fetches an account by id.
func (s *Service) GetUser(ctx context.Context, userID string) (user.User, error) {
	return s.store.GetUser(ctx, userID)
}

// IssueToken mints a bearer token for the user.
func (s *Service) IssueToken(u user.User) (string, error) {
	return s.tokens.Issue(u.ID)
}

// VerifyToken validates a bearer token and returns the user id it encodes.
// Verification is pure: no store lookup happens here.
func (s *Service) VerifyToken(tokenString string) (string, error) {
	return s.tokens.Verify(tokenString)
}
