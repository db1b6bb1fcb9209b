// Package user defines the account identity owned by the auth service.
package user

import (
	"strings"
	"time"

	"github.com/contactshub/server/internal/platform/errors"
)

// User is a registered account. An account carries a password hash, a
// federated identity, or both; it is never deleted.
type User struct {
	ID            string
	Name          string
	Email         string // canonical form, see CanonicalEmail
	PasswordHash  string // empty for federated-only accounts
	OAuthProvider string
	OAuthID       string
	CreatedAt     time.Time
}

// CanonicalEmail normalizes an email address for storage and uniqueness
// checks. Uniqueness is decided on the canonical form, never the raw input.
func CanonicalEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HasPassword reports whether the account can authenticate with a password.
func (u User) HasPassword() bool {
	return u.PasswordHash != ""
}

// HasFederatedIdentity reports whether the account is linked to an external
// identity provider.
func (u User) HasFederatedIdentity() bool {
	return u.OAuthProvider != "" && u.OAuthID != ""
}

// Validate checks the structural invariants of a user record.
func (u User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return errors.New(errors.CodeUserNameEmpty, "user name is required")
	}
	if strings.TrimSpace(u.Email) == "" {
		return errors.New(errors.CodeUserEmailEmpty, "user email is required")
	}
	if !u.HasPassword() && !u.HasFederatedIdentity() {
		return errors.New(errors.CodeInvalidCredentials, "user requires a password hash or a federated identity")
	}
	return nil
}
