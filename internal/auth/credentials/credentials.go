// Package credentials hashes and verifies account passwords.
//
// Plaintext passwords never leave this package: callers hand a password in
// and only ever get a hash or a verdict back.
package credentials

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/contactshub/server/internal/platform/errors"
)

// Hash derives a salted bcrypt hash from a password. The same password
// yields a different hash on every call because bcrypt embeds a fresh salt.
func Hash(password string) (string, error) {
	if password == "" {
		return "", errors.New(errors.CodeUserPasswordEmpty, "password is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(errors.CodeUnknown, "hash password", err)
	}
	return string(hash), nil
}

// Verify reports whether password matches hash. It fails closed: a malformed
// or empty hash is a mismatch, never an error.
func Verify(password, hash string) bool {
	if password == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
