// Package contact holds the contact directory domain: the record type and
// its status lifecycle.
package contact

import (
	"strings"
	"time"

	"github.com/contactshub/server/internal/platform/errors"
)

// Status is the lifecycle state of a contact. All transitions between
// statuses are permitted.
type Status string

const (
	StatusActive  Status = "active"
	StatusBlocked Status = "blocked"
	StatusBin     Status = "bin"
)

// ParseStatus validates a raw status value. Anything outside the known set
// is rejected with a validation code, distinct from not-found.
func ParseStatus(value string) (Status, error) {
	switch Status(value) {
	case StatusActive, StatusBlocked, StatusBin:
		return Status(value), nil
	}
	return "", errors.New(errors.CodeContactInvalidStatus, "status must be one of active, blocked, bin")
}

// Contact is a directory entry owned by exactly one user. OwnerID never
// changes after creation; every read and write is scoped by it.
type Contact struct {
	ID         string
	OwnerID    string
	Name       string
	Email      string
	Phone      string
	Categories []string // ordered, duplicates allowed
	Status     Status
	Favorite   bool
	CreatedAt  time.Time
}

// Validate checks the structural invariants of a contact record.
func (c Contact) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New(errors.CodeContactNameEmpty, "contact name is required")
	}
	if strings.TrimSpace(c.Email) == "" {
		return errors.New(errors.CodeContactEmailEmpty, "contact email is required")
	}
	if _, err := ParseStatus(string(c.Status)); err != nil {
		return err
	}
	return nil
}
