// Package storage defines the persistence interfaces for the contacts
// directory. Implementations live in subpackages.
package storage

import (
	"context"
	"time"

	"github.com/contactshub/server/internal/activity"
	"github.com/contactshub/server/internal/auth/user"
	"github.com/contactshub/server/internal/contact"
	"github.com/contactshub/server/internal/platform/errors"
)

// ErrNotFound indicates a requested record is missing or not visible to the
// caller. Ownership misses surface as this same error so callers cannot
// probe for records they do not own.
var ErrNotFound = errors.New(errors.CodeNotFound, "record not found")

// ErrEmailInUse indicates the canonical email already belongs to an account.
var ErrEmailInUse = errors.New(errors.CodeEmailInUse, "email already in use")

// UserStore persists account records.
type UserStore interface {
	PutUser(ctx context.Context, u user.User) error
	GetUser(ctx context.Context, userID string) (user.User, error)
	GetUserByEmail(ctx context.Context, email string) (user.User, error)
	GetUserByFederatedIdentity(ctx context.Context, provider, externalID string) (user.User, error)
}

// ActivityStamp carries the identity and time of the activity entry written
// alongside a contact mutation. The entry itself is composed inside the
// store so it commits in the same transaction as the mutation.
type ActivityStamp struct {
	EntryID string
	Now     time.Time
}

// SearchParams describes an owner-scoped contact search. An empty Query
// matches everything; an empty SortBy leaves insertion order.
type SearchParams struct {
	Query  string
	SortBy string // "name", "created_at", or empty
	Desc   bool
}

// ContactStore persists contact records. Every mutating call writes the
// contact change and its activity entry atomically.
type ContactStore interface {
	CreateContact(ctx context.Context, c contact.Contact, stamp ActivityStamp) error
	GetContact(ctx context.Context, ownerID, contactID string) (contact.Contact, error)
	ListContacts(ctx context.Context, ownerID string) ([]contact.Contact, error)
	SearchContacts(ctx context.Context, ownerID string, params SearchParams) ([]contact.Contact, error)
	UpdateContact(ctx context.Context, c contact.Contact, stamp ActivityStamp) error
	DeleteContact(ctx context.Context, ownerID, contactID string, stamp ActivityStamp) error
	SetContactStatus(ctx context.Context, ownerID, contactID string, status contact.Status, stamp ActivityStamp) (contact.Contact, error)
	ToggleContactFavorite(ctx context.Context, ownerID, contactID string, stamp ActivityStamp) (contact.Contact, error)
}

// ActivityStore reads the append-only activity log.
type ActivityStore interface {
	ListActivity(ctx context.Context, userID string) ([]activity.Entry, error)
}

// Statistics contains aggregate counts across directory data.
type Statistics struct {
	UserCount    int64
	ContactCount int64
}

// StatisticsStore provides aggregate directory statistics.
type StatisticsStore interface {
	GetStatistics(ctx context.Context) (Statistics, error)
}
