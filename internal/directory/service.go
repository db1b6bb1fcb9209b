// Package directory implements the owner-scoped contact directory service
// on top of the storage interfaces.
package directory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/contactshub/server/internal/activity"
	"github.com/contactshub/server/internal/contact"
	"github.com/contactshub/server/internal/storage"
)

// Service is the owner-scoped contact directory. Every operation takes the
// authenticated owner id; cross-owner access is indistinguishable from a
// missing record.
type Service struct {
	contacts    storage.ContactStore
	activities  storage.ActivityStore
	idGenerator func() string
	clock       func() time.Time
}

// NewService builds a directory service over the given stores.
func NewService(contacts storage.ContactStore, activities storage.ActivityStore) *Service {
	return &Service{
		contacts:    contacts,
		activities:  activities,
		idGenerator: uuid.NewString,
		clock:       time.Now,
	}
}

// CreateRequest carries the fields for a new contact.
type CreateRequest struct {
	Name       string
	Email      string
	Phone      string
	Categories []string
}

// UpdateRequest carries a partial contact update. Nil fields keep the stored
// value.
type UpdateRequest struct {
	Name       *string
	Email      *string
	Phone      *string
	Categories *[]string
}

func (s *Service) stamp() storage.ActivityStamp {
	return storage.ActivityStamp{
		EntryID: s.idGenerator(),
		Now:     s.clock().UTC(),
	}
}

// Create adds a contact for the owner. Status defaults to active and the
// favorite flag to false.
func (s *Service) Create(ctx context.Context, ownerID string, req CreateRequest) (contact.Contact, error) {
	categories := req.Categories
	if categories == nil {
		categories = []string{}
	}
	c := contact.Contact{
		ID:         s.idGenerator(),
		OwnerID:    ownerID,
		Name:       strings.TrimSpace(req.Name),
		Email:      strings.TrimSpace(req.Email),
		Phone:      strings.TrimSpace(req.Phone),
		Categories: categories,
		Status:     contact.StatusActive,
		Favorite:   false,
		CreatedAt:  s.clock().UTC(),
	}
	if err := c.Validate(); err != nil {
		return contact.Contact{}, err
	}
	if err := s.contacts.CreateContact(ctx, c, s.stamp()); err != nil {
		return contact.Contact{}, err
	}
	return c, nil
}

// Get returns one of the owner's contacts.
func (s *Service) Get(ctx context.Context, ownerID, contactID string) (contact.Contact, error) {
	return s.contacts.GetContact(ctx, ownerID, contactID)
}

// List returns all of the owner's contacts in insertion order.
func (s *Service) List(ctx context.Context, ownerID string) ([]contact.Contact, error) {
	return s.contacts.ListContacts(ctx, ownerID)
}

// Update applies a partial update: fields present in the request overwrite
// the stored value, absent fields keep it.
func (s *Service) Update(ctx context.Context, ownerID, contactID string, req UpdateRequest) (contact.Contact, error) {
	c, err := s.contacts.GetContact(ctx, ownerID, contactID)
	if err != nil {
		return contact.Contact{}, err
	}
	if req.Name != nil {
		c.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		c.Email = strings.TrimSpace(*req.Email)
	}
	if req.Phone != nil {
		c.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Categories != nil {
		c.Categories = *req.Categories
	}
	if err := c.Validate(); err != nil {
		return contact.Contact{}, err
	}
	if err := s.contacts.UpdateContact(ctx, c, s.stamp()); err != nil {
		return contact.Contact{}, err
	}
	return c, nil
}

// Delete removes one of the owner's contacts permanently.
func (s *Service) Delete(ctx context.Context, ownerID, contactID string) error {
	return s.contacts.DeleteContact(ctx, ownerID, contactID, s.stamp())
}

// SetStatus moves a contact to the given status. Unknown statuses are
// rejected before any store access.
func (s *Service) SetStatus(ctx context.Context, ownerID, contactID, status string) (contact.Contact, error) {
	parsed, err := contact.ParseStatus(status)
	if err != nil {
		return contact.Contact{}, err
	}
	return s.contacts.SetContactStatus(ctx, ownerID, contactID, parsed, s.stamp())
}

// ToggleFavorite flips the contact's favorite flag atomically.
func (s *Service) ToggleFavorite(ctx context.Context, ownerID, contactID string) (contact.Contact, error) {
	return s.contacts.ToggleContactFavorite(ctx, ownerID, contactID, s.stamp())
}

// SearchAndSort filters the owner's contacts by a case-insensitive substring
// match on name or email, optionally sorted. Unrecognized sort fields leave
// the insertion order; order defaults to ascending.
func (s *Service) SearchAndSort(ctx context.Context, ownerID, query, sortBy, order string) ([]contact.Contact, error) {
	params := storage.SearchParams{
		Query: strings.TrimSpace(query),
		Desc:  strings.EqualFold(order, "desc"),
	}
	switch sortBy {
	case "name", "created_at":
		params.SortBy = sortBy
	}
	return s.contacts.SearchContacts(ctx, ownerID, params)
}

// ListActivity returns the owner's audit trail.
func (s *Service) ListActivity(ctx context.Context, userID string) ([]activity.Entry, error) {
	return s.activities.ListActivity(ctx, userID)
}
