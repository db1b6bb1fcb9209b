package sqlite

import (
	"context"
	stderrors "errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/contactshub/server/internal/activity"
	"github.com/contactshub/server/internal/auth/user"
	"github.com/contactshub/server/internal/contact"
	"github.com/contactshub/server/internal/storage"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "directory.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

var entrySeq int

func nextStamp(now time.Time) storage.ActivityStamp {
	entrySeq++
	return storage.ActivityStamp{
		EntryID: fmt.Sprintf("entry-%d", entrySeq),
		Now:     now,
	}
}

func putTestUser(t *testing.T, store *Store, id string) user.User {
	t.Helper()
	u := user.User{
		ID:           id,
		Name:         "Owner " + id,
		Email:        id + "@example.com",
		PasswordHash: "hash",
		CreatedAt:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := store.PutUser(context.Background(), u); err != nil {
		t.Fatalf("put user %s: %v", id, err)
	}
	return u
}

func putTestContact(t *testing.T, store *Store, ownerID, id, name, email string, createdAt time.Time) contact.Contact {
	t.Helper()
	c := contact.Contact{
		ID:         id,
		OwnerID:    ownerID,
		Name:       name,
		Email:      email,
		Categories: []string{},
		Status:     contact.StatusActive,
		CreatedAt:  createdAt,
	}
	if err := store.CreateContact(context.Background(), c, nextStamp(createdAt)); err != nil {
		t.Fatalf("create contact %s: %v", id, err)
	}
	return c
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestPutUserRejectsDuplicateEmail(t *testing.T) {
	store := openTempStore(t)
	putTestUser(t, store, "u1")

	dup := user.User{
		ID:           "u2",
		Name:         "Other",
		Email:        "u1@example.com",
		PasswordHash: "hash",
		CreatedAt:    time.Now(),
	}
	if err := store.PutUser(context.Background(), dup); !stderrors.Is(err, storage.ErrEmailInUse) {
		t.Fatalf("expected %v, got %v", storage.ErrEmailInUse, err)
	}
}

func TestGetUserByEmailAndFederatedIdentity(t *testing.T) {
	store := openTempStore(t)

	federated := user.User{
		ID:            "u-fed",
		Name:          "Fed",
		Email:         "fed@example.com",
		OAuthProvider: "google",
		OAuthID:       "ext-1",
		CreatedAt:     time.Now(),
	}
	if err := store.PutUser(context.Background(), federated); err != nil {
		t.Fatalf("put federated user: %v", err)
	}

	byEmail, err := store.GetUserByEmail(context.Background(), "fed@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if byEmail.ID != "u-fed" {
		t.Fatalf("expected u-fed, got %s", byEmail.ID)
	}

	byIdentity, err := store.GetUserByFederatedIdentity(context.Background(), "google", "ext-1")
	if err != nil {
		t.Fatalf("get by federated identity: %v", err)
	}
	if byIdentity.ID != "u-fed" {
		t.Fatalf("expected u-fed, got %s", byIdentity.ID)
	}

	if _, err := store.GetUserByFederatedIdentity(context.Background(), "google", "other"); !stderrors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected %v, got %v", storage.ErrNotFound, err)
	}
}

func TestCreateContactRoundTrip(t *testing.T) {
	store := openTempStore(t)
	putTestUser(t, store, "u1")

	created := contact.Contact{
		ID:         "c1",
		OwnerID:    "u1",
		Name:       "A",
		Email:      "a@x.com",
		Phone:      "555-0100",
		Categories: []string{"friends", "work", "friends"},
		Status:     contact.StatusActive,
		CreatedAt:  time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
	}
	if err := store.CreateContact(context.Background(), created, nextStamp(created.CreatedAt)); err != nil {
		t.Fatalf("create contact: %v", err)
	}

	got, err := store.GetContact(context.Background(), "u1", "c1")
	if err != nil {
		t.Fatalf("get contact: %v", err)
	}
	if got.Name != "A" || got.Email != "a@x.com" || got.Phone != "555-0100" {
		t.Fatalf("unexpected contact fields: %+v", got)
	}
	if got.Status != contact.StatusActive || got.Favorite {
		t.Fatalf("expected active non-favorite contact, got %+v", got)
	}
	// Category labels keep order and duplicates.
	if len(got.Categories) != 3 || got.Categories[0] != "friends" || got.Categories[2] != "friends" {
		t.Fatalf("unexpected categories: %v", got.Categories)
	}
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("expected created_at %v, got %v", created.CreatedAt, got.CreatedAt)
	}
}

func TestContactOwnershipIsolation(t *testing.T) {
	store := openTempStore(t)
	putTestUser(t, store, "u1")
	putTestUser(t, store, "u2")
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	putTestContact(t, store, "u1", "c1", "Mine", "mine@x.com", now)

	// A non-owner sees the same not-found as a missing id.
	if _, err := store.GetContact(context.Background(), "u2", "c1"); !stderrors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected %v for cross-owner get, got %v", storage.ErrNotFound, err)
	}
	if _, err := store.GetContact(context.Background(), "u2", "missing"); !stderrors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected %v for missing id, got %v", storage.ErrNotFound, err)
	}

	list, err := store.ListContacts(context.Background(), "u2")
	if err != nil {
		t.Fatalf("list contacts: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list for other owner, got %d", len(list))
	}

	found, err := store.SearchContacts(context.Background(), "u2", storage.SearchParams{Query: "mine"})
	if err != nil {
		t.Fatalf("search contacts: %v", err)
	}
	if len(found) != 0 {
		t.Fatalf("expected no cross-owner search hits, got %d", len(found))
	}

	if err := store.DeleteContact(context.Background(), "u2", "c1", nextStamp(now)); !stderrors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected %v for cross-owner delete, got %v", storage.ErrNotFound, err)
	}
	if _, err := store.ToggleContactFavorite(context.Background(), "u2", "c1", nextStamp(now)); !stderrors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected %v for cross-owner toggle, got %v", storage.ErrNotFound, err)
	}
}

func TestSearchContactsMatchesNameOrEmailCaseInsensitively(t *testing.T) {
	store := openTempStore(t)
	putTestUser(t, store, "u1")
	base := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	putTestContact(t, store, "u1", "c1", "John", "j@x", base)
	putTestContact(t, store, "u1", "c2", "Joanna", "jo@y", base.Add(time.Minute))
	putTestContact(t, store, "u1", "c3", "Bob", "b@z", base.Add(2*time.Minute))

	found, err := store.SearchContacts(context.Background(), "u1", storage.SearchParams{
		Query:  "jo",
		SortBy: "name",
		Desc:   true,
	})
	if err != nil {
		t.Fatalf("search contacts: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(found))
	}
	if found[0].Name != "John" || found[1].Name != "Joanna" {
		t.Fatalf("expected [John Joanna] descending, got [%s %s]", found[0].Name, found[1].Name)
	}

	// Email matches count too: "b@z" via the email side.
	byEmail, err := store.SearchContacts(context.Background(), "u1", storage.SearchParams{Query: "B@Z"})
	if err != nil {
		t.Fatalf("search by email: %v", err)
	}
	if len(byEmail) != 1 || byEmail[0].Name != "Bob" {
		t.Fatalf("expected Bob via email match, got %+v", byEmail)
	}
}

func TestSearchContactsSortsByCreatedAt(t *testing.T) {
	store := openTempStore(t)
	putTestUser(t, store, "u1")
	base := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	putTestContact(t, store, "u1", "c-old", "Old", "old@x.com", base)
	putTestContact(t, store, "u1", "c-new", "New", "new@x.com", base.Add(time.Hour))

	desc, err := store.SearchContacts(context.Background(), "u1", storage.SearchParams{SortBy: "created_at", Desc: true})
	if err != nil {
		t.Fatalf("search contacts: %v", err)
	}
	if len(desc) != 2 || desc[0].ID != "c-new" {
		t.Fatalf("expected newest first, got %+v", desc)
	}

	// An unrecognized sort field applies no sort instead of failing.
	unsorted, err := store.SearchContacts(context.Background(), "u1", storage.SearchParams{SortBy: "phone"})
	if err != nil {
		t.Fatalf("search contacts with unknown sort: %v", err)
	}
	if len(unsorted) != 2 || unsorted[0].ID != "c-old" {
		t.Fatalf("expected insertion order, got %+v", unsorted)
	}
}

func TestSearchContactsEscapesLikeWildcards(t *testing.T) {
	store := openTempStore(t)
	putTestUser(t, store, "u1")
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	putTestContact(t, store, "u1", "c1", "100% Legit", "legit@x.com", now)
	putTestContact(t, store, "u1", "c2", "Plain", "plain@x.com", now)

	found, err := store.SearchContacts(context.Background(), "u1", storage.SearchParams{Query: "100%"})
	if err != nil {
		t.Fatalf("search contacts: %v", err)
	}
	if len(found) != 1 || found[0].ID != "c1" {
		t.Fatalf("expected literal wildcard match only, got %+v", found)
	}
}

func TestUpdateContactRewritesRowAndLogsActivity(t *testing.T) {
	store := openTempStore(t)
	putTestUser(t, store, "u1")
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	c := putTestContact(t, store, "u1", "c1", "Before", "before@x.com", now)

	c.Name = "After"
	c.Categories = []string{"updated"}
	if err := store.UpdateContact(context.Background(), c, nextStamp(now.Add(time.Minute))); err != nil {
		t.Fatalf("update contact: %v", err)
	}

	got, err := store.GetContact(context.Background(), "u1", "c1")
	if err != nil {
		t.Fatalf("get contact: %v", err)
	}
	if got.Name != "After" || len(got.Categories) != 1 || got.Categories[0] != "updated" {
		t.Fatalf("unexpected contact after update: %+v", got)
	}

	entries := listEntries(t, store, "u1")
	last := entries[len(entries)-1]
	if last.Action != activity.ActionUpdated || last.ContactName != "After" {
		t.Fatalf("unexpected activity entry: %+v", last)
	}
}

func TestDeleteContactKeepsNameSnapshot(t *testing.T) {
	store := openTempStore(t)
	putTestUser(t, store, "u1")
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	putTestContact(t, store, "u1", "c1", "Ephemeral", "e@x.com", now)

	if err := store.DeleteContact(context.Background(), "u1", "c1", nextStamp(now.Add(time.Minute))); err != nil {
		t.Fatalf("delete contact: %v", err)
	}
	if _, err := store.GetContact(context.Background(), "u1", "c1"); !stderrors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected %v after delete, got %v", storage.ErrNotFound, err)
	}

	entries := listEntries(t, store, "u1")
	last := entries[len(entries)-1]
	if last.Action != activity.ActionDeleted {
		t.Fatalf("expected deleted action, got %s", last.Action)
	}
	// The snapshot survives the contact row.
	if last.ContactName != "Ephemeral" {
		t.Fatalf("expected name snapshot, got %q", last.ContactName)
	}
}

func TestSetContactStatusRecordsTransition(t *testing.T) {
	store := openTempStore(t)
	putTestUser(t, store, "u1")
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	putTestContact(t, store, "u1", "c1", "Target", "t@x.com", now)

	updated, err := store.SetContactStatus(context.Background(), "u1", "c1", contact.StatusBlocked, nextStamp(now.Add(time.Minute)))
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if updated.Status != contact.StatusBlocked {
		t.Fatalf("expected blocked, got %s", updated.Status)
	}

	entries := listEntries(t, store, "u1")
	last := entries[len(entries)-1]
	if last.Action != activity.ActionSetStatus || last.ActionType != "blocked" {
		t.Fatalf("unexpected activity entry: %+v", last)
	}
}

func TestToggleFavoriteTwiceReturnsToOriginal(t *testing.T) {
	store := openTempStore(t)
	putTestUser(t, store, "u1")
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	putTestContact(t, store, "u1", "c1", "Flip", "f@x.com", now)

	first, err := store.ToggleContactFavorite(context.Background(), "u1", "c1", nextStamp(now.Add(time.Minute)))
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if !first.Favorite {
		t.Fatal("expected favorite after first toggle")
	}

	second, err := store.ToggleContactFavorite(context.Background(), "u1", "c1", nextStamp(now.Add(2*time.Minute)))
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if second.Favorite {
		t.Fatal("expected original value after second toggle")
	}

	entries := listEntries(t, store, "u1")
	var labels []string
	for _, entry := range entries {
		if entry.Action == activity.ActionToggleFavorite {
			labels = append(labels, entry.ActionType)
		}
	}
	if len(labels) != 2 || labels[0] != "favorited" || labels[1] != "unfavorited" {
		t.Fatalf("unexpected toggle labels: %v", labels)
	}
}

func TestConcurrentTogglesDoNotLoseUpdates(t *testing.T) {
	store := openTempStore(t)
	putTestUser(t, store, "u1")
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	putTestContact(t, store, "u1", "c1", "Contended", "c@x.com", now)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			stamp := storage.ActivityStamp{
				EntryID: fmt.Sprintf("concurrent-%d", idx),
				Now:     now.Add(time.Minute),
			}
			_, errs[idx] = store.ToggleContactFavorite(context.Background(), "u1", "c1", stamp)
		}(i)
	}
	wg.Wait()

	for idx, err := range errs {
		if err != nil {
			t.Fatalf("toggle %d: %v", idx, err)
		}
	}

	// Both toggles applied: no pair of them read false and wrote true.
	got, err := store.GetContact(context.Background(), "u1", "c1")
	if err != nil {
		t.Fatalf("get contact: %v", err)
	}
	if got.Favorite {
		t.Fatal("expected two applied toggles to restore the original value")
	}

	var toggleEntries int
	for _, entry := range listEntries(t, store, "u1") {
		if entry.Action == activity.ActionToggleFavorite {
			toggleEntries++
		}
	}
	if toggleEntries != 2 {
		t.Fatalf("expected 2 toggle entries, got %d", toggleEntries)
	}
}

func TestEveryMutationLogsExactlyOneEntry(t *testing.T) {
	store := openTempStore(t)
	putTestUser(t, store, "u1")
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	c := putTestContact(t, store, "u1", "c1", "Audited", "a@x.com", now)
	c.Phone = "555-0101"
	if err := store.UpdateContact(context.Background(), c, nextStamp(now.Add(time.Minute))); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := store.ToggleContactFavorite(context.Background(), "u1", "c1", nextStamp(now.Add(2*time.Minute))); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if _, err := store.SetContactStatus(context.Background(), "u1", "c1", contact.StatusBin, nextStamp(now.Add(3*time.Minute))); err != nil {
		t.Fatalf("set status: %v", err)
	}
	if err := store.DeleteContact(context.Background(), "u1", "c1", nextStamp(now.Add(4*time.Minute))); err != nil {
		t.Fatalf("delete: %v", err)
	}

	entries := listEntries(t, store, "u1")
	if len(entries) != 5 {
		t.Fatalf("expected 5 activity entries, got %d", len(entries))
	}
	wantActions := []activity.Action{
		activity.ActionAdded,
		activity.ActionUpdated,
		activity.ActionToggleFavorite,
		activity.ActionSetStatus,
		activity.ActionDeleted,
	}
	for idx, want := range wantActions {
		if entries[idx].Action != want {
			t.Fatalf("entry %d: expected %s, got %s", idx, want, entries[idx].Action)
		}
	}
}

func listEntries(t *testing.T, store *Store, userID string) []activity.Entry {
	t.Helper()
	entries, err := store.ListActivity(context.Background(), userID)
	if err != nil {
		t.Fatalf("list activity: %v", err)
	}
	return entries
}

func TestGetStatisticsCounts(t *testing.T) {
	store := openTempStore(t)
	putTestUser(t, store, "u1")
	putTestUser(t, store, "u2")
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	putTestContact(t, store, "u1", "c1", "One", "one@x.com", now)

	stats, err := store.GetStatistics(context.Background())
	if err != nil {
		t.Fatalf("get statistics: %v", err)
	}
	if stats.UserCount != 2 || stats.ContactCount != 1 {
		t.Fatalf("unexpected statistics: %+v", stats)
	}
}
