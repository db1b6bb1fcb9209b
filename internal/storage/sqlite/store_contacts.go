package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/contactshub/server/internal/activity"
	"github.com/contactshub/server/internal/contact"
	"github.com/contactshub/server/internal/storage"
)

const contactColumns = "id, user_id, name, email, phone, categories, status, favorite, created_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (contact.Contact, error) {
	var c contact.Contact
	var categoriesJSON string
	var status string
	var favorite int64
	var createdAt int64
	if err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Email, &c.Phone, &categoriesJSON, &status, &favorite, &createdAt); err != nil {
		return contact.Contact{}, err
	}
	if err := json.Unmarshal([]byte(categoriesJSON), &c.Categories); err != nil {
		return contact.Contact{}, fmt.Errorf("decode categories: %w", err)
	}
	if c.Categories == nil {
		c.Categories = []string{}
	}
	c.Status = contact.Status(status)
	c.Favorite = favorite != 0
	c.CreatedAt = fromMillis(createdAt)
	return c, nil
}

func encodeCategories(categories []string) (string, error) {
	if categories == nil {
		categories = []string{}
	}
	encoded, err := json.Marshal(categories)
	if err != nil {
		return "", fmt.Errorf("encode categories: %w", err)
	}
	return string(encoded), nil
}

// escapeLike escapes LIKE wildcards so a search term matches literally.
func escapeLike(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, "%", `\%`)
	value = strings.ReplaceAll(value, "_", `\_`)
	return value
}

func validateScope(ownerID, contactID string) error {
	if strings.TrimSpace(ownerID) == "" {
		return fmt.Errorf("owner id is required")
	}
	if strings.TrimSpace(contactID) == "" {
		return fmt.Errorf("contact id is required")
	}
	return nil
}

// CreateContact persists a contact and its "added" activity entry in one
// transaction.
func (s *Store) CreateContact(ctx context.Context, c contact.Contact, stamp storage.ActivityStamp) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("contact id is required")
	}
	if strings.TrimSpace(c.OwnerID) == "" {
		return fmt.Errorf("owner id is required")
	}
	if err := c.Validate(); err != nil {
		return err
	}
	categoriesJSON, err := encodeCategories(c.Categories)
	if err != nil {
		return err
	}

	tx, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO contacts (id, user_id, name, email, phone, categories, status, favorite, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		c.ID, c.OwnerID, c.Name, c.Email, c.Phone, categoriesJSON, string(c.Status), boolToInt(c.Favorite), toMillis(c.CreatedAt),
	); err != nil {
		return fmt.Errorf("put contact: %w", err)
	}

	if err := insertActivity(ctx, tx, activity.Entry{
		ID:          stamp.EntryID,
		UserID:      c.OwnerID,
		Action:      activity.ActionAdded,
		ContactName: c.Name,
		Timestamp:   stamp.Now,
	}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit contact + activity: %w", err)
	}
	return nil
}

// GetContact fetches one contact scoped to its owner. A contact belonging to
// another owner is reported as missing.
func (s *Store) GetContact(ctx context.Context, ownerID, contactID string) (contact.Contact, error) {
	if err := ctx.Err(); err != nil {
		return contact.Contact{}, err
	}
	if s == nil || s.sqlDB == nil {
		return contact.Contact{}, fmt.Errorf("storage is not configured")
	}
	if err := validateScope(ownerID, contactID); err != nil {
		return contact.Contact{}, err
	}

	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT "+contactColumns+" FROM contacts WHERE id = ? AND user_id = ?",
		contactID, ownerID,
	)
	c, err := scanContact(row)
	if err == sql.ErrNoRows {
		return contact.Contact{}, storage.ErrNotFound
	}
	if err != nil {
		return contact.Contact{}, fmt.Errorf("get contact: %w", err)
	}
	return c, nil
}

// ListContacts returns the owner's contacts in insertion order.
func (s *Store) ListContacts(ctx context.Context, ownerID string) ([]contact.Contact, error) {
	return s.SearchContacts(ctx, ownerID, storage.SearchParams{})
}

// SearchContacts filters and sorts the owner's contacts in SQL. The query
// substring-matches name or email case-insensitively.
func (s *Store) SearchContacts(ctx context.Context, ownerID string, params storage.SearchParams) ([]contact.Contact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, fmt.Errorf("owner id is required")
	}

	query := "SELECT " + contactColumns + " FROM contacts WHERE user_id = ?"
	args := []any{ownerID}

	if params.Query != "" {
		pattern := "%" + escapeLike(strings.ToLower(params.Query)) + "%"
		query += ` AND (LOWER(name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\')`
		args = append(args, pattern, pattern)
	}

	direction := "ASC"
	if params.Desc {
		direction = "DESC"
	}
	switch params.SortBy {
	case "name":
		query += " ORDER BY name COLLATE NOCASE " + direction + ", rowid ASC"
	case "created_at":
		query += " ORDER BY created_at " + direction + ", rowid ASC"
	default:
		query += " ORDER BY rowid ASC"
	}

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search contacts: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	contacts := []contact.Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contacts: %w", err)
	}
	return contacts, nil
}

// UpdateContact overwrites a contact row and records its "updated" activity
// entry in one transaction. Ownership-scoped like GetContact.
func (s *Store) UpdateContact(ctx context.Context, c contact.Contact, stamp storage.ActivityStamp) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if err := validateScope(c.OwnerID, c.ID); err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return err
	}
	categoriesJSON, err := encodeCategories(c.Categories)
	if err != nil {
		return err
	}

	tx, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := tx.ExecContext(ctx, `
UPDATE contacts
SET name = ?, email = ?, phone = ?, categories = ?, status = ?, favorite = ?
WHERE id = ? AND user_id = ?
`,
		c.Name, c.Email, c.Phone, categoriesJSON, string(c.Status), boolToInt(c.Favorite), c.ID, c.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("update contact: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update contact rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	if err := insertActivity(ctx, tx, activity.Entry{
		ID:          stamp.EntryID,
		UserID:      c.OwnerID,
		Action:      activity.ActionUpdated,
		ContactName: c.Name,
		Timestamp:   stamp.Now,
	}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit contact + activity: %w", err)
	}
	return nil
}

// DeleteContact removes a contact and records its "deleted" activity entry
// in one transaction. The snapshot name is read before the row goes away.
func (s *Store) DeleteContact(ctx context.Context, ownerID, contactID string, stamp storage.ActivityStamp) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if err := validateScope(ownerID, contactID); err != nil {
		return err
	}

	tx, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var name string
	err = tx.QueryRowContext(ctx,
		"SELECT name FROM contacts WHERE id = ? AND user_id = ?",
		contactID, ownerID,
	).Scan(&name)
	if err == sql.ErrNoRows {
		return storage.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get contact for delete: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM contacts WHERE id = ? AND user_id = ?",
		contactID, ownerID,
	); err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}

	if err := insertActivity(ctx, tx, activity.Entry{
		ID:          stamp.EntryID,
		UserID:      ownerID,
		Action:      activity.ActionDeleted,
		ContactName: name,
		Timestamp:   stamp.Now,
	}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete + activity: %w", err)
	}
	return nil
}

// SetContactStatus moves a contact to the given status and records the
// transition in one transaction. The activity entry carries the new status
// as its qualifier.
func (s *Store) SetContactStatus(ctx context.Context, ownerID, contactID string, status contact.Status, stamp storage.ActivityStamp) (contact.Contact, error) {
	if err := ctx.Err(); err != nil {
		return contact.Contact{}, err
	}
	if s == nil || s.sqlDB == nil {
		return contact.Contact{}, fmt.Errorf("storage is not configured")
	}
	if err := validateScope(ownerID, contactID); err != nil {
		return contact.Contact{}, err
	}
	if _, err := contact.ParseStatus(string(status)); err != nil {
		return contact.Contact{}, err
	}

	tx, err := s.begin(ctx)
	if err != nil {
		return contact.Contact{}, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := tx.ExecContext(ctx,
		"UPDATE contacts SET status = ? WHERE id = ? AND user_id = ?",
		string(status), contactID, ownerID,
	)
	if err != nil {
		return contact.Contact{}, fmt.Errorf("set contact status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return contact.Contact{}, fmt.Errorf("set contact status rows affected: %w", err)
	}
	if affected == 0 {
		return contact.Contact{}, storage.ErrNotFound
	}

	c, err := scanContact(tx.QueryRowContext(ctx,
		"SELECT "+contactColumns+" FROM contacts WHERE id = ? AND user_id = ?",
		contactID, ownerID,
	))
	if err != nil {
		return contact.Contact{}, fmt.Errorf("get contact after status change: %w", err)
	}

	if err := insertActivity(ctx, tx, activity.Entry{
		ID:          stamp.EntryID,
		UserID:      ownerID,
		Action:      activity.ActionSetStatus,
		ActionType:  string(status),
		ContactName: c.Name,
		Timestamp:   stamp.Now,
	}); err != nil {
		return contact.Contact{}, err
	}

	if err := tx.Commit(); err != nil {
		return contact.Contact{}, fmt.Errorf("commit status + activity: %w", err)
	}
	return c, nil
}

// ToggleContactFavorite flips the favorite flag inside a single write
// transaction, so two concurrent toggles serialize instead of both reading
// the same prior value.
func (s *Store) ToggleContactFavorite(ctx context.Context, ownerID, contactID string, stamp storage.ActivityStamp) (contact.Contact, error) {
	if err := ctx.Err(); err != nil {
		return contact.Contact{}, err
	}
	if s == nil || s.sqlDB == nil {
		return contact.Contact{}, fmt.Errorf("storage is not configured")
	}
	if err := validateScope(ownerID, contactID); err != nil {
		return contact.Contact{}, err
	}

	tx, err := s.begin(ctx)
	if err != nil {
		return contact.Contact{}, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// The flip happens in SQL so the write lock is taken before any read of
	// the prior value.
	result, err := tx.ExecContext(ctx,
		"UPDATE contacts SET favorite = NOT favorite WHERE id = ? AND user_id = ?",
		contactID, ownerID,
	)
	if err != nil {
		return contact.Contact{}, fmt.Errorf("toggle contact favorite: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return contact.Contact{}, fmt.Errorf("toggle contact favorite rows affected: %w", err)
	}
	if affected == 0 {
		return contact.Contact{}, storage.ErrNotFound
	}

	c, err := scanContact(tx.QueryRowContext(ctx,
		"SELECT "+contactColumns+" FROM contacts WHERE id = ? AND user_id = ?",
		contactID, ownerID,
	))
	if err != nil {
		return contact.Contact{}, fmt.Errorf("get contact after toggle: %w", err)
	}

	if err := insertActivity(ctx, tx, activity.Entry{
		ID:          stamp.EntryID,
		UserID:      ownerID,
		Action:      activity.ActionToggleFavorite,
		ActionType:  activity.FavoriteLabel(c.Favorite),
		ContactName: c.Name,
		Timestamp:   stamp.Now,
	}); err != nil {
		return contact.Contact{}, err
	}

	if err := tx.Commit(); err != nil {
		return contact.Contact{}, fmt.Errorf("commit toggle + activity: %w", err)
	}
	return c, nil
}

func boolToInt(value bool) int64 {
	if value {
		return 1
	}
	return 0
}
