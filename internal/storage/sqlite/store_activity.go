package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/contactshub/server/internal/activity"
)

// insertActivity appends one audit entry inside the caller's transaction.
// There is deliberately no code path that updates or deletes these rows.
func insertActivity(ctx context.Context, tx *sql.Tx, entry activity.Entry) error {
	if strings.TrimSpace(entry.ID) == "" {
		return fmt.Errorf("activity entry id is required")
	}
	if strings.TrimSpace(entry.UserID) == "" {
		return fmt.Errorf("activity user id is required")
	}
	if entry.Action == "" {
		return fmt.Errorf("activity action is required")
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO activity_log (id, user_id, action, action_type, contact_name, timestamp)
VALUES (?, ?, ?, ?, ?, ?)
`,
		entry.ID,
		entry.UserID,
		string(entry.Action),
		entry.ActionType,
		entry.ContactName,
		toMillis(entry.Timestamp),
	); err != nil {
		return fmt.Errorf("put activity entry: %w", err)
	}
	return nil
}

// ListActivity returns the user's audit trail ordered by timestamp, then
// insertion order for entries sharing a timestamp.
func (s *Store) ListActivity(ctx context.Context, userID string) ([]activity.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, user_id, action, action_type, contact_name, timestamp
FROM activity_log
WHERE user_id = ?
ORDER BY timestamp ASC, rowid ASC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	entries := []activity.Entry{}
	for rows.Next() {
		var entry activity.Entry
		var action string
		var timestamp int64
		if err := rows.Scan(&entry.ID, &entry.UserID, &action, &entry.ActionType, &entry.ContactName, &timestamp); err != nil {
			return nil, fmt.Errorf("scan activity entry: %w", err)
		}
		entry.Action = activity.Action(action)
		entry.Timestamp = fromMillis(timestamp)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity entries: %w", err)
	}
	return entries, nil
}
