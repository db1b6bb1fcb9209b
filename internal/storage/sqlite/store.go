// Package sqlite implements directory persistence over SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/contactshub/server/internal/platform/storage/sqlitemigrate"
	"github.com/contactshub/server/internal/storage"
	"github.com/contactshub/server/internal/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// toMillis normalizes timestamps into millisecond precision for storage.
func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// fromMillis restores millisecond precision and keeps UTC normalization.
func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Store implements directory persistence over SQLite.
//
// A single SQLite file backs all durable state so every contact mutation can
// share one transaction with its activity-log append.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a SQLite store at the provided path and applies bundled
// migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// SQLite allows a single writer; one pooled connection keeps concurrent
	// mutations serialized instead of surfacing SQLITE_BUSY.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}

	if err := store.runMigrations(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return store, nil
}

// Close releases the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// runMigrations applies embedded DDL snapshots for known schema versions.
func (s *Store) runMigrations() error {
	return sqlitemigrate.ApplyMigrations(s.sqlDB, migrations.FS)
}

// isUniqueViolation detects a UNIQUE constraint failure on the given column.
func isUniqueViolation(err error, column string) bool {
	if err == nil {
		return false
	}
	message := err.Error()
	return strings.Contains(message, "UNIQUE constraint failed") && strings.Contains(message, column)
}

// begin starts a transaction after surfacing early context cancellation.
func (s *Store) begin(ctx context.Context) (*sql.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("start transaction: %w", err)
	}
	return tx, nil
}

// GetStatistics returns aggregate counts across directory data.
func (s *Store) GetStatistics(ctx context.Context) (storage.Statistics, error) {
	if err := ctx.Err(); err != nil {
		return storage.Statistics{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Statistics{}, fmt.Errorf("storage is not configured")
	}

	var stats storage.Statistics
	if err := s.sqlDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&stats.UserCount); err != nil {
		return storage.Statistics{}, fmt.Errorf("count users: %w", err)
	}
	if err := s.sqlDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM contacts").Scan(&stats.ContactCount); err != nil {
		return storage.Statistics{}, fmt.Errorf("count contacts: %w", err)
	}
	return stats, nil
}

var (
	_ storage.UserStore       = (*Store)(nil)
	_ storage.ContactStore    = (*Store)(nil)
	_ storage.ActivityStore   = (*Store)(nil)
	_ storage.StatisticsStore = (*Store)(nil)
)
