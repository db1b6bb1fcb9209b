package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/contactshub/server/internal/auth/user"
	"github.com/contactshub/server/internal/storage"
)

const userColumns = "id, name, email, password_hash, oauth_provider, oauth_id, created_at"

func scanUser(row *sql.Row) (user.User, error) {
	var u user.User
	var createdAt int64
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.OAuthProvider, &u.OAuthID, &createdAt); err != nil {
		return user.User{}, err
	}
	u.CreatedAt = fromMillis(createdAt)
	return u, nil
}

// PutUser persists an account record. The canonical-email unique index
// rejects duplicates racing past the service-level check.
func (s *Store) PutUser(ctx context.Context, u user.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(u.ID) == "" {
		return fmt.Errorf("user id is required")
	}
	if err := u.Validate(); err != nil {
		return err
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO users (id, name, email, password_hash, oauth_provider, oauth_id, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`,
		u.ID,
		u.Name,
		u.Email,
		u.PasswordHash,
		u.OAuthProvider,
		u.OAuthID,
		toMillis(u.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err, "users.email") {
			return storage.ErrEmailInUse
		}
		return fmt.Errorf("put user: %w", err)
	}
	return nil
}

// GetUser fetches an account by id.
func (s *Store) GetUser(ctx context.Context, userID string) (user.User, error) {
	if err := ctx.Err(); err != nil {
		return user.User{}, err
	}
	if s == nil || s.sqlDB == nil {
		return user.User{}, fmt.Errorf("storage is not configured")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return user.User{}, storage.ErrNotFound
	}

	row := s.sqlDB.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", userID)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return user.User{}, storage.ErrNotFound
	}
	if err != nil {
		return user.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetUserByEmail fetches an account by canonical email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	if err := ctx.Err(); err != nil {
		return user.User{}, err
	}
	if s == nil || s.sqlDB == nil {
		return user.User{}, fmt.Errorf("storage is not configured")
	}
	email = user.CanonicalEmail(email)
	if email == "" {
		return user.User{}, storage.ErrNotFound
	}

	row := s.sqlDB.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return user.User{}, storage.ErrNotFound
	}
	if err != nil {
		return user.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// GetUserByFederatedIdentity fetches an account by its provider identity.
func (s *Store) GetUserByFederatedIdentity(ctx context.Context, provider, externalID string) (user.User, error) {
	if err := ctx.Err(); err != nil {
		return user.User{}, err
	}
	if s == nil || s.sqlDB == nil {
		return user.User{}, fmt.Errorf("storage is not configured")
	}
	provider = strings.TrimSpace(provider)
	externalID = strings.TrimSpace(externalID)
	if provider == "" || externalID == "" {
		return user.User{}, storage.ErrNotFound
	}

	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE oauth_provider = ? AND oauth_id = ?",
		provider, externalID,
	)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return user.User{}, storage.ErrNotFound
	}
	if err != nil {
		return user.User{}, fmt.Errorf("get user by federated identity: %w", err)
	}
	return u, nil
}
