package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/noamseg/boxbee/internal/logging"
	"github.com/noamseg/boxbee/internal/types"
)

const userColumns = `id, email, name, password_hash, email_verified, created_at, updated_at`

// CreateUser inserts a user and their default settings row in one
// transaction so a signup never leaves a user without settings.
// Returns ErrDuplicate when the email is already registered.
func (s *Store) CreateUser(ctx context.Context, u *types.User) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create user: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Name, u.PasswordHash, u.EmailVerified,
		u.CreatedAt.UTC(), u.UpdatedAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}

	settings := types.DefaultSettings(u.ID)
	settings.ID = uuid.NewString()
	settings.CreatedAt = u.CreatedAt
	settings.UpdatedAt = u.CreatedAt
	if err := insertSettings(ctx, tx, &settings); err != nil {
		return fmt.Errorf("insert default settings: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create user: %w", err)
	}
	logging.Store("Created user %s (%s)", u.ID, u.Email)
	return nil
}

// GetUserByID fetches a user by id. Returns ErrNotFound when absent.
func (s *Store) GetUserByID(ctx context.Context, id string) (*types.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

// GetUserByEmail fetches a user by email. Returns ErrNotFound when absent.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (s *Store) getUser(ctx context.Context, query string, arg interface{}) (*types.User, error) {
	var u types.User
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.EmailVerified,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// MarkEmailVerified flips the verified flag. Idempotent.
func (s *Store) MarkEmailVerified(ctx context.Context, userID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET email_verified = 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		userID)
	if err != nil {
		return fmt.Errorf("mark email verified: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark email verified: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// isUniqueViolation matches the sqlite unique-constraint error without
// depending on driver error codes.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
