package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/noamseg/boxbee/internal/logging"
)

// TokenRecord is a stored token reference. Only the hash of the opaque
// token value ever touches the database.
type TokenRecord struct {
	TokenHash string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Token tables share a shape; the kind selects which one an operation
// touches.
type TokenKind string

const (
	TokenAccess       TokenKind = "access_tokens"
	TokenRefresh      TokenKind = "refresh_tokens"
	TokenVerification TokenKind = "email_verification_tokens"
)

// PutToken stores a token record, replacing any record with the same hash.
func (s *Store) PutToken(ctx context.Context, kind TokenKind, rec TokenRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO `+string(kind)+` (token_hash, user_id, expires_at, created_at)
		VALUES (?, ?, ?, ?)`,
		rec.TokenHash, rec.UserID, rec.ExpiresAt.UTC(), rec.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("put %s token: %w", kind, err)
	}
	return nil
}

// GetToken fetches a token record by hash. Returns ErrNotFound when
// absent; expiry is the caller's concern.
func (s *Store) GetToken(ctx context.Context, kind TokenKind, tokenHash string) (*TokenRecord, error) {
	var rec TokenRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT token_hash, user_id, expires_at, created_at
		FROM `+string(kind)+` WHERE token_hash = ?`, tokenHash,
	).Scan(&rec.TokenHash, &rec.UserID, &rec.ExpiresAt, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s token: %w", kind, err)
	}
	return &rec, nil
}

// DeleteToken removes a single token record. Missing hashes are not an
// error; revocation is idempotent.
func (s *Store) DeleteToken(ctx context.Context, kind TokenKind, tokenHash string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM `+string(kind)+` WHERE token_hash = ?`, tokenHash)
	if err != nil {
		return fmt.Errorf("delete %s token: %w", kind, err)
	}
	return nil
}

// DeleteTokensForUser revokes every token of a kind held by a user.
func (s *Store) DeleteTokensForUser(ctx context.Context, kind TokenKind, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM `+string(kind)+` WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("delete %s tokens for user: %w", kind, err)
	}
	return nil
}

// PurgeExpiredTokens drops expired rows from both token tables.
func (s *Store) PurgeExpiredTokens(ctx context.Context, now time.Time) error {
	for _, kind := range []TokenKind{TokenAccess, TokenRefresh, TokenVerification} {
		res, err := s.db.ExecContext(ctx,
			`DELETE FROM `+string(kind)+` WHERE expires_at < ?`, now.UTC())
		if err != nil {
			return fmt.Errorf("purge %s: %w", kind, err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			logging.Store("Purged %d expired rows from %s", n, kind)
		}
	}
	return nil
}
