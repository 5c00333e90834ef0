// Package auth implements account signup, login, opaque bearer tokens
// with rotation, and email verification. Tokens are random values
// handed to the client once; only their SHA-256 hash is persisted.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/noamseg/boxbee/internal/apperr"
	"github.com/noamseg/boxbee/internal/config"
	"github.com/noamseg/boxbee/internal/email"
	"github.com/noamseg/boxbee/internal/logging"
	"github.com/noamseg/boxbee/internal/store"
	"github.com/noamseg/boxbee/internal/types"
)

const minPasswordLen = 8

// Store is the persistence surface the service needs.
type Store interface {
	CreateUser(ctx context.Context, u *types.User) error
	GetUserByID(ctx context.Context, id string) (*types.User, error)
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)
	MarkEmailVerified(ctx context.Context, userID string) error
	PutToken(ctx context.Context, kind store.TokenKind, rec store.TokenRecord) error
	GetToken(ctx context.Context, kind store.TokenKind, tokenHash string) (*store.TokenRecord, error)
	DeleteToken(ctx context.Context, kind store.TokenKind, tokenHash string) error
	DeleteTokensForUser(ctx context.Context, kind store.TokenKind, userID string) error
}

// Service handles credentials and session tokens.
type Service struct {
	store  Store
	sender email.Sender
	cfg    config.AuthConfig
	now    func() time.Time
}

// NewService creates an auth service.
func NewService(st Store, sender email.Sender, cfg config.AuthConfig) *Service {
	return &Service{store: st, sender: sender, cfg: cfg, now: time.Now}
}

// WithClock overrides the service clock.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Session is a freshly issued token pair.
type Session struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// Signup registers a new account and returns the user with a session.
func (s *Service) Signup(ctx context.Context, emailAddr, password, name string) (*types.User, *Session, error) {
	var fields []apperr.FieldError
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	if _, err := mail.ParseAddress(emailAddr); err != nil {
		fields = append(fields, apperr.FieldError{Field: "email", Message: "must be a valid email address"})
	}
	if len(password) < minPasswordLen {
		fields = append(fields, apperr.FieldError{Field: "password", Message: fmt.Sprintf("must be at least %d characters", minPasswordLen)})
	}
	if strings.TrimSpace(name) == "" {
		fields = append(fields, apperr.FieldError{Field: "name", Message: "name is required"})
	}
	if len(fields) > 0 {
		return nil, nil, apperr.Validation("Validation failed", fields...)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, apperr.Internal("failed to hash password", err)
	}

	now := s.now().UTC()
	user := &types.User{
		ID:           uuid.NewString(),
		Email:        emailAddr,
		Name:         strings.TrimSpace(name),
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, nil, apperr.Conflict("User with this email already exists")
		}
		return nil, nil, apperr.Internal("failed to create user", err)
	}

	session, err := s.issueSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	logging.Auth("Signed up user %s", user.ID)
	return user, session, nil
}

// Login checks credentials and returns the user with a fresh session.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, emailAddr, password string) (*types.User, *Session, error) {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))

	user, err := s.store.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, apperr.Unauthorized("Invalid email or password")
		}
		return nil, nil, apperr.Internal("failed to load user", err)
	}
	if user.PasswordHash == "" {
		return nil, nil, apperr.Unauthorized("Invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, apperr.Unauthorized("Invalid email or password")
	}

	session, err := s.issueSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	logging.Auth("Logged in user %s", user.ID)
	return user, session, nil
}

// Me returns the account for a verified caller identity.
func (s *Service) Me(ctx context.Context, userID string) (*types.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Internal("failed to load user", err)
	}
	return user, nil
}

// Authenticate resolves a bearer token to a user id.
func (s *Service) Authenticate(ctx context.Context, token string) (string, error) {
	rec, err := s.lookupToken(ctx, store.TokenAccess, token)
	if err != nil {
		return "", err
	}
	return rec.UserID, nil
}

// Refresh rotates a refresh token: the old one is revoked and a new
// session issued. A stolen-then-reused token therefore fails.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, apperr.Validation("Validation failed",
			apperr.FieldError{Field: "refreshToken", Message: "refresh token is required"})
	}

	rec, err := s.lookupToken(ctx, store.TokenRefresh, refreshToken)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.GetUserByID(ctx, rec.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Internal("failed to load user", err)
	}

	if err := s.store.DeleteToken(ctx, store.TokenRefresh, hashToken(refreshToken)); err != nil {
		return nil, apperr.Internal("failed to rotate refresh token", err)
	}

	session, err := s.issueSession(ctx, rec.UserID)
	if err != nil {
		return nil, err
	}
	logging.Auth("Rotated refresh token for user %s", rec.UserID)
	return session, nil
}

// SendVerification issues a fresh verification token and emails it.
// Any previous tokens for the user are revoked first.
func (s *Service) SendVerification(ctx context.Context, userID string) error {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return apperr.Validation("Email already verified")
	}

	if err := s.store.DeleteTokensForUser(ctx, store.TokenVerification, userID); err != nil {
		return apperr.Internal("failed to revoke verification tokens", err)
	}

	token, err := s.issueToken(ctx, store.TokenVerification, userID, s.cfg.VerificationTTL)
	if err != nil {
		return err
	}

	if err := s.sender.SendVerification(ctx, user.Email, token); err != nil {
		return apperr.Internal("failed to send verification email", err)
	}
	logging.Auth("Sent verification email to user %s", userID)
	return nil
}

// Verify consumes a verification token and marks the email verified.
func (s *Service) Verify(ctx context.Context, token string) (*types.User, error) {
	if token == "" {
		return nil, apperr.Validation("Validation failed",
			apperr.FieldError{Field: "token", Message: "verification token is required"})
	}

	rec, err := s.store.GetToken(ctx, store.TokenVerification, hashToken(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.Validation("Invalid verification token")
		}
		return nil, apperr.Internal("failed to load verification token", err)
	}
	if rec.ExpiresAt.Before(s.now()) {
		_ = s.store.DeleteToken(ctx, store.TokenVerification, rec.TokenHash)
		return nil, apperr.Validation("Verification token has expired")
	}

	if err := s.store.MarkEmailVerified(ctx, rec.UserID); err != nil {
		return nil, apperr.Internal("failed to mark email verified", err)
	}
	if err := s.store.DeleteToken(ctx, store.TokenVerification, rec.TokenHash); err != nil {
		return nil, apperr.Internal("failed to consume verification token", err)
	}

	logging.Auth("Verified email for user %s", rec.UserID)
	return s.Me(ctx, rec.UserID)
}

// Logout revokes every session token the user holds.
func (s *Service) Logout(ctx context.Context, userID string) error {
	if err := s.store.DeleteTokensForUser(ctx, store.TokenAccess, userID); err != nil {
		return apperr.Internal("failed to revoke access tokens", err)
	}
	if err := s.store.DeleteTokensForUser(ctx, store.TokenRefresh, userID); err != nil {
		return apperr.Internal("failed to revoke refresh tokens", err)
	}
	return nil
}

func (s *Service) issueSession(ctx context.Context, userID string) (*Session, error) {
	access, err := s.issueToken(ctx, store.TokenAccess, userID, s.cfg.AccessTokenTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.issueToken(ctx, store.TokenRefresh, userID, s.cfg.RefreshTokenTTL)
	if err != nil {
		return nil, err
	}
	return &Session{Token: access, RefreshToken: refresh}, nil
}

func (s *Service) issueToken(ctx context.Context, kind store.TokenKind, userID string, ttl time.Duration) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", apperr.Internal("failed to generate token", err)
	}
	now := s.now().UTC()
	err = s.store.PutToken(ctx, kind, store.TokenRecord{
		TokenHash: hashToken(token),
		UserID:    userID,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	})
	if err != nil {
		return "", apperr.Internal("failed to store token", err)
	}
	return token, nil
}

func (s *Service) lookupToken(ctx context.Context, kind store.TokenKind, token string) (*store.TokenRecord, error) {
	rec, err := s.store.GetToken(ctx, kind, hashToken(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.Unauthorized("Invalid or expired token")
		}
		return nil, apperr.Internal("failed to load token", err)
	}
	if rec.ExpiresAt.Before(s.now()) {
		_ = s.store.DeleteToken(ctx, kind, rec.TokenHash)
		return nil, apperr.Unauthorized("Invalid or expired token")
	}
	return rec, nil
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
