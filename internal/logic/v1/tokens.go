package v1

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/emberwell/practice-service/internal/core/domain"
	"github.com/emberwell/practice-service/middleware"
)

// TokenStore issues, verifies, and revokes opaque bearer tokens.
//
// Tokens are 32 bytes of CSPRNG output, hex-encoded, and are never renewed
// in place: expiry is checked lazily at verification time, and a fresh
// login always mints a fresh token. Multiple valid tokens per identity may
// coexist; issuing does not invalidate earlier ones.
type TokenStore struct {
	tokens domain.TokenRepository
	admins domain.AdminSessionRepository

	userTTL  time.Duration
	adminTTL time.Duration

	// now is swapped out by tests.
	now func() time.Time
}

// NewTokenStore creates a TokenStore with the given repositories and TTLs.
func NewTokenStore(tokens domain.TokenRepository, admins domain.AdminSessionRepository, userTTL, adminTTL time.Duration) *TokenStore {
	return &TokenStore{
		tokens:   tokens,
		admins:   admins,
		userTTL:  userTTL,
		adminTTL: adminTTL,
		now:      time.Now,
	}
}

// generateToken returns 64 hex characters of cryptographically secure
// random material.
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read token material: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Issue mints a new session token for the given user.
// Prior tokens for the same user remain valid.
func (s *TokenStore) Issue(ctx context.Context, userID int) (string, time.Time, error) {
	ctx, span := middleware.StartSpan(ctx, "token.issue", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int("user.id", userID),
	))
	defer span.End()

	token, err := generateToken()
	if err != nil {
		span.RecordError(err)
		return "", time.Time{}, err
	}

	expiresAt := s.now().Add(s.userTTL)
	if err := s.tokens.Create(ctx, userID, token, expiresAt); err != nil {
		span.RecordError(err)
		return "", time.Time{}, fmt.Errorf("persist token: %w", err)
	}

	return token, expiresAt, nil
}

// IssueAdmin mints a new admin session token.
func (s *TokenStore) IssueAdmin(ctx context.Context) (string, time.Time, error) {
	ctx, span := middleware.StartSpan(ctx, "token.issue_admin", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	token, err := generateToken()
	if err != nil {
		span.RecordError(err)
		return "", time.Time{}, err
	}

	now := s.now()
	expiresAt := now.Add(s.adminTTL)
	if err := s.admins.Create(ctx, token, now, expiresAt); err != nil {
		span.RecordError(err)
		return "", time.Time{}, fmt.Errorf("persist admin session: %w", err)
	}

	return token, expiresAt, nil
}

// Verify resolves a user token to an identity.
// An unknown token and an expired token both come back as
// ErrUnauthenticated; callers cannot tell the two apart.
func (s *TokenStore) Verify(ctx context.Context, token string) (domain.Identity, error) {
	ctx, span := middleware.StartSpan(ctx, "token.verify", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	row, err := s.tokens.GetUserByToken(ctx, token)
	if err != nil {
		span.RecordError(err)
		return domain.Identity{}, fmt.Errorf("query token: %w", err)
	}
	if row == nil || !s.now().Before(row.ExpiresAt) {
		span.SetAttributes(attribute.Bool("token.valid", false))
		return domain.Identity{}, fmt.Errorf("verify token: %w", ErrUnauthenticated)
	}

	span.SetAttributes(
		attribute.Bool("token.valid", true),
		attribute.Int("user.id", row.UserID),
	)

	return domain.Identity{
		UserID: row.UserID,
		Email:  row.Email,
		Name:   row.Name,
		Role:   domain.RoleUser,
	}, nil
}

// VerifyAdmin resolves an admin token to an identity and refreshes the
// session's last-activity timestamp. The touch is skipped for expired
// sessions and is best-effort for valid ones.
func (s *TokenStore) VerifyAdmin(ctx context.Context, token string) (domain.Identity, error) {
	ctx, span := middleware.StartSpan(ctx, "token.verify_admin", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	row, err := s.admins.GetByToken(ctx, token)
	if err != nil {
		span.RecordError(err)
		return domain.Identity{}, fmt.Errorf("query admin session: %w", err)
	}
	if row == nil || !s.now().Before(row.ExpiresAt) {
		span.SetAttributes(attribute.Bool("token.valid", false))
		return domain.Identity{}, fmt.Errorf("verify admin token: %w", ErrUnauthenticated)
	}

	if touchErr := s.admins.Touch(ctx, token, s.now()); touchErr != nil {
		span.RecordError(fmt.Errorf("touch admin session: %w", touchErr))
	}

	span.SetAttributes(attribute.Bool("token.valid", true))

	return domain.Identity{Role: domain.RoleAdmin}, nil
}

// Revoke deletes a user token. Revoking an unknown or already-revoked
// token is a silent no-op.
func (s *TokenStore) Revoke(ctx context.Context, token string) error {
	ctx, span := middleware.StartSpan(ctx, "token.revoke", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	if err := s.tokens.Delete(ctx, token); err != nil {
		span.RecordError(err)
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

// RevokeAdmin deletes an admin session. Idempotent like Revoke.
func (s *TokenStore) RevokeAdmin(ctx context.Context, token string) error {
	ctx, span := middleware.StartSpan(ctx, "token.revoke_admin", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	if err := s.admins.Delete(ctx, token); err != nil {
		span.RecordError(err)
		return fmt.Errorf("delete admin session: %w", err)
	}
	return nil
}
