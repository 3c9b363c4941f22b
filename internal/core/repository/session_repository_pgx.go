package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emberwell/practice-service/internal/core/domain"
)

// PgxTokenRepository implements domain.TokenRepository using pgxpool.
type PgxTokenRepository struct {
	pool *pgxpool.Pool
}

// NewTokenRepository creates a new PgxTokenRepository.
func NewTokenRepository(pool *pgxpool.Pool) *PgxTokenRepository {
	return &PgxTokenRepository{pool: pool}
}

// Create inserts a new session token for the given user.
func (r *PgxTokenRepository) Create(ctx context.Context, userID int, token string, expiresAt time.Time) error {
	query := `INSERT INTO session_tokens (user_id, token, expires_at) VALUES ($1, $2, $3)`
	_, err := r.pool.Exec(ctx, query, userID, token, expiresAt)
	return err
}

// GetUserByToken looks up the token and returns the associated user data
// together with the token expiry time.
// Returns (nil, nil) when the token does not match any row.
func (r *PgxTokenRepository) GetUserByToken(ctx context.Context, token string) (*domain.TokenRow, error) {
	query := `
		SELECT u.id, u.email, u.name, t.expires_at
		FROM session_tokens t
		JOIN users u ON t.user_id = u.id
		WHERE t.token = $1
	`

	var row domain.TokenRow
	err := r.pool.QueryRow(ctx, query, token).Scan(
		&row.UserID, &row.Email, &row.Name, &row.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &row, nil
}

// Delete removes the token row if present.
func (r *PgxTokenRepository) Delete(ctx context.Context, token string) error {
	query := `DELETE FROM session_tokens WHERE token = $1`
	_, err := r.pool.Exec(ctx, query, token)
	return err
}

// PgxAdminSessionRepository implements domain.AdminSessionRepository using pgxpool.
type PgxAdminSessionRepository struct {
	pool *pgxpool.Pool
}

// NewAdminSessionRepository creates a new PgxAdminSessionRepository.
func NewAdminSessionRepository(pool *pgxpool.Pool) *PgxAdminSessionRepository {
	return &PgxAdminSessionRepository{pool: pool}
}

// Create inserts a new admin session.
func (r *PgxAdminSessionRepository) Create(ctx context.Context, token string, createdAt, expiresAt time.Time) error {
	query := `
		INSERT INTO admin_sessions (token, created_at, expires_at, last_activity_at)
		VALUES ($1, $2, $3, $2)
	`
	_, err := r.pool.Exec(ctx, query, token, createdAt, expiresAt)
	return err
}

// GetByToken returns the admin session for the given token.
// Returns (nil, nil) when the token does not match any row.
func (r *PgxAdminSessionRepository) GetByToken(ctx context.Context, token string) (*domain.AdminSessionRow, error) {
	query := `
		SELECT token, created_at, expires_at, last_activity_at
		FROM admin_sessions
		WHERE token = $1
	`

	var row domain.AdminSessionRow
	err := r.pool.QueryRow(ctx, query, token).Scan(
		&row.Token, &row.CreatedAt, &row.ExpiresAt, &row.LastActivityAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &row, nil
}

// Touch sets last_activity_at for the given session.
func (r *PgxAdminSessionRepository) Touch(ctx context.Context, token string, at time.Time) error {
	query := `UPDATE admin_sessions SET last_activity_at = $2 WHERE token = $1`
	_, err := r.pool.Exec(ctx, query, token, at)
	return err
}

// Delete removes the session row if present.
func (r *PgxAdminSessionRepository) Delete(ctx context.Context, token string) error {
	query := `DELETE FROM admin_sessions WHERE token = $1`
	_, err := r.pool.Exec(ctx, query, token)
	return err
}
