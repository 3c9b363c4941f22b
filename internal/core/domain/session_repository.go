package domain

import (
	"context"
	"time"
)

// TokenRow represents a user session token joined with its owner,
// returned by token lookup queries.
type TokenRow struct {
	UserID    int
	Email     string
	Name      string
	ExpiresAt time.Time
}

// AdminSessionRow represents an admin session. It is not bound to a
// user row; the studio admin is authenticated from configuration.
type AdminSessionRow struct {
	Token          string
	CreatedAt      time.Time
	ExpiresAt      time.Time
	LastActivityAt time.Time
}

// TokenRepository defines the data-access contract for user session tokens.
// Implementations live in internal/core/repository (Core layer).
type TokenRepository interface {
	// Create inserts a new session token for the given user.
	// Existing tokens for the same user are left untouched; multiple
	// concurrently valid tokens are permitted.
	Create(ctx context.Context, userID int, token string, expiresAt time.Time) error

	// GetUserByToken looks up the token and returns the associated
	// user data together with the token expiry time.
	// Returns (nil, nil) when the token does not match any row.
	GetUserByToken(ctx context.Context, token string) (*TokenRow, error)

	// Delete removes the token row if present. Deleting an unknown
	// token is a no-op.
	Delete(ctx context.Context, token string) error
}

// AdminSessionRepository defines the data-access contract for admin sessions.
type AdminSessionRepository interface {
	// Create inserts a new admin session.
	Create(ctx context.Context, token string, createdAt, expiresAt time.Time) error

	// GetByToken returns the admin session for the given token.
	// Returns (nil, nil) when the token does not match any row.
	GetByToken(ctx context.Context, token string) (*AdminSessionRow, error)

	// Touch sets last_activity_at for the given session.
	Touch(ctx context.Context, token string, at time.Time) error

	// Delete removes the session row if present.
	Delete(ctx context.Context, token string) error
}
