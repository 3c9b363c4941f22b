package domain

import (
	"context"
	"time"
)

// UserRow represents a user record returned from the database.
// It includes the password hash so the Logic layer can verify credentials,
// and the denormalized practice totals maintained by the session recorder.
type UserRow struct {
	ID            int
	Email         string
	Name          string
	Phone         *string
	Gender        *string
	PasswordHash  string
	TotalSessions int
	TotalDuration int
	LastLogin     *time.Time
}

// NewUser carries the fields needed to insert a user at registration.
type NewUser struct {
	Email        string
	Name         string
	Phone        *string
	Gender       *string
	PasswordHash string
}

// UserRepository defines the data-access contract for user operations.
// Implementations live in internal/core/repository (Core layer).
// The Logic layer depends on this interface only — never on SQL or pgx directly.
type UserRepository interface {
	// GetByEmail returns the user matching the given email.
	// Returns (nil, nil) when no user is found.
	GetByEmail(ctx context.Context, email string) (*UserRow, error)

	// GetByID returns the user with the given ID, including the
	// denormalized totals. Returns (nil, nil) when no user is found.
	GetByID(ctx context.Context, userID int) (*UserRow, error)

	// ExistsByEmail returns true when a user with the given email
	// already exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Create inserts a new user and returns the generated user ID.
	Create(ctx context.Context, u NewUser) (int, error)

	// UpdateLastLogin sets the last_login timestamp to now for the given user.
	UpdateLastLogin(ctx context.Context, userID int) error
}
