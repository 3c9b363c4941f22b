package domain

import (
	"context"
	"time"
)

// PracticeSessionRow represents a completed practice session as stored.
// PersonalBest is decided once at creation and never updated.
type PracticeSessionRow struct {
	ID           string
	UserID       int
	Duration     int
	Temperature  *float64
	Notes        *string
	Mood         *string
	Rating       *int
	CompletedAt  time.Time
	PauseCount   int
	PersonalBest bool
}

// PracticeRepository defines the data-access contract for practice sessions.
//
// CreateWithTotals and DeleteWithTotals pair the session row mutation with
// the owner's total_sessions/total_duration update inside one transaction,
// so the counters can never drift from the rows under concurrent calls.
type PracticeRepository interface {
	// CreateWithTotals inserts the session row and increments the owner's
	// totals by 1 and row.Duration, atomically.
	CreateWithTotals(ctx context.Context, row *PracticeSessionRow) error

	// GetByID returns the session with the given ID.
	// Returns (nil, nil) when no session is found.
	GetByID(ctx context.Context, sessionID string) (*PracticeSessionRow, error)

	// DeleteWithTotals deletes the session owned by userID and decrements
	// the owner's totals by 1 and duration, clamped at zero, atomically.
	// Returns false when no matching row was deleted (totals untouched).
	DeleteWithTotals(ctx context.Context, userID int, sessionID string, duration int) (bool, error)

	// ListByUser returns all sessions for the user, newest first.
	ListByUser(ctx context.Context, userID int) ([]PracticeSessionRow, error)

	// ListDurations returns the durations of all sessions for the user.
	ListDurations(ctx context.Context, userID int) ([]int, error)
}
