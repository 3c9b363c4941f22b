package v1

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/emberwell/practice-service/internal/core/domain"
	"github.com/emberwell/practice-service/middleware"
)

// maxStreakDays bounds the backward day scan. The reported streak never
// exceeds this; a deliberate cap, not a bug to extend.
const maxStreakDays = 30

// recentWindow is the trailing window for the recent-sessions count.
const recentWindow = 7 * 24 * time.Hour

// StatsAggregator derives per-user practice statistics from the full
// session history. It is a read-only view over the rows the
// SessionRecorder writes; the total counters come from the user row.
type StatsAggregator struct {
	users     domain.UserRepository
	practices domain.PracticeRepository

	// now is swapped out by tests.
	now func() time.Time
}

// NewStatsAggregator creates a StatsAggregator over the given repositories.
func NewStatsAggregator(users domain.UserRepository, practices domain.PracticeRepository) *StatsAggregator {
	return &StatsAggregator{users: users, practices: practices, now: time.Now}
}

// GetStats computes the aggregate statistics payload for the identity.
func (a *StatsAggregator) GetStats(ctx context.Context, identity domain.Identity) (*domain.StatsPayload, error) {
	ctx, span := middleware.StartSpan(ctx, "stats.get", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int("user.id", identity.UserID),
	))
	defer span.End()

	user, err := a.users.GetByID(ctx, identity.UserID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("stats for user %d: %w", identity.UserID, ErrUserNotFound)
	}

	rows, err := a.practices.ListByUser(ctx, identity.UserID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list practice sessions: %w", err)
	}

	now := a.now()

	payload := &domain.StatsPayload{
		TotalSessions: user.TotalSessions,
		TotalDuration: user.TotalDuration,
	}

	var sum int
	completions := make([]time.Time, 0, len(rows))
	for _, row := range rows {
		sum += row.Duration
		if row.Duration > payload.LongestSession {
			payload.LongestSession = row.Duration
		}
		if now.Sub(row.CompletedAt) <= recentWindow && !row.CompletedAt.After(now) {
			payload.RecentSessionsCount++
		}
		if row.PersonalBest {
			payload.PersonalBestsCount++
		}
		completions = append(completions, row.CompletedAt)
	}

	if len(rows) > 0 {
		// Arithmetic mean rounded half-up, integer seconds.
		payload.AverageSession = (sum + len(rows)/2) / len(rows)
	}

	payload.CurrentStreak = currentStreak(now, completions)

	span.SetAttributes(
		attribute.Int("stats.total_sessions", payload.TotalSessions),
		attribute.Int("stats.current_streak", payload.CurrentStreak),
	)

	return payload, nil
}

// currentStreak counts consecutive practice days scanning backward from
// today's local midnight, capped at maxStreakDays.
//
// A day counts when at least one completion falls within
// [midnight, next midnight). The first gap ends the scan, except that a
// gap on day zero (today) is skipped: a user who has not practiced yet
// today keeps yesterday's streak.
func currentStreak(now time.Time, completions []time.Time) int {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	streak := 0
	for day := 0; day < maxStreakDays; day++ {
		dayEnd := dayStart.AddDate(0, 0, 1)

		counted := false
		for _, c := range completions {
			if !c.Before(dayStart) && c.Before(dayEnd) {
				counted = true
				break
			}
		}

		if counted {
			streak++
		} else if day > 0 {
			break
		}

		dayStart = dayStart.AddDate(0, 0, -1)
	}

	return streak
}
