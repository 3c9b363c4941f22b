package v1

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/emberwell/practice-service/internal/core/domain"
	"github.com/emberwell/practice-service/middleware"
)

// SessionRecorder records completed practice sessions for verified
// identities and keeps the owner's denormalized totals in step with the
// session rows.
type SessionRecorder struct {
	practices domain.PracticeRepository

	// now is swapped out by tests.
	now func() time.Time
}

// NewSessionRecorder creates a SessionRecorder over the given repository.
func NewSessionRecorder(practices domain.PracticeRepository) *SessionRecorder {
	return &SessionRecorder{practices: practices, now: time.Now}
}

// Save validates and persists a completed practice session.
//
// The new session is a personal best when its duration strictly exceeds
// every prior duration for the user; a tie never qualifies. The row insert
// and the owner's counter increment happen in one repository transaction,
// so a failure leaves no partial state.
func (r *SessionRecorder) Save(ctx context.Context, identity domain.Identity, duration *int, meta domain.SessionMetadata) (*domain.RecordSessionResponse, error) {
	ctx, span := middleware.StartSpan(ctx, "recorder.save", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int("user.id", identity.UserID),
	))
	defer span.End()

	if duration == nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		return nil, fmt.Errorf("duration is required: %w", ErrValidation)
	}
	if *duration < 0 {
		span.SetAttributes(attribute.Bool("request.valid", false))
		return nil, fmt.Errorf("duration must be non-negative, got %d: %w", *duration, ErrValidation)
	}
	if meta.Rating != nil && (*meta.Rating < 1 || *meta.Rating > 5) {
		span.SetAttributes(attribute.Bool("request.valid", false))
		return nil, fmt.Errorf("rating must be between 1 and 5, got %d: %w", *meta.Rating, ErrValidation)
	}
	if meta.PauseCount < 0 {
		span.SetAttributes(attribute.Bool("request.valid", false))
		return nil, fmt.Errorf("pause_count must be non-negative, got %d: %w", meta.PauseCount, ErrValidation)
	}

	// Scan all prior durations; strict greater-than decides the best.
	// A user's very first session has nothing to beat and is not a best,
	// and a tie never qualifies.
	prior, err := r.practices.ListDurations(ctx, identity.UserID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list prior durations: %w", err)
	}
	personalBest := len(prior) > 0
	for _, d := range prior {
		if *duration <= d {
			personalBest = false
			break
		}
	}

	row := &domain.PracticeSessionRow{
		ID:           ulid.Make().String(),
		UserID:       identity.UserID,
		Duration:     *duration,
		Temperature:  meta.Temperature,
		Notes:        meta.Notes,
		Mood:         meta.Mood,
		Rating:       meta.Rating,
		CompletedAt:  r.now(),
		PauseCount:   meta.PauseCount,
		PersonalBest: personalBest,
	}

	if err := r.practices.CreateWithTotals(ctx, row); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("persist practice session: %w", err)
	}

	span.SetAttributes(
		attribute.String("session.id", row.ID),
		attribute.Bool("session.personal_best", personalBest),
	)
	span.AddEvent("session.recorded")

	return &domain.RecordSessionResponse{
		SessionID:    row.ID,
		PersonalBest: personalBest,
	}, nil
}

// Delete removes a practice session owned by the identity.
//
// Ownership is checked before any mutation: a missing session yields
// ErrSessionNotFound and a session owned by someone else yields ErrNotOwner.
// On success the owner's totals are decremented, clamped at zero, in the
// same transaction as the row delete.
func (r *SessionRecorder) Delete(ctx context.Context, identity domain.Identity, sessionID string) error {
	ctx, span := middleware.StartSpan(ctx, "recorder.delete", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int("user.id", identity.UserID),
		attribute.String("session.id", sessionID),
	))
	defer span.End()

	row, err := r.practices.GetByID(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("query practice session: %w", err)
	}
	if row == nil {
		return fmt.Errorf("delete session %q: %w", sessionID, ErrSessionNotFound)
	}
	if row.UserID != identity.UserID {
		span.AddEvent("authorization.failed")
		return fmt.Errorf("delete session %q: %w", sessionID, ErrNotOwner)
	}

	deleted, err := r.practices.DeleteWithTotals(ctx, identity.UserID, sessionID, row.Duration)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("delete practice session: %w", err)
	}
	if !deleted {
		// Row vanished after the ownership check.
		return fmt.Errorf("delete session %q: %w", sessionID, ErrSessionNotFound)
	}

	span.AddEvent("session.deleted")
	return nil
}

// List returns the identity's practice sessions, newest first.
func (r *SessionRecorder) List(ctx context.Context, identity domain.Identity) ([]domain.PracticeSessionView, error) {
	ctx, span := middleware.StartSpan(ctx, "recorder.list", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int("user.id", identity.UserID),
	))
	defer span.End()

	rows, err := r.practices.ListByUser(ctx, identity.UserID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list practice sessions: %w", err)
	}

	views := make([]domain.PracticeSessionView, 0, len(rows))
	for _, row := range rows {
		views = append(views, domain.PracticeSessionView{
			ID:           row.ID,
			Duration:     row.Duration,
			Temperature:  row.Temperature,
			Notes:        row.Notes,
			Mood:         row.Mood,
			Rating:       row.Rating,
			CompletedAt:  row.CompletedAt,
			PauseCount:   row.PauseCount,
			PersonalBest: row.PersonalBest,
		})
	}

	return views, nil
}
