package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emberwell/practice-service/internal/core/domain"
)

// PgxPracticeRepository implements domain.PracticeRepository using pgxpool.
//
// The session row mutation and the owner's totals update run in a single
// transaction so the denormalized counters cannot drift from the rows.
type PgxPracticeRepository struct {
	pool *pgxpool.Pool
}

// NewPracticeRepository creates a new PgxPracticeRepository.
func NewPracticeRepository(pool *pgxpool.Pool) *PgxPracticeRepository {
	return &PgxPracticeRepository{pool: pool}
}

// CreateWithTotals inserts the session row and increments the owner's
// totals by 1 and row.Duration, atomically.
func (r *PgxPracticeRepository) CreateWithTotals(ctx context.Context, row *domain.PracticeSessionRow) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO practice_sessions (
			id, user_id, duration, temperature, notes, mood, rating,
			completed_at, pause_count, personal_best
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, row.ID, row.UserID, row.Duration, row.Temperature, row.Notes, row.Mood,
		row.Rating, row.CompletedAt, row.PauseCount, row.PersonalBest)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		UPDATE users
		SET total_sessions = total_sessions + 1,
		    total_duration = total_duration + $2
		WHERE id = $1
	`, row.UserID, row.Duration)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetByID returns the session with the given ID.
// Returns (nil, nil) when no session is found.
func (r *PgxPracticeRepository) GetByID(ctx context.Context, sessionID string) (*domain.PracticeSessionRow, error) {
	query := `
		SELECT id, user_id, duration, temperature, notes, mood, rating,
		       completed_at, pause_count, personal_best
		FROM practice_sessions
		WHERE id = $1
	`

	var row domain.PracticeSessionRow
	err := r.pool.QueryRow(ctx, query, sessionID).Scan(
		&row.ID, &row.UserID, &row.Duration, &row.Temperature, &row.Notes,
		&row.Mood, &row.Rating, &row.CompletedAt, &row.PauseCount, &row.PersonalBest,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &row, nil
}

// DeleteWithTotals deletes the session owned by userID and decrements the
// owner's totals, clamped at zero, atomically. Returns false when no
// matching row was deleted.
func (r *PgxPracticeRepository) DeleteWithTotals(ctx context.Context, userID int, sessionID string, duration int) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		DELETE FROM practice_sessions WHERE id = $1 AND user_id = $2
	`, sessionID, userID)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		// Row vanished between the ownership check and the delete;
		// leave the totals alone.
		return false, tx.Commit(ctx)
	}

	_, err = tx.Exec(ctx, `
		UPDATE users
		SET total_sessions = GREATEST(total_sessions - 1, 0),
		    total_duration = GREATEST(total_duration - $2, 0)
		WHERE id = $1
	`, userID, duration)
	if err != nil {
		return false, err
	}

	return true, tx.Commit(ctx)
}

// ListByUser returns all sessions for the user, newest first.
func (r *PgxPracticeRepository) ListByUser(ctx context.Context, userID int) ([]domain.PracticeSessionRow, error) {
	query := `
		SELECT id, user_id, duration, temperature, notes, mood, rating,
		       completed_at, pause_count, personal_best
		FROM practice_sessions
		WHERE user_id = $1
		ORDER BY completed_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PracticeSessionRow
	for rows.Next() {
		var row domain.PracticeSessionRow
		err := rows.Scan(
			&row.ID, &row.UserID, &row.Duration, &row.Temperature, &row.Notes,
			&row.Mood, &row.Rating, &row.CompletedAt, &row.PauseCount, &row.PersonalBest,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}

	return out, rows.Err()
}

// ListDurations returns the durations of all sessions for the user.
func (r *PgxPracticeRepository) ListDurations(ctx context.Context, userID int) ([]int, error) {
	query := `SELECT duration FROM practice_sessions WHERE user_id = $1`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var d int
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}

	return out, rows.Err()
}
