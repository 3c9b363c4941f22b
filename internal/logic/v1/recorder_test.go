package v1

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/emberwell/practice-service/internal/core/domain"
	"github.com/emberwell/practice-service/internal/core/repository"
)

func intPtr(v int) *int { return &v }

func testIdentity(userID int) domain.Identity {
	return domain.Identity{UserID: userID, Role: domain.RoleUser}
}

func newTestRecorder(t *testing.T) (*SessionRecorder, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	return NewSessionRecorder(store.Practices()), store
}

func TestSaveValidation(t *testing.T) {
	ctx := context.Background()
	rec, store := newTestRecorder(t)
	userID := createTestUser(t, store, "juno@example.com")

	tests := []struct {
		name     string
		duration *int
		meta     domain.SessionMetadata
	}{
		{name: "missing duration", duration: nil},
		{name: "negative duration", duration: intPtr(-1)},
		{name: "rating too low", duration: intPtr(60), meta: domain.SessionMetadata{Rating: intPtr(0)}},
		{name: "rating too high", duration: intPtr(60), meta: domain.SessionMetadata{Rating: intPtr(6)}},
		{name: "negative pause count", duration: intPtr(60), meta: domain.SessionMetadata{PauseCount: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := rec.Save(ctx, testIdentity(userID), tt.duration, tt.meta)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("error = %v, want ErrValidation", err)
			}
		})
	}

	// Nothing was recorded.
	u, _ := store.Users().GetByID(ctx, userID)
	if u.TotalSessions != 0 || u.TotalDuration != 0 {
		t.Fatalf("totals changed by rejected saves: %d/%d", u.TotalSessions, u.TotalDuration)
	}
}

func TestSaveZeroDurationIsValid(t *testing.T) {
	ctx := context.Background()
	rec, store := newTestRecorder(t)
	userID := createTestUser(t, store, "juno@example.com")

	resp, err := rec.Save(ctx, testIdentity(userID), intPtr(0), domain.SessionMetadata{})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if resp.PersonalBest {
		t.Fatal("first session must not be a personal best")
	}
}

func TestPersonalBestStrictGreaterThan(t *testing.T) {
	ctx := context.Background()
	rec, store := newTestRecorder(t)
	userID := createTestUser(t, store, "juno@example.com")
	identity := testIdentity(userID)

	saves := []struct {
		duration int
		wantBest bool
	}{
		{duration: 30, wantBest: false}, // nothing to beat yet
		{duration: 45, wantBest: true},
		{duration: 20, wantBest: false},
		{duration: 45, wantBest: false}, // tie is not a new best
		{duration: 46, wantBest: true},
	}
	for i, s := range saves {
		resp, err := rec.Save(ctx, identity, intPtr(s.duration), domain.SessionMetadata{})
		if err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
		if resp.PersonalBest != s.wantBest {
			t.Fatalf("save %d (duration %d): personalBest = %v, want %v", i, s.duration, resp.PersonalBest, s.wantBest)
		}
	}
}

func TestSaveUpdatesTotals(t *testing.T) {
	ctx := context.Background()
	rec, store := newTestRecorder(t)
	userID := createTestUser(t, store, "juno@example.com")
	identity := testIdentity(userID)

	for _, d := range []int{30, 45, 20} {
		if _, err := rec.Save(ctx, identity, intPtr(d), domain.SessionMetadata{}); err != nil {
			t.Fatalf("Save(%d): %v", d, err)
		}
	}

	u, _ := store.Users().GetByID(ctx, userID)
	if u.TotalSessions != 3 {
		t.Fatalf("TotalSessions = %d, want 3", u.TotalSessions)
	}
	if u.TotalDuration != 95 {
		t.Fatalf("TotalDuration = %d, want 95", u.TotalDuration)
	}
}

func TestSaveKeepsMetadata(t *testing.T) {
	ctx := context.Background()
	rec, store := newTestRecorder(t)
	userID := createTestUser(t, store, "juno@example.com")

	temp := 87.5
	notes := "long exhale holds"
	mood := "calm"
	resp, err := rec.Save(ctx, testIdentity(userID), intPtr(300), domain.SessionMetadata{
		Temperature: &temp,
		Notes:       &notes,
		Mood:        &mood,
		Rating:      intPtr(4),
		PauseCount:  2,
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	row, err := store.Practices().GetByID(ctx, resp.SessionID)
	if err != nil || row == nil {
		t.Fatalf("GetByID: row=%v err=%v", row, err)
	}
	if row.Temperature == nil || *row.Temperature != temp {
		t.Fatalf("temperature = %v, want %v", row.Temperature, temp)
	}
	if row.Rating == nil || *row.Rating != 4 {
		t.Fatalf("rating = %v, want 4", row.Rating)
	}
	if row.PauseCount != 2 {
		t.Fatalf("pause count = %d, want 2", row.PauseCount)
	}
}

func TestDeleteNotFound(t *testing.T) {
	ctx := context.Background()
	rec, store := newTestRecorder(t)
	userID := createTestUser(t, store, "juno@example.com")

	err := rec.Delete(ctx, testIdentity(userID), "01HMISSING00000000000000")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("error = %v, want ErrSessionNotFound", err)
	}
}

func TestDeleteByNonOwner(t *testing.T) {
	ctx := context.Background()
	rec, store := newTestRecorder(t)
	owner := createTestUser(t, store, "juno@example.com")
	intruder := createTestUser(t, store, "rex@example.com")

	resp, err := rec.Save(ctx, testIdentity(owner), intPtr(120), domain.SessionMetadata{})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	err = rec.Delete(ctx, testIdentity(intruder), resp.SessionID)
	if !errors.Is(err, ErrNotOwner) {
		t.Fatalf("error = %v, want ErrNotOwner", err)
	}
	if errors.Is(err, ErrSessionNotFound) {
		t.Fatal("ownership failure must be distinct from not-found")
	}

	// Session and owner totals are untouched.
	row, _ := store.Practices().GetByID(ctx, resp.SessionID)
	if row == nil {
		t.Fatal("session deleted by non-owner")
	}
	u, _ := store.Users().GetByID(ctx, owner)
	if u.TotalSessions != 1 || u.TotalDuration != 120 {
		t.Fatalf("owner totals changed: %d/%d", u.TotalSessions, u.TotalDuration)
	}
}

func TestDeleteDecrementsTotals(t *testing.T) {
	ctx := context.Background()
	rec, store := newTestRecorder(t)
	userID := createTestUser(t, store, "juno@example.com")
	identity := testIdentity(userID)

	first, _ := rec.Save(ctx, identity, intPtr(100), domain.SessionMetadata{})
	if _, err := rec.Save(ctx, identity, intPtr(200), domain.SessionMetadata{}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := rec.Delete(ctx, identity, first.SessionID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	u, _ := store.Users().GetByID(ctx, userID)
	if u.TotalSessions != 1 || u.TotalDuration != 200 {
		t.Fatalf("totals after delete = %d/%d, want 1/200", u.TotalSessions, u.TotalDuration)
	}

	if row, _ := store.Practices().GetByID(ctx, first.SessionID); row != nil {
		t.Fatal("deleted session still present")
	}
}

func TestTotalsMatchRowsAfterMixedOperations(t *testing.T) {
	ctx := context.Background()
	rec, store := newTestRecorder(t)
	userID := createTestUser(t, store, "juno@example.com")
	identity := testIdentity(userID)

	var ids []string
	for _, d := range []int{10, 20, 30, 40} {
		resp, err := rec.Save(ctx, identity, intPtr(d), domain.SessionMetadata{})
		if err != nil {
			t.Fatalf("Save(%d): %v", d, err)
		}
		ids = append(ids, resp.SessionID)
	}
	if err := rec.Delete(ctx, identity, ids[1]); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := rec.Delete(ctx, identity, ids[3]); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	rows, _ := store.Practices().ListByUser(ctx, userID)
	var sum int
	for _, row := range rows {
		sum += row.Duration
	}

	u, _ := store.Users().GetByID(ctx, userID)
	if u.TotalSessions != len(rows) {
		t.Fatalf("TotalSessions = %d, live rows = %d", u.TotalSessions, len(rows))
	}
	if u.TotalDuration != sum {
		t.Fatalf("TotalDuration = %d, summed rows = %d", u.TotalDuration, sum)
	}
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	rec, store := newTestRecorder(t)
	userID := createTestUser(t, store, "juno@example.com")
	identity := testIdentity(userID)

	base := time.Now()
	for i, d := range []int{10, 20, 30} {
		at := base.Add(time.Duration(i) * time.Hour)
		rec.now = func() time.Time { return at }
		if _, err := rec.Save(ctx, identity, intPtr(d), domain.SessionMetadata{}); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	views, err := rec.List(ctx, identity)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(views) != 3 {
		t.Fatalf("len = %d, want 3", len(views))
	}
	if views[0].Duration != 30 || views[2].Duration != 10 {
		t.Fatalf("list not newest-first: %d, %d, %d", views[0].Duration, views[1].Duration, views[2].Duration)
	}
}
