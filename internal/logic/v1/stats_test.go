package v1

import (
	"context"
	"testing"
	"time"

	"github.com/emberwell/practice-service/internal/core/domain"
	"github.com/emberwell/practice-service/internal/core/repository"
)

func newTestStats(t *testing.T) (*StatsAggregator, *SessionRecorder, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	return NewStatsAggregator(store.Users(), store.Practices()), NewSessionRecorder(store.Practices()), store
}

func TestStatsEmptyHistory(t *testing.T) {
	ctx := context.Background()
	agg, _, store := newTestStats(t)
	userID := createTestUser(t, store, "ida@example.com")

	payload, err := agg.GetStats(ctx, testIdentity(userID))
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}

	want := domain.StatsPayload{}
	if *payload != want {
		t.Fatalf("empty history stats = %+v, want all zeros", *payload)
	}
}

func TestStatsAverageSession(t *testing.T) {
	tests := []struct {
		name      string
		durations []int
		want      int
	}{
		{name: "exact mean", durations: []int{10, 20, 30}, want: 20},
		{name: "half rounds up", durations: []int{10, 15}, want: 13},
		{name: "below half rounds down", durations: []int{10, 11, 12}, want: 11},
		{name: "single session", durations: []int{7}, want: 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			agg, rec, store := newTestStats(t)
			userID := createTestUser(t, store, "ida@example.com")

			for _, d := range tt.durations {
				if _, err := rec.Save(ctx, testIdentity(userID), intPtr(d), domain.SessionMetadata{}); err != nil {
					t.Fatalf("Save(%d): %v", d, err)
				}
			}

			payload, err := agg.GetStats(ctx, testIdentity(userID))
			if err != nil {
				t.Fatalf("GetStats: %v", err)
			}
			if payload.AverageSession != tt.want {
				t.Fatalf("AverageSession = %d, want %d", payload.AverageSession, tt.want)
			}
		})
	}
}

func TestStatsEndToEnd(t *testing.T) {
	ctx := context.Background()
	agg, rec, store := newTestStats(t)
	userID := createTestUser(t, store, "ida@example.com")
	identity := testIdentity(userID)

	for _, d := range []int{30, 45, 20} {
		if _, err := rec.Save(ctx, identity, intPtr(d), domain.SessionMetadata{}); err != nil {
			t.Fatalf("Save(%d): %v", d, err)
		}
	}

	payload, err := agg.GetStats(ctx, identity)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}

	if payload.TotalSessions != 3 {
		t.Fatalf("TotalSessions = %d, want 3", payload.TotalSessions)
	}
	if payload.TotalDuration != 95 {
		t.Fatalf("TotalDuration = %d, want 95", payload.TotalDuration)
	}
	if payload.LongestSession != 45 {
		t.Fatalf("LongestSession = %d, want 45", payload.LongestSession)
	}
	// Only the 45s session beat every prior duration.
	if payload.PersonalBestsCount != 1 {
		t.Fatalf("PersonalBestsCount = %d, want 1", payload.PersonalBestsCount)
	}
	if payload.RecentSessionsCount != 3 {
		t.Fatalf("RecentSessionsCount = %d, want 3", payload.RecentSessionsCount)
	}
	if payload.CurrentStreak != 1 {
		t.Fatalf("CurrentStreak = %d, want 1", payload.CurrentStreak)
	}
}

func TestStatsRecentWindow(t *testing.T) {
	ctx := context.Background()
	agg, rec, store := newTestStats(t)
	userID := createTestUser(t, store, "ida@example.com")
	identity := testIdentity(userID)

	now := time.Now()
	ages := []time.Duration{
		time.Hour,                    // recent
		6 * 24 * time.Hour,           // recent
		7*24*time.Hour - time.Minute, // just inside the window
		7*24*time.Hour + time.Minute, // just outside
		14 * 24 * time.Hour,          // outside
	}
	for _, age := range ages {
		at := now.Add(-age)
		rec.now = func() time.Time { return at }
		if _, err := rec.Save(ctx, identity, intPtr(60), domain.SessionMetadata{}); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	agg.now = func() time.Time { return now }
	payload, err := agg.GetStats(ctx, identity)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if payload.RecentSessionsCount != 3 {
		t.Fatalf("RecentSessionsCount = %d, want 3", payload.RecentSessionsCount)
	}
}

func TestCurrentStreak(t *testing.T) {
	// Fixed local reference: 15:00 on an arbitrary day.
	now := time.Date(2025, time.March, 14, 15, 0, 0, 0, time.Local)
	day := func(offset int, hour int) time.Time {
		return time.Date(2025, time.March, 14+offset, hour, 0, 0, 0, time.Local)
	}

	tests := []struct {
		name        string
		completions []time.Time
		want        int
	}{
		{name: "no sessions", completions: nil, want: 0},
		{
			name:        "today only",
			completions: []time.Time{day(0, 9)},
			want:        1,
		},
		{
			name:        "today and two prior days",
			completions: []time.Time{day(0, 9), day(-1, 20), day(-2, 6)},
			want:        3,
		},
		{
			name:        "gap on day -3 stops the scan",
			completions: []time.Time{day(0, 9), day(-1, 20), day(-2, 6), day(-4, 12)},
			want:        3,
		},
		{
			name:        "missing today does not reset",
			completions: []time.Time{day(-1, 20), day(-2, 6)},
			want:        2,
		},
		{
			name:        "missing today and yesterday is zero",
			completions: []time.Time{day(-2, 6), day(-3, 6)},
			want:        0,
		},
		{
			name:        "multiple sessions one day count once",
			completions: []time.Time{day(0, 9), day(0, 21), day(-1, 7)},
			want:        2,
		},
		{
			name: "session just before midnight counts for its day",
			completions: []time.Time{
				time.Date(2025, time.March, 13, 23, 59, 59, int(999*time.Millisecond), time.Local),
				day(0, 9),
			},
			want: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := currentStreak(now, tt.completions); got != tt.want {
				t.Fatalf("currentStreak = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCurrentStreakCappedAt30(t *testing.T) {
	now := time.Date(2025, time.March, 14, 15, 0, 0, 0, time.Local)

	// 60 consecutive days of practice, ending today.
	var completions []time.Time
	for i := 0; i < 60; i++ {
		completions = append(completions, now.AddDate(0, 0, -i))
	}

	if got := currentStreak(now, completions); got != maxStreakDays {
		t.Fatalf("currentStreak = %d, want cap %d", got, maxStreakDays)
	}
}

func TestStatsLongestSessionIgnoresDeleted(t *testing.T) {
	ctx := context.Background()
	agg, rec, store := newTestStats(t)
	userID := createTestUser(t, store, "ida@example.com")
	identity := testIdentity(userID)

	long, err := rec.Save(ctx, identity, intPtr(500), domain.SessionMetadata{})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := rec.Save(ctx, identity, intPtr(100), domain.SessionMetadata{}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := rec.Delete(ctx, identity, long.SessionID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	payload, err := agg.GetStats(ctx, identity)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if payload.LongestSession != 100 {
		t.Fatalf("LongestSession = %d, want 100", payload.LongestSession)
	}
	if payload.TotalSessions != 1 || payload.TotalDuration != 100 {
		t.Fatalf("totals = %d/%d, want 1/100", payload.TotalSessions, payload.TotalDuration)
	}
}
