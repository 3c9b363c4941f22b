package domain

import "time"

// Role distinguishes the two kinds of authenticated subjects.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Identity is the authenticated subject resolved from a bearer token.
// Admin identities carry no user ID.
type Identity struct {
	UserID int
	Email  string
	Name   string
	Role   Role
}

// IsAdmin reports whether the identity is the studio admin.
func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

// User is the public user representation returned by the API.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// SessionMetadata carries the optional fields a client may attach to a
// completed practice session. Pointers distinguish "absent" from zero.
type SessionMetadata struct {
	Temperature *float64 `json:"temperature,omitempty"`
	Notes       *string  `json:"notes,omitempty"`
	Mood        *string  `json:"mood,omitempty"`
	Rating      *int     `json:"rating,omitempty"`
	PauseCount  int      `json:"pause_count"`
}

// LoginRequest is the payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest is the payload for POST /auth/register.
type RegisterRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	Name     string  `json:"name" binding:"required"`
	Password string  `json:"password" binding:"required,min=8"`
	Phone    *string `json:"phone,omitempty"`
	Gender   *string `json:"gender,omitempty"`
}

// AdminLoginRequest is the payload for POST /admin/login.
type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned by login and register.
type AuthResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"` // epoch milliseconds
	User      User   `json:"user"`
}

// RecordSessionRequest is the payload for POST /sessions.
// Duration is a pointer so a missing field is a validation failure
// rather than a silent zero.
type RecordSessionRequest struct {
	Duration    *int     `json:"duration"`
	Temperature *float64 `json:"temperature,omitempty"`
	Notes       *string  `json:"notes,omitempty"`
	Mood        *string  `json:"mood,omitempty"`
	Rating      *int     `json:"rating,omitempty"`
	PauseCount  int      `json:"pause_count"`
}

// RecordSessionResponse is returned by POST /sessions.
type RecordSessionResponse struct {
	SessionID    string `json:"session_id"`
	PersonalBest bool   `json:"personal_best"`
}

// PracticeSessionView is the public representation of a recorded session.
type PracticeSessionView struct {
	ID           string    `json:"id"`
	Duration     int       `json:"duration"`
	Temperature  *float64  `json:"temperature,omitempty"`
	Notes        *string   `json:"notes,omitempty"`
	Mood         *string   `json:"mood,omitempty"`
	Rating       *int      `json:"rating,omitempty"`
	CompletedAt  time.Time `json:"completed_at"`
	PauseCount   int       `json:"pause_count"`
	PersonalBest bool      `json:"personal_best"`
}

// StatsPayload is the aggregate view returned by GET /stats.
type StatsPayload struct {
	TotalSessions       int `json:"total_sessions"`
	TotalDuration       int `json:"total_duration"`
	LongestSession      int `json:"longest_session"`
	AverageSession      int `json:"average_session"`
	RecentSessionsCount int `json:"recent_sessions_count"`
	CurrentStreak       int `json:"current_streak"`
	PersonalBestsCount  int `json:"personal_bests_count"`
}
