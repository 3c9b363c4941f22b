package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/emberwell/practice-service/internal/core/domain"
)

// MemoryStore is an in-memory implementation of all repository contracts,
// guarded by a single mutex. It backs the logic and web tests and is handy
// for local development without Postgres.
type MemoryStore struct {
	mu            sync.RWMutex
	nextUserID    int
	users         map[int]*domain.UserRow
	tokens        map[string]memoryToken
	adminSessions map[string]*domain.AdminSessionRow
	practices     map[string]*domain.PracticeSessionRow
}

type memoryToken struct {
	userID    int
	expiresAt time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextUserID:    1,
		users:         make(map[int]*domain.UserRow),
		tokens:        make(map[string]memoryToken),
		adminSessions: make(map[string]*domain.AdminSessionRow),
		practices:     make(map[string]*domain.PracticeSessionRow),
	}
}

// Users returns the store's domain.UserRepository view.
func (s *MemoryStore) Users() domain.UserRepository { return (*memoryUsers)(s) }

// Tokens returns the store's domain.TokenRepository view.
func (s *MemoryStore) Tokens() domain.TokenRepository { return (*memoryTokens)(s) }

// AdminSessions returns the store's domain.AdminSessionRepository view.
func (s *MemoryStore) AdminSessions() domain.AdminSessionRepository { return (*memoryAdminSessions)(s) }

// Practices returns the store's domain.PracticeRepository view.
func (s *MemoryStore) Practices() domain.PracticeRepository { return (*memoryPractices)(s) }

type memoryUsers MemoryStore

func (s *memoryUsers) GetByEmail(_ context.Context, email string) (*domain.UserRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memoryUsers) GetByID(_ context.Context, userID int) (*domain.UserRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s *memoryUsers) ExistsByEmail(_ context.Context, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *memoryUsers) Create(_ context.Context, u domain.NewUser) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextUserID
	s.nextUserID++
	s.users[id] = &domain.UserRow{
		ID:           id,
		Email:        u.Email,
		Name:         u.Name,
		Phone:        u.Phone,
		Gender:       u.Gender,
		PasswordHash: u.PasswordHash,
	}
	return id, nil
}

func (s *memoryUsers) UpdateLastLogin(_ context.Context, userID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[userID]; ok {
		now := time.Now()
		u.LastLogin = &now
	}
	return nil
}

type memoryTokens MemoryStore

func (s *memoryTokens) Create(_ context.Context, userID int, token string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[token] = memoryToken{userID: userID, expiresAt: expiresAt}
	return nil
}

func (s *memoryTokens) GetUserByToken(_ context.Context, token string) (*domain.TokenRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tokens[token]
	if !ok {
		return nil, nil
	}
	u, ok := s.users[t.userID]
	if !ok {
		return nil, nil
	}
	return &domain.TokenRow{
		UserID:    u.ID,
		Email:     u.Email,
		Name:      u.Name,
		ExpiresAt: t.expiresAt,
	}, nil
}

func (s *memoryTokens) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tokens, token)
	return nil
}

type memoryAdminSessions MemoryStore

func (s *memoryAdminSessions) Create(_ context.Context, token string, createdAt, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.adminSessions[token] = &domain.AdminSessionRow{
		Token:          token,
		CreatedAt:      createdAt,
		ExpiresAt:      expiresAt,
		LastActivityAt: createdAt,
	}
	return nil
}

func (s *memoryAdminSessions) GetByToken(_ context.Context, token string) (*domain.AdminSessionRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.adminSessions[token]
	if !ok {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

func (s *memoryAdminSessions) Touch(_ context.Context, token string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if row, ok := s.adminSessions[token]; ok {
		row.LastActivityAt = at
	}
	return nil
}

func (s *memoryAdminSessions) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.adminSessions, token)
	return nil
}

type memoryPractices MemoryStore

func (s *memoryPractices) CreateWithTotals(_ context.Context, row *domain.PracticeSessionRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *row
	s.practices[row.ID] = &cp
	if u, ok := s.users[row.UserID]; ok {
		u.TotalSessions++
		u.TotalDuration += row.Duration
	}
	return nil
}

func (s *memoryPractices) GetByID(_ context.Context, sessionID string) (*domain.PracticeSessionRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.practices[sessionID]
	if !ok {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

func (s *memoryPractices) DeleteWithTotals(_ context.Context, userID int, sessionID string, duration int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.practices[sessionID]
	if !ok || row.UserID != userID {
		return false, nil
	}
	delete(s.practices, sessionID)

	if u, ok := s.users[userID]; ok {
		u.TotalSessions--
		if u.TotalSessions < 0 {
			u.TotalSessions = 0
		}
		u.TotalDuration -= duration
		if u.TotalDuration < 0 {
			u.TotalDuration = 0
		}
	}
	return true, nil
}

func (s *memoryPractices) ListByUser(_ context.Context, userID int) ([]domain.PracticeSessionRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.PracticeSessionRow
	for _, row := range s.practices {
		if row.UserID == userID {
			out = append(out, *row)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CompletedAt.After(out[j].CompletedAt)
	})
	return out, nil
}

func (s *memoryPractices) ListDurations(_ context.Context, userID int) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []int
	for _, row := range s.practices {
		if row.UserID == userID {
			out = append(out, row.Duration)
		}
	}
	return out, nil
}
