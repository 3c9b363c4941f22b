package v1

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"github.com/emberwell/practice-service/internal/core/domain"
	"github.com/emberwell/practice-service/middleware"
)

// AdminCredentials hold the configured studio-admin login.
// There is no admins table; admin sessions are unbound.
type AdminCredentials struct {
	Email        string
	PasswordHash string
}

// AuthService implements registration and login business rules.
// It depends on repository interfaces (injected via constructor) and
// MUST NOT access the database or SQL directly.
type AuthService struct {
	users domain.UserRepository
	store *TokenStore
	admin AdminCredentials
}

// NewAuthService creates a new AuthService with the given dependencies.
func NewAuthService(users domain.UserRepository, store *TokenStore, admin AdminCredentials) *AuthService {
	return &AuthService{
		users: users,
		store: store,
		admin: admin,
	}
}

// Login handles user login business logic.
func (s *AuthService) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.login", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("email", req.Email),
	))
	defer span.End()

	// Lookup user by email via repository
	row, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query user %q: %w", req.Email, err)
	}
	if row == nil {
		span.SetAttributes(attribute.Bool("auth.success", false))
		span.AddEvent("authentication.failed")
		return nil, fmt.Errorf("authenticate user %q: %w", req.Email, ErrUserNotFound)
	}

	// Verify password
	err = bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(req.Password))
	if err != nil {
		span.SetAttributes(attribute.Bool("auth.success", false))
		span.AddEvent("authentication.failed")
		return nil, fmt.Errorf("authenticate user %q: %w", req.Email, ErrInvalidCredentials)
	}

	// Update last_login timestamp (best-effort, don't fail login)
	if updateErr := s.users.UpdateLastLogin(ctx, row.ID); updateErr != nil {
		span.RecordError(fmt.Errorf("update last_login: %w", updateErr))
	}

	token, expiresAt, err := s.store.Issue(ctx, row.ID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("issue token: %w", err)
	}

	response := &domain.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt.UnixMilli(),
		User: domain.User{
			ID:    strconv.Itoa(row.ID),
			Email: row.Email,
			Name:  row.Name,
		},
	}

	span.SetAttributes(
		attribute.String("user.id", response.User.ID),
		attribute.Bool("auth.success", true),
	)
	span.AddEvent("user.authenticated")

	return response, nil
}

// Register handles user registration business logic.
func (s *AuthService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResponse, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.register", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("email", req.Email),
	))
	defer span.End()

	// Hash password
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	// Check if email already registered
	exists, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		span.SetAttributes(attribute.Bool("registration.success", false))
		return nil, fmt.Errorf("register user %q: %w", req.Email, ErrUserExists)
	}

	// Insert new user
	userID, err := s.users.Create(ctx, domain.NewUser{
		Email:        req.Email,
		Name:         req.Name,
		Phone:        req.Phone,
		Gender:       req.Gender,
		PasswordHash: string(passwordHash),
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("insert user: %w", err)
	}

	token, expiresAt, err := s.store.Issue(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("issue token: %w", err)
	}

	response := &domain.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt.UnixMilli(),
		User: domain.User{
			ID:    strconv.Itoa(userID),
			Email: req.Email,
			Name:  req.Name,
		},
	}

	span.SetAttributes(
		attribute.String("user.id", response.User.ID),
		attribute.Bool("registration.success", true),
	)
	span.AddEvent("user.registered")

	return response, nil
}

// AdminLogin authenticates the configured studio admin and issues an
// admin session.
func (s *AuthService) AdminLogin(ctx context.Context, req domain.AdminLoginRequest) (*domain.AuthResponse, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.admin_login", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	if s.admin.Email == "" || s.admin.PasswordHash == "" {
		span.AddEvent("authentication.failed")
		return nil, fmt.Errorf("admin login disabled: %w", ErrInvalidCredentials)
	}

	emailOK := subtle.ConstantTimeCompare([]byte(req.Email), []byte(s.admin.Email)) == 1
	passErr := bcrypt.CompareHashAndPassword([]byte(s.admin.PasswordHash), []byte(req.Password))
	if !emailOK || passErr != nil {
		span.SetAttributes(attribute.Bool("auth.success", false))
		span.AddEvent("authentication.failed")
		return nil, fmt.Errorf("authenticate admin: %w", ErrInvalidCredentials)
	}

	token, expiresAt, err := s.store.IssueAdmin(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("issue admin token: %w", err)
	}

	span.SetAttributes(attribute.Bool("auth.success", true))
	span.AddEvent("admin.authenticated")

	return &domain.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt.UnixMilli(),
	}, nil
}

// GetUserByToken retrieves user info from a session token (for /auth/me).
func (s *AuthService) GetUserByToken(ctx context.Context, token string) (*domain.User, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.get_user_by_token", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	identity, err := s.store.Verify(ctx, token)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	user := &domain.User{
		ID:    strconv.Itoa(identity.UserID),
		Email: identity.Email,
		Name:  identity.Name,
	}

	span.SetAttributes(
		attribute.String("user.id", user.ID),
		attribute.Bool("session.valid", true),
	)

	return user, nil
}
