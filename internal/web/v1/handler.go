package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/emberwell/practice-service/internal/core/domain"
	"github.com/emberwell/practice-service/internal/logger"
	logicv1 "github.com/emberwell/practice-service/internal/logic/v1"
	"github.com/emberwell/practice-service/middleware"
)

const identityKey = "identity"

// Handler groups HTTP handlers for the practice API v1.
// Dependencies are injected via the constructor — no global state.
type Handler struct {
	auth     *logicv1.AuthService
	tokens   *logicv1.TokenStore
	recorder *logicv1.SessionRecorder
	stats    *logicv1.StatsAggregator
}

// NewHandler creates a new Handler with the given services.
func NewHandler(auth *logicv1.AuthService, tokens *logicv1.TokenStore, recorder *logicv1.SessionRecorder, stats *logicv1.StatsAggregator) *Handler {
	return &Handler{auth: auth, tokens: tokens, recorder: recorder, stats: stats}
}

// RegisterRoutes registers all practice API v1 routes on the given router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/register", h.Register)
	rg.POST("/auth/login", h.Login)
	rg.POST("/auth/logout", h.Logout)
	rg.GET("/auth/me", h.GetMe)

	rg.POST("/admin/login", h.AdminLogin)
	rg.POST("/admin/logout", h.AdminLogout)
	rg.GET("/admin/me", h.RequireAdmin(), h.AdminMe)

	authed := rg.Group("", h.RequireUser())
	authed.POST("/sessions", h.RecordSession)
	authed.GET("/sessions", h.ListSessions)
	authed.DELETE("/sessions/:id", h.DeleteSession)
	authed.GET("/stats", h.GetStats)
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	const bearerPrefix = "Bearer "
	if len(authHeader) <= len(bearerPrefix) || authHeader[:len(bearerPrefix)] != bearerPrefix {
		return "", false
	}
	return authHeader[len(bearerPrefix):], true
}

// RequireUser resolves the bearer token to a user identity and stores it
// in the gin context. Unknown and expired tokens get the same 401.
func (h *Handler) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		identity, err := h.tokens.Verify(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, logicv1.ErrUnauthenticated) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			} else {
				logger.FromContext(c.Request.Context()).Error().Err(err).Msg("Token verification failed")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			}
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// RequireAdmin resolves the bearer token to an admin identity. Each
// authorized admin action refreshes the session's activity timestamp.
func (h *Handler) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		identity, err := h.tokens.VerifyAdmin(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, logicv1.ErrUnauthenticated) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			} else {
				logger.FromContext(c.Request.Context()).Error().Err(err).Msg("Admin token verification failed")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			}
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

func identityFrom(c *gin.Context) domain.Identity {
	v, _ := c.Get(identityKey)
	identity, _ := v.(domain.Identity)
	return identity
}

// Login handles HTTP request for user login.
func (h *Handler) Login(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	log := logger.FromContext(ctx)

	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		span.RecordError(err)
		log.Error().Err(err).Msg("Invalid request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	span.SetAttributes(attribute.Bool("request.valid", true))

	response, err := h.auth.Login(ctx, req)
	if err != nil {
		span.RecordError(err)
		log.Error().Err(err).Msg("Login failed")

		switch {
		case errors.Is(err, logicv1.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		case errors.Is(err, logicv1.ErrUserNotFound):
			// Don't reveal that the user doesn't exist
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	log.Info().Str("user_id", response.User.ID).Msg("Login successful")
	c.JSON(http.StatusOK, response)
}

// Register handles HTTP request for user registration.
func (h *Handler) Register(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	log := logger.FromContext(ctx)

	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		span.RecordError(err)
		log.Error().Err(err).Msg("Invalid request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	span.SetAttributes(attribute.Bool("request.valid", true))

	response, err := h.auth.Register(ctx, req)
	if err != nil {
		span.RecordError(err)
		log.Error().Err(err).Str("email", req.Email).Msg("Registration failed")

		switch {
		case errors.Is(err, logicv1.ErrUserExists):
			c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	log.Info().Str("user_id", response.User.ID).Msg("Registration successful")
	c.JSON(http.StatusCreated, response)
}

// Logout revokes the presented user token. Revoking an unknown token
// still succeeds.
func (h *Handler) Logout(c *gin.Context) {
	ctx := c.Request.Context()

	token, ok := bearerToken(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
		return
	}

	if err := h.tokens.Revoke(ctx, token); err != nil {
		logger.FromContext(ctx).Error().Err(err).Msg("Logout failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetMe resolves the bearer token to the current user profile.
func (h *Handler) GetMe(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	log := logger.FromContext(ctx)

	token, ok := bearerToken(c)
	if !ok {
		span.SetAttributes(attribute.Bool("auth.present", false))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
		return
	}

	span.SetAttributes(attribute.Bool("auth.present", true))

	user, err := h.auth.GetUserByToken(ctx, token)
	if err != nil {
		span.RecordError(err)
		log.Warn().Err(err).Msg("Token lookup failed")

		switch {
		case errors.Is(err, logicv1.ErrUnauthenticated):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	log.Info().Str("user_id", user.ID).Msg("Token validated")
	c.JSON(http.StatusOK, user)
}

// AdminLogin authenticates the studio admin.
func (h *Handler) AdminLogin(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.FromContext(ctx)

	var req domain.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error().Err(err).Msg("Invalid request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.auth.AdminLogin(ctx, req)
	if err != nil {
		log.Warn().Err(err).Msg("Admin login failed")

		switch {
		case errors.Is(err, logicv1.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	log.Info().Msg("Admin login successful")
	c.JSON(http.StatusOK, response)
}

// AdminLogout revokes the presented admin session token.
func (h *Handler) AdminLogout(c *gin.Context) {
	ctx := c.Request.Context()

	token, ok := bearerToken(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
		return
	}

	if err := h.tokens.RevokeAdmin(ctx, token); err != nil {
		logger.FromContext(ctx).Error().Err(err).Msg("Admin logout failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// AdminMe confirms the admin session is still valid.
func (h *Handler) AdminMe(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"role": string(domain.RoleAdmin)})
}

// RecordSession saves a completed practice session for the authenticated user.
func (h *Handler) RecordSession(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	log := logger.FromContext(ctx)
	identity := identityFrom(c)

	var req domain.RecordSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		span.RecordError(err)
		log.Error().Err(err).Msg("Invalid request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.recorder.Save(ctx, identity, req.Duration, domain.SessionMetadata{
		Temperature: req.Temperature,
		Notes:       req.Notes,
		Mood:        req.Mood,
		Rating:      req.Rating,
		PauseCount:  req.PauseCount,
	})
	if err != nil {
		span.RecordError(err)
		log.Error().Err(err).Int("user_id", identity.UserID).Msg("Record session failed")

		switch {
		case errors.Is(err, logicv1.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	log.Info().
		Int("user_id", identity.UserID).
		Str("session_id", response.SessionID).
		Bool("personal_best", response.PersonalBest).
		Msg("Session recorded")
	c.JSON(http.StatusCreated, response)
}

// ListSessions returns the authenticated user's practice history.
func (h *Handler) ListSessions(c *gin.Context) {
	ctx := c.Request.Context()
	identity := identityFrom(c)

	sessions, err := h.recorder.List(ctx, identity)
	if err != nil {
		logger.FromContext(ctx).Error().Err(err).Int("user_id", identity.UserID).Msg("List sessions failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, sessions)
}

// DeleteSession removes one of the authenticated user's practice sessions.
func (h *Handler) DeleteSession(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.FromContext(ctx)
	identity := identityFrom(c)
	sessionID := c.Param("id")

	if err := h.recorder.Delete(ctx, identity, sessionID); err != nil {
		log.Warn().Err(err).Int("user_id", identity.UserID).Str("session_id", sessionID).Msg("Delete session failed")

		switch {
		case errors.Is(err, logicv1.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		case errors.Is(err, logicv1.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "Session belongs to another user"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	log.Info().Int("user_id", identity.UserID).Str("session_id", sessionID).Msg("Session deleted")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetStats returns aggregate practice statistics for the authenticated user.
func (h *Handler) GetStats(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	identity := identityFrom(c)

	payload, err := h.stats.GetStats(ctx, identity)
	if err != nil {
		span.RecordError(err)
		logger.FromContext(ctx).Error().Err(err).Int("user_id", identity.UserID).Msg("Stats failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, payload)
}
