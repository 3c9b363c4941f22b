// Package v1 provides the token, practice-recording, and statistics
// business logic for API version 1.
//
// Error Handling:
// This package defines sentinel errors that represent the deterministic
// failure modes of the API. They should be wrapped with context using
// fmt.Errorf("%w") when returned from business logic methods.
//
// Example Usage:
//
//	if row == nil {
//	    return Identity{}, fmt.Errorf("verify token: %w", ErrUnauthenticated)
//	}
//
// Error Checking (in handlers):
//
//	switch {
//	case errors.Is(err, logicv1.ErrUnauthenticated):
//	    c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
//	case errors.Is(err, logicv1.ErrValidation):
//	    c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
//	default:
//	    c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
//	}
package v1

import "errors"

// Sentinel errors for the practice API.
// All outcomes are deterministic for the input and state at call time;
// none of them warrants a retry.
var (
	// ErrUnauthenticated indicates the presented token is absent, unknown,
	// or expired. The three cases are deliberately indistinguishable to
	// callers so tokens cannot be enumerated.
	// HTTP Status: 401 Unauthorized
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrValidation indicates malformed or missing required input,
	// e.g. a negative or absent session duration.
	// HTTP Status: 400 Bad Request
	ErrValidation = errors.New("validation failed")

	// ErrSessionNotFound indicates the referenced practice session does
	// not exist.
	// HTTP Status: 404 Not Found
	ErrSessionNotFound = errors.New("practice session not found")

	// ErrNotOwner indicates the practice session exists but belongs to a
	// different user. Distinct from ErrSessionNotFound on purpose.
	// HTTP Status: 403 Forbidden
	ErrNotOwner = errors.New("practice session owned by another user")

	// ErrInvalidCredentials indicates the provided credentials are incorrect.
	// HTTP Status: 401 Unauthorized
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserNotFound indicates the user does not exist in the system.
	// HTTP Status: 401 Unauthorized (don't reveal user existence)
	ErrUserNotFound = errors.New("user not found")

	// ErrUserExists indicates the email is already registered.
	// HTTP Status: 409 Conflict
	ErrUserExists = errors.New("user already exists")
)
