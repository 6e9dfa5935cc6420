// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr defines the centralized error handling framework for the auth service.

It provides a rich error type that bridges the gap between low-level Domain/Storage
errors and high-level HTTP responses.

Architecture:

  - AppError: A struct containing machine-readable ErrorCode and user-friendly messages.
  - Taxonomy: Every authentication outcome that is not a success has its own code.
  - Mapping: Explicit mapping from AppError to standard HTTP Status Codes.

Every error that leaves the service layer should be wrapped as an [AppError] to ensure
consistent API responses.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// # Error Codes

const (
	CodeNotFound              = "NOT_FOUND"
	CodeUnauthorized          = "UNAUTHORIZED"
	CodeForbidden             = "FORBIDDEN"
	CodeConflict              = "CONFLICT"
	CodeValidation            = "VALIDATION_ERROR"
	CodeUnprocessable         = "UNPROCESSABLE"
	CodeRateLimited           = "RATE_LIMITED"
	CodeInternal              = "INTERNAL_ERROR"
	CodeInvalidCredentials    = "INVALID_CREDENTIALS"
	CodeAccountLocked         = "ACCOUNT_LOCKED"
	CodeAccountInactive       = "ACCOUNT_INACTIVE"
	CodeNotRegistered         = "NOT_REGISTERED"
	CodeDuplicateIdentity     = "DUPLICATE_IDENTITY"
	CodeChallengeExpired      = "CHALLENGE_EXPIRED"
	CodeChallengeMismatch     = "CHALLENGE_MISMATCH"
	CodeChallengeNotFound     = "CHALLENGE_NOT_FOUND"
	CodeTokenExpired          = "TOKEN_EXPIRED"
	CodeTokenMalformed        = "TOKEN_MALFORMED"
	CodeTokenSignatureInvalid = "TOKEN_SIGNATURE_INVALID"
	CodeTokenRevoked          = "TOKEN_REVOKED"
	CodeStoreUnavailable      = "STORE_UNAVAILABLE"
)

// AppError is the canonical error type for the auth API.
//
// It carries an HTTP status code, a machine-readable code, a client-safe
// message, and an optional slice of field-level validation errors.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details (e.g., SQL queries).
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "NOT_FOUND", "ACCOUNT_LOCKED").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors.
	Details []FieldError `json:"details,omitempty"`
	// Meta carries structured, client-safe context (e.g. remaining_seconds).
	Meta map[string]any `json:"meta,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause returns a copy of the error carrying cause for server-side logging.
func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

// # Client Errors (4xx)

// NotFound creates a 404 [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("Account") // Returns "Account not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// Unauthorized creates a 401 [AppError].
func Unauthorized(msg string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Forbidden creates a 403 [AppError].
func Forbidden(msg string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    msg,
		HTTPStatus: http.StatusForbidden,
	}
}

// Conflict creates a 409 [AppError] for generic unique-constraint violations.
func Conflict(msg string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    msg,
		HTTPStatus: http.StatusConflict,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// RateLimited creates a 429 [AppError].
func RateLimited(retryAfterSeconds int) *AppError {
	return &AppError{
		Code:       CodeRateLimited,
		Message:    fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds),
		HTTPStatus: http.StatusTooManyRequests,
		Meta:       map[string]any{"retry_after_seconds": retryAfterSeconds},
	}
}

// Unprocessable creates a 422 [AppError] for semantically invalid input.
func Unprocessable(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       CodeUnprocessable,
		Message:    msg,
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    details,
	}
}

// # Authentication Errors

// InvalidCredentials creates the 401 [AppError] shared by "unknown identity"
// and "wrong secret" so that callers cannot enumerate accounts.
func InvalidCredentials() *AppError {
	return &AppError{
		Code:       CodeInvalidCredentials,
		Message:    "Invalid login credentials",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// AccountLocked creates a 423 [AppError] carrying the remaining lockout time.
// Partial seconds are rounded up so that a locked account never reports zero.
func AccountLocked(remaining time.Duration) *AppError {
	seconds := int((remaining + time.Second - 1) / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return &AppError{
		Code:       CodeAccountLocked,
		Message:    fmt.Sprintf("Account is temporarily locked. Try again in %d seconds.", seconds),
		HTTPStatus: http.StatusLocked,
		Meta:       map[string]any{"remaining_seconds": seconds},
	}
}

// AccountInactive creates a 403 [AppError] for accounts that may not authenticate.
func AccountInactive() *AppError {
	return &AppError{
		Code:       CodeAccountInactive,
		Message:    "Account is not active",
		HTTPStatus: http.StatusForbidden,
	}
}

// NotRegistered creates a 404 [AppError] for an identifier with no account.
func NotRegistered(msg string) *AppError {
	return &AppError{
		Code:       CodeNotRegistered,
		Message:    msg,
		HTTPStatus: http.StatusNotFound,
	}
}

// DuplicateIdentity creates a 422 [AppError] naming the field that is already taken.
func DuplicateIdentity(field string) *AppError {
	return &AppError{
		Code:       CodeDuplicateIdentity,
		Message:    "Account already registered",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    []FieldError{{Field: field, Message: "has already been taken"}},
	}
}

// ChallengeExpired creates a 400 [AppError] for an OTP past its TTL.
func ChallengeExpired() *AppError {
	return &AppError{
		Code:       CodeChallengeExpired,
		Message:    "One-time code has expired",
		HTTPStatus: http.StatusBadRequest,
	}
}

// ChallengeMismatch creates a 401 [AppError] for a wrong OTP.
func ChallengeMismatch() *AppError {
	return &AppError{
		Code:       CodeChallengeMismatch,
		Message:    "Invalid one-time code",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// ChallengeNotFound creates a 400 [AppError] when no live OTP exists for a phone.
func ChallengeNotFound() *AppError {
	return &AppError{
		Code:       CodeChallengeNotFound,
		Message:    "No active one-time code for this phone",
		HTTPStatus: http.StatusBadRequest,
	}
}

// TokenExpired creates a 401 [AppError] for a token past its expiry.
func TokenExpired() *AppError {
	return &AppError{
		Code:       CodeTokenExpired,
		Message:    "Token has expired",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// TokenMalformed creates a 401 [AppError] for an unparsable or mistyped token.
func TokenMalformed() *AppError {
	return &AppError{
		Code:       CodeTokenMalformed,
		Message:    "Token is malformed",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// TokenSignatureInvalid creates a 401 [AppError] for a token with a bad signature.
func TokenSignatureInvalid() *AppError {
	return &AppError{
		Code:       CodeTokenSignatureInvalid,
		Message:    "Token signature is invalid",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// TokenRevoked creates a 401 [AppError] for a refresh token that was logged out.
func TokenRevoked() *AppError {
	return &AppError{
		Code:       CodeTokenRevoked,
		Message:    "Token has been revoked",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// # Server Errors (5xx)

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// StoreUnavailable creates a 503 [AppError] for persistence failures.
// Clients only see a generic retry message.
func StoreUnavailable(cause error) *AppError {
	return &AppError{
		Code:       CodeStoreUnavailable,
		Message:    "Service temporarily unavailable. Please try again.",
		HTTPStatus: http.StatusServiceUnavailable,
		Cause:      cause,
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// HasCode reports whether err carries an [*AppError] with the given code.
func HasCode(err error, code string) bool {
	ae := As(err)
	return ae != nil && ae.Code == code
}
