// Copyright (c) 2026 Keygate. All rights reserved.

/*
Package apperr defines the centralized error handling framework for Keygate.

It provides a rich error type that bridges the gap between low-level Domain/Storage
errors and high-level HTTP responses.

Architecture:

  - AppError: A struct containing a stable machine-readable Code and a client-safe message.
  - Taxonomy: A closed set of constructors, one per domain outcome.
  - Mapping: Explicit mapping from AppError to standard HTTP status codes.

Every error that leaves the service layer should be wrapped as an [AppError] to ensure
consistent API responses. The Code values are part of the external contract: the
login form renders a distinct affordance for "not_activated", and the resend flow
keys off "too_often". They must never change.
*/
package apperr

import (
	"errors"
	"net/http"
)

// # Stable Error Codes

// Codes are the UI-facing identifiers appended to login redirects and error
// bodies. Internal detail (constraint names, SQL, stack traces) never rides
// on them.
const (
	CodeValidation         = "validation_error"
	CodeDuplicateUsername  = "duplicate_username"
	CodeDuplicateEmail     = "duplicate_email"
	CodeInvalidCredentials = "invalid_credentials"
	CodeNotActivated       = "not_activated"
	CodeInvalidClient      = "invalid_client"
	CodeInvalidCode        = "invalid_code"
	CodeTooOften           = "too_often"
	CodeTokenExpired       = "token_expired"
	CodeTokenInvalid       = "token_invalid"
	CodeUpstream           = "upstream_unavailable"
	CodeInternal           = "internal_error"
)

// AppError is the canonical error type for the Keygate API.
//
// It carries an HTTP status code, a machine-readable code, a client-safe
// message, and an optional slice of field-level validation errors.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details (e.g., SQL queries).
type AppError struct {
	// Code is a stable machine-readable error identifier (e.g. "not_activated").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for validation_error responses.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the form/JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// # Domain Errors (4xx)

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// DuplicateUsername creates a 409 [AppError] for a taken username.
func DuplicateUsername() *AppError {
	return &AppError{
		Code:       CodeDuplicateUsername,
		Message:    "username already taken",
		HTTPStatus: http.StatusConflict,
	}
}

// DuplicateEmail creates a 409 [AppError] for a registered email.
func DuplicateEmail() *AppError {
	return &AppError{
		Code:       CodeDuplicateEmail,
		Message:    "email already taken",
		HTTPStatus: http.StatusConflict,
	}
}

// InvalidCredentials creates a 401 [AppError].
//
// The same value is returned for an unknown username and a wrong password so
// the response never reveals which one it was.
func InvalidCredentials() *AppError {
	return &AppError{
		Code:       CodeInvalidCredentials,
		Message:    "invalid credentials",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NotActivated creates a 403 [AppError] for a valid but unactivated account.
// It is deliberately distinct from [InvalidCredentials]: the login form shows
// a "resend activation" affordance for this code.
func NotActivated() *AppError {
	return &AppError{
		Code:       CodeNotActivated,
		Message:    "account not activated",
		HTTPStatus: http.StatusForbidden,
	}
}

// InvalidClient creates a 400 [AppError] covering both an unknown client_id
// and a redirect_uri mismatch. The message is identical for both so the
// response does not reveal which field was wrong; the distinction lives in
// server-side logs only.
func InvalidClient() *AppError {
	return &AppError{
		Code:       CodeInvalidClient,
		Message:    "invalid client or redirect URI",
		HTTPStatus: http.StatusBadRequest,
	}
}

// InvalidCode creates a 400 [AppError] for an unknown, consumed, or expired
// code. The three cases share one message.
func InvalidCode() *AppError {
	return &AppError{
		Code:       CodeInvalidCode,
		Message:    "invalid or expired code",
		HTTPStatus: http.StatusBadRequest,
	}
}

// RedirectMismatch creates a 400 [AppError] for a redirect_uri that does not
// match the registration at the token exchange. The caller has already proven
// its client_secret by this point, so the mismatch is a grant defect rather
// than a client-authentication one and carries the invalid_code code.
func RedirectMismatch() *AppError {
	return &AppError{
		Code:       CodeInvalidCode,
		Message:    "redirect uri mismatch",
		HTTPStatus: http.StatusBadRequest,
	}
}

// TooOften creates a 429 [AppError] for a rate-limited operation.
func TooOften() *AppError {
	return &AppError{
		Code:       CodeTooOften,
		Message:    "too_often",
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// TokenExpired creates a 401 [AppError] for a structurally valid token whose
// expiry has passed.
func TokenExpired() *AppError {
	return &AppError{
		Code:       CodeTokenExpired,
		Message:    "expired token",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// TokenInvalid creates a 401 [AppError] for a malformed, tampered, or
// wrong-kind token.
func TokenInvalid() *AppError {
	return &AppError{
		Code:       CodeTokenInvalid,
		Message:    "invalid token",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// # Server Errors (5xx)

// Upstream creates a 503 [AppError] for a failing dependency (database,
// redis, SMTP). The cause is stored for logging but is never sent to the client.
func Upstream(cause error) *AppError {
	return &AppError{
		Code:       CodeUpstream,
		Message:    "service temporarily unavailable",
		HTTPStatus: http.StatusServiceUnavailable,
		Cause:      cause,
	}
}

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "an unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
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

// HasCode reports whether err carries the given stable code.
func HasCode(err error, code string) bool {
	ae := As(err)
	return ae != nil && ae.Code == code
}
