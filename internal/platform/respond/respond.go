// Copyright (c) 2026 Keygate. All rights reserved.

// Package respond provides HTTP response helpers used by all API handlers.
//
// # Architecture
//
// This package centralizes the presentation logic for HTTP responses. The
// HTML form collaborators consume plain-text error bodies and query-string
// error codes, while the OAuth token endpoint speaks JSON — both shapes are
// produced here so handlers never write raw bodies themselves.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/keygate/keygate/internal/platform/apperr"
	"github.com/keygate/keygate/internal/platform/ctxutil"
)

// JSON writes a JSON response with the given status code.
func JSON(writer http.ResponseWriter, statusCode int, payload interface{}) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(statusCode)
	_ = json.NewEncoder(writer).Encode(payload)
}

// OK writes a 200 OK response with a JSON body.
func OK(writer http.ResponseWriter, data interface{}) {
	JSON(writer, http.StatusOK, data)
}

// Text writes a plain-text response with the given status code.
func Text(writer http.ResponseWriter, statusCode int, body string) {
	writer.Header().Set("Content-Type", "text/plain; charset=utf-8")
	writer.WriteHeader(statusCode)
	_, _ = writer.Write([]byte(body))
}

// Empty writes an empty 200 OK response.
func Empty(writer http.ResponseWriter) {
	writer.WriteHeader(http.StatusOK)
}

// PlainError converts any Go error into the plain-text error contract used
// by the form endpoints (register, activate, send-activation): a non-2xx
// status with the stable client-safe message as the body.
func PlainError(writer http.ResponseWriter, request *http.Request, err error) {
	appError := classify(request, err)
	Text(writer, appError.HTTPStatus, appError.Message)
}

// OAuthEnvelope is the RFC 6749 error shape for the token endpoint.
type OAuthEnvelope struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// OAuthError writes an RFC 6749 style JSON error body.
func OAuthError(writer http.ResponseWriter, status int, code, description string) {
	JSON(writer, status, OAuthEnvelope{Error: code, ErrorDescription: description})
}

// Error converts any Go error into a standardized JSON API error response.
// Used by the JSON endpoints (profile, health).
func Error(writer http.ResponseWriter, request *http.Request, err error) {
	appError := classify(request, err)
	JSON(writer, appError.HTTPStatus, map[string]string{
		"error": appError.Message,
		"code":  appError.Code,
	})
}

// classify normalizes err into an [*apperr.AppError] and logs server-side
// failures with request correlation. Causes stay in the log, never in the body.
func classify(request *http.Request, err error) *apperr.AppError {
	var appError *apperr.AppError
	if !errors.As(err, &appError) {
		// Unexpected internal error: log full details but hide them from the client.
		logger := ctxutil.GetLogger(request.Context())
		logger.ErrorContext(request.Context(), "unhandled_error_swallowed",
			slog.String("error", err.Error()),
			slog.String("request_id", ctxutil.GetRequestID(request.Context())),
		)
		appError = apperr.Internal(err)
	}

	// Always log 5xx errors as they indicate server-side issues.
	if appError.HTTPStatus >= 500 {
		logger := ctxutil.GetLogger(request.Context())
		logger.ErrorContext(request.Context(), "api_server_error",
			slog.String("code", appError.Code),
			slog.String("request_id", ctxutil.GetRequestID(request.Context())),
			slog.Any("cause", appError.Cause),
		)
	}

	return appError
}
