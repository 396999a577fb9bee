// Copyright (c) 2026 Keygate. All rights reserved.

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
//
// It is the single place where Postgres SQLSTATEs and constraint names are
// interpreted; no client-visible message ever contains them.
package dberr

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/keygate/keygate/internal/platform/apperr"
)

// Constraint names from data/migrations. Duplicate detection keys off these,
// not off error message text.
const (
	ConstraintUniqueUsername = "users_username_key"
	ConstraintUniqueEmail    = "users_email_key"
)

// ErrNotFound is a standard error returned when a queried row doesn't exist.
var ErrNotFound = errors.New("dberr: row not found")

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	// 2. Unique-constraint violations are classified by constraint name so
	// that the registration flow can surface duplicate_username vs
	// duplicate_email instead of a generic storage failure.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		switch pgErr.ConstraintName {
		case ConstraintUniqueUsername:
			return apperr.DuplicateUsername()
		case ConstraintUniqueEmail:
			return apperr.DuplicateEmail()
		}
		// Unknown unique constraint: still a conflict, but unexpected.
		return apperr.Internal(err)
	}

	// 3. Connectivity problems surface as upstream_unavailable so the
	// transport layer can answer with a 503 rather than a 500.
	if pgconn.Timeout(err) {
		return apperr.Upstream(err)
	}

	// 4. Everything else becomes an internal server error.
	return apperr.Internal(err)
}
