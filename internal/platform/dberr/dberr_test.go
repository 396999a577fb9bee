// Copyright (c) 2026 Keygate. All rights reserved.

package dberr_test

import (
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/keygate/keygate/internal/platform/apperr"
	"github.com/keygate/keygate/internal/platform/dberr"
)

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{
		Code:           pgerrcode.UniqueViolation,
		ConstraintName: constraint,
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"username_constraint", uniqueViolation(dberr.ConstraintUniqueUsername), apperr.CodeDuplicateUsername},
		{"email_constraint", uniqueViolation(dberr.ConstraintUniqueEmail), apperr.CodeDuplicateEmail},
		{"unknown_constraint", uniqueViolation("sessions_token_key"), apperr.CodeInternal},
		{"other_pg_error", &pgconn.PgError{Code: pgerrcode.SyntaxError}, apperr.CodeInternal},
		{"plain_error", errors.New("boom"), apperr.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := dberr.Wrap(tt.err, "test_action")
			assert.True(t, apperr.HasCode(wrapped, tt.wantCode), "got %v", wrapped)
		})
	}
}

func TestWrap_NoRows(t *testing.T) {
	assert.ErrorIs(t, dberr.Wrap(pgx.ErrNoRows, "test_action"), dberr.ErrNotFound)
}

func TestWrap_Nil(t *testing.T) {
	assert.NoError(t, dberr.Wrap(nil, "test_action"))
}
