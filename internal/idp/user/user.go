// Copyright (c) 2026 Keygate. All rights reserved.

/*
Package user implements the credential store: account records, memory-hard
password verification, and the monotonic activation flag.

# Architecture

This layer is the "Truth" of the system. The entity defined here has no
transport dependencies and encapsulates the identity rules: unique username
and email, hash-only password storage, and activated_at set exactly once.
*/
package user

import (
	"time"

	"golang.org/x/text/secure/precis"

	"github.com/keygate/keygate/internal/platform/apperr"
)

// # Domain Entities

// User represents a registered account.
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // Explicitly omitted from JSON for security.
	ActivatedAt  *time.Time `json:"activated_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsActivated reports whether the account has completed email activation.
func (user *User) IsActivated() bool {
	return user.ActivatedAt != nil
}

// # Normalization

// NormalizeUsername canonicalizes a username with the PRECIS
// UsernameCaseMapped profile (RFC 8265): case-folded, confusable-hostile.
// Both registration and login normalize before touching storage, so
// "Alice" and "alice" are the same account.
func NormalizeUsername(username string) (string, error) {
	normalized, err := precis.UsernameCaseMapped.String(username)
	if err != nil {
		return "", apperr.ValidationError("username contains invalid characters")
	}
	return normalized, nil
}

// # Field Identifiers

const (
	FieldUsername = "username"
	FieldEmail    = "email"
	FieldPassword = "password"
)
