// Copyright (c) 2026 Keygate. All rights reserved.

package user

import "context"

// # User Data Access

// Repository defines the data access contract for user accounts.
//
// Absent rows surface as [dberr.ErrNotFound]; unique-constraint violations
// surface as the duplicate_username / duplicate_email application errors.
type Repository interface {

	// Create persists a brand-new user account.
	Create(ctx context.Context, user *User) error

	// FindByID returns the account with the given ID.
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByUsername returns the account with the given (normalized) username.
	FindByUsername(ctx context.Context, username string) (*User, error)

	// FindByEmail returns the account with the given email.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// MarkActivated sets activated_at for an unactivated account. Calling it
	// on an already-activated account is a no-op success: activation is
	// monotonic and never reset.
	MarkActivated(ctx context.Context, id string) error

	// UpdatePassword replaces only the user's password hash.
	UpdatePassword(ctx context.Context, id, newHash string) error
}
