// Copyright (c) 2026 Keygate. All rights reserved.

// Package schema centralizes table and column names used by the Postgres
// repositories, so queries never embed raw identifier strings.
package schema

// UsersTable represents the 'users' table
type UsersTable struct {
	Table        string
	ID           string
	Username     string
	Email        string
	PasswordHash string
	ActivatedAt  string
	CreatedAt    string
	UpdatedAt    string
}

// Users is the schema definition for the users table.
//
// updated_at is maintained by a database trigger; application code never
// writes it.
var Users = UsersTable{
	Table:        "users",
	ID:           "id",
	Username:     "username",
	Email:        "email",
	PasswordHash: "password_hash",
	ActivatedAt:  "activated_at",
	CreatedAt:    "created_at",
	UpdatedAt:    "updated_at",
}

// Columns returns all standard column names
func (t UsersTable) Columns() []string {
	return []string{
		t.ID, t.Username, t.Email, t.PasswordHash,
		t.ActivatedAt, t.CreatedAt, t.UpdatedAt,
	}
}
