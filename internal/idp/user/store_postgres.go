// Copyright (c) 2026 Keygate. All rights reserved.

package user

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/keygate/keygate/internal/platform/database/schema"
	"github.com/keygate/keygate/internal/platform/dberr"
)

// PostgresRepository implements the [Repository] interface using pgx.
//
// created_at and updated_at are owned by the database: created_at defaults
// to now(), and a trigger refreshes updated_at on every row update. No
// query here ever writes either column.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL implementation of the [Repository].
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

/*
Create persists a new user record.

Description: Inserts the account row; unique-constraint violations on
username or email are classified by [dberr.Wrap] into the stable
duplicate_username / duplicate_email errors rather than a generic storage
failure.

Parameters:
  - ctx: context.Context
  - user: *User (Entity to persist; CreatedAt/UpdatedAt are read back)

Returns:
  - error: duplicate errors, connectivity errors
*/
func (repository *PostgresRepository) Create(ctx context.Context, user *User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)
		RETURNING %s, %s`,
		schema.Users.Table,
		schema.Users.ID, schema.Users.Username, schema.Users.Email, schema.Users.PasswordHash,
		schema.Users.CreatedAt, schema.Users.UpdatedAt,
	)

	err := repository.pool.QueryRow(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
	).Scan(&user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		return dberr.Wrap(err, "user_create")
	}

	return nil
}

/*
FindByID retrieves a user record by primary key.

Parameters:
  - ctx: context.Context
  - id: string (UUIDv7)

Returns:
  - *User: Hydrated account entity
  - error: dberr.ErrNotFound or execution errors
*/
func (repository *PostgresRepository) FindByID(ctx context.Context, id string) (*User, error) {
	return repository.findBy(ctx, schema.Users.ID, id)
}

/*
FindByUsername retrieves a user record by their unique username.

Parameters:
  - ctx: context.Context
  - username: string (already PRECIS-normalized)

Returns:
  - *User: Hydrated account entity
  - error: dberr.ErrNotFound or execution errors
*/
func (repository *PostgresRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	return repository.findBy(ctx, schema.Users.Username, username)
}

/*
FindByEmail retrieves a user record by their unique email address.

Parameters:
  - ctx: context.Context
  - email: string

Returns:
  - *User: Hydrated account entity
  - error: dberr.ErrNotFound or execution errors
*/
func (repository *PostgresRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return repository.findBy(ctx, schema.Users.Email, email)
}

// findBy is the shared single-row lookup for the three unique columns.
func (repository *PostgresRepository) findBy(ctx context.Context, column, value string) (*User, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1`,
		schema.Users.ID, schema.Users.Username, schema.Users.Email, schema.Users.PasswordHash,
		schema.Users.ActivatedAt, schema.Users.CreatedAt, schema.Users.UpdatedAt,
		schema.Users.Table,
		column,
	)

	user := &User{}
	err := repository.pool.QueryRow(ctx, query, value).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.ActivatedAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		return nil, dberr.Wrap(err, "user_find_by_"+column)
	}

	return user, nil
}

/*
MarkActivated sets activated_at exactly once.

Description: The WHERE clause guards the monotonic transition — a row whose
activated_at is already set matches nothing, and zero affected rows is a
success, making the operation idempotent.

Parameters:
  - ctx: context.Context
  - id: string

Returns:
  - error: Execution errors only
*/
func (repository *PostgresRepository) MarkActivated(ctx context.Context, id string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = now()
		WHERE %s = $1 AND %s IS NULL`,
		schema.Users.Table, schema.Users.ActivatedAt,
		schema.Users.ID, schema.Users.ActivatedAt,
	)

	if _, err := repository.pool.Exec(ctx, query, id); err != nil {
		return dberr.Wrap(err, "user_mark_activated")
	}

	return nil
}

/*
UpdatePassword updates only the password hash for a specific user.

Parameters:
  - ctx: context.Context
  - id: string
  - newHash: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresRepository) UpdatePassword(ctx context.Context, id, newHash string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $2
		WHERE %s = $1`,
		schema.Users.Table, schema.Users.PasswordHash, schema.Users.ID,
	)

	if _, err := repository.pool.Exec(ctx, query, id, newHash); err != nil {
		return dberr.Wrap(err, "user_update_password")
	}

	return nil
}
