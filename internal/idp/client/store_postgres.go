// Copyright (c) 2026 Keygate. All rights reserved.

package client

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/keygate/keygate/internal/platform/database/schema"
	"github.com/keygate/keygate/internal/platform/dberr"
)

// PostgresRepository implements the [Repository] interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL implementation of the [Repository].
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

/*
Create registers a new relying application.

Parameters:
  - ctx: context.Context
  - client: *Client (SecretHash must already be an argon2id digest)

Returns:
  - error: Unique violations on client_id, execution errors
*/
func (repository *PostgresRepository) Create(ctx context.Context, client *Client) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)
		RETURNING %s, %s`,
		schema.Clients.Table,
		schema.Clients.ID, schema.Clients.ClientID, schema.Clients.ClientSecret, schema.Clients.RedirectURI,
		schema.Clients.CreatedAt, schema.Clients.UpdatedAt,
	)

	err := repository.pool.QueryRow(ctx, query,
		client.ID,
		client.ClientID,
		client.SecretHash,
		client.RedirectURI,
	).Scan(&client.CreatedAt, &client.UpdatedAt)

	if err != nil {
		return dberr.Wrap(err, "client_create")
	}

	return nil
}

/*
FindByClientID retrieves a client registration by its public identifier.

Parameters:
  - ctx: context.Context
  - clientID: string

Returns:
  - *Client: Hydrated registration
  - error: dberr.ErrNotFound or execution errors
*/
func (repository *PostgresRepository) FindByClientID(ctx context.Context, clientID string) (*Client, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1`,
		schema.Clients.ID, schema.Clients.ClientID, schema.Clients.ClientSecret, schema.Clients.RedirectURI,
		schema.Clients.CreatedAt, schema.Clients.UpdatedAt,
		schema.Clients.Table,
		schema.Clients.ClientID,
	)

	registration := &Client{}
	err := repository.pool.QueryRow(ctx, query, clientID).Scan(
		&registration.ID,
		&registration.ClientID,
		&registration.SecretHash,
		&registration.RedirectURI,
		&registration.CreatedAt,
		&registration.UpdatedAt,
	)

	if err != nil {
		return nil, dberr.Wrap(err, "client_find_by_client_id")
	}

	return registration, nil
}

/*
List returns all registered clients, newest first.

Returns:
  - []Client: The full registry
  - error: Execution errors
*/
func (repository *PostgresRepository) List(ctx context.Context) ([]Client, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM %s
		ORDER BY %s DESC`,
		schema.Clients.ID, schema.Clients.ClientID, schema.Clients.ClientSecret, schema.Clients.RedirectURI,
		schema.Clients.CreatedAt, schema.Clients.UpdatedAt,
		schema.Clients.Table,
		schema.Clients.CreatedAt,
	)

	rows, err := repository.pool.Query(ctx, query)
	if err != nil {
		return nil, dberr.Wrap(err, "client_list")
	}
	defer rows.Close()

	clients, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Client, error) {
		var c Client
		err := row.Scan(&c.ID, &c.ClientID, &c.SecretHash, &c.RedirectURI, &c.CreatedAt, &c.UpdatedAt)
		return c, err
	})
	if err != nil {
		return nil, dberr.Wrap(err, "client_list_scan")
	}

	return clients, nil
}
