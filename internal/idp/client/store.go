// Copyright (c) 2026 Keygate. All rights reserved.

package client

import "context"

// # Client Data Access

// Repository defines the data access contract for the client registry.
//
// Missing rows surface as [dberr.ErrNotFound]; the service layer translates
// that into the opaque invalid_client error so callers cannot probe which
// client_ids exist.
type Repository interface {

	// Create registers a new relying application.
	Create(ctx context.Context, client *Client) error

	// FindByClientID returns the registration for the public client_id.
	FindByClientID(ctx context.Context, clientID string) (*Client, error)

	// List returns every registered client, newest first.
	List(ctx context.Context) ([]Client, error)
}
