// Copyright (c) 2026 Keygate. All rights reserved.

package client

import (
	"context"
	"errors"
	"log/slog"

	"github.com/keygate/keygate/internal/platform/apperr"
	"github.com/keygate/keygate/internal/platform/ctxutil"
	"github.com/keygate/keygate/internal/platform/dberr"
	"github.com/keygate/keygate/internal/platform/sec"
	"github.com/keygate/keygate/pkg/uuid"
)

// # Service Layer

// Service resolves and verifies relying-application registrations.
type Service struct {
	repo Repository
}

// NewService creates the client registry service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

/*
Lookup resolves a client_id to its registration.

Description: An unknown client_id and (downstream) a redirect mismatch both
collapse to the single invalid_client error. The distinction is recorded in
server logs, never in the response, so a probing caller learns nothing about
which client_ids are registered.

Parameters:
  - ctx: context.Context
  - clientID: string

Returns:
  - *Client: The registration
  - error: invalid_client, execution errors
*/
func (service *Service) Lookup(ctx context.Context, clientID string) (*Client, error) {
	if clientID == "" {
		return nil, apperr.InvalidClient()
	}

	registration, err := service.repo.FindByClientID(ctx, clientID)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			ctxutil.GetLogger(ctx).WarnContext(ctx, "unknown_client",
				slog.String("client_id", clientID),
			)
			return nil, apperr.InvalidClient()
		}
		return nil, err
	}

	return registration, nil
}

/*
ValidateRedirect checks a submitted redirect URI against the registration.

Description: The comparison is byte-exact. No scheme normalization, no
trailing-slash forgiveness, no case folding; anything but an identical
string is a mismatch. Loose matching here is an open-redirect vector.

Parameters:
  - ctx: context.Context
  - registration: *Client
  - redirectURI: string

Returns:
  - error: invalid_client on mismatch
*/
func (service *Service) ValidateRedirect(ctx context.Context, registration *Client, redirectURI string) error {
	if redirectURI != registration.RedirectURI {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "redirect_uri_mismatch",
			slog.String("client_id", registration.ClientID),
		)
		return apperr.InvalidClient()
	}
	return nil
}

/*
VerifySecret checks a presented client secret against the stored digest.

Parameters:
  - ctx: context.Context
  - registration: *Client
  - secret: string (plaintext from the token exchange request)

Returns:
  - error: invalid_client on mismatch
*/
func (service *Service) VerifySecret(ctx context.Context, registration *Client, secret string) error {
	if !sec.CheckPasswordHash(secret, registration.SecretHash) {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "client_secret_mismatch",
			slog.String("client_id", registration.ClientID),
		)
		return apperr.InvalidClient()
	}
	return nil
}

/*
Register provisions a new relying application and returns the plaintext
secret exactly once. Only adminctl calls this; the HTTP surface has no
client-provisioning endpoint.

Parameters:
  - ctx: context.Context
  - clientID: string (public identifier chosen by the operator)
  - redirectURI: string

Returns:
  - *Client: The stored registration
  - string: The generated plaintext secret
  - error: Execution errors
*/
func (service *Service) Register(ctx context.Context, clientID, redirectURI string) (*Client, string, error) {
	secret, err := sec.GenerateSecureToken(32)
	if err != nil {
		return nil, "", apperr.Internal(err)
	}

	hash, err := sec.HashPassword(secret)
	if err != nil {
		return nil, "", apperr.Internal(err)
	}

	registration := &Client{
		ID:          uuid.New(),
		ClientID:    clientID,
		SecretHash:  hash,
		RedirectURI: redirectURI,
	}

	if err := service.repo.Create(ctx, registration); err != nil {
		return nil, "", err
	}

	return registration, secret, nil
}

// List returns every registered client.
func (service *Service) List(ctx context.Context) ([]Client, error) {
	return service.repo.List(ctx)
}
