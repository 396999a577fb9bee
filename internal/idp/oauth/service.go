// Copyright (c) 2026 Keygate. All rights reserved.

/*
Package oauth implements the authorization-code token exchange.

The flow is the server-to-server half of the login handshake: the browser
carried an authorization code to the relying client's redirect URI, and the
client now trades it, authenticated by its client_secret, for a bearer
access token. Codes are bound to one client, expire after minutes, and are
refused on any second exchange.
*/
package oauth

import (
	"context"
	"log/slog"

	"github.com/keygate/keygate/internal/idp/client"
	"github.com/keygate/keygate/internal/idp/token"
	"github.com/keygate/keygate/internal/platform/apperr"
	"github.com/keygate/keygate/internal/platform/constants"
	"github.com/keygate/keygate/internal/platform/ctxutil"
)

// GrantAuthorizationCode is the only grant type the exchange accepts.
const GrantAuthorizationCode = "authorization_code"

// # Service Layer

// Service performs the authorization-code exchange.
type Service struct {
	clients *client.Service
	tokens  *token.Service
	usage   token.UsageStore
}

// NewService creates the exchange service.
func NewService(clients *client.Service, tokens *token.Service, usage token.UsageStore) *Service {
	return &Service{
		clients: clients,
		tokens:  tokens,
		usage:   usage,
	}
}

// ExchangeInput carries the token exchange request body.
type ExchangeInput struct {
	GrantType    string `json:"grant_type"`
	Code         string `json:"code"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RedirectURI  string `json:"redirect_uri"`
}

// Grant is the successful exchange response.
type Grant struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

/*
Exchange trades an authorization code for an access token.

Description: Client authentication runs before any code inspection, a caller
who cannot prove its client_secret learns nothing about the code it holds.
The code must verify as an authorization-code token, carry the exchanging
client in its audience, and be on its first exchange; the single-use marker
is claimed before the access token is minted, so two racing exchanges cannot
both succeed.

Parameters:
  - ctx: context.Context
  - input: ExchangeInput

Returns:
  - *Grant: Bearer token and lifetime
  - error: invalid_client, invalid_code (redirect mismatch, bad/expired/
    replayed/foreign code), validation_error (unsupported grant),
    upstream_unavailable
*/
func (service *Service) Exchange(ctx context.Context, input ExchangeInput) (*Grant, error) {
	registration, err := service.clients.Lookup(ctx, input.ClientID)
	if err != nil {
		return nil, err
	}

	if err := service.clients.VerifySecret(ctx, registration, input.ClientSecret); err != nil {
		return nil, err
	}

	if input.GrantType != GrantAuthorizationCode {
		return nil, apperr.ValidationError("unsupported grant_type")
	}

	// The client is authenticated at this point, so a redirect_uri mismatch
	// is reported as a grant problem (RFC 6749 section 5.2), not as a
	// client-authentication one like it is on the login form.
	if err := service.clients.ValidateRedirect(ctx, registration, input.RedirectURI); err != nil {
		return nil, apperr.RedirectMismatch()
	}

	claims, err := service.tokens.Verify(input.Code, token.KindAuthorizationCode)
	if err != nil {
		return nil, err
	}

	// A code minted for one client is worthless to every other client,
	// even one holding valid credentials of its own.
	if claims.ClientID() != registration.ClientID {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "code_audience_mismatch",
			slog.String("client_id", registration.ClientID),
		)
		return nil, apperr.InvalidCode()
	}

	firstUse, err := service.usage.MarkUsed(ctx, input.Code)
	if err != nil {
		return nil, err
	}
	if !firstUse {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "code_replay_refused",
			slog.String("client_id", registration.ClientID),
			slog.String("user_id", claims.Subject),
		)
		return nil, apperr.InvalidCode()
	}

	accessToken, err := service.tokens.Issue(
		token.KindAccessToken, registration.ClientID, claims.Subject, constants.AccessTokenTTL,
	)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "access_token_issued",
		slog.String("client_id", registration.ClientID),
		slog.String("user_id", claims.Subject),
	)

	return &Grant{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(constants.AccessTokenTTL.Seconds()),
	}, nil
}
