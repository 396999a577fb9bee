// Copyright (c) 2026 Keygate. All rights reserved.

/*
Package token signs and verifies the two JWT kinds Keygate issues.

# Token Kinds

  - "authorization_code": a short-lived one-time pass handed back through the
    login redirect, exchanged by the relying client for an access token.
  - "access_token": the bearer token relying clients present on behalf of a
    user.

Both kinds carry the same claim shape and differ only in the jwt_type claim
and lifetime. Codes are additionally marked used in Redis on exchange so a
replay inside the lifetime window is refused.
*/
package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/keygate/keygate/internal/platform/apperr"
	"github.com/keygate/keygate/internal/platform/constants"
)

// # Token Kinds

const (
	KindAuthorizationCode = "authorization_code"
	KindAccessToken       = "access_token"
)

// Claims is the claim set carried by every Keygate token.
//
// aud holds the client_id the token was issued to and sub the user it
// represents. jwt_type discriminates the two kinds so an authorization code
// can never be replayed as a bearer token.
type Claims struct {
	Kind string `json:"jwt_type"`
	jwt.RegisteredClaims
}

// Service signs and verifies tokens with a single HS256 key.
type Service struct {
	secret []byte
}

// NewService creates the token service around the shared signing secret.
func NewService(secret string) *Service {
	return &Service{secret: []byte(secret)}
}

/*
Issue signs a token of the given kind.

Parameters:
  - kind: string (KindAuthorizationCode or KindAccessToken)
  - clientID: string (becomes the aud claim)
  - userID: string (becomes the sub claim)
  - ttl: time.Duration

Returns:
  - string: The compact JWS
  - error: Signing errors
*/
func (service *Service) Issue(kind, clientID, userID string, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := Claims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    constants.AuthIssuer,
			Audience:  jwt.ClaimStrings{clientID},
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(service.secret)
	if err != nil {
		return "", fmt.Errorf("token: sign %s: %w", kind, err)
	}

	return signed, nil
}

/*
Verify parses and validates a token, requiring the given kind.

Description: Signature, expiry, and issuer are checked by the parser; the
jwt_type claim is checked here. Expiry maps to token_expired and every other
defect, wrong signature, malformed payload, wrong issuer, wrong kind, maps
to token_invalid.

Parameters:
  - tokenString: string (compact JWS)
  - kind: string (expected jwt_type)

Returns:
  - *Claims: The validated claim set
  - error: token_expired, token_invalid
*/
func (service *Service) Verify(tokenString, kind string) (*Claims, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return service.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(constants.AuthIssuer),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.TokenExpired()
		}
		return nil, apperr.TokenInvalid()
	}

	if claims.Kind != kind {
		return nil, apperr.TokenInvalid()
	}

	return claims, nil
}

// ClientID returns the single audience entry, or "" when absent.
func (claims *Claims) ClientID() string {
	if len(claims.Audience) == 0 {
		return ""
	}
	return claims.Audience[0]
}

// # Single-Use Markers

// UsageStore records authorization codes that have already been exchanged.
type UsageStore interface {

	// MarkUsed records a code's first exchange. It returns false when the
	// code was already marked, which means a replay.
	MarkUsed(ctx context.Context, code string) (bool, error)
}
