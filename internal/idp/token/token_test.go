// Copyright (c) 2026 Keygate. All rights reserved.

package token_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keygate/keygate/internal/idp/token"
	"github.com/keygate/keygate/internal/platform/apperr"
)

const testSecret = "test-signing-secret-0123456789abcdef"

func TestIssueAndVerify(t *testing.T) {
	service := token.NewService(testSecret)

	signed, err := service.Issue(token.KindAccessToken, "acme-web", "user-123", time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	claims, err := service.Verify(signed, token.KindAccessToken)
	require.NoError(t, err)

	assert.Equal(t, token.KindAccessToken, claims.Kind)
	assert.Equal(t, "acme-web", claims.ClientID())
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, "keygate", claims.Issuer)
	assert.WithinDuration(t, time.Now().Add(time.Minute), claims.ExpiresAt.Time, 5*time.Second)
}

func TestVerify_KindMismatch(t *testing.T) {
	service := token.NewService(testSecret)

	code, err := service.Issue(token.KindAuthorizationCode, "acme-web", "user-123", time.Minute)
	require.NoError(t, err)

	// An authorization code must never pass as a bearer token.
	_, err = service.Verify(code, token.KindAccessToken)
	assert.True(t, apperr.HasCode(err, apperr.CodeTokenInvalid))
}

func TestVerify_Expired(t *testing.T) {
	service := token.NewService(testSecret)

	signed, err := service.Issue(token.KindAccessToken, "acme-web", "user-123", -time.Minute)
	require.NoError(t, err)

	_, err = service.Verify(signed, token.KindAccessToken)
	assert.True(t, apperr.HasCode(err, apperr.CodeTokenExpired))
}

func TestVerify_Tampered(t *testing.T) {
	service := token.NewService(testSecret)

	signed, err := service.Issue(token.KindAccessToken, "acme-web", "user-123", time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"flipped_last_byte", signed[:len(signed)-1] + flip(signed[len(signed)-1])},
		{"truncated", signed[:len(signed)/2]},
		{"garbage", "not.a.jwt"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Verify(tt.token, token.KindAccessToken)
			assert.True(t, apperr.HasCode(err, apperr.CodeTokenInvalid))
		})
	}
}

func TestVerify_WrongKey(t *testing.T) {
	signed, err := token.NewService(testSecret).Issue(token.KindAccessToken, "acme-web", "user-123", time.Minute)
	require.NoError(t, err)

	_, err = token.NewService("a-different-signing-secret").Verify(signed, token.KindAccessToken)
	assert.True(t, apperr.HasCode(err, apperr.CodeTokenInvalid))
}

// flip returns a different base64url character for the given one.
func flip(b byte) string {
	if b == 'A' {
		return "B"
	}
	return "A"
}
