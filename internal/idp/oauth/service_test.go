// Copyright (c) 2026 Keygate. All rights reserved.

package oauth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keygate/keygate/internal/idp/client"
	"github.com/keygate/keygate/internal/idp/oauth"
	"github.com/keygate/keygate/internal/idp/token"
	"github.com/keygate/keygate/internal/platform/apperr"
	"github.com/keygate/keygate/internal/platform/dberr"
)

// # Fakes

type fakeClientRepo struct {
	clients map[string]*client.Client
}

func (f *fakeClientRepo) Create(_ context.Context, c *client.Client) error {
	clone := *c
	f.clients[c.ClientID] = &clone
	return nil
}

func (f *fakeClientRepo) FindByClientID(_ context.Context, clientID string) (*client.Client, error) {
	if c, ok := f.clients[clientID]; ok {
		clone := *c
		return &clone, nil
	}
	return nil, dberr.ErrNotFound
}

func (f *fakeClientRepo) List(_ context.Context) ([]client.Client, error) {
	return nil, nil
}

// fakeUsageStore mirrors SET NX with a mutex.
type fakeUsageStore struct {
	mu   sync.Mutex
	used map[string]bool
}

func (f *fakeUsageStore) MarkUsed(_ context.Context, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.used[code] {
		return false, nil
	}
	f.used[code] = true
	return true, nil
}

// # Harness

type harness struct {
	service *oauth.Service
	tokens  *token.Service
	secret  string
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	clients := client.NewService(&fakeClientRepo{clients: make(map[string]*client.Client)})
	_, secret, err := clients.Register(context.Background(), "acme-web", "https://acme.example/callback")
	require.NoError(t, err)

	tokens := token.NewService("test-signing-secret-0123456789abcdef")

	return &harness{
		service: oauth.NewService(clients, tokens, &fakeUsageStore{used: make(map[string]bool)}),
		tokens:  tokens,
		secret:  secret,
	}
}

func (h *harness) mintCode(t *testing.T, clientID string) string {
	t.Helper()
	code, err := h.tokens.Issue(token.KindAuthorizationCode, clientID, "user-123", 5*time.Minute)
	require.NoError(t, err)
	return code
}

func (h *harness) input(code string) oauth.ExchangeInput {
	return oauth.ExchangeInput{
		GrantType:    oauth.GrantAuthorizationCode,
		Code:         code,
		ClientID:     "acme-web",
		ClientSecret: h.secret,
		RedirectURI:  "https://acme.example/callback",
	}
}

// # Tests

func TestExchange(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	grant, err := h.service.Exchange(ctx, h.input(h.mintCode(t, "acme-web")))
	require.NoError(t, err)

	assert.Equal(t, "Bearer", grant.TokenType)
	assert.Equal(t, int64(3600), grant.ExpiresIn)

	claims, err := h.tokens.Verify(grant.AccessToken, token.KindAccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, "acme-web", claims.ClientID())
}

func TestExchange_ClientAuthentication(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	code := h.mintCode(t, "acme-web")

	t.Run("unknown_client", func(t *testing.T) {
		input := h.input(code)
		input.ClientID = "who-dis"
		_, err := h.service.Exchange(ctx, input)
		assert.True(t, apperr.HasCode(err, apperr.CodeInvalidClient))
	})

	t.Run("wrong_secret", func(t *testing.T) {
		input := h.input(code)
		input.ClientSecret = "not-the-secret"
		_, err := h.service.Exchange(ctx, input)
		assert.True(t, apperr.HasCode(err, apperr.CodeInvalidClient))
	})

	// An authenticated client with a mismatched redirect_uri gets a grant
	// error, not a client-authentication one.
	t.Run("wrong_redirect", func(t *testing.T) {
		input := h.input(code)
		input.RedirectURI = "https://acme.example/callback/"
		_, err := h.service.Exchange(ctx, input)
		require.True(t, apperr.HasCode(err, apperr.CodeInvalidCode))
		assert.Equal(t, "redirect uri mismatch", apperr.As(err).Message)
	})

	t.Run("unsupported_grant_type", func(t *testing.T) {
		input := h.input(code)
		input.GrantType = "password"
		_, err := h.service.Exchange(ctx, input)
		assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
	})
}

func TestExchange_CodeDefects(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	t.Run("garbage_code", func(t *testing.T) {
		_, err := h.service.Exchange(ctx, h.input("not.a.jwt"))
		assert.True(t, apperr.HasCode(err, apperr.CodeTokenInvalid))
	})

	t.Run("expired_code", func(t *testing.T) {
		expired, err := h.tokens.Issue(token.KindAuthorizationCode, "acme-web", "user-123", -time.Minute)
		require.NoError(t, err)
		_, err = h.service.Exchange(ctx, h.input(expired))
		assert.True(t, apperr.HasCode(err, apperr.CodeTokenExpired))
	})

	t.Run("access_token_as_code", func(t *testing.T) {
		bearer, err := h.tokens.Issue(token.KindAccessToken, "acme-web", "user-123", time.Minute)
		require.NoError(t, err)
		_, err = h.service.Exchange(ctx, h.input(bearer))
		assert.True(t, apperr.HasCode(err, apperr.CodeTokenInvalid))
	})

	t.Run("foreign_audience", func(t *testing.T) {
		_, err := h.service.Exchange(ctx, h.input(h.mintCode(t, "other-app")))
		assert.True(t, apperr.HasCode(err, apperr.CodeInvalidCode))
	})
}

func TestExchange_SingleUse(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	code := h.mintCode(t, "acme-web")

	_, err := h.service.Exchange(ctx, h.input(code))
	require.NoError(t, err)

	_, err = h.service.Exchange(ctx, h.input(code))
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidCode))
}

// TestExchange_ConcurrentReplay races N exchanges of one code; exactly one
// may mint a token.
func TestExchange_ConcurrentReplay(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	code := h.mintCode(t, "acme-web")

	const racers = 8
	results := make(chan error, racers)

	var start sync.WaitGroup
	start.Add(1)
	for i := 0; i < racers; i++ {
		go func() {
			start.Wait()
			_, err := h.service.Exchange(ctx, h.input(code))
			results <- err
		}()
	}
	start.Done()

	var wins int
	for i := 0; i < racers; i++ {
		if err := <-results; err == nil {
			wins++
		}
	}

	assert.Equal(t, 1, wins)
}
