// Copyright (c) 2026 Keygate. All rights reserved.

package client_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keygate/keygate/internal/idp/client"
	"github.com/keygate/keygate/internal/platform/apperr"
	"github.com/keygate/keygate/internal/platform/dberr"
)

type fakeRepository struct {
	clients map[string]*client.Client // keyed by client_id
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{clients: make(map[string]*client.Client)}
}

func (f *fakeRepository) Create(_ context.Context, c *client.Client) error {
	clone := *c
	f.clients[c.ClientID] = &clone
	return nil
}

func (f *fakeRepository) FindByClientID(_ context.Context, clientID string) (*client.Client, error) {
	if c, ok := f.clients[clientID]; ok {
		clone := *c
		return &clone, nil
	}
	return nil, dberr.ErrNotFound
}

func (f *fakeRepository) List(_ context.Context) ([]client.Client, error) {
	out := make([]client.Client, 0, len(f.clients))
	for _, c := range f.clients {
		out = append(out, *c)
	}
	return out, nil
}

func TestLookup(t *testing.T) {
	repo := newFakeRepository()
	service := client.NewService(repo)
	ctx := context.Background()

	registered, secret, err := service.Register(ctx, "acme-web", "https://acme.example/callback")
	require.NoError(t, err)
	require.NotEmpty(t, secret)

	t.Run("known_client", func(t *testing.T) {
		got, err := service.Lookup(ctx, "acme-web")
		require.NoError(t, err)
		assert.Equal(t, registered.ID, got.ID)
	})

	t.Run("unknown_client", func(t *testing.T) {
		_, err := service.Lookup(ctx, "who-dis")
		assert.True(t, apperr.HasCode(err, apperr.CodeInvalidClient))
	})

	t.Run("empty_client_id", func(t *testing.T) {
		_, err := service.Lookup(ctx, "")
		assert.True(t, apperr.HasCode(err, apperr.CodeInvalidClient))
	})
}

func TestValidateRedirect(t *testing.T) {
	service := client.NewService(newFakeRepository())
	ctx := context.Background()

	registration := &client.Client{
		ClientID:    "acme-web",
		RedirectURI: "https://acme.example/callback",
	}

	tests := []struct {
		name     string
		redirect string
		wantErr  bool
	}{
		{"exact_match", "https://acme.example/callback", false},
		{"trailing_slash", "https://acme.example/callback/", true},
		{"different_case", "https://ACME.example/callback", true},
		{"different_scheme", "http://acme.example/callback", true},
		{"extra_query", "https://acme.example/callback?x=1", true},
		{"subpath", "https://acme.example/callback/../evil", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.ValidateRedirect(ctx, registration, tt.redirect)
			if tt.wantErr {
				assert.True(t, apperr.HasCode(err, apperr.CodeInvalidClient))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestVerifySecret(t *testing.T) {
	repo := newFakeRepository()
	service := client.NewService(repo)
	ctx := context.Background()

	_, secret, err := service.Register(ctx, "acme-web", "https://acme.example/callback")
	require.NoError(t, err)

	registration, err := service.Lookup(ctx, "acme-web")
	require.NoError(t, err)

	assert.NoError(t, service.VerifySecret(ctx, registration, secret))

	err = service.VerifySecret(ctx, registration, "not-the-secret")
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidClient))
}

// TestRegister_SecretNeverStored asserts the registry keeps only a digest.
func TestRegister_SecretNeverStored(t *testing.T) {
	repo := newFakeRepository()
	service := client.NewService(repo)

	_, secret, err := service.Register(context.Background(), "acme-web", "https://acme.example/callback")
	require.NoError(t, err)

	stored := repo.clients["acme-web"]
	assert.NotEqual(t, secret, stored.SecretHash)
	assert.NotContains(t, stored.SecretHash, secret)
}
