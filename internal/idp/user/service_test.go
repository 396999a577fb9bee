// Copyright (c) 2026 Keygate. All rights reserved.

package user_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keygate/keygate/internal/idp/user"
	"github.com/keygate/keygate/internal/platform/apperr"
	"github.com/keygate/keygate/internal/platform/dberr"
	"github.com/keygate/keygate/internal/platform/sec"
)

// fakeRepository is an in-memory Repository for service tests.
type fakeRepository struct {
	mu    sync.Mutex
	users map[string]*user.User // keyed by ID
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{users: make(map[string]*user.User)}
}

func (f *fakeRepository) Create(_ context.Context, u *user.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Username == u.Username {
			return apperr.DuplicateUsername()
		}
		if existing.Email == u.Email {
			return apperr.DuplicateEmail()
		}
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	clone := *u
	f.users[u.ID] = &clone
	return nil
}

func (f *fakeRepository) FindByID(_ context.Context, id string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, dberr.ErrNotFound
}

func (f *fakeRepository) FindByUsername(_ context.Context, username string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (f *fakeRepository) FindByEmail(_ context.Context, email string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (f *fakeRepository) MarkActivated(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok && u.ActivatedAt == nil {
		now := time.Now()
		u.ActivatedAt = &now
	}
	return nil
}

func (f *fakeRepository) UpdatePassword(_ context.Context, id, newHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		u.PasswordHash = newHash
	}
	return nil
}

func newTestService(t *testing.T) (*user.Service, *fakeRepository) {
	t.Helper()
	repo := newFakeRepository()
	service, err := user.NewService(repo, sec.NewHasher(2))
	require.NoError(t, err)
	return service, repo
}

func TestRegister(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	account, err := service.Register(ctx, user.RegisterInput{
		Username: "Alice",
		Email:    "alice@example.com",
		Password: "p4ssw0rd!",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, account.ID)
	assert.Equal(t, "alice", account.Username, "username is case-folded before storage")
	assert.Nil(t, account.ActivatedAt)
	assert.NotEqual(t, "p4ssw0rd!", account.PasswordHash)
	assert.True(t, sec.CheckPasswordHash("p4ssw0rd!", account.PasswordHash))
}

func TestRegister_Validation(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input user.RegisterInput
	}{
		{"username_too_short", user.RegisterInput{Username: "ab", Email: "a@b.com", Password: "p4ssw0rd"}},
		{"username_too_long", user.RegisterInput{Username: "abcdefghijklmnopqrstuvwxyz0123456", Email: "a@b.com", Password: "p4ssw0rd"}},
		{"password_too_short", user.RegisterInput{Username: "alice", Email: "a@b.com", Password: "short"}},
		{"password_too_long", user.RegisterInput{Username: "alice", Email: "a@b.com", Password: "abcdefghijklmnopqrstuvwxyz0123456"}},
		{"bad_email", user.RegisterInput{Username: "alice", Email: "not-an-email", Password: "p4ssw0rd"}},
		{"missing_everything", user.RegisterInput{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Register(ctx, tt.input)
			require.Error(t, err)
			assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
		})
	}
}

func TestRegister_Duplicates(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	_, err := service.Register(ctx, user.RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "p4ssw0rd",
	})
	require.NoError(t, err)

	// Case-variant username collides after normalization.
	_, err = service.Register(ctx, user.RegisterInput{
		Username: "ALICE", Email: "other@example.com", Password: "p4ssw0rd",
	})
	assert.True(t, apperr.HasCode(err, apperr.CodeDuplicateUsername))

	_, err = service.Register(ctx, user.RegisterInput{
		Username: "bob", Email: "alice@example.com", Password: "p4ssw0rd",
	})
	assert.True(t, apperr.HasCode(err, apperr.CodeDuplicateEmail))
}

func TestVerifyCredentials(t *testing.T) {
	service, repo := newTestService(t)
	ctx := context.Background()

	account, err := service.Register(ctx, user.RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "p4ssw0rd",
	})
	require.NoError(t, err)

	t.Run("unactivated_account_refused", func(t *testing.T) {
		_, err := service.VerifyCredentials(ctx, "alice", "p4ssw0rd")
		assert.True(t, apperr.HasCode(err, apperr.CodeNotActivated))
	})

	require.NoError(t, repo.MarkActivated(ctx, account.ID))

	t.Run("valid_credentials", func(t *testing.T) {
		got, err := service.VerifyCredentials(ctx, "alice", "p4ssw0rd")
		require.NoError(t, err)
		assert.Equal(t, account.ID, got.ID)
	})

	t.Run("case_variant_username_matches", func(t *testing.T) {
		got, err := service.VerifyCredentials(ctx, "Alice", "p4ssw0rd")
		require.NoError(t, err)
		assert.Equal(t, account.ID, got.ID)
	})

	t.Run("wrong_password", func(t *testing.T) {
		_, err := service.VerifyCredentials(ctx, "alice", "wrong-password")
		assert.True(t, apperr.HasCode(err, apperr.CodeInvalidCredentials))
	})

	t.Run("unknown_username", func(t *testing.T) {
		_, err := service.VerifyCredentials(ctx, "mallory", "p4ssw0rd")
		assert.True(t, apperr.HasCode(err, apperr.CodeInvalidCredentials))
	})
}

// TestVerifyCredentials_FailureShape asserts unknown-user and wrong-password
// failures are the same error value from the caller's perspective.
func TestVerifyCredentials_FailureShape(t *testing.T) {
	service, repo := newTestService(t)
	ctx := context.Background()

	account, err := service.Register(ctx, user.RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "p4ssw0rd",
	})
	require.NoError(t, err)
	require.NoError(t, repo.MarkActivated(ctx, account.ID))

	_, wrongPassword := service.VerifyCredentials(ctx, "alice", "nope-nope-nope")
	_, unknownUser := service.VerifyCredentials(ctx, "nobody", "nope-nope-nope")

	require.Error(t, wrongPassword)
	require.Error(t, unknownUser)
	assert.Equal(t, apperr.As(wrongPassword).Code, apperr.As(unknownUser).Code)
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
}

func TestActivate_Idempotent(t *testing.T) {
	service, repo := newTestService(t)
	ctx := context.Background()

	account, err := service.Register(ctx, user.RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "p4ssw0rd",
	})
	require.NoError(t, err)

	require.NoError(t, service.Activate(ctx, account.ID))

	first, err := repo.FindByID(ctx, account.ID)
	require.NoError(t, err)
	require.NotNil(t, first.ActivatedAt)

	require.NoError(t, service.Activate(ctx, account.ID))

	second, err := repo.FindByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ActivatedAt, second.ActivatedAt, "activation timestamp never moves")
}
