// Copyright (c) 2026 Keygate. All rights reserved.

package user

import (
	"context"
	"errors"
	"log/slog"

	"github.com/keygate/keygate/internal/platform/apperr"
	"github.com/keygate/keygate/internal/platform/constants"
	"github.com/keygate/keygate/internal/platform/ctxutil"
	"github.com/keygate/keygate/internal/platform/dberr"
	"github.com/keygate/keygate/internal/platform/sec"
	"github.com/keygate/keygate/internal/platform/validate"
	"github.com/keygate/keygate/pkg/uuid"
)

// # Service Layer

// Service orchestrates account registration and credential verification.
type Service struct {
	repo   Repository
	hasher *sec.Hasher

	// decoyHash is a real argon2id digest of a throwaway password. When a
	// login names an unknown username the service still verifies the
	// submitted password against this digest, so the failure path burns the
	// same hashing cost whether or not the account exists.
	decoyHash string
}

// NewService creates the account service. The hasher bounds concurrent
// argon2id work to a fixed compute lane.
func NewService(repo Repository, hasher *sec.Hasher) (*Service, error) {
	decoy, err := sec.HashPassword("keygate-decoy-credential")
	if err != nil {
		return nil, err
	}

	return &Service{
		repo:      repo,
		hasher:    hasher,
		decoyHash: decoy,
	}, nil
}

// RegisterInput carries the raw registration form.
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// validate enforces the field bounds before any expensive work runs.
func (input *RegisterInput) validate() error {
	v := &validate.Validator{}
	return v.
		Required(FieldUsername, input.Username).
		Between(FieldUsername, input.Username, constants.UsernameMinLength, constants.UsernameMaxLength).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		MaxLen(FieldEmail, input.Email, constants.EmailMaxLength).
		Required(FieldPassword, input.Password).
		Between(FieldPassword, input.Password, constants.PasswordMinLength, constants.PasswordMaxLength).
		Err()
}

/*
Register creates a new, unactivated account.

Description: Validates field bounds, canonicalizes the username, hashes the
password on the bounded compute lane, and persists the row. Uniqueness is
enforced by the database, not by a racy pre-check: a concurrent duplicate
surfaces as duplicate_username or duplicate_email from the single INSERT.

Parameters:
  - ctx: context.Context
  - input: RegisterInput

Returns:
  - *User: The stored account (without activation)
  - error: validation_error, duplicate_username, duplicate_email, internal
*/
func (service *Service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	username, err := NormalizeUsername(input.Username)
	if err != nil {
		return nil, err
	}

	hash, err := service.hasher.Hash(ctx, input.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	account := &User{
		ID:           uuid.New(),
		Username:     username,
		Email:        input.Email,
		PasswordHash: hash,
	}

	if err := service.repo.Create(ctx, account); err != nil {
		return nil, err
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "user_registered",
		slog.String("user_id", account.ID),
		slog.String("username", account.Username),
	)

	return account, nil
}

/*
VerifyCredentials authenticates a username/password pair.

Description: The three failure shapes, unknown username, wrong password, and
an account that exists but was never activated via email, must be
indistinguishable in cost from the outside. Unknown usernames verify the
password against the decoy hash before failing, and the unactivated check
runs only after the real hash comparison has succeeded.

Parameters:
  - ctx: context.Context
  - username: string (raw, normalized here)
  - password: string

Returns:
  - *User: The authenticated, activated account
  - error: invalid_credentials, not_activated, internal
*/
func (service *Service) VerifyCredentials(ctx context.Context, username, password string) (*User, error) {
	normalized, err := NormalizeUsername(username)
	if err != nil {
		// Malformed usernames cannot match any account; equalize and refuse.
		if _, checkErr := service.hasher.Check(ctx, password, service.decoyHash); checkErr != nil {
			return nil, apperr.Internal(checkErr)
		}
		return nil, apperr.InvalidCredentials()
	}

	account, err := service.repo.FindByUsername(ctx, normalized)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			if _, checkErr := service.hasher.Check(ctx, password, service.decoyHash); checkErr != nil {
				return nil, apperr.Internal(checkErr)
			}
			return nil, apperr.InvalidCredentials()
		}
		return nil, err
	}

	ok, err := service.hasher.Check(ctx, password, account.PasswordHash)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if !ok {
		return nil, apperr.InvalidCredentials()
	}

	if !account.IsActivated() {
		return nil, apperr.NotActivated()
	}

	return account, nil
}

/*
GetByEmail fetches an account by email for the activation pipeline.

Returns:
  - *User: The account, activated or not
  - error: dberr.ErrNotFound or execution errors
*/
func (service *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	return service.repo.FindByEmail(ctx, email)
}

/*
GetByID fetches an account by its identifier. Used by the profile endpoint
after the bearer token's subject claim has been verified.

Returns:
  - *User: The account
  - error: dberr.ErrNotFound or execution errors
*/
func (service *Service) GetByID(ctx context.Context, id string) (*User, error) {
	return service.repo.FindByID(ctx, id)
}

/*
Activate flips the account's activation flag. Repeated activation is a
silent success.

Parameters:
  - ctx: context.Context
  - id: string

Returns:
  - error: Execution errors
*/
func (service *Service) Activate(ctx context.Context, id string) error {
	if err := service.repo.MarkActivated(ctx, id); err != nil {
		return err
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "user_activated", slog.String("user_id", id))
	return nil
}
