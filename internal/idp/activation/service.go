// Copyright (c) 2026 Keygate. All rights reserved.

package activation

import (
	"context"
	"errors"
	"log/slog"

	"github.com/keygate/keygate/internal/idp/user"
	"github.com/keygate/keygate/internal/platform/apperr"
	"github.com/keygate/keygate/internal/platform/constants"
	"github.com/keygate/keygate/internal/platform/ctxutil"
	"github.com/keygate/keygate/internal/platform/dberr"
	"github.com/keygate/keygate/internal/platform/mailer"
	"github.com/keygate/keygate/internal/platform/ratelimit"
	"github.com/keygate/keygate/internal/platform/sec"
)

// # Service Layer

// Service orchestrates activation email delivery and code redemption.
type Service struct {
	users      *user.Service
	codes      CodeStore
	limiter    ratelimit.Limiter
	dispatcher mailer.Dispatcher
}

// NewService creates the activation service.
func NewService(users *user.Service, codes CodeStore, limiter ratelimit.Limiter, dispatcher mailer.Dispatcher) *Service {
	return &Service{
		users:      users,
		codes:      codes,
		limiter:    limiter,
		dispatcher: dispatcher,
	}
}

/*
SendEmail issues a fresh activation code and mails it.

Description: The rate limiter is consulted first and charges the address for
every attempt, valid or not, so the endpoint gives a probing caller one
uniform behavior per address per window. After the limiter, an unknown email
and an already-activated account both return success without sending
anything. Only a known, unactivated account gets a code.

Each send issues a fresh code; earlier codes stay alive until their own TTL
runs out or one of them is redeemed.

Parameters:
  - ctx: context.Context
  - email: string

Returns:
  - error: too_often, upstream_unavailable, or delivery failure
*/
func (service *Service) SendEmail(ctx context.Context, email string) error {
	if email == "" {
		return apperr.ValidationError("email must be provided")
	}

	// The limiter prefixes its own Redis namespace; this key only needs to
	// identify the operation and the address.
	key := "activation_email:" + email
	allowed, err := service.limiter.Allow(ctx, key, constants.ActivationEmailLimit, constants.ActivationEmailWindow)
	if err != nil {
		return err
	}
	if !allowed {
		return apperr.TooOften()
	}

	account, err := service.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			// Report success so the endpoint cannot be used to enumerate
			// registered addresses.
			ctxutil.GetLogger(ctx).InfoContext(ctx, "activation_email_skipped",
				slog.String("reason", "unknown_email"),
			)
			return nil
		}
		return err
	}

	if account.IsActivated() {
		ctxutil.GetLogger(ctx).InfoContext(ctx, "activation_email_skipped",
			slog.String("reason", "already_activated"),
			slog.String("user_id", account.ID),
		)
		return nil
	}

	code, err := service.issueCode(ctx, account.ID)
	if err != nil {
		return err
	}

	if err := service.dispatcher.SendActivation(ctx, account.Email, account.Username, code); err != nil {
		return err
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "activation_email_sent",
		slog.String("user_id", account.ID),
	)

	return nil
}

/*
SendInitial mails the first activation code right after registration.

Description: Bypasses the resend limiter: the window guards the public
resend endpoint against abuse, and a fresh registration has not touched
that endpoint yet. The account is already loaded by the caller, so no
email lookup runs either.

Parameters:
  - ctx: context.Context
  - account: *user.User (just created, unactivated)

Returns:
  - error: upstream_unavailable or delivery failure
*/
func (service *Service) SendInitial(ctx context.Context, account *user.User) error {
	code, err := service.issueCode(ctx, account.ID)
	if err != nil {
		return err
	}

	if err := service.dispatcher.SendActivation(ctx, account.Email, account.Username, code); err != nil {
		return err
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "activation_email_sent",
		slog.String("user_id", account.ID),
		slog.String("reason", "registration"),
	)

	return nil
}

// issueCode generates and stores a fresh activation code for the user.
func (service *Service) issueCode(ctx context.Context, userID string) (string, error) {
	code, err := sec.GenerateSecureToken(constants.ActivationCodeLength)
	if err != nil {
		return "", apperr.Internal(err)
	}

	if err := service.codes.Put(ctx, code, userID, constants.ActivationCodeTTL); err != nil {
		return "", err
	}

	return code, nil
}

/*
Activate redeems an activation code.

Description: The code is consumed atomically before the account is touched.
When two requests race on the same code one consumes it and activates, the
other gets invalid_code. Activating an account that was already activated
through an earlier code is a silent success.

Parameters:
  - ctx: context.Context
  - code: string

Returns:
  - error: invalid_code, upstream_unavailable, execution errors
*/
func (service *Service) Activate(ctx context.Context, code string) error {
	if code == "" {
		return apperr.InvalidCode()
	}

	userID, err := service.codes.Consume(ctx, code)
	if err != nil {
		return err
	}

	return service.users.Activate(ctx, userID)
}
