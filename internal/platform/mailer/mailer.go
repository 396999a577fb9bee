// Copyright (c) 2026 Keygate. All rights reserved.

/*
Package mailer implements the activation email dispatcher over SMTP.

Failures are classified before any retry decision:

  - Transient (connection refused, timeout, 4xx SMTP replies): retried a
    bounded number of times with exponential backoff.
  - Permanent (invalid address, 5xx SMTP replies): returned immediately.

A failure here never invalidates a created user row or an issued activation
code — the caller treats dispatch as best-effort and the account stays
resend-eligible.
*/
package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/wneessen/go-mail"

	"github.com/keygate/keygate/internal/platform/config"
)

// Retry policy for transient transport failures.
const (
	maxRetries     = 2
	initialBackoff = 500 * time.Millisecond
)

// Dispatcher is the outbound email contract consumed by the activation
// manager. Tests substitute a recording fake.
type Dispatcher interface {

	// SendActivation delivers the activation link for code to the given
	// address. The display name personalizes the recipient header only.
	SendActivation(ctx context.Context, toEmail, toName, code string) error
}

// SMTPDispatcher implements [Dispatcher] on a pooled go-mail SMTP client.
type SMTPDispatcher struct {
	client      *mail.Client
	senderEmail string
	senderName  string
	activateURL *url.URL
	logger      *slog.Logger
}

// NewSMTPDispatcher builds the dispatcher from process configuration.
//
// The activation link base is <BASE_URL>/activate; the code is appended as
// a query parameter at send time.
func NewSMTPDispatcher(cfg *config.Config, logger *slog.Logger) (*SMTPDispatcher, error) {
	activateURL, err := url.Parse(cfg.BaseURL + "/activate")
	if err != nil {
		return nil, fmt.Errorf("mailer: invalid base URL %q: %w", cfg.BaseURL, err)
	}

	client, err := mail.NewClient(cfg.SMTPHost,
		mail.WithPort(cfg.SMTPPort),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.SMTPUsername),
		mail.WithPassword(cfg.SMTPPassword),
		mail.WithTLSPortPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return nil, fmt.Errorf("mailer: failed to create SMTP client: %w", err)
	}

	return &SMTPDispatcher{
		client:      client,
		senderEmail: cfg.SMTPSenderEmail,
		senderName:  cfg.SMTPSenderName,
		activateURL: activateURL,
		logger:      logger,
	}, nil
}

// SendActivation implements [Dispatcher].
func (dispatcher *SMTPDispatcher) SendActivation(ctx context.Context, toEmail, toName, code string) error {
	message := mail.NewMsg()

	if err := message.FromFormat(dispatcher.senderName, dispatcher.senderEmail); err != nil {
		return fmt.Errorf("mailer: invalid sender address: %w", err)
	}

	// An unparseable recipient is a permanent failure — no retry.
	if err := message.AddToFormat(toName, toEmail); err != nil {
		return fmt.Errorf("mailer: invalid recipient address: %w", err)
	}

	link := *dispatcher.activateURL
	query := link.Query()
	query.Set("code", code)
	link.RawQuery = query.Encode()

	message.Subject("Activate your Keygate account")
	message.SetBodyString(mail.TypeTextPlain, link.String())

	backoff := retry.WithMaxRetries(maxRetries, retry.NewExponential(initialBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		sendErr := dispatcher.client.DialAndSendWithContext(ctx, message)
		if sendErr == nil {
			return nil
		}

		if IsTransient(sendErr) {
			dispatcher.logger.Warn("activation_email_retrying",
				slog.String("to", toEmail),
				slog.Any("error", sendErr),
			)
			return retry.RetryableError(sendErr)
		}
		return sendErr
	})
	if err != nil {
		return fmt.Errorf("mailer: failed to send activation email: %w", err)
	}

	return nil
}

// IsTransient reports whether err is worth retrying: network timeouts,
// refused connections, and temporary (4xx) SMTP replies. Permanent rejects
// (5xx, bad addresses) are not.
func IsTransient(err error) bool {
	var sendErr *mail.SendError
	if errors.As(err, &sendErr) {
		return sendErr.IsTemp()
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError
	return errors.As(err, &opErr)
}
