// Copyright (c) 2026 Keygate. All rights reserved.

/*
Package activation implements the email activation lifecycle.

A freshly registered account is inert until its owner proves control of the
email address. The proof is an opaque random code stored server-side with a
TTL, delivered by email, and atomically consumed on redemption, so a code
works exactly once no matter how many requests race on it.
*/
package activation

import (
	"context"
	"time"
)

// CodeStore holds pending activation codes.
//
// Codes are opaque random strings, not tokens: nothing about them can be
// verified offline, they mean only what the store says they mean.
type CodeStore interface {

	// Put stores a code mapped to a user ID with the given lifetime.
	Put(ctx context.Context, code, userID string, ttl time.Duration) error

	// Consume atomically fetches and removes a code, returning the user ID
	// it was issued for. A missing or expired code returns invalid_code.
	// Exactly one of any set of concurrent consumers wins.
	Consume(ctx context.Context, code string) (string, error)
}
