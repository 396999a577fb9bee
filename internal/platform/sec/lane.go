// Copyright (c) 2026 Keygate. All rights reserved.

package sec

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/semaphore"
)

// Hasher runs password hashing on a bounded compute lane.
//
// argon2id is deliberately CPU- and memory-expensive. Without a bound, a
// burst of registrations or a credential-stuffing run could saturate every
// core and starve unrelated I/O-bound requests. The lane admits at most
// GOMAXPROCS concurrent hashes; callers beyond that wait, and a cancelled
// request abandons its slot instead of hashing for nobody.
type Hasher struct {
	lane *semaphore.Weighted
}

// NewHasher constructs a [Hasher] whose lane width defaults to GOMAXPROCS
// when width <= 0.
func NewHasher(width int) *Hasher {
	if width <= 0 {
		width = runtime.GOMAXPROCS(0)
	}
	return &Hasher{lane: semaphore.NewWeighted(int64(width))}
}

// Hash computes an argon2id hash on the compute lane.
func (hasher *Hasher) Hash(ctx context.Context, plainTextPassword string) (string, error) {
	if err := hasher.lane.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("sec: hashing lane acquisition aborted: %w", err)
	}
	defer hasher.lane.Release(1)

	return HashPassword(plainTextPassword)
}

// Check verifies a password against its stored hash on the compute lane.
func (hasher *Hasher) Check(ctx context.Context, plainTextPassword, encodedHash string) (bool, error) {
	if err := hasher.lane.Acquire(ctx, 1); err != nil {
		return false, fmt.Errorf("sec: hashing lane acquisition aborted: %w", err)
	}
	defer hasher.lane.Release(1)

	return CheckPasswordHash(plainTextPassword, encodedHash), nil
}
