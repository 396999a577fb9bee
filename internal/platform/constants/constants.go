// Copyright (c) 2026 Keygate. All rights reserved.

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and window durations.
  - Security: Token issuer and redis key taxonomy.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "keygate-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Transport Rate Limiting (per-IP, in-process)

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in every token Keygate signs.
	AuthIssuer = "keygate"

	// AuthorizationCodeTTL bounds the window between login redirect and
	// token exchange by the relying client.
	AuthorizationCodeTTL = 5 * time.Minute

	// AccessTokenTTL is the lifetime of an issued bearer token.
	AccessTokenTTL = 60 * time.Minute

	// ActivationCodeTTL is how long an account activation code stays redeemable.
	ActivationCodeTTL = 24 * time.Hour

	// ActivationCodeLength is the byte length of the random activation code.
	ActivationCodeLength = 32

	// ActivationEmailWindow is the resend rate-limit window per email address.
	ActivationEmailWindow = 1 * time.Minute

	// ActivationEmailLimit is the number of sends allowed per window.
	ActivationEmailLimit = 1
)

// # Credential Bounds

const (
	UsernameMinLength = 3
	UsernameMaxLength = 32

	PasswordMinLength = 8
	PasswordMaxLength = 32

	EmailMaxLength = 254
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
)

// # JSON Field Identifiers

const (
	FieldError   = "error"
	FieldCode    = "code"
	FieldMessage = "message"
	FieldStatus  = "status"
	FieldChecks  = "checks"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixActivationCode = "auth:activation_code:"
	RedisPrefixUsedAuthCode   = "auth:used_code:"
	RedisPrefixRateLimit      = "ratelimit:"
)
