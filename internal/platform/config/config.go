// Copyright (c) 2026 Keygate. All rights reserved.

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, SMTP) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// # Response Modes

// Values for Config.AuthResponseMode. They decide what a successful login
// redirect carries to the relying client.
const (
	// ResponseModeCode redirects with a short-lived authorization code the
	// client must exchange at /oauth2/token.
	ResponseModeCode = "code"

	// ResponseModeToken redirects with a usable access token directly.
	ResponseModeToken = "token"
)

// # Configuration Schema

// Config holds all runtime configuration for the Keygate API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"3001"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// BaseURL is the externally reachable root of this service. Activation
	// links in outgoing email are built on top of it.
	BaseURL string `env:"BASE_URL,required"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Store (Redis): activation codes, rate-limit counters,
	// used-authorization-code markers.
	RedisURL string `env:"REDIS_URL,required"`

	// JWTSecret is the process-wide HMAC signing key, loaded once at startup.
	JWTSecret string `env:"JWT_SECRET,required"`

	// AuthResponseMode selects what a successful login redirect carries:
	// ResponseModeCode (default) or ResponseModeToken.
	AuthResponseMode string `env:"AUTH_RESPONSE_MODE" envDefault:"code"`

	// SMTP transport for activation email
	SMTPHost        string `env:"SMTP_HOST,required"`
	SMTPPort        int    `env:"SMTP_PORT"          envDefault:"587"`
	SMTPUsername    string `env:"SMTP_USERNAME,required"`
	SMTPPassword    string `env:"SMTP_PASSWORD,required"`
	SMTPSenderEmail string `env:"SMTP_SENDER_EMAIL,required"`
	SMTPSenderName  string `env:"SMTP_SENDER_NAME"   envDefault:"Keygate"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
//
// A local .env file is loaded first when present so that development
// machines do not need exported shell variables. Missing .env is not an
// error.
func Load() (*Config, error) {

	_ = godotenv.Load()

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if cfg.AuthResponseMode != ResponseModeCode && cfg.AuthResponseMode != ResponseModeToken {
		return nil, fmt.Errorf("config: AUTH_RESPONSE_MODE must be %q or %q, got %q",
			ResponseModeCode, ResponseModeToken, cfg.AuthResponseMode)
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
