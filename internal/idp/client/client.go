// Copyright (c) 2026 Keygate. All rights reserved.

/*
Package client manages the registry of relying applications.

A client is an application allowed to send users to Keygate for login. Each
registration pins a client_id, a hashed client_secret, and exactly one
redirect URI. Rows are provisioned out-of-band (see cmd/adminctl); the
request path only reads them.
*/
package client

import "time"

// Client is a registered relying application.
//
// SecretHash stores the argon2id digest of the client secret. The plaintext
// secret is shown exactly once, at provisioning time, and never persisted.
type Client struct {
	ID          string    `json:"id"`
	ClientID    string    `json:"client_id"`
	SecretHash  string    `json:"-"`
	RedirectURI string    `json:"redirect_uri"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
