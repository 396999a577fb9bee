// Copyright (c) 2026 Keygate. All rights reserved.

/*
Package request provides utilities for extracting data from HTTP requests.

It covers the common body decoding and credential extraction patterns,
ensuring consistent error handling across handlers.
*/
package requestutil

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/keygate/keygate/internal/platform/apperr"
	"github.com/keygate/keygate/internal/platform/validate"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.
Unknown fields are rejected.

Parameters:
  - request: *http.Request
  - target: any (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target any) error {
	decoder := json.NewDecoder(request.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
BearerToken extracts the bearer token from the Authorization header.

Returns:
  - string: the raw token
  - error: apperr.TokenInvalid for a missing header, wrong scheme, or empty token
*/
func BearerToken(request *http.Request) (string, error) {
	header := request.Header.Get("Authorization")
	scheme, tokenString, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || tokenString == "" {
		return "", apperr.TokenInvalid()
	}
	return tokenString, nil
}
