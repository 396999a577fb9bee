// Copyright (c) 2026 Keygate. All rights reserved.

package requestutil_test

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keygate/keygate/internal/platform/apperr"
	requestutil "github.com/keygate/keygate/internal/platform/request"
	"github.com/keygate/keygate/internal/platform/validate"
)

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Email string `json:"email"`
	}

	t.Run("valid", func(t *testing.T) {
		request := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"a@b.example"}`))
		var target payload
		require.NoError(t, requestutil.DecodeJSON(request, &target))
		assert.Equal(t, "a@b.example", target.Email)
	})

	t.Run("malformed", func(t *testing.T) {
		request := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":`))
		var target payload
		assert.ErrorIs(t, requestutil.DecodeJSON(request, &target), validate.ErrInvalidJSON)
	})

	t.Run("unknown_field", func(t *testing.T) {
		request := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"a@b.example","admin":true}`))
		var target payload
		assert.ErrorIs(t, requestutil.DecodeJSON(request, &target), validate.ErrInvalidJSON)
	})
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
		wantOK bool
	}{
		{"valid", "Bearer abc.def.ghi", "abc.def.ghi", true},
		{"case_insensitive_scheme", "bearer abc.def.ghi", "abc.def.ghi", true},
		{"missing_header", "", "", false},
		{"wrong_scheme", "Basic dXNlcjpwYXNz", "", false},
		{"empty_token", "Bearer ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				request.Header.Set("Authorization", tt.header)
			}

			tokenString, err := requestutil.BearerToken(request)
			if !tt.wantOK {
				require.Error(t, err)
				assert.True(t, apperr.HasCode(err, apperr.CodeTokenInvalid))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, tokenString)
		})
	}
}
