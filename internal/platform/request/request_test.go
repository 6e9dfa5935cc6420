// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package requestutil_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/shopauth/internal/platform/apperr"
	"github.com/taibuivan/shopauth/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/shopauth/internal/platform/request"
	"github.com/taibuivan/shopauth/internal/platform/sec"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
		ok     bool
	}{
		{"valid", "Bearer abc.def.ghi", "abc.def.ghi", true},
		{"case_insensitive_scheme", "bearer abc", "abc", true},
		{"missing", "", "", false},
		{"basic_scheme", "Basic dXNlcjpwYXNz", "", false},
		{"empty_token", "Bearer   ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				request.Header.Set("Authorization", tt.header)
			}

			token, ok := requestutil.BearerToken(request)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, token)
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var payload struct {
		Email string `json:"email"`
	}

	request := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"alice@example.com"}`))
	require.NoError(t, requestutil.DecodeJSON(httptest.NewRecorder(), request, &payload))
	assert.Equal(t, "alice@example.com", payload.Email)

	request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":`))
	err := requestutil.DecodeJSON(httptest.NewRecorder(), request, &payload)
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
}

func TestRequiredClaims(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := requestutil.RequiredClaims(request)
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))

	claims := &sec.AuthClaims{AccountID: "acc-1"}
	request = request.WithContext(ctxutil.WithAuthUser(request.Context(), claims))
	got, err := requestutil.RequiredClaims(request)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", got.AccountID)
}

func TestQueryInt(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/?days=14&page=x", nil)
	assert.Equal(t, 14, requestutil.QueryInt(request, "days", 7))
	assert.Equal(t, 1, requestutil.QueryInt(request, "page", 1))
	assert.Equal(t, 20, requestutil.QueryInt(request, "limit", 20))
}

func TestDecodeOptionalJSON(t *testing.T) {
	var target struct {
		Token string `json:"refresh_token"`
	}

	empty := httptest.NewRequest(http.MethodDelete, "/", nil)
	require.NoError(t, requestutil.DecodeOptionalJSON(httptest.NewRecorder(), empty, &target))
	assert.Empty(t, target.Token)

	filled := httptest.NewRequest(http.MethodDelete, "/", strings.NewReader(`{"refresh_token":"abc"}`))
	require.NoError(t, requestutil.DecodeOptionalJSON(httptest.NewRecorder(), filled, &target))
	assert.Equal(t, "abc", target.Token)

	broken := httptest.NewRequest(http.MethodDelete, "/", strings.NewReader(`{`))
	assert.Error(t, requestutil.DecodeOptionalJSON(httptest.NewRecorder(), broken, &target))
}
