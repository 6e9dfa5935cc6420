// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/shopauth/internal/platform/apperr"
	"github.com/taibuivan/shopauth/internal/platform/constants"
	"github.com/taibuivan/shopauth/internal/platform/ctxutil"
	"github.com/taibuivan/shopauth/internal/platform/sec"
	"github.com/taibuivan/shopauth/internal/platform/validate"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

The body is capped at [constants.MaxRequestBodyBytes].

Parameters:
  - writer: http.ResponseWriter (used by the body size limiter)
  - request: *http.Request
  - target: any (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(writer http.ResponseWriter, request *http.Request, target any) error {
	request.Body = http.MaxBytesReader(writer, request.Body, constants.MaxRequestBodyBytes)
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

// DecodeOptionalJSON is [DecodeJSON] for endpoints where the body may be
// omitted. An empty body leaves target untouched.
func DecodeOptionalJSON(writer http.ResponseWriter, request *http.Request, target any) error {
	if request.Body == nil || request.Body == http.NoBody {
		return nil
	}
	request.Body = http.MaxBytesReader(writer, request.Body, constants.MaxRequestBodyBytes)
	if err := json.NewDecoder(request.Body).Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

// QueryInt parses an integer query parameter, returning fallback when it is
// absent or malformed.
func QueryInt(request *http.Request, name string, fallback int) int {
	raw := request.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(request *http.Request) (string, bool) {
	header := request.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

/*
Claims extracts the authenticated account claims from the request context.

Returns nil if the request is not authenticated.
*/
func Claims(request *http.Request) *sec.AuthClaims {
	return ctxutil.GetAuthUser(request.Context())
}

/*
RequiredClaims ensures the request is authenticated and returns the account claims.

Returns:
  - *sec.AuthClaims: The authenticated account claims
  - error: apperr.Unauthorized if the request is not authenticated
*/
func RequiredClaims(request *http.Request) (*sec.AuthClaims, error) {
	claims := ctxutil.GetAuthUser(request.Context())
	if claims == nil {
		if err := ctxutil.GetAuthError(request.Context()); err != nil {
			return nil, err
		}
		return nil, apperr.Unauthorized("Authentication required")
	}
	return claims, nil
}
