// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"net/http"

	"github.com/taibuivan/shopauth/internal/platform/apperr"
	"github.com/taibuivan/shopauth/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/shopauth/internal/platform/request"
	"github.com/taibuivan/shopauth/internal/platform/respond"
	"github.com/taibuivan/shopauth/internal/platform/sec"
)

// TokenVerifier defines the interface needed to verify tokens in middleware.
//
// # Why an interface?
//
// Defining TokenVerifier here decouples the middleware from [sec.TokenService],
// allowing tests to inject a stub.
type TokenVerifier interface {
	VerifyToken(tokenString string) (*sec.AuthClaims, error)
}

// Authenticate extracts and verifies the access token from the Authorization header.
//
// # Flow
//  1. Check for 'Authorization: Bearer <token>' header.
//  2. If absent, request proceeds as anonymous.
//  3. If present, verify it via [TokenVerifier]. A bad or expired token does
//     not end the request: it proceeds as anonymous and the token error is
//     kept in the context, so public routes (refresh, logout) still work.
//  4. Inject [*sec.AuthClaims] into the request context for downstream use.
//
// [RequireAuth] and [RequireRole] answer with the recorded token error
// (TOKEN_EXPIRED, TOKEN_MALFORMED, ...) when they reject an anonymous request.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// ── 1. Anonymous Access ───────────────────────────────────────────
			if request.Header.Get("Authorization") == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Format Validation ──────────────────────────────────────────
			tokenString, ok := requestutil.BearerToken(request)
			if !ok {
				anonymous(next, writer, request, apperr.Unauthorized("Invalid authorization format"))
				return
			}

			// ── 3. Token Verification ─────────────────────────────────────────
			claims, err := verifier.VerifyToken(tokenString)
			if err != nil {
				if !apperr.IsAppError(err) {
					err = apperr.Unauthorized("Invalid or expired token")
				}
				anonymous(next, writer, request, err)
				return
			}

			// ── 4. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithAuthUser(request.Context(), claims)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

func anonymous(next http.Handler, writer http.ResponseWriter, request *http.Request, reason error) {
	next.ServeHTTP(writer, request.WithContext(ctxutil.WithAuthError(request.Context(), reason)))
}

// unauthenticated is the error for a request that carries no valid claims.
func unauthenticated(request *http.Request) error {
	if err := ctxutil.GetAuthError(request.Context()); err != nil {
		return err
	}
	return apperr.Unauthorized("Authentication required")
}

// RequireAuth blocks requests that are not authenticated.
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetAuthUser(request.Context()) == nil {
			respond.Error(writer, request, unauthenticated(request))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireRole blocks requests if the authenticated account doesn't have the required role.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate]. It implies
// [RequireAuth] so you don't need to mount both.
func RequireRole(role sec.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			claims := ctxutil.GetAuthUser(request.Context())

			// ── 1. Authentication Check ───────────────────────────────────────
			if claims == nil {
				respond.Error(writer, request, unauthenticated(request))
				return
			}

			// ── 2. Authorization Check ────────────────────────────────────────
			if !sec.UserRole(claims.Role).AtLeast(role) {
				respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
