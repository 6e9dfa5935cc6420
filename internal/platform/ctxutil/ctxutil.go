// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxutil provides helpers for interacting with values stored in [context.Context].
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/taibuivan/shopauth/internal/platform/ctxkey"
	"github.com/taibuivan/shopauth/internal/platform/sec"
)

// # Request Tracing

// WithRequestID returns a new context with the provided request ID attached.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, id)
}

// GetRequestID retrieves the request ID from the context.
// Returns an empty string if not found.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxkey.KeyRequestID).(string)
	return id
}

// # Structured Logging

// WithLogger returns a new context with the provided logger attached.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// GetLogger retrieves the logger from the context.
// If no logger is found, it returns the global default logger.
func GetLogger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(ctxkey.KeyLogger).(*slog.Logger)
	if !ok || logger == nil {
		return slog.Default()
	}
	return logger
}

// # Client Fingerprint

// ClientInfo describes where a request came from. It feeds audit entries.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// WithClient returns a new context carrying the caller's fingerprint.
func WithClient(ctx context.Context, client ClientInfo) context.Context {
	return context.WithValue(ctx, ctxkey.KeyClient, client)
}

// GetClient retrieves the caller's fingerprint, or the zero value.
func GetClient(ctx context.Context) ClientInfo {
	client, _ := ctx.Value(ctxkey.KeyClient).(ClientInfo)
	return client
}

// # Identity & Access

// WithAuthUser returns a new context with the provided auth claims attached.
func WithAuthUser(ctx context.Context, user *sec.AuthClaims) context.Context {
	return context.WithValue(ctx, ctxkey.KeyUser, user)
}

// GetAuthUser retrieves the [*sec.AuthClaims] from the [context.Context].
func GetAuthUser(ctx context.Context) *sec.AuthClaims {
	claims, ok := ctx.Value(ctxkey.KeyUser).(*sec.AuthClaims)
	if !ok {
		return nil
	}
	return claims
}

// WithAuthError records why a presented bearer token was rejected.
func WithAuthError(ctx context.Context, err error) context.Context {
	return context.WithValue(ctx, ctxkey.KeyAuthError, err)
}

// GetAuthError returns the bearer rejection recorded by [WithAuthError], or nil.
func GetAuthError(ctx context.Context) error {
	err, _ := ctx.Value(ctxkey.KeyAuthError).(error)
	return err
}
