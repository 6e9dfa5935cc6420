// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Client tracking TTLs for the admission limiter.
  - Security: cookie configuration and key-value prefixes.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "shopauth-api"
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

	// ReadinessTimeout bounds each dependency ping in the readiness probe.
	ReadinessTimeout = 2 * time.Second
)

// # Rate Limiting

const (
	// RateLimitCleanupInterval is how often idle client entries are swept.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

const (
	// RefreshTokenCookieName is the name of the cookie that stores the refresh token.
	RefreshTokenCookieName = "refresh_token"

	// RefreshTokenCookiePath is the scoped path for the refresh token cookie.
	RefreshTokenCookiePath = "/api/v1/auth"

	// OTPLength is the number of decimal digits in a one-time passcode.
	OTPLength = 6

	// MaxRequestBodyBytes caps JSON payloads accepted by the auth endpoints.
	MaxRequestBodyBytes = 1 << 20
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderRetryAfter    = "Retry-After"
)

// # Audit

const (
	// AuditWriteTimeout bounds a single audit persistence attempt.
	AuditWriteTimeout = 5 * time.Second

	// AuditDefaultWindowDays is used by the recent-activity query when none is given.
	AuditDefaultWindowDays = 7
)

// # Redis Prefixes (Key Taxonomy)

const (
	RedisPrefixOTP      = "auth:otp:"
	RedisPrefixDenylist = "auth:denylist:"
)
