// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package kv provides a minimal expiring key-value store.

It backs the ephemeral state of the auth core: live OTP challenges and the
refresh-token denylist. Two implementations share the [Store] contract:

  - RedisStore: production, backed by go-redis.
  - MemoryStore: tests and single-process development, driven by a [clock.Clock].

Infrastructure failures are reported as [apperr.StoreUnavailable] so callers
never need to know which backend is in use.
*/
package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by [Store.Get] when the key is absent or expired.
var ErrNotFound = errors.New("kv: key not found")

// Store is an expiring key-value store.
type Store interface {
	// Get returns the value stored at key, or [ErrNotFound].
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value at key, replacing any previous value. A ttl of zero
	// means the key never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// SetIfAbsent stores value only when key is absent or expired and
	// reports whether it did. Under concurrent calls for the same key at
	// most one caller sees true.
	SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)

	// Delete removes key and reports whether this call removed it. Under
	// concurrent deletes of the same key at most one caller sees true.
	Delete(ctx context.Context, key string) (bool, error)
}
