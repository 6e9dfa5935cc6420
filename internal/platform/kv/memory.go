// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package kv

import (
	"context"
	"sync"
	"time"

	"github.com/taibuivan/shopauth/pkg/clock"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func (entry memoryEntry) expired(now time.Time) bool {
	return !entry.expiresAt.IsZero() && !now.Before(entry.expiresAt)
}

// MemoryStore is an in-process [Store]. Expiry follows the injected clock,
// so tests can move time forward instead of sleeping.
type MemoryStore struct {
	mu      sync.Mutex
	clock   clock.Clock
	entries map[string]memoryEntry
}

// NewMemoryStore returns an empty store. A nil clock uses the system clock.
func NewMemoryStore(clk clock.Clock) *MemoryStore {
	if clk == nil {
		clk = clock.System{}
	}
	return &MemoryStore{clock: clk, entries: make(map[string]memoryEntry)}
}

// Get implements [Store].
func (store *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	entry, found := store.entries[key]
	if !found {
		return nil, ErrNotFound
	}
	if entry.expired(store.clock.Now()) {
		delete(store.entries, key)
		return nil, ErrNotFound
	}

	return append([]byte(nil), entry.value...), nil
}

// Set implements [Store].
func (store *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entry := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expiresAt = store.clock.Now().Add(ttl)
	}

	store.mu.Lock()
	store.entries[key] = entry
	store.mu.Unlock()
	return nil
}

// SetIfAbsent implements [Store].
func (store *MemoryStore) SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	now := store.clock.Now()
	if entry, found := store.entries[key]; found && !entry.expired(now) {
		return false, nil
	}

	entry := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expiresAt = now.Add(ttl)
	}
	store.entries[key] = entry
	return true, nil
}

// Delete implements [Store].
func (store *MemoryStore) Delete(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	entry, found := store.entries[key]
	if !found {
		return false, nil
	}
	delete(store.entries, key)
	return !entry.expired(store.clock.Now()), nil
}
