// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/shopauth/internal/platform/apperr"
)

// RedisStore implements [Store] on a Redis client.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore wraps an existing client. The caller owns the client lifecycle.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

// Get implements [Store].
func (store *RedisStore) Get(context context.Context, key string) ([]byte, error) {
	value, err := store.client.Get(context, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, apperr.StoreUnavailable(fmt.Errorf("kv_get_failed: %w", err))
	}
	return value, nil
}

// Set implements [Store].
func (store *RedisStore) Set(context context.Context, key string, value []byte, ttl time.Duration) error {
	if err := store.client.Set(context, key, value, ttl).Err(); err != nil {
		return apperr.StoreUnavailable(fmt.Errorf("kv_set_failed: %w", err))
	}
	return nil
}

// SetIfAbsent implements [Store] with SET NX.
func (store *RedisStore) SetIfAbsent(context context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	stored, err := store.client.SetNX(context, key, value, ttl).Result()
	if err != nil {
		return false, apperr.StoreUnavailable(fmt.Errorf("kv_setnx_failed: %w", err))
	}
	return stored, nil
}

// Delete implements [Store]. DEL is atomic, so only one concurrent caller
// observes a removed count of one.
func (store *RedisStore) Delete(context context.Context, key string) (bool, error) {
	removed, err := store.client.Del(context, key).Result()
	if err != nil {
		return false, apperr.StoreUnavailable(fmt.Errorf("kv_delete_failed: %w", err))
	}
	return removed > 0, nil
}

// Ping reports whether the backing Redis is reachable.
func (store *RedisStore) Ping(context context.Context) error {
	return store.client.Ping(context).Err()
}
