// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package kv_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/shopauth/internal/platform/kv"
	"github.com/taibuivan/shopauth/pkg/clock"
)

/*
TestMemoryStore_Expiry verifies keys vanish once the clock passes their TTL.
*/
func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewManual(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	store := kv.NewMemoryStore(clk)

	require.NoError(t, store.Set(ctx, "auth:otp:+919876543210", []byte("v1"), time.Minute))

	value, err := store.Get(ctx, "auth:otp:+919876543210")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), value)

	clk.Advance(time.Minute)

	_, err = store.Get(ctx, "auth:otp:+919876543210")
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestMemoryStore_SetReplaces(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore(nil)

	require.NoError(t, store.Set(ctx, "k", []byte("old"), 0))
	require.NoError(t, store.Set(ctx, "k", []byte("new"), 0))

	value, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "new", string(value))
}

/*
TestMemoryStore_DeleteSingleWinner ensures only one concurrent delete reports removal.
*/
func TestMemoryStore_DeleteSingleWinner(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore(nil)
	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Hour))

	var winners atomic.Int32
	var group sync.WaitGroup
	for i := 0; i < 16; i++ {
		group.Add(1)
		go func() {
			defer group.Done()
			removed, err := store.Delete(ctx, "k")
			if err == nil && removed {
				winners.Add(1)
			}
		}()
	}
	group.Wait()

	assert.Equal(t, int32(1), winners.Load())
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := kv.NewMemoryStore(nil).Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}

/*
TestMemoryStore_SetIfAbsent grants one concurrent writer and reopens the key
once it expires.
*/
func TestMemoryStore_SetIfAbsent(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewManual(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	store := kv.NewMemoryStore(clk)

	var winners atomic.Int32
	var group sync.WaitGroup
	for i := 0; i < 16; i++ {
		group.Add(1)
		go func() {
			defer group.Done()
			stored, err := store.SetIfAbsent(ctx, "auth:denylist:jti-1", []byte("1"), time.Minute)
			if err == nil && stored {
				winners.Add(1)
			}
		}()
	}
	group.Wait()
	assert.Equal(t, int32(1), winners.Load())

	clk.Advance(time.Minute)

	stored, err := store.SetIfAbsent(ctx, "auth:denylist:jti-1", []byte("1"), time.Minute)
	require.NoError(t, err)
	assert.True(t, stored)
}
