// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/taibuivan/shopauth/internal/platform/constants"
	"github.com/taibuivan/shopauth/internal/platform/kv"
	"github.com/taibuivan/shopauth/pkg/clock"
)

// Denylist records revoked refresh-token IDs until the tokens would have
// expired anyway.
type Denylist struct {
	store kv.Store
	clock clock.Clock
}

// NewDenylist creates a kv-backed denylist.
func NewDenylist(store kv.Store, clk clock.Clock) *Denylist {
	if clk == nil {
		clk = clock.System{}
	}
	return &Denylist{store: store, clock: clk}
}

func denylistKey(tokenID string) string {
	return constants.RedisPrefixDenylist + tokenID
}

/*
Revoke denies tokenID until expiresAt.

Parameters:
  - context: context.Context
  - tokenID: string (jti)
  - expiresAt: time.Time

Returns:
  - error: Storage failures
*/
func (denylist *Denylist) Revoke(context context.Context, tokenID string, expiresAt time.Time) error {
	remaining := expiresAt.Sub(denylist.clock.Now())
	if remaining <= 0 {
		return nil
	}

	if err := denylist.store.Set(context, denylistKey(tokenID), []byte("1"), remaining); err != nil {
		return fmt.Errorf("denylist_revoke_failed: %w", err)
	}
	return nil
}

/*
Claim revokes tokenID and reports whether this call was the one to revoke it.

Description: The check and the write are a single store operation, so of
several concurrent claims on one token exactly one succeeds.

Returns:
  - bool: false when tokenID was already revoked
  - error: Storage failures
*/
func (denylist *Denylist) Claim(context context.Context, tokenID string, expiresAt time.Time) (bool, error) {
	remaining := expiresAt.Sub(denylist.clock.Now())
	if remaining <= 0 {
		return false, nil
	}

	claimed, err := denylist.store.SetIfAbsent(context, denylistKey(tokenID), []byte("1"), remaining)
	if err != nil {
		return false, fmt.Errorf("denylist_claim_failed: %w", err)
	}
	return claimed, nil
}

// IsRevoked reports whether tokenID was revoked.
func (denylist *Denylist) IsRevoked(context context.Context, tokenID string) (bool, error) {
	_, err := denylist.store.Get(context, denylistKey(tokenID))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, kv.ErrNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("denylist_lookup_failed: %w", err)
	}
}
