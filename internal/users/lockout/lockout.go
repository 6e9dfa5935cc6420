// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package lockout implements the failed-attempt lockout policy.

The policy is a set of pure functions over [account.Account] state and the
current time. It performs no I/O: the orchestrator runs the mutations inside
[account.Store.Mutate] so that the read-increment-check sequence is atomic
against the stored record.

Password and OTP failures share one counter, so a lock produced by either
method blocks both.
*/
package lockout

import (
	"time"

	"github.com/taibuivan/shopauth/internal/users/account"
	"github.com/taibuivan/shopauth/pkg/pointer"
)

// Defaults applied when a [Policy] is built with zero values.
const (
	DefaultThreshold = 5
	DefaultDuration  = 15 * time.Minute
)

// Policy locks an account for Duration once Threshold consecutive failures accrue.
type Policy struct {
	Threshold int
	Duration  time.Duration
}

// New returns a Policy, substituting defaults for non-positive values.
func New(threshold int, duration time.Duration) Policy {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if duration <= 0 {
		duration = DefaultDuration
	}
	return Policy{Threshold: threshold, Duration: duration}
}

// Decision is the outcome of [Policy.Check].
type Decision struct {
	// Locked is true while now is before the lock expiry.
	Locked bool

	// Remaining is the time left on an active lock.
	Remaining time.Duration

	// Expired is true when a lock is recorded but has lapsed. The caller must
	// [Clear] the account and audit the automatic unlock.
	Expired bool
}

// Check reports whether the account is locked at now.
func (policy Policy) Check(target *account.Account, now time.Time) Decision {
	if target.LockedAt == nil || target.LockExpiresAt == nil {
		return Decision{}
	}

	if now.Before(*target.LockExpiresAt) {
		return Decision{Locked: true, Remaining: target.LockExpiresAt.Sub(now)}
	}

	return Decision{Expired: true}
}

// OnFailedAttempt increments the failure counter and locks the account when
// the counter reaches the threshold. It reports whether this call applied the lock.
func (policy Policy) OnFailedAttempt(target *account.Account, now time.Time) bool {
	target.FailedAttempts++
	target.UpdatedAt = now

	if target.FailedAttempts < policy.Threshold || target.LockedAt != nil {
		return false
	}

	target.LockedAt = pointer.To(now)
	target.LockExpiresAt = pointer.To(now.Add(policy.Duration))
	return true
}

// OnSuccessfulAttempt resets the failure counter and any lock.
func (policy Policy) OnSuccessfulAttempt(target *account.Account, now time.Time) {
	Clear(target, now)
}

// Clear removes the lock and resets the failure counter. It is used for
// automatic expiry and for administrative unlocks.
func Clear(target *account.Account, now time.Time) {
	target.FailedAttempts = 0
	target.LockedAt = nil
	target.LockExpiresAt = nil
	target.UpdatedAt = now
}
