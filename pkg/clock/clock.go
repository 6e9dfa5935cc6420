// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package clock abstracts the wall clock so that time-dependent rules
(token expiry, lockout windows, OTP TTLs) can be driven from tests.

Key Types:
  - Clock: The single-method interface injected into services.
  - System: Reads [time.Now] in UTC.
  - Manual: A settable clock for tests; safe for concurrent use.
*/
package clock

import (
	"sync"
	"time"
)

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// System is the production [Clock] backed by [time.Now].
type System struct{}

// Now returns the current UTC time.
func (System) Now() time.Time { return time.Now().UTC() }

// Manual is a [Clock] whose time only moves when told to.
type Manual struct {
	mu  sync.RWMutex
	now time.Time
}

// NewManual returns a [Manual] clock frozen at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start.UTC()}
}

// Now returns the frozen time.
func (m *Manual) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.now
}

// Advance moves the clock forward by d.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}

// Set moves the clock to t.
func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	m.now = t.UTC()
	m.mu.Unlock()
}
