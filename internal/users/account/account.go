// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account owns customer identity records: credentials, contact
identifiers, and the lockout bookkeeping the login flow depends on.

# Architecture

  - Entity: Account, with the invariants checked by [Account.Validate].
  - Creation: [New] applies the password policy and identifier normalization.
  - Storage: the [Store] contract with Postgres and in-memory implementations.
*/
package account

import (
	"errors"
	"time"

	"github.com/taibuivan/shopauth/internal/platform/sec"
)

// # Domain Entities

// Status is the lifecycle state of an account. Only [StatusActive] may authenticate.
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusPending   Status = "pending"
	StatusSuspended Status = "suspended"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusPending, StatusSuspended:
		return true
	}
	return false
}

// CanAuthenticate reports whether an account in this status may log in.
func (s Status) CanAuthenticate() bool {
	return s == StatusActive
}

// Account represents a storefront customer or staff identity.
type Account struct {
	ID             string       `json:"id"`
	Email          string       `json:"email,omitempty"`
	Phone          string       `json:"phone,omitempty"`
	PasswordHash   string       `json:"-"` // Explicitly omitted from JSON for security.
	FirstName      string       `json:"first_name,omitempty"`
	LastName       string       `json:"last_name,omitempty"`
	Role           sec.UserRole `json:"role"`
	Status         Status       `json:"status"`
	FailedAttempts int          `json:"-"`
	LockedAt       *time.Time   `json:"-"`
	LockExpiresAt  *time.Time   `json:"-"`
	LastLoginAt    *time.Time   `json:"last_login_at,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// Subject returns the token identity for this account.
func (a *Account) Subject() sec.Subject {
	return sec.Subject{AccountID: a.ID, Email: a.Email, Role: a.Role}
}

// Clone returns a deep copy, so stores never share time pointers with callers.
func (a *Account) Clone() *Account {
	clone := *a
	clone.LockedAt = cloneTime(a.LockedAt)
	clone.LockExpiresAt = cloneTime(a.LockExpiresAt)
	clone.LastLoginAt = cloneTime(a.LastLoginAt)
	return &clone
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	copied := *t
	return &copied
}

// Invariant violations reported by [Account.Validate].
var (
	ErrNoIdentifier       = errors.New("account: email and phone cannot both be empty")
	ErrLockFieldsMismatch = errors.New("account: locked_at and lock_expires_at must be set together")
	ErrNegativeAttempts   = errors.New("account: failed_attempts cannot be negative")
	ErrUnknownStatus      = errors.New("account: unknown status")
)

// Validate checks the structural invariants every persisted account must hold.
func (a *Account) Validate() error {
	if a.Email == "" && a.Phone == "" {
		return ErrNoIdentifier
	}
	if (a.LockedAt == nil) != (a.LockExpiresAt == nil) {
		return ErrLockFieldsMismatch
	}
	if a.FailedAttempts < 0 {
		return ErrNegativeAttempts
	}
	if !a.Status.Valid() {
		return ErrUnknownStatus
	}
	return nil
}

// # Field Identifiers

// Field names used in validation details and duplicate-identity errors.
const (
	FieldEmail                = "email"
	FieldPhone                = "phone"
	FieldPassword             = "password"
	FieldPasswordConfirmation = "password_confirmation"
	FieldFirstName            = "first_name"
	FieldLastName             = "last_name"
)
