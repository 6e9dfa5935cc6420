// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package otp issues and verifies one-time passcodes bound to a phone number.

# Storage

Each phone has at most one live challenge, stored in a [kv.Store] under
"auth:otp:<phone>". Only the SHA-256 digest of the code is stored. Sending a
new challenge overwrites the previous one.

The key outlives the challenge by one extra TTL so that a late verify is
answered with [ResultExpired] rather than [ResultNotFound].
*/
package otp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/taibuivan/shopauth/internal/platform/apperr"
	"github.com/taibuivan/shopauth/internal/platform/constants"
	"github.com/taibuivan/shopauth/internal/platform/kv"
	"github.com/taibuivan/shopauth/internal/platform/sec"
	"github.com/taibuivan/shopauth/internal/users/account"
	"github.com/taibuivan/shopauth/pkg/clock"
)

// DefaultTTL is the validity window of a challenge.
const DefaultTTL = 10 * time.Minute

// Result is the outcome of [Service.Verify].
type Result int

const (
	ResultOK Result = iota
	ResultExpired
	ResultMismatch
	ResultNotFound
)

// String returns the label used in logs, metrics and audit metadata.
func (result Result) String() string {
	switch result {
	case ResultOK:
		return "ok"
	case ResultExpired:
		return "expired"
	case ResultMismatch:
		return "mismatch"
	case ResultNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Err converts a non-OK result into its API error.
func (result Result) Err() error {
	switch result {
	case ResultOK:
		return nil
	case ResultExpired:
		return apperr.ChallengeExpired()
	case ResultMismatch:
		return apperr.ChallengeMismatch()
	default:
		return apperr.ChallengeNotFound()
	}
}

// Challenge is a freshly issued passcode. Code is plaintext and must only be
// handed to the [Sender].
type Challenge struct {
	Phone     string
	AccountID string
	Code      string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// AccountFinder resolves the account bound to a phone.
type AccountFinder interface {
	FindByPhone(context context.Context, phone string) (*account.Account, error)
}

// record is the stored form of a challenge.
type record struct {
	CodeHash  string    `json:"code_hash"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Service implements the challenge lifecycle.
type Service struct {
	store    kv.Store
	accounts AccountFinder
	sender   Sender
	ttl      time.Duration
	clock    clock.Clock
}

// NewService wires the challenge service. A non-positive ttl uses [DefaultTTL].
func NewService(store kv.Store, accounts AccountFinder, sender Sender, ttl time.Duration, clk clock.Clock) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clk == nil {
		clk = clock.System{}
	}
	return &Service{store: store, accounts: accounts, sender: sender, ttl: ttl, clock: clk}
}

func key(phone string) string {
	return constants.RedisPrefixOTP + phone
}

/*
Send issues a new challenge for a registered phone.

Description: Only phones bound to an existing, active account receive a
code. Unknown phones are never auto-registered. The new challenge replaces
any live one for the same phone.

Parameters:
  - context: context.Context
  - phone: string (canonical form)

Returns:
  - *Challenge: The issued challenge
  - error: NOT_REGISTERED, ACCOUNT_INACTIVE, or STORE_UNAVAILABLE
*/
func (service *Service) Send(context context.Context, phone string) (*Challenge, error) {
	owner, err := service.accounts.FindByPhone(context, phone)
	if errors.Is(err, account.ErrNotFound) {
		return nil, apperr.NotRegistered("Phone number is not registered")
	}
	if err != nil {
		return nil, err
	}
	if !owner.Status.CanAuthenticate() {
		return nil, apperr.AccountInactive()
	}

	code, err := sec.RandomDigits(constants.OTPLength)
	if err != nil {
		return nil, fmt.Errorf("otp_code_generation_failed: %w", err)
	}

	createdAt := service.clock.Now()
	challenge := &Challenge{
		Phone:     phone,
		AccountID: owner.ID,
		Code:      code,
		CreatedAt: createdAt,
		ExpiresAt: createdAt.Add(service.ttl),
	}

	payload, err := json.Marshal(record{
		CodeHash:  sec.HashToken(code),
		CreatedAt: challenge.CreatedAt,
		ExpiresAt: challenge.ExpiresAt,
	})
	if err != nil {
		return nil, fmt.Errorf("otp_record_encode_failed: %w", err)
	}

	if err := service.store.Set(context, key(phone), payload, 2*service.ttl); err != nil {
		return nil, storeError(err)
	}

	if err := service.sender.Send(context, phone, code, challenge.ExpiresAt); err != nil {
		return nil, fmt.Errorf("otp_delivery_failed: %w", err)
	}

	return challenge, nil
}

/*
Verify checks a code against the live challenge for phone.

Description: A correct code consumes the challenge, so it succeeds exactly
once even under concurrent verifies. A wrong code leaves the challenge in
place. An expired challenge is deleted.

Parameters:
  - context: context.Context
  - phone: string (canonical form)
  - code: string

Returns:
  - Result: OK, Expired, Mismatch or NotFound
  - error: STORE_UNAVAILABLE
*/
func (service *Service) Verify(context context.Context, phone, code string) (Result, error) {
	payload, err := service.store.Get(context, key(phone))
	if errors.Is(err, kv.ErrNotFound) {
		return ResultNotFound, nil
	}
	if err != nil {
		return ResultNotFound, storeError(err)
	}

	var stored record
	if err := json.Unmarshal(payload, &stored); err != nil {
		// An unreadable record can never verify; drop it.
		_, _ = service.store.Delete(context, key(phone))
		return ResultNotFound, nil
	}

	if service.clock.Now().After(stored.ExpiresAt) {
		if _, err := service.store.Delete(context, key(phone)); err != nil {
			return ResultExpired, storeError(err)
		}
		return ResultExpired, nil
	}

	if !sec.EqualDigests(sec.HashToken(code), stored.CodeHash) {
		return ResultMismatch, nil
	}

	removed, err := service.store.Delete(context, key(phone))
	if err != nil {
		return ResultNotFound, storeError(err)
	}
	if !removed {
		return ResultNotFound, nil
	}

	return ResultOK, nil
}

// storeError keeps classified errors and marks anything else unavailable.
func storeError(err error) error {
	if apperr.IsAppError(err) {
		return err
	}
	return apperr.StoreUnavailable(err)
}
