// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"errors"
)

// ErrNotFound is returned by lookups when no account matches.
var ErrNotFound = errors.New("account: not found")

// MutateFunc changes an account in place inside [Store.Mutate].
// Returning an error aborts the write.
type MutateFunc func(account *Account) error

// # Data Access

// Store defines the persistence contract for accounts.
//
// Infrastructure failures are reported as apperr STORE_UNAVAILABLE errors.
type Store interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Account: Hydrated entity
		  - error: ErrNotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*Account, error)

	/*
		FindByEmail returns the account with the given normalized email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *Account: Hydrated entity
		  - error: ErrNotFound or storage failures
	*/
	FindByEmail(context context.Context, email string) (*Account, error)

	/*
		FindByPhone returns the account bound to the given canonical phone.

		Parameters:
		  - context: context.Context
		  - phone: string

		Returns:
		  - *Account: Hydrated entity
		  - error: ErrNotFound or storage failures
	*/
	FindByPhone(context context.Context, phone string) (*Account, error)

	// VerifyPassword reports whether plaintext matches the account's password hash.
	VerifyPassword(account *Account, plaintext string) bool

	/*
		Create persists a brand-new account.

		Parameters:
		  - context: context.Context
		  - account: *Account

		Returns:
		  - error: apperr DUPLICATE_IDENTITY naming the taken field, or storage failures
	*/
	Create(context context.Context, account *Account) error

	/*
		Persist writes every mutable field of an existing account.

		Parameters:
		  - context: context.Context
		  - account: *Account

		Returns:
		  - error: ErrNotFound or storage failures
	*/
	Persist(context context.Context, account *Account) error

	/*
		Mutate loads the account, applies fn, and writes the result atomically.

		Description: Concurrent Mutate calls on the same account are serialized,
		so read-modify-write sequences such as incrementing the failed-attempt
		counter never lose updates.

		Parameters:
		  - context: context.Context
		  - id: string
		  - fn: MutateFunc

		Returns:
		  - *Account: The account as written
		  - error: ErrNotFound, the error returned by fn, or storage failures
	*/
	Mutate(context context.Context, id string, fn MutateFunc) (*Account, error)
}
