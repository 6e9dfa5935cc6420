// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"strings"
	"sync"

	"github.com/taibuivan/shopauth/internal/platform/apperr"
)

// MemoryStore is an in-process [Store] used by tests and local development.
//
// A single mutex serializes every call, which also gives [MemoryStore.Mutate]
// the same atomicity as the row lock in [PostgresStore].
type MemoryStore struct {
	mu       sync.Mutex
	accounts map[string]*Account
	byEmail  map[string]string
	byPhone  map[string]string
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]*Account),
		byEmail:  make(map[string]string),
		byPhone:  make(map[string]string),
	}
}

// FindByID implements [Store].
func (store *MemoryStore) FindByID(ctx context.Context, id string) (*Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.StoreUnavailable(err)
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	account, found := store.accounts[id]
	if !found {
		return nil, ErrNotFound
	}
	return account.Clone(), nil
}

// FindByEmail implements [Store].
func (store *MemoryStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	return store.findByIndex(ctx, store.byEmail, strings.ToLower(email))
}

// FindByPhone implements [Store].
func (store *MemoryStore) FindByPhone(ctx context.Context, phone string) (*Account, error) {
	return store.findByIndex(ctx, store.byPhone, phone)
}

func (store *MemoryStore) findByIndex(ctx context.Context, index map[string]string, key string) (*Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.StoreUnavailable(err)
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	id, found := index[key]
	if !found || key == "" {
		return nil, ErrNotFound
	}
	return store.accounts[id].Clone(), nil
}

// VerifyPassword implements [Store].
func (store *MemoryStore) VerifyPassword(account *Account, plaintext string) bool {
	return VerifyPassword(account, plaintext)
}

// Create implements [Store].
func (store *MemoryStore) Create(ctx context.Context, account *Account) error {
	if err := ctx.Err(); err != nil {
		return apperr.StoreUnavailable(err)
	}
	if err := account.Validate(); err != nil {
		return err
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	if err := store.checkUnique(account); err != nil {
		return err
	}

	store.put(account.Clone())
	return nil
}

// Persist implements [Store].
func (store *MemoryStore) Persist(ctx context.Context, account *Account) error {
	if err := ctx.Err(); err != nil {
		return apperr.StoreUnavailable(err)
	}
	if err := account.Validate(); err != nil {
		return err
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	return store.replace(account)
}

// Mutate implements [Store].
func (store *MemoryStore) Mutate(ctx context.Context, id string, fn MutateFunc) (*Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.StoreUnavailable(err)
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	current, found := store.accounts[id]
	if !found {
		return nil, ErrNotFound
	}

	working := current.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	if err := working.Validate(); err != nil {
		return nil, err
	}
	if err := store.replace(working); err != nil {
		return nil, err
	}

	return working.Clone(), nil
}

// replace swaps in a new version of an existing account. Callers hold mu.
func (store *MemoryStore) replace(account *Account) error {
	previous, found := store.accounts[account.ID]
	if !found {
		return ErrNotFound
	}
	if err := store.checkUnique(account); err != nil {
		return err
	}

	delete(store.byEmail, strings.ToLower(previous.Email))
	delete(store.byPhone, previous.Phone)
	store.put(account.Clone())
	return nil
}

// checkUnique rejects identifiers owned by a different account. Callers hold mu.
func (store *MemoryStore) checkUnique(account *Account) error {
	if account.Email != "" {
		if owner, taken := store.byEmail[strings.ToLower(account.Email)]; taken && owner != account.ID {
			return apperr.DuplicateIdentity(FieldEmail)
		}
	}
	if account.Phone != "" {
		if owner, taken := store.byPhone[account.Phone]; taken && owner != account.ID {
			return apperr.DuplicateIdentity(FieldPhone)
		}
	}
	return nil
}

func (store *MemoryStore) put(account *Account) {
	store.accounts[account.ID] = account
	if account.Email != "" {
		store.byEmail[strings.ToLower(account.Email)] = account.ID
	}
	if account.Phone != "" {
		store.byPhone[account.Phone] = account.ID
	}
}
