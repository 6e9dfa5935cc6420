// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/shopauth/internal/platform/database/schema"
	"github.com/taibuivan/shopauth/internal/platform/dberr"
	"github.com/taibuivan/shopauth/pkg/pointer"
)

// Querier is the subset of [pgxpool.Pool] the store uses.
type Querier interface {
	Exec(context context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(context context.Context, sql string, arguments ...any) pgx.Row
	Begin(context context.Context) (pgx.Tx, error)
}

// PostgresStore implements [Store] using pgx.
type PostgresStore struct {
	pool Querier
}

// NewPostgresStore creates a new Postgres implementation of [Store].
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// NewPostgresStoreWithQuerier builds the store on any [Querier].
func NewPostgresStoreWithQuerier(querier Querier) *PostgresStore {
	return &PostgresStore{pool: querier}
}

var (
	queryFindAccount = fmt.Sprintf(`SELECT %s FROM %s WHERE `,
		schema.UserAccount.SelectList(), schema.UserAccount.Table)

	queryInsertAccount = fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		schema.UserAccount.Table, schema.UserAccount.SelectList())

	queryUpdateAccount = fmt.Sprintf(`
		UPDATE %s SET
			%s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7,
			%s = $8, %s = $9, %s = $10, %s = $11, %s = $12
		WHERE %s = $1`,
		schema.UserAccount.Table,
		schema.UserAccount.Email, schema.UserAccount.Phone, schema.UserAccount.Password,
		schema.UserAccount.FirstName, schema.UserAccount.LastName, schema.UserAccount.Status,
		schema.UserAccount.FailedAttempts, schema.UserAccount.LockedAt, schema.UserAccount.LockExpiresAt,
		schema.UserAccount.LastLoginAt, schema.UserAccount.UpdatedAt,
		schema.UserAccount.ID)
)

// fieldForConstraint maps a unique index to the API field it protects.
func fieldForConstraint(constraint string) string {
	if constraint == schema.UserAccount.PhoneKey {
		return FieldPhone
	}
	return FieldEmail
}

// optional stores empty identifiers as NULL so the unique indexes ignore them.
func optional(value string) *string {
	if value == "" {
		return nil
	}
	return pointer.To(value)
}

func scanAccount(row pgx.Row) (*Account, error) {
	var email, phone *string
	account := &Account{}

	err := row.Scan(
		&account.ID,
		&email,
		&phone,
		&account.PasswordHash,
		&account.FirstName,
		&account.LastName,
		&account.Role,
		&account.Status,
		&account.FailedAttempts,
		&account.LockedAt,
		&account.LockExpiresAt,
		&account.LastLoginAt,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	account.Email = pointer.Val(email)
	account.Phone = pointer.Val(phone)
	return account, nil
}

func (store *PostgresStore) findOne(context context.Context, where string, argument any) (*Account, error) {
	account, err := scanAccount(store.pool.QueryRow(context, queryFindAccount+where, argument))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, dberr.Wrap(fmt.Errorf("postgres_account_find_failed: %w", err), nil)
	}
	return account, nil
}

/*
FindByID retrieves an account by its primary key.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *Account: Hydrated entity
  - error: ErrNotFound or STORE_UNAVAILABLE
*/
func (store *PostgresStore) FindByID(context context.Context, id string) (*Account, error) {
	return store.findOne(context, schema.UserAccount.ID+" = $1", id)
}

/*
FindByEmail retrieves an account by email.

Description: Emails are stored normalized, so the lookup normalizes its
argument and compares with equality to stay on account_email_key.
*/
func (store *PostgresStore) FindByEmail(context context.Context, email string) (*Account, error) {
	return store.findOne(context, schema.UserAccount.Email+" = $1", NormalizeEmail(email))
}

// FindByPhone retrieves an account by canonical phone number.
func (store *PostgresStore) FindByPhone(context context.Context, phone string) (*Account, error) {
	return store.findOne(context, schema.UserAccount.Phone+" = $1", phone)
}

// VerifyPassword implements [Store].
func (store *PostgresStore) VerifyPassword(account *Account, plaintext string) bool {
	return VerifyPassword(account, plaintext)
}

/*
Create inserts a new account row.

Description: Unique violations on the email or phone index are reported as
DUPLICATE_IDENTITY naming the offending field.

Parameters:
  - context: context.Context
  - account: *Account

Returns:
  - error: DUPLICATE_IDENTITY, invariant violations, or STORE_UNAVAILABLE
*/
func (store *PostgresStore) Create(context context.Context, account *Account) error {
	if err := account.Validate(); err != nil {
		return err
	}

	_, err := store.pool.Exec(context, queryInsertAccount,
		account.ID,
		optional(account.Email),
		optional(account.Phone),
		account.PasswordHash,
		account.FirstName,
		account.LastName,
		account.Role,
		account.Status,
		account.FailedAttempts,
		account.LockedAt,
		account.LockExpiresAt,
		account.LastLoginAt,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(fmt.Errorf("postgres_account_create_failed: %w", err), fieldForConstraint)
	}

	return nil
}

// execer is satisfied by both *pgxpool.Pool and pgx.Tx.
type execer interface {
	Exec(context context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

/*
Persist writes every mutable column of an existing account.

Parameters:
  - context: context.Context
  - account: *Account

Returns:
  - error: ErrNotFound, DUPLICATE_IDENTITY, or STORE_UNAVAILABLE
*/
func (store *PostgresStore) Persist(context context.Context, account *Account) error {
	return update(context, store.pool, account)
}

func update(context context.Context, db execer, account *Account) error {
	if err := account.Validate(); err != nil {
		return err
	}

	tag, err := db.Exec(context, queryUpdateAccount,
		account.ID,
		optional(account.Email),
		optional(account.Phone),
		account.PasswordHash,
		account.FirstName,
		account.LastName,
		account.Status,
		account.FailedAttempts,
		account.LockedAt,
		account.LockExpiresAt,
		account.LastLoginAt,
		account.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(fmt.Errorf("postgres_account_update_failed: %w", err), fieldForConstraint)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

/*
Mutate applies fn to the account under a row lock.

Description: The row is read with SELECT ... FOR UPDATE inside a transaction,
so concurrent failed logins for the same account queue behind each other and
every increment of the failed-attempt counter is preserved.

Parameters:
  - context: context.Context
  - id: string
  - fn: MutateFunc

Returns:
  - *Account: The account as committed
  - error: ErrNotFound, fn's error, or STORE_UNAVAILABLE
*/
func (store *PostgresStore) Mutate(context context.Context, id string, fn MutateFunc) (*Account, error) {
	var result *Account
	var domainErr error

	err := pgx.BeginFunc(context, store.pool, func(tx pgx.Tx) error {
		account, err := scanAccount(tx.QueryRow(context,
			queryFindAccount+schema.UserAccount.ID+" = $1 FOR UPDATE", id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				domainErr = ErrNotFound
				return domainErr
			}
			return fmt.Errorf("postgres_account_lock_failed: %w", err)
		}

		if err := fn(account); err != nil {
			domainErr = err
			return err
		}
		if err := account.Validate(); err != nil {
			domainErr = err
			return err
		}

		if err := update(context, tx, account); err != nil {
			domainErr = err
			return err
		}

		result = account
		return nil
	})

	if domainErr != nil {
		return nil, domainErr
	}
	if err != nil {
		return nil, dberr.Wrap(fmt.Errorf("postgres_account_mutate_failed: %w", err), nil)
	}

	return result, nil
}
