// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/shopauth/internal/users/account"
)

type missingRow struct{}

func (missingRow) Scan(...any) error { return pgx.ErrNoRows }

// recordingQuerier captures lookups and finds nothing.
type recordingQuerier struct {
	sql  string
	args []any
}

func (querier *recordingQuerier) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (querier *recordingQuerier) QueryRow(_ context.Context, sql string, arguments ...any) pgx.Row {
	querier.sql, querier.args = sql, arguments
	return missingRow{}
}

func (querier *recordingQuerier) Begin(context.Context) (pgx.Tx, error) {
	return nil, errors.New("transactions are not recorded")
}

/*
TestPostgresStore_FindByEmailUsesIndexedEquality compares the normalized email
directly against the indexed column.
*/
func TestPostgresStore_FindByEmailUsesIndexedEquality(t *testing.T) {
	querier := &recordingQuerier{}
	store := account.NewPostgresStoreWithQuerier(querier)

	_, err := store.FindByEmail(context.Background(), "  Alice@Example.COM ")
	require.ErrorIs(t, err, account.ErrNotFound)

	assert.Contains(t, querier.sql, "WHERE email = $1")
	assert.NotContains(t, querier.sql, "lower(")
	assert.Equal(t, []any{"alice@example.com"}, querier.args)
}
