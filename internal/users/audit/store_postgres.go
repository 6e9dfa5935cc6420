// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/shopauth/internal/platform/database/schema"
	"github.com/taibuivan/shopauth/internal/platform/dberr"
	"github.com/taibuivan/shopauth/pkg/pagination"
	"github.com/taibuivan/shopauth/pkg/pointer"
)

// Querier is the subset of [pgxpool.Pool] the repository uses.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, arguments ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row
}

// PostgresRepository implements [Repository] on system.auditlog.
type PostgresRepository struct {
	pool Querier
}

// NewPostgresRepository creates a new Postgres implementation of [Repository].
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// NewPostgresRepositoryWithQuerier builds the repository on any [Querier],
// such as a transaction or a test double.
func NewPostgresRepositoryWithQuerier(querier Querier) *PostgresRepository {
	return &PostgresRepository{pool: querier}
}

var queryInsertEntry = fmt.Sprintf(`
	INSERT INTO %s (%s)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
	schema.SystemAuditLog.Table, schema.SystemAuditLog.SelectList())

/*
Append inserts one audit row.

Parameters:
  - context: context.Context
  - entry: *Entry

Returns:
  - error: STORE_UNAVAILABLE on any persistence failure
*/
func (repository *PostgresRepository) Append(context context.Context, entry *Entry) error {
	metadata := entry.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	_, err := repository.pool.Exec(context, queryInsertEntry,
		entry.ID,
		optional(entry.AccountID),
		string(entry.Action),
		optional(entry.ResourceType),
		optional(entry.ResourceID),
		optional(entry.IPAddress),
		optional(entry.UserAgent),
		optional(entry.SessionID),
		optional(entry.RequestID),
		metadata,
		entry.CreatedAt,
	)
	if err != nil {
		return dberr.Wrap(fmt.Errorf("postgres_audit_append_failed: %w", err), nil)
	}

	return nil
}

/*
List returns one page of entries matching filter, newest first.

Description: The total is computed by a window function in the same query so
the page and its count come from one snapshot. A page past the end falls
back to a separate count.
*/
func (repository *PostgresRepository) List(context context.Context, filter Filter, page pagination.Params) ([]Entry, int, error) {
	where, arguments := buildWhere(filter)
	arguments = append(arguments, page.Limit, page.Offset())

	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total
		FROM %s
		%s
		ORDER BY %s DESC, %s DESC
		LIMIT $%d OFFSET $%d`,
		schema.SystemAuditLog.SelectList(),
		schema.SystemAuditLog.Table,
		where,
		schema.SystemAuditLog.CreatedAt, schema.SystemAuditLog.ID,
		len(arguments)-1, len(arguments),
	)

	rows, err := repository.pool.Query(context, query, arguments...)
	if err != nil {
		return nil, 0, dberr.Wrap(fmt.Errorf("postgres_audit_list_failed: %w", err), nil)
	}
	defer rows.Close()

	var (
		entries []Entry
		total   int
	)
	for rows.Next() {
		var (
			entry                                      Entry
			accountID, ipAddress, userAgent, requestID *string
			resourceType, resourceID, sessionID        *string
			action                                     string
		)
		if err := rows.Scan(
			&entry.ID,
			&accountID,
			&action,
			&resourceType,
			&resourceID,
			&ipAddress,
			&userAgent,
			&sessionID,
			&requestID,
			&entry.Metadata,
			&entry.CreatedAt,
			&total,
		); err != nil {
			return nil, 0, dberr.Wrap(fmt.Errorf("postgres_audit_scan_failed: %w", err), nil)
		}

		entry.AccountID = pointer.Val(accountID)
		entry.Action = Action(action)
		entry.ResourceType = pointer.Val(resourceType)
		entry.ResourceID = pointer.Val(resourceID)
		entry.IPAddress = pointer.Val(ipAddress)
		entry.UserAgent = pointer.Val(userAgent)
		entry.SessionID = pointer.Val(sessionID)
		entry.RequestID = pointer.Val(requestID)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(fmt.Errorf("postgres_audit_rows_failed: %w", err), nil)
	}

	// A page past the end has no rows to carry the window count.
	if len(entries) == 0 && page.Offset() > 0 {
		total, err = repository.count(context, where, arguments[:len(arguments)-2])
		if err != nil {
			return nil, 0, err
		}
	}

	return entries, total, nil
}

func (repository *PostgresRepository) count(context context.Context, where string, arguments []any) (int, error) {
	query := fmt.Sprintf(`SELECT count(*) FROM %s %s`, schema.SystemAuditLog.Table, where)

	var total int
	if err := repository.pool.QueryRow(context, query, arguments...).Scan(&total); err != nil {
		return 0, dberr.Wrap(fmt.Errorf("postgres_audit_count_failed: %w", err), nil)
	}
	return total, nil
}

// buildWhere renders filter as a WHERE clause with positional arguments.
func buildWhere(filter Filter) (string, []any) {
	var (
		conditions []string
		arguments  []any
	)
	add := func(condition string, argument any) {
		arguments = append(arguments, argument)
		conditions = append(conditions, fmt.Sprintf(condition, len(arguments)))
	}

	if filter.AccountID != "" {
		add(schema.SystemAuditLog.AccountID+" = $%d", filter.AccountID)
	}
	if len(filter.Actions) > 0 {
		actions := make([]string, len(filter.Actions))
		for i, action := range filter.Actions {
			actions[i] = string(action)
		}
		add(schema.SystemAuditLog.Action+" = ANY($%d)", actions)
	}
	if filter.IPAddress != "" {
		add(schema.SystemAuditLog.IPAddress+" = $%d", filter.IPAddress)
	}
	if filter.SessionID != "" {
		add(schema.SystemAuditLog.SessionID+" = $%d", filter.SessionID)
	}
	if !filter.Since.IsZero() {
		add(schema.SystemAuditLog.CreatedAt+" >= $%d", filter.Since)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conditions, " AND "), arguments
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return pointer.To(value)
}
