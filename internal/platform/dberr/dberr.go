// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/shopauth/internal/platform/apperr"
)

// SQLSTATE codes the auth stores care about.
const (
	codeUniqueViolation = "23505"
)

// ErrNotFound is returned by stores when a queried row doesn't exist.
var ErrNotFound = errors.New("dberr: row not found")

// IsUniqueViolation reports whether err is a unique constraint violation and
// returns the violated constraint name.
func IsUniqueViolation(err error) (string, bool) {
	var pgError *pgconn.PgError
	if errors.As(err, &pgError) && pgError.Code == codeUniqueViolation {
		return pgError.ConstraintName, true
	}
	return "", false
}

// IsUnavailable reports whether err means the database could not be reached
// in time, as opposed to a query being wrong.
func IsUnavailable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}

	var netError net.Error
	if errors.As(err, &netError) {
		return true
	}

	var connectError *pgconn.ConnectError
	if errors.As(err, &connectError) {
		return true
	}

	// Class 08: connection exception. Class 57P: operator intervention.
	var pgError *pgconn.PgError
	if errors.As(err, &pgError) {
		return strings.HasPrefix(pgError.Code, "08") || strings.HasPrefix(pgError.Code, "57P")
	}

	return pgconn.SafeToRetry(err)
}

// Wrap inspects a database error and classifies it for the service layer.
//
//   - [pgx.ErrNoRows] becomes [ErrNotFound]
//   - unique violations become [apperr.DuplicateIdentity] via fieldFor
//   - everything else becomes [apperr.StoreUnavailable]
//
// fieldFor maps a constraint name to the API field it protects; it may be nil.
func Wrap(err error, fieldFor func(constraint string) string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	if constraint, ok := IsUniqueViolation(err); ok {
		field := constraint
		if fieldFor != nil {
			field = fieldFor(constraint)
		}
		return apperr.DuplicateIdentity(field).WithCause(err)
	}

	return apperr.StoreUnavailable(err)
}
