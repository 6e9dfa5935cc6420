// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package audit

import (
	"context"
	"time"

	"github.com/taibuivan/shopauth/internal/platform/constants"
	"github.com/taibuivan/shopauth/pkg/clock"
	"github.com/taibuivan/shopauth/pkg/pagination"
)

// Page is one page of entries plus its pagination metadata.
type Page struct {
	Entries []Entry
	Meta    pagination.Meta
}

// Reader serves the audit review queries.
type Reader struct {
	repository Repository
	clock      clock.Clock
}

// NewReader returns a Reader over repository.
func NewReader(repository Repository, clk clock.Clock) *Reader {
	if clk == nil {
		clk = clock.System{}
	}
	return &Reader{repository: repository, clock: clk}
}

// Query runs an arbitrary filter. The named queries below are shorthands.
func (reader *Reader) Query(context context.Context, filter Filter, page pagination.Params) (*Page, error) {
	entries, total, err := reader.repository.List(context, filter, page)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []Entry{}
	}
	return &Page{Entries: entries, Meta: pagination.NewMeta(page.Page, page.Limit, total)}, nil
}

// ByAccount lists the events of one account.
func (reader *Reader) ByAccount(context context.Context, accountID string, page pagination.Params) (*Page, error) {
	return reader.Query(context, Filter{AccountID: accountID}, page)
}

// ByAction lists events of one kind.
func (reader *Reader) ByAction(context context.Context, action Action, page pagination.Params) (*Page, error) {
	return reader.Query(context, Filter{Actions: []Action{action}}, page)
}

// ByIPAddress lists events originating from one address.
func (reader *Reader) ByIPAddress(context context.Context, ipAddress string, page pagination.Params) (*Page, error) {
	return reader.Query(context, Filter{IPAddress: ipAddress}, page)
}

// BySession lists the events of one session, identified by its refresh-token ID.
func (reader *Reader) BySession(context context.Context, sessionID string, page pagination.Params) (*Page, error) {
	return reader.Query(context, Filter{SessionID: sessionID}, page)
}

// Recent lists events from the last windowDays days. A non-positive window
// uses [constants.AuditDefaultWindowDays].
func (reader *Reader) Recent(context context.Context, windowDays int, page pagination.Params) (*Page, error) {
	return reader.Query(context, Filter{Since: reader.since(windowDays)}, page)
}

// SecurityEvents lists failures, locks and unlocks.
func (reader *Reader) SecurityEvents(context context.Context, page pagination.Params) (*Page, error) {
	return reader.Query(context, Filter{Actions: SecurityActions}, page)
}

// LoginEvents lists login successes and failures.
func (reader *Reader) LoginEvents(context context.Context, page pagination.Params) (*Page, error) {
	return reader.Query(context, Filter{Actions: LoginActions}, page)
}

func (reader *Reader) since(windowDays int) time.Time {
	if windowDays <= 0 {
		windowDays = constants.AuditDefaultWindowDays
	}
	return reader.clock.Now().AddDate(0, 0, -windowDays)
}
