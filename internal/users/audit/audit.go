// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package audit records security-relevant authentication events and serves
them back for review.

# Architecture

  - Recorder: best-effort write path. It never returns an error to the use
    case that triggered it.
  - Repository: append-only storage (Postgres, in-memory). There is no update
    or delete; retention is handled outside the service.
  - Reader: the named review queries (by account, action, IP, recency,
    security events, login events).
  - Publisher: optional fan-out of every entry to a Kafka topic.
*/
package audit

import (
	"context"
	"time"

	"github.com/taibuivan/shopauth/pkg/pagination"
)

// # Actions

// Action names a recorded event.
type Action string

const (
	ActionRegistration        Action = "registration"
	ActionLoginSuccess        Action = "login_success"
	ActionLoginFailure        Action = "login_failure"
	ActionAccountLocked       Action = "account_locked"
	ActionAccountAutoUnlocked Action = "account_auto_unlocked"
	ActionAccountUnlocked     Action = "account_unlocked"
	ActionLogout              Action = "logout"
	ActionTokenRefresh        Action = "token_refresh"
	ActionOTPSent             Action = "otp_sent"
	ActionOTPFailed           Action = "otp_failed"
)

// AllActions lists every known action.
var AllActions = []Action{
	ActionRegistration, ActionLoginSuccess, ActionLoginFailure, ActionAccountLocked,
	ActionAccountAutoUnlocked, ActionAccountUnlocked, ActionLogout, ActionTokenRefresh,
	ActionOTPSent, ActionOTPFailed,
}

// SecurityActions are the actions reviewed by [Reader.SecurityEvents].
var SecurityActions = []Action{
	ActionLoginFailure, ActionAccountLocked, ActionAccountAutoUnlocked,
	ActionAccountUnlocked, ActionOTPFailed,
}

// LoginActions are the actions reviewed by [Reader.LoginEvents].
var LoginActions = []Action{ActionLoginSuccess, ActionLoginFailure}

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	for _, known := range AllActions {
		if a == known {
			return true
		}
	}
	return false
}

// ResourceAccount is the resource type of entries about an account record.
const ResourceAccount = "account"

// # Entities

// Entry is one persisted audit record. ID and CreatedAt are assigned by the
// server, never by the client.
type Entry struct {
	ID           string         `json:"id"`
	AccountID    string         `json:"account_id,omitempty"`
	Action       Action         `json:"action"`
	ResourceType string         `json:"resource_type,omitempty"`
	ResourceID   string         `json:"resource_id,omitempty"`
	IPAddress    string         `json:"ip_address,omitempty"`
	UserAgent    string         `json:"user_agent,omitempty"`
	SessionID    string         `json:"session_id,omitempty"`
	RequestID    string         `json:"request_id,omitempty"`
	Metadata     map[string]any `json:"metadata"`
	CreatedAt    time.Time      `json:"created_at"`
}

// Event is what a use case asks the [Recorder] to record. AccountID is empty
// when the identity could not be resolved.
//
// SessionID is the ID of the token that opened or carried the session,
// normally the refresh token.
type Event struct {
	Action       Action
	AccountID    string
	ResourceType string
	ResourceID   string
	SessionID    string
	Metadata     map[string]any
}

// # Data Access

// Filter narrows a listing. Zero fields do not constrain.
type Filter struct {
	AccountID string
	Actions   []Action
	IPAddress string
	SessionID string
	Since     time.Time
}

// Matches reports whether entry satisfies the filter.
func (filter Filter) Matches(entry Entry) bool {
	if filter.AccountID != "" && entry.AccountID != filter.AccountID {
		return false
	}
	if filter.IPAddress != "" && entry.IPAddress != filter.IPAddress {
		return false
	}
	if filter.SessionID != "" && entry.SessionID != filter.SessionID {
		return false
	}
	if !filter.Since.IsZero() && entry.CreatedAt.Before(filter.Since) {
		return false
	}
	if len(filter.Actions) == 0 {
		return true
	}
	for _, action := range filter.Actions {
		if entry.Action == action {
			return true
		}
	}
	return false
}

// Repository is the append-only audit store.
type Repository interface {

	/*
		Append stores a new entry.

		Parameters:
		  - context: context.Context
		  - entry: *Entry

		Returns:
		  - error: Persistence failures
	*/
	Append(context context.Context, entry *Entry) error

	/*
		List returns entries matching filter, newest first.

		Parameters:
		  - context: context.Context
		  - filter: Filter
		  - page: pagination.Params

		Returns:
		  - []Entry: One page of entries
		  - int: Total matching entries
		  - error: Retrieval failures
	*/
	List(context context.Context, filter Filter, page pagination.Params) ([]Entry, int, error)
}
