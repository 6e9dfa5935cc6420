// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package otp

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/shopauth/internal/platform/ctxutil"
)

// Sender delivers a passcode to a phone. SMS gateways implement it.
type Sender interface {
	Send(context context.Context, phone, code string, expiresAt time.Time) error
}

// LogSender writes deliveries to the request logger instead of an SMS gateway.
// The code is only logged when IncludeCode is set, which is meant for local
// development.
type LogSender struct {
	IncludeCode bool
}

// Send implements [Sender].
func (sender LogSender) Send(context context.Context, phone, code string, expiresAt time.Time) error {
	attributes := []any{
		slog.String("phone", MaskPhone(phone)),
		slog.Time("expires_at", expiresAt),
	}
	if sender.IncludeCode {
		attributes = append(attributes, slog.String("code", code))
	}

	ctxutil.GetLogger(context).InfoContext(context, "otp_dispatched", attributes...)
	return nil
}

// MaskPhone hides all but the country prefix and the last four digits.
func MaskPhone(phone string) string {
	const visibleTail = 4
	const visibleHead = 3

	if len(phone) <= visibleHead+visibleTail {
		return strings.Repeat("*", len(phone))
	}
	return phone[:visibleHead] + strings.Repeat("*", len(phone)-visibleHead-visibleTail) + phone[len(phone)-visibleTail:]
}
