// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package audit

import (
	"context"
	"log/slog"
	"sync"

	"github.com/taibuivan/shopauth/internal/platform/constants"
	"github.com/taibuivan/shopauth/internal/platform/ctxutil"
	"github.com/taibuivan/shopauth/internal/platform/metrics"
	"github.com/taibuivan/shopauth/pkg/clock"
	"github.com/taibuivan/shopauth/pkg/uuid"
)

// Publisher forwards entries to an external stream.
type Publisher interface {
	Publish(context context.Context, entry Entry) error
}

// Recorder is the write side of the audit log.
//
// With a queue size of zero every entry is written before Record returns.
// Otherwise entries go through a bounded queue drained by one goroutine, so
// entries are persisted in the order they were recorded. Failures and a full
// queue are logged and counted, never returned.
type Recorder struct {
	repository Repository
	publisher  Publisher
	clock      clock.Clock
	metrics    *metrics.Metrics
	logger     *slog.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan Entry
	done   chan struct{}
}

// RecorderOption customizes a [Recorder].
type RecorderOption func(*Recorder)

// WithPublisher also forwards every entry to publisher.
func WithPublisher(publisher Publisher) RecorderOption {
	return func(recorder *Recorder) { recorder.publisher = publisher }
}

// WithQueue enables asynchronous writes through a queue of size entries.
func WithQueue(size int) RecorderOption {
	return func(recorder *Recorder) {
		if size > 0 {
			recorder.queue = make(chan Entry, size)
		}
	}
}

// NewRecorder builds a Recorder. When a queue is configured the worker starts
// immediately and runs until [Recorder.Close].
func NewRecorder(repository Repository, clk clock.Clock, collectors *metrics.Metrics, logger *slog.Logger, options ...RecorderOption) *Recorder {
	if clk == nil {
		clk = clock.System{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	recorder := &Recorder{
		repository: repository,
		clock:      clk,
		metrics:    collectors,
		logger:     logger,
		done:       make(chan struct{}),
	}
	for _, option := range options {
		option(recorder)
	}

	if recorder.queue != nil {
		go recorder.drain()
	} else {
		close(recorder.done)
	}

	return recorder
}

// Record captures event with a server-assigned ID and timestamp plus the
// request's IP address, user agent and request ID.
func (recorder *Recorder) Record(ctx context.Context, event Event) {
	client := ctxutil.GetClient(ctx)
	metadata := event.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	entry := Entry{
		ID:           uuid.New(),
		AccountID:    event.AccountID,
		Action:       event.Action,
		ResourceType: event.ResourceType,
		ResourceID:   event.ResourceID,
		IPAddress:    client.IPAddress,
		UserAgent:    client.UserAgent,
		SessionID:    event.SessionID,
		RequestID:    ctxutil.GetRequestID(ctx),
		Metadata:     metadata,
		CreatedAt:    recorder.clock.Now(),
	}

	recorder.mu.RLock()
	defer recorder.mu.RUnlock()

	if recorder.closed {
		recorder.fail(ctx, entry, "audit_recorder_closed", nil)
		return
	}

	if recorder.queue == nil {
		recorder.write(context.WithoutCancel(ctx), entry)
		return
	}

	select {
	case recorder.queue <- entry:
	default:
		recorder.fail(ctx, entry, "audit_queue_full", nil)
	}
}

// Close stops accepting entries and waits for the queue to drain or ctx to end.
func (recorder *Recorder) Close(ctx context.Context) error {
	recorder.mu.Lock()
	if !recorder.closed {
		recorder.closed = true
		if recorder.queue != nil {
			close(recorder.queue)
		}
	}
	recorder.mu.Unlock()

	select {
	case <-recorder.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (recorder *Recorder) drain() {
	defer close(recorder.done)
	for entry := range recorder.queue {
		recorder.write(context.Background(), entry)
	}
}

func (recorder *Recorder) write(ctx context.Context, entry Entry) {
	writeCtx, cancel := context.WithTimeout(ctx, constants.AuditWriteTimeout)
	defer cancel()

	if err := recorder.repository.Append(writeCtx, &entry); err != nil {
		recorder.fail(ctx, entry, "audit_write_failed", err)
		return
	}

	if recorder.publisher != nil {
		if err := recorder.publisher.Publish(writeCtx, entry); err != nil {
			recorder.logFor(ctx).WarnContext(ctx, "audit_publish_failed",
				slog.String("audit_id", entry.ID),
				slog.String("action", string(entry.Action)),
				slog.Any("error", err),
			)
		}
	}
}

func (recorder *Recorder) fail(ctx context.Context, entry Entry, message string, err error) {
	if recorder.metrics != nil {
		recorder.metrics.AuditWriteFailed()
	}

	attributes := []any{
		slog.String("audit_id", entry.ID),
		slog.String("action", string(entry.Action)),
		slog.String("account_id", entry.AccountID),
	}
	if err != nil {
		attributes = append(attributes, slog.Any("error", err))
	}
	recorder.logFor(ctx).WarnContext(ctx, message, attributes...)
}

// logFor prefers the request logger, which carries the request ID.
func (recorder *Recorder) logFor(ctx context.Context) *slog.Logger {
	if logger := ctxutil.GetLogger(ctx); logger != slog.Default() {
		return logger
	}
	return recorder.logger
}
