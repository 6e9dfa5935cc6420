// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package metrics defines the Prometheus collectors for authentication outcomes.
//
// Collectors are registered on an explicit [prometheus.Registerer] so tests can
// use a private registry instead of the process-wide default.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Login methods.
const (
	MethodPassword = "password"
	MethodOTP      = "otp"
)

// Outcome labels shared by the counters below.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeLocked   = "locked"
	OutcomeInactive = "inactive"
	OutcomeSent     = "sent"
	OutcomeExpired  = "expired"
	OutcomeMismatch = "mismatch"
	OutcomeNotFound = "not_found"
)

// Metrics groups the collectors used by the auth services and HTTP layer.
type Metrics struct {
	loginAttempts       *prometheus.CounterVec
	accountLockouts     prometheus.Counter
	otpChallenges       *prometheus.CounterVec
	auditWriteFailures  prometheus.Counter
	httpRequestDuration *prometheus.HistogramVec
}

// New registers all collectors on registerer.
func New(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)

	return &Metrics{
		loginAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_login_attempts_total",
				Help: "Login attempts by method and outcome",
			},
			[]string{"method", "outcome"},
		),
		accountLockouts: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "auth_account_lockouts_total",
				Help: "Accounts locked after crossing the failed-attempt threshold",
			},
		),
		otpChallenges: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_otp_challenges_total",
				Help: "OTP challenges sent and verified, by outcome",
			},
			[]string{"outcome"},
		),
		auditWriteFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "auth_audit_write_failures_total",
				Help: "Audit entries dropped or not persisted",
			},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "auth_http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2, 5},
			},
			[]string{"route", "method", "status"},
		),
	}
}

// NewNop returns collectors bound to a throwaway registry.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

// LoginAttempt counts one login outcome.
func (metrics *Metrics) LoginAttempt(method, outcome string) {
	metrics.loginAttempts.WithLabelValues(method, outcome).Inc()
}

// AccountLocked counts one threshold crossing.
func (metrics *Metrics) AccountLocked() {
	metrics.accountLockouts.Inc()
}

// OTPChallenge counts one send or verify outcome.
func (metrics *Metrics) OTPChallenge(outcome string) {
	metrics.otpChallenges.WithLabelValues(outcome).Inc()
}

// AuditWriteFailed counts one lost audit entry.
func (metrics *Metrics) AuditWriteFailed() {
	metrics.auditWriteFailures.Inc()
}

// ObserveRequest records one HTTP request duration.
func (metrics *Metrics) ObserveRequest(route, method, status string, elapsed time.Duration) {
	metrics.httpRequestDuration.WithLabelValues(route, method, status).Observe(elapsed.Seconds())
}
