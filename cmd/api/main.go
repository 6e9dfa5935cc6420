// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the shopauth HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Wire the audit pipeline and the authentication service.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/taibuivan/shopauth/internal/api"
	"github.com/taibuivan/shopauth/internal/platform/config"
	"github.com/taibuivan/shopauth/internal/platform/constants"
	"github.com/taibuivan/shopauth/internal/platform/kv"
	"github.com/taibuivan/shopauth/internal/platform/metrics"
	"github.com/taibuivan/shopauth/internal/platform/migration"
	pgstore "github.com/taibuivan/shopauth/internal/platform/postgres"
	redisstore "github.com/taibuivan/shopauth/internal/platform/redis"
	"github.com/taibuivan/shopauth/internal/platform/sec"
	"github.com/taibuivan/shopauth/internal/users/account"
	"github.com/taibuivan/shopauth/internal/users/audit"
	"github.com/taibuivan/shopauth/internal/users/auth"
	"github.com/taibuivan/shopauth/internal/users/lockout"
	"github.com/taibuivan/shopauth/internal/users/otp"
	"github.com/taibuivan/shopauth/pkg/clock"
)

const appName = "shopauth"

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.Bool("denylist_enabled", cfg.DenylistEnabled),
	)

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// Startup deadline so misconfiguration fails fast instead of hanging.
	startupCtx, startupCancel := context.WithTimeout(rootCtx, 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Shared infrastructure ──────────────────────────────────────────
	clk := clock.System{}
	collectors := metrics.New(prometheus.DefaultRegisterer)
	keyValue := kv.NewRedisStore(rdb)

	tokens, err := sec.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, clk)
	must(log, err, "initialize token service")

	// ── 7. Audit pipeline ─────────────────────────────────────────────────
	auditRepository := audit.NewPostgresRepository(pool)
	recorderOptions := []audit.RecorderOption{audit.WithQueue(cfg.AuditQueueSize)}

	if len(cfg.KafkaBrokers) > 0 {
		publisher, err := audit.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaAuditTopic)
		must(log, err, "connect to kafka")
		defer func() {
			if cerr := publisher.Close(); cerr != nil {
				log.Error("kafka close error", slog.Any("error", cerr))
			}
		}()
		recorderOptions = append(recorderOptions, audit.WithPublisher(publisher))
		log.Info("audit_streaming_enabled", slog.String("topic", cfg.KafkaAuditTopic))
	}

	recorder := audit.NewRecorder(auditRepository, clk, collectors, log, recorderOptions...)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), constants.AuditWriteTimeout)
		defer cancel()
		if cerr := recorder.Close(ctx); cerr != nil {
			log.Error("audit drain error", slog.Any("error", cerr))
		}
	}()

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	accounts := account.NewPostgresStore(pool)
	phones := account.PhoneNormalizer{CountryCode: cfg.PhoneCountryCode}
	challenges := otp.NewService(keyValue, accounts, otp.LogSender{IncludeCode: cfg.ExposeOTPCode()}, cfg.OTPTTL, clk)

	var denylist *auth.Denylist
	if cfg.DenylistEnabled {
		denylist = auth.NewDenylist(keyValue, clk)
	}

	authService := auth.NewService(auth.Dependencies{
		Accounts:     accounts,
		Lockout:      lockout.New(cfg.LockoutThreshold, cfg.LockoutDuration),
		Challenges:   challenges,
		Tokens:       tokens,
		Audit:        recorder,
		Denylist:     denylist,
		Phones:       phones,
		Metrics:      collectors,
		Clock:        clk,
		StoreTimeout: cfg.StoreTimeout,
	})

	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error {
			return pgstore.Ping(ctx, pool)
		},
		CheckKeyValue: keyValue.Ping,
	}, log)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Metrics:   promhttp.Handler(),
		Auth:      auth.NewHandler(authService, auth.HandlerOptions{ExposeOTPCode: cfg.ExposeOTPCode()}),
		Audit:     audit.NewHandler(audit.NewReader(auditRepository, clk)),
	}

	server := api.NewServer(rootCtx, cfg, log, tokens, collectors, handlers)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
	}
	rootCancel()

	log.Info("server stopped cleanly")
}

func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", appName))
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned
// and handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
