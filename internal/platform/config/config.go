// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. A local '.env' file
is loaded first through 'joho/godotenv' when present.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, Lockout) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// minJWTSecretLength mirrors the HS256 key floor enforced by the token service.
const minJWTSecretLength = 32

// # Configuration Schema

// Config holds all runtime configuration for the auth API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Store (Redis) for OTP challenges and the token denylist
	RedisURL string `env:"REDIS_URL,required"`

	// Token signing
	JWTSecret       string        `env:"JWT_SECRET,required"`
	JWTIssuer       string        `env:"JWT_ISSUER"        envDefault:"shopauth"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL"  envDefault:"24h"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`

	// DenylistEnabled turns on jti revocation for refresh tokens at logout.
	DenylistEnabled bool `env:"TOKEN_DENYLIST_ENABLED" envDefault:"false"`

	// Lockout policy
	LockoutThreshold int           `env:"LOCKOUT_THRESHOLD" envDefault:"5"`
	LockoutDuration  time.Duration `env:"LOCKOUT_DURATION"  envDefault:"15m"`

	// One-time passcodes
	OTPTTL           time.Duration `env:"OTP_TTL"            envDefault:"10m"`
	OTPExposeCode    bool          `env:"OTP_EXPOSE_CODE"    envDefault:"false"`
	PhoneCountryCode string        `env:"PHONE_COUNTRY_CODE" envDefault:"91"`

	// StoreTimeout bounds every CredentialStore and kv call.
	StoreTimeout time.Duration `env:"STORE_TIMEOUT" envDefault:"3s"`

	// Audit pipeline
	AuditQueueSize  int      `env:"AUDIT_QUEUE_SIZE"  envDefault:"1024"`
	KafkaBrokers    []string `env:"KAFKA_BROKERS"     envSeparator:","`
	KafkaAuditTopic string   `env:"KAFKA_AUDIT_TOPIC" envDefault:"auth.audit"`

	// Cross-Origin Resource Sharing
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	// Admission rate limiting (per client IP)
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS"   envDefault:"10"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"20"`
}

// # Configuration Loading

// Load reads an optional .env file, then parses environment variables into a [Config].
func Load() (*Config, error) {

	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to load .env file: %w", err)
	}

	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects configurations the services cannot start with.
func (c *Config) Validate() error {
	var problems []string

	if len(c.JWTSecret) < minJWTSecretLength {
		problems = append(problems, fmt.Sprintf("JWT_SECRET must be at least %d bytes", minJWTSecretLength))
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		problems = append(problems, "token TTLs must be positive")
	}
	if c.LockoutThreshold < 1 {
		problems = append(problems, "LOCKOUT_THRESHOLD must be at least 1")
	}
	if c.LockoutDuration <= 0 {
		problems = append(problems, "LOCKOUT_DURATION must be positive")
	}
	if c.OTPTTL <= 0 {
		problems = append(problems, "OTP_TTL must be positive")
	}
	if c.StoreTimeout <= 0 {
		problems = append(problems, "STORE_TIMEOUT must be positive")
	}
	if c.AuditQueueSize < 0 {
		problems = append(problems, "AUDIT_QUEUE_SIZE must not be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("config: invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// ExposeOTPCode reports whether send-otp responses may echo the generated code.
func (c *Config) ExposeOTPCode() bool {
	return c.OTPExposeCode && c.IsDevelopment()
}
