// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer via small interfaces declared by the consumers.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taibuivan/shopauth/internal/platform/apperr"
	"github.com/taibuivan/shopauth/pkg/clock"
	"github.com/taibuivan/shopauth/pkg/uuid"
)

// minSecretLength is the shortest HMAC key accepted for HS256.
const minSecretLength = 32

// TokenType discriminates access tokens from refresh tokens.
type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

// AuthClaims represents the payload embedded inside a signed token.
//
// # Why custom claims?
//
// Embedding the account ID, email and role lets [middleware.Authenticate]
// rebuild the caller identity without a store lookup on every request.
type AuthClaims struct {
	jwt.RegisteredClaims

	// Custom application claims are abbreviated to keep the token small.
	AccountID string    `json:"uid"`
	Email     string    `json:"eml,omitempty"`
	Role      string    `json:"rol,omitempty"`
	Type      TokenType `json:"typ"`
}

// Subject is the identity a token is issued for.
type Subject struct {
	AccountID string
	Email     string
	Role      UserRole
}

// Token is a signed token plus the metadata callers need to hand it out.
type Token struct {
	Value     string
	ID        string
	ExpiresAt time.Time
}

// TokenService issues and verifies HS256 tokens with a single shared secret.
//
// It holds no mutable state, so one instance is shared by all requests.
type TokenService struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	clock      clock.Clock
}

// NewTokenService validates the signing configuration and returns a [TokenService].
func NewTokenService(secret, issuer string, accessTTL, refreshTTL time.Duration, clk clock.Clock) (*TokenService, error) {
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("sec: signing secret must be at least %d bytes", minSecretLength)
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("sec: token TTLs must be positive")
	}
	if clk == nil {
		clk = clock.System{}
	}

	return &TokenService{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		clock:      clk,
	}, nil
}

// AccessTTL returns the lifetime of access tokens.
func (service *TokenService) AccessTTL() time.Duration { return service.accessTTL }

// IssueAccessToken signs a short-lived access token for subject.
func (service *TokenService) IssueAccessToken(subject Subject) (Token, error) {
	return service.issue(subject, TokenAccess, service.accessTTL)
}

// IssueRefreshToken signs a long-lived refresh token for subject.
// Refresh tokens carry only the account ID and the type discriminator.
func (service *TokenService) IssueRefreshToken(subject Subject) (Token, error) {
	return service.issue(Subject{AccountID: subject.AccountID}, TokenRefresh, service.refreshTTL)
}

func (service *TokenService) issue(subject Subject, tokenType TokenType, timeToLive time.Duration) (Token, error) {
	currentTime := service.clock.Now()
	expiresAt := currentTime.Add(timeToLive)
	tokenID := uuid.New()

	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   subject.AccountID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		AccountID: subject.AccountID,
		Email:     subject.Email,
		Role:      string(subject.Role),
		Type:      tokenType,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(service.secret)
	if err != nil {
		return Token{}, fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return Token{Value: signed, ID: tokenID, ExpiresAt: expiresAt}, nil
}

// Verify checks the signature and validity of a token string.
//
// Failures are reported as [apperr.TokenExpired], [apperr.TokenSignatureInvalid]
// or [apperr.TokenMalformed].
func (service *TokenService) Verify(tokenString string) (*AuthClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(service.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(service.clock.Now),
	)

	claims := &AuthClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return service.secret, nil
	})

	switch {
	case err == nil && token.Valid:
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, apperr.TokenExpired().WithCause(err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return nil, apperr.TokenSignatureInvalid().WithCause(err)
	default:
		return nil, apperr.TokenMalformed().WithCause(err)
	}

	if claims.AccountID == "" || claims.AccountID != claims.Subject {
		return nil, apperr.TokenMalformed()
	}

	return claims, nil
}

// VerifyType verifies a token and additionally requires its type discriminator.
func (service *TokenService) VerifyType(tokenString string, expected TokenType) (*AuthClaims, error) {
	claims, err := service.Verify(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Type != expected {
		return nil, apperr.TokenMalformed()
	}
	return claims, nil
}

// VerifyToken verifies an access token. It satisfies [middleware.TokenVerifier].
func (service *TokenService) VerifyToken(tokenString string) (*AuthClaims, error) {
	return service.VerifyType(tokenString, TokenAccess)
}
