// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the storefront authentication use cases.

It coordinates the account store, the lockout policy, one-time passcodes and
token issuance, and records every security-relevant transition in the audit
log.

Architecture:

  - Service: Orchestrates login, registration, refresh, logout and OTP flows.
  - Handler: JSON transport over chi, including the refresh-token cookie.
  - Denylist: Optional revocation of refresh tokens on logout and rotation.

Every attempt follows the same path: resolve the account, check the lock,
verify the secret, then either reset or advance the failure counter. The
counter is shared by password and OTP attempts.
*/
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/shopauth/internal/platform/apperr"
	"github.com/taibuivan/shopauth/internal/platform/constants"
	"github.com/taibuivan/shopauth/internal/platform/ctxutil"
	"github.com/taibuivan/shopauth/internal/platform/metrics"
	"github.com/taibuivan/shopauth/internal/platform/sec"
	"github.com/taibuivan/shopauth/internal/platform/validate"
	"github.com/taibuivan/shopauth/internal/users/account"
	"github.com/taibuivan/shopauth/internal/users/audit"
	"github.com/taibuivan/shopauth/internal/users/lockout"
	"github.com/taibuivan/shopauth/internal/users/otp"
	"github.com/taibuivan/shopauth/pkg/clock"
	"github.com/taibuivan/shopauth/pkg/pointer"
)

// DefaultStoreTimeout bounds each store round trip when none is configured.
const DefaultStoreTimeout = 3 * time.Second

// # Contracts & Types

// TokenIssuer signs and verifies session tokens.
type TokenIssuer interface {
	IssueAccessToken(subject sec.Subject) (sec.Token, error)
	IssueRefreshToken(subject sec.Subject) (sec.Token, error)
	VerifyType(tokenString string, expected sec.TokenType) (*sec.AuthClaims, error)
	AccessTTL() time.Duration
}

// ChallengeService sends and checks one-time passcodes.
type ChallengeService interface {
	Send(ctx context.Context, phone string) (*otp.Challenge, error)
	Verify(ctx context.Context, phone, code string) (otp.Result, error)
}

// AuditRecorder receives audit events. It never fails the caller.
type AuditRecorder interface {
	Record(ctx context.Context, event audit.Event)
}

// Dependencies wires a [Service].
type Dependencies struct {
	Accounts   account.Store
	Lockout    lockout.Policy
	Challenges ChallengeService
	Tokens     TokenIssuer
	Audit      AuditRecorder

	// Denylist enables refresh-token revocation. Nil disables it.
	Denylist *Denylist

	Phones       account.PhoneNormalizer
	Metrics      *metrics.Metrics
	Clock        clock.Clock
	StoreTimeout time.Duration
}

// Service implements the authentication use cases.
//
// # Review Process
//
// This service is critical for security. Changes to the lockout sequence or
// to which errors reveal account existence must be reviewed by the security team.
type Service struct {
	accounts     account.Store
	lockout      lockout.Policy
	challenges   ChallengeService
	tokens       TokenIssuer
	audit        AuditRecorder
	denylist     *Denylist
	phones       account.PhoneNormalizer
	metrics      *metrics.Metrics
	clock        clock.Clock
	storeTimeout time.Duration
}

// NewService constructs a [Service], filling defaults for optional dependencies.
func NewService(deps Dependencies) *Service {
	if deps.Lockout.Threshold <= 0 || deps.Lockout.Duration <= 0 {
		deps.Lockout = lockout.New(deps.Lockout.Threshold, deps.Lockout.Duration)
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewNop()
	}
	if deps.Clock == nil {
		deps.Clock = clock.System{}
	}
	if deps.StoreTimeout <= 0 {
		deps.StoreTimeout = DefaultStoreTimeout
	}
	if deps.Audit == nil {
		deps.Audit = discardRecorder{}
	}

	return &Service{
		accounts:     deps.Accounts,
		lockout:      deps.Lockout,
		challenges:   deps.Challenges,
		tokens:       deps.Tokens,
		audit:        deps.Audit,
		denylist:     deps.Denylist,
		phones:       deps.Phones,
		metrics:      deps.Metrics,
		clock:        deps.Clock,
		storeTimeout: deps.StoreTimeout,
	}
}

type discardRecorder struct{}

func (discardRecorder) Record(context.Context, audit.Event) {}

// Session is the outcome of a successful login, registration or refresh.
type Session struct {
	Account      *account.Account
	AccessToken  sec.Token
	RefreshToken sec.Token
}

// Credentials is one login attempt. Exactly one identifier and one secret
// are expected; an OTP is only accepted together with a phone.
type Credentials struct {
	Email    string
	Phone    string
	Password string
	OTP      string
}

func (credentials Credentials) validate() error {
	validator := &validate.Validator{}
	validator.Custom(FieldEmail, credentials.Email == "" && credentials.Phone == "", "Email or phone is required")
	validator.Custom(FieldPassword, credentials.Password == "" && credentials.OTP == "", "Password or one-time code is required")
	validator.Custom(FieldOTP, credentials.OTP != "" && credentials.Phone == "", "One-time codes require a phone number")
	if credentials.OTP != "" {
		validator.Digits(FieldOTP, credentials.OTP, constants.OTPLength)
	}
	return validator.Err()
}

// verdict is the result of checking a secret. An empty reason means success.
type verdict struct {
	reason    string
	rejection error
}

// secretCheck verifies the caller's secret against target.
type secretCheck func(ctx context.Context, target *account.Account) (verdict, error)

// # Authentication Flow

/*
Login authenticates with email or phone plus a password, or phone plus a
one-time code.

Description: Unknown identifiers and wrong passwords both yield
INVALID_CREDENTIALS. A locked account is rejected before its secret is
checked. The attempt that crosses the failure threshold is already answered
with ACCOUNT_LOCKED.

Parameters:
  - ctx: context.Context
  - credentials: Credentials

Returns:
  - *Session: Account plus a fresh token pair
  - error: VALIDATION_ERROR, INVALID_CREDENTIALS, ACCOUNT_LOCKED,
    ACCOUNT_INACTIVE, CHALLENGE_* or STORE_UNAVAILABLE
*/
func (service *Service) Login(ctx context.Context, credentials Credentials) (*Session, error) {
	if err := credentials.validate(); err != nil {
		return nil, err
	}

	if credentials.OTP != "" {
		return service.LoginWithOTP(ctx, credentials.Phone, credentials.OTP)
	}

	identifier := FieldEmail
	if credentials.Email == "" {
		identifier = FieldPhone
	}

	target, err := service.resolve(ctx, credentials.Email, credentials.Phone)
	if errors.Is(err, account.ErrNotFound) {
		sec.SimulatePasswordCheck(credentials.Password)
		return nil, service.rejectUnknown(ctx, metrics.MethodPassword, identifier)
	}
	if err != nil {
		return nil, err
	}

	return service.authenticate(ctx, target, metrics.MethodPassword, func(_ context.Context, current *account.Account) (verdict, error) {
		if service.accounts.VerifyPassword(current, credentials.Password) {
			return verdict{}, nil
		}
		return verdict{reason: ReasonWrongPassword, rejection: apperr.InvalidCredentials()}, nil
	})
}

/*
LoginWithOTP authenticates with a phone and the code sent to it.

Description: The code is consumed on success. Wrong, expired and missing
codes count as failed attempts against the same lockout counter as
passwords.

Parameters:
  - ctx: context.Context
  - phone: string (any accepted shape)
  - code: string (6 digits)

Returns:
  - *Session: Account plus a fresh token pair
  - error: VALIDATION_ERROR, INVALID_CREDENTIALS, CHALLENGE_EXPIRED,
    CHALLENGE_MISMATCH, CHALLENGE_NOT_FOUND, ACCOUNT_LOCKED, ACCOUNT_INACTIVE
    or STORE_UNAVAILABLE
*/
func (service *Service) LoginWithOTP(ctx context.Context, phone, code string) (*Session, error) {
	validator := &validate.Validator{}
	validator.Required(FieldPhone, phone).
		Required(FieldOTP, code).
		Digits(FieldOTP, code, constants.OTPLength)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	target, err := service.resolve(ctx, "", phone)
	if errors.Is(err, account.ErrNotFound) {
		return nil, service.rejectUnknown(ctx, metrics.MethodOTP, FieldPhone)
	}
	if err != nil {
		return nil, err
	}

	return service.authenticate(ctx, target, metrics.MethodOTP, func(ctx context.Context, current *account.Account) (verdict, error) {
		storeCtx, cancel := service.storeContext(ctx)
		defer cancel()

		result, err := service.challenges.Verify(storeCtx, current.Phone, code)
		if err != nil {
			return verdict{}, storeError(err)
		}

		if result == otp.ResultOK {
			service.metrics.OTPChallenge(metrics.OutcomeSuccess)
			return verdict{}, nil
		}

		service.metrics.OTPChallenge(result.String())
		service.audit.Record(ctx, audit.Event{
			Action:    audit.ActionOTPFailed,
			AccountID: current.ID,
			Metadata:  map[string]any{metaReason: result.String()},
		})
		return verdict{reason: "otp_" + result.String(), rejection: result.Err()}, nil
	})
}

// VerifyOTP is the verify-otp entry point. It is the same use case as
// [Service.LoginWithOTP].
func (service *Service) VerifyOTP(ctx context.Context, phone, code string) (*Session, error) {
	return service.LoginWithOTP(ctx, phone, code)
}

// authenticate runs the lock check, the secret check and the counter update.
func (service *Service) authenticate(ctx context.Context, target *account.Account, method string, check secretCheck) (*Session, error) {
	decision := service.lockout.Check(target, service.clock.Now())
	if decision.Expired {
		unlocked, err := service.autoUnlock(ctx, target)
		if err != nil {
			return nil, err
		}
		target = unlocked
		decision = service.lockout.Check(target, service.clock.Now())
	}
	if decision.Locked {
		service.metrics.LoginAttempt(method, metrics.OutcomeLocked)
		return nil, apperr.AccountLocked(decision.Remaining)
	}

	result, err := check(ctx, target)
	if err != nil {
		return nil, err
	}
	if result.reason != "" {
		return nil, service.recordFailure(ctx, target, method, result)
	}

	// Status is only revealed to callers holding the correct secret.
	if !target.Status.CanAuthenticate() {
		service.metrics.LoginAttempt(method, metrics.OutcomeInactive)
		service.audit.Record(ctx, audit.Event{
			Action:    audit.ActionLoginFailure,
			AccountID: target.ID,
			Metadata:  map[string]any{metaMethod: method, metaReason: ReasonInactive},
		})
		return nil, apperr.AccountInactive()
	}

	return service.completeLogin(ctx, target, method)
}

// errStillLocked aborts a failure write when another request locked the account first.
var errStillLocked = errors.New("auth: account locked concurrently")

func (service *Service) recordFailure(ctx context.Context, target *account.Account, method string, result verdict) error {
	storeCtx, cancel := service.storeContext(ctx)
	defer cancel()

	var (
		justLocked bool
		remaining  time.Duration
	)
	updated, err := service.accounts.Mutate(storeCtx, target.ID, func(current *account.Account) error {
		now := service.clock.Now()

		decision := service.lockout.Check(current, now)
		if decision.Locked {
			remaining = decision.Remaining
			return errStillLocked
		}
		if decision.Expired {
			lockout.Clear(current, now)
		}

		justLocked = service.lockout.OnFailedAttempt(current, now)
		if justLocked {
			remaining = service.lockout.Duration
		}
		return nil
	})
	if errors.Is(err, errStillLocked) {
		service.metrics.LoginAttempt(method, metrics.OutcomeLocked)
		return apperr.AccountLocked(remaining)
	}
	if err != nil {
		return storeError(err)
	}

	service.metrics.LoginAttempt(method, metrics.OutcomeFailure)
	service.audit.Record(ctx, audit.Event{
		Action:    audit.ActionLoginFailure,
		AccountID: updated.ID,
		Metadata: map[string]any{
			metaMethod:         method,
			metaReason:         result.reason,
			metaFailedAttempts: updated.FailedAttempts,
		},
	})

	if !justLocked {
		return result.rejection
	}

	service.metrics.AccountLocked()
	service.audit.Record(ctx, audit.Event{
		Action:       audit.ActionAccountLocked,
		AccountID:    updated.ID,
		ResourceType: audit.ResourceAccount,
		ResourceID:   updated.ID,
		Metadata: map[string]any{
			metaMethod:         method,
			metaFailedAttempts: updated.FailedAttempts,
			metaLockExpiresAt:  pointer.Val(updated.LockExpiresAt),
		},
	})
	ctxutil.GetLogger(ctx).WarnContext(ctx, "account_locked",
		slog.String("account_id", updated.ID),
		slog.Int("failed_attempts", updated.FailedAttempts),
	)

	return apperr.AccountLocked(remaining)
}

// autoUnlock clears a lapsed lock. Only the request that actually clears it
// writes the audit entry.
func (service *Service) autoUnlock(ctx context.Context, target *account.Account) (*account.Account, error) {
	storeCtx, cancel := service.storeContext(ctx)
	defer cancel()

	cleared := false
	updated, err := service.accounts.Mutate(storeCtx, target.ID, func(current *account.Account) error {
		now := service.clock.Now()
		if service.lockout.Check(current, now).Expired {
			lockout.Clear(current, now)
			cleared = true
		}
		return nil
	})
	if err != nil {
		return nil, storeError(err)
	}

	if cleared {
		service.audit.Record(ctx, audit.Event{
			Action:       audit.ActionAccountAutoUnlocked,
			AccountID:    updated.ID,
			ResourceType: audit.ResourceAccount,
			ResourceID:   updated.ID,
			Metadata:     map[string]any{metaLockExpiresAt: pointer.Val(target.LockExpiresAt)},
		})
	}

	return updated, nil
}

func (service *Service) completeLogin(ctx context.Context, target *account.Account, method string) (*Session, error) {
	storeCtx, cancel := service.storeContext(ctx)
	defer cancel()

	var remaining time.Duration
	updated, err := service.accounts.Mutate(storeCtx, target.ID, func(current *account.Account) error {
		now := service.clock.Now()

		// A lock placed after the first check still wins over a correct secret.
		if decision := service.lockout.Check(current, now); decision.Locked {
			remaining = decision.Remaining
			return errStillLocked
		}

		service.lockout.OnSuccessfulAttempt(current, now)
		current.LastLoginAt = pointer.To(now)
		return nil
	})
	if errors.Is(err, errStillLocked) {
		service.metrics.LoginAttempt(method, metrics.OutcomeLocked)
		return nil, apperr.AccountLocked(remaining)
	}
	if err != nil {
		return nil, storeError(err)
	}

	session, err := service.issue(updated)
	if err != nil {
		return nil, err
	}

	service.metrics.LoginAttempt(method, metrics.OutcomeSuccess)
	service.audit.Record(ctx, audit.Event{
		Action:    audit.ActionLoginSuccess,
		AccountID: updated.ID,
		SessionID: session.RefreshToken.ID,
		Metadata:  map[string]any{metaMethod: method},
	})

	return session, nil
}

// rejectUnknown answers an unresolved identifier exactly like a wrong password.
func (service *Service) rejectUnknown(ctx context.Context, method, identifier string) error {
	service.metrics.LoginAttempt(method, metrics.OutcomeFailure)
	service.audit.Record(ctx, audit.Event{
		Action: audit.ActionLoginFailure,
		Metadata: map[string]any{
			metaMethod:     method,
			metaReason:     ReasonNotFound,
			metaIdentifier: identifier,
		},
	})
	return apperr.InvalidCredentials()
}

// # One-Time Codes

/*
SendOTP issues a one-time code to a registered, active phone.

Description: Each call replaces the previous code for the phone, so callers
should debounce.

Parameters:
  - ctx: context.Context
  - phone: string (any accepted shape)

Returns:
  - *otp.Challenge: The issued challenge, including the plaintext code
  - error: VALIDATION_ERROR, NOT_REGISTERED, ACCOUNT_INACTIVE or STORE_UNAVAILABLE
*/
func (service *Service) SendOTP(ctx context.Context, phone string) (*otp.Challenge, error) {
	canonical := service.phones.Normalize(phone)

	validator := &validate.Validator{}
	validator.Required(FieldPhone, phone)
	if phone != "" {
		validator.Phone(FieldPhone, canonical)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	storeCtx, cancel := service.storeContext(ctx)
	defer cancel()

	challenge, err := service.challenges.Send(storeCtx, canonical)
	if err != nil {
		return nil, err
	}

	service.metrics.OTPChallenge(metrics.OutcomeSent)
	service.audit.Record(ctx, audit.Event{
		Action:    audit.ActionOTPSent,
		AccountID: challenge.AccountID,
		Metadata:  map[string]any{metaPhone: otp.MaskPhone(canonical)},
	})

	return challenge, nil
}

// # Registration Flow

/*
Register creates an account and logs it in.

Description: Email-first drafts require a password meeting the policy.
Phone-first drafts may omit it and will authenticate with one-time codes.

Parameters:
  - ctx: context.Context
  - draft: account.Draft

Returns:
  - *Session: The new account plus a token pair
  - error: UNPROCESSABLE with field details, DUPLICATE_IDENTITY or STORE_UNAVAILABLE
*/
func (service *Service) Register(ctx context.Context, draft account.Draft) (*Session, error) {
	now := service.clock.Now()

	created, err := account.New(draft, service.phones, now)
	if err != nil {
		return nil, err
	}
	created.LastLoginAt = pointer.To(now)

	storeCtx, cancel := service.storeContext(ctx)
	defer cancel()

	if err := service.accounts.Create(storeCtx, created); err != nil {
		return nil, storeError(err)
	}

	session, err := service.issue(created)
	if err != nil {
		return nil, err
	}

	identifier := FieldEmail
	if created.Email == "" {
		identifier = FieldPhone
	}
	service.audit.Record(ctx, audit.Event{
		Action:       audit.ActionRegistration,
		AccountID:    created.ID,
		ResourceType: audit.ResourceAccount,
		ResourceID:   created.ID,
		SessionID:    session.RefreshToken.ID,
		Metadata:     map[string]any{metaIdentifier: identifier},
	})

	return session, nil
}

// # Session Management

/*
Refresh exchanges a refresh token for a new token pair.

Description: With the denylist enabled the presented refresh token is
revoked, so each refresh token can be exchanged once.

Parameters:
  - ctx: context.Context
  - refreshToken: string

Returns:
  - *Session: Account plus a fresh token pair
  - error: TOKEN_EXPIRED, TOKEN_MALFORMED, TOKEN_SIGNATURE_INVALID,
    TOKEN_REVOKED, ACCOUNT_INACTIVE, ACCOUNT_LOCKED or STORE_UNAVAILABLE
*/
func (service *Service) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, apperr.TokenMalformed()
	}

	claims, err := service.tokens.VerifyType(refreshToken, sec.TokenRefresh)
	if err != nil {
		return nil, err
	}

	storeCtx, cancel := service.storeContext(ctx)
	defer cancel()

	if service.denylist != nil {
		revoked, err := service.denylist.IsRevoked(storeCtx, claims.ID)
		if err != nil {
			return nil, storeError(err)
		}
		if revoked {
			return nil, apperr.TokenRevoked()
		}
	}

	target, err := service.accounts.FindByID(storeCtx, claims.AccountID)
	if errors.Is(err, account.ErrNotFound) {
		return nil, apperr.Unauthorized("Account no longer exists")
	}
	if err != nil {
		return nil, storeError(err)
	}

	if !target.Status.CanAuthenticate() {
		return nil, apperr.AccountInactive()
	}
	if decision := service.lockout.Check(target, service.clock.Now()); decision.Locked {
		return nil, apperr.AccountLocked(decision.Remaining)
	}

	// Rotation: the presented token is spent by exactly one refresh.
	if service.denylist != nil && claims.ExpiresAt != nil {
		claimed, err := service.denylist.Claim(storeCtx, claims.ID, claims.ExpiresAt.Time)
		if err != nil {
			return nil, storeError(err)
		}
		if !claimed {
			return nil, apperr.TokenRevoked()
		}
	}

	session, err := service.issue(target)
	if err != nil {
		return nil, err
	}

	service.audit.Record(ctx, audit.Event{
		Action:    audit.ActionTokenRefresh,
		AccountID: target.ID,
		SessionID: session.RefreshToken.ID,
		Metadata:  map[string]any{metaTokenID: claims.ID},
	})

	return session, nil
}

/*
Logout ends a session. It always succeeds.

Description: caller is the access-token identity, if any. When a refresh
token is presented and the denylist is enabled, that token is revoked. A
refresh token belonging to a different account than caller is ignored.

Parameters:
  - ctx: context.Context
  - caller: *sec.AuthClaims (may be nil)
  - refreshToken: string (may be empty)
*/
func (service *Service) Logout(ctx context.Context, caller *sec.AuthClaims, refreshToken string) {
	accountID, sessionID := "", ""
	if caller != nil {
		accountID, sessionID = caller.AccountID, caller.ID
	}

	if refreshToken != "" {
		claims, err := service.tokens.VerifyType(refreshToken, sec.TokenRefresh)
		if err == nil && (accountID == "" || claims.AccountID == accountID) {
			accountID, sessionID = claims.AccountID, claims.ID
			service.revoke(ctx, claims)
		}
	}

	service.audit.Record(ctx, audit.Event{
		Action:    audit.ActionLogout,
		AccountID: accountID,
		SessionID: sessionID,
	})
}

// revoke denylists a refresh token. Failures are logged only.
func (service *Service) revoke(ctx context.Context, claims *sec.AuthClaims) {
	if service.denylist == nil || claims.ExpiresAt == nil {
		return
	}

	storeCtx, cancel := service.storeContext(ctx)
	defer cancel()

	if err := service.denylist.Revoke(storeCtx, claims.ID, claims.ExpiresAt.Time); err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "refresh_token_revoke_failed",
			slog.String("account_id", claims.AccountID),
			slog.Any("error", err),
		)
	}
}

// # Account Queries & Administration

/*
Me returns the account behind an access token.

Parameters:
  - ctx: context.Context
  - accountID: string

Returns:
  - *account.Account: Current state
  - error: NOT_FOUND or STORE_UNAVAILABLE
*/
func (service *Service) Me(ctx context.Context, accountID string) (*account.Account, error) {
	storeCtx, cancel := service.storeContext(ctx)
	defer cancel()

	found, err := service.accounts.FindByID(storeCtx, accountID)
	if errors.Is(err, account.ErrNotFound) {
		return nil, apperr.NotFound("Account")
	}
	if err != nil {
		return nil, storeError(err)
	}
	return found, nil
}

/*
Unlock clears the lock and failure counter of an account on behalf of an
administrator.

Parameters:
  - ctx: context.Context
  - accountID: string
  - actorID: string (the administrator)

Returns:
  - *account.Account: The unlocked account
  - error: NOT_FOUND or STORE_UNAVAILABLE
*/
func (service *Service) Unlock(ctx context.Context, accountID, actorID string) (*account.Account, error) {
	storeCtx, cancel := service.storeContext(ctx)
	defer cancel()

	updated, err := service.accounts.Mutate(storeCtx, accountID, func(current *account.Account) error {
		lockout.Clear(current, service.clock.Now())
		return nil
	})
	if errors.Is(err, account.ErrNotFound) {
		return nil, apperr.NotFound("Account")
	}
	if err != nil {
		return nil, storeError(err)
	}

	service.audit.Record(ctx, audit.Event{
		Action:       audit.ActionAccountUnlocked,
		AccountID:    updated.ID,
		ResourceType: audit.ResourceAccount,
		ResourceID:   updated.ID,
		Metadata:     map[string]any{metaUnlockedBy: actorID},
	})
	ctxutil.GetLogger(ctx).InfoContext(ctx, "account_unlocked",
		slog.String("account_id", updated.ID),
		slog.String("unlocked_by", actorID),
	)

	return updated, nil
}

// # Helpers

// AccessTTL is the lifetime of issued access tokens.
func (service *Service) AccessTTL() time.Duration {
	return service.tokens.AccessTTL()
}

func (service *Service) resolve(ctx context.Context, email, phone string) (*account.Account, error) {
	storeCtx, cancel := service.storeContext(ctx)
	defer cancel()

	var (
		found *account.Account
		err   error
	)
	if email != "" {
		found, err = service.accounts.FindByEmail(storeCtx, account.NormalizeEmail(email))
	} else {
		found, err = service.accounts.FindByPhone(storeCtx, service.phones.Normalize(phone))
	}

	if err != nil && !errors.Is(err, account.ErrNotFound) {
		return nil, storeError(err)
	}
	return found, err
}

func (service *Service) issue(target *account.Account) (*Session, error) {
	access, err := service.tokens.IssueAccessToken(target.Subject())
	if err != nil {
		return nil, fmt.Errorf("auth_issue_access_token_failed: %w", err)
	}

	refresh, err := service.tokens.IssueRefreshToken(target.Subject())
	if err != nil {
		return nil, fmt.Errorf("auth_issue_refresh_token_failed: %w", err)
	}

	return &Session{Account: target, AccessToken: access, RefreshToken: refresh}, nil
}

func (service *Service) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, service.storeTimeout)
}

// storeError keeps classified errors and reports anything else, including
// deadline overruns, as STORE_UNAVAILABLE.
func storeError(err error) error {
	if apperr.IsAppError(err) {
		return err
	}
	return apperr.StoreUnavailable(err)
}
