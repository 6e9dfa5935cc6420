// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/shopauth/internal/platform/apperr"
	"github.com/taibuivan/shopauth/internal/platform/kv"
	"github.com/taibuivan/shopauth/internal/platform/metrics"
	"github.com/taibuivan/shopauth/internal/platform/sec"
	"github.com/taibuivan/shopauth/internal/users/account"
	"github.com/taibuivan/shopauth/internal/users/audit"
	"github.com/taibuivan/shopauth/internal/users/auth"
	"github.com/taibuivan/shopauth/internal/users/lockout"
	"github.com/taibuivan/shopauth/internal/users/otp"
	"github.com/taibuivan/shopauth/pkg/clock"
)

const (
	aliceEmail    = "alice@example.com"
	alicePassword = "Secur3!pass"
	bobPhone      = "9876543210"
	bobCanonical  = "+919876543210"
)

var epoch = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

type captureSender struct {
	mu    sync.Mutex
	codes []string
}

func (sender *captureSender) Send(_ context.Context, _, code string, _ time.Time) error {
	sender.mu.Lock()
	defer sender.mu.Unlock()
	sender.codes = append(sender.codes, code)
	return nil
}

func (sender *captureSender) last() string {
	sender.mu.Lock()
	defer sender.mu.Unlock()
	return sender.codes[len(sender.codes)-1]
}

type fixture struct {
	service  *auth.Service
	clock    *clock.Manual
	accounts *account.MemoryStore
	audits   *audit.MemoryRepository
	sender   *captureSender
	tokens   *sec.TokenService
}

func newFixture(t *testing.T, withDenylist bool) *fixture {
	t.Helper()
	return newFixtureWith(t, withDenylist, nil)
}

// newFixtureWith lets a test interpose on the account store the service sees.
func newFixtureWith(t *testing.T, withDenylist bool, wrap func(*account.MemoryStore, clock.Clock) account.Store) *fixture {
	t.Helper()

	clk := clock.NewManual(epoch)
	accounts := account.NewMemoryStore()
	var serviceAccounts account.Store = accounts
	if wrap != nil {
		serviceAccounts = wrap(accounts, clk)
	}
	store := kv.NewMemoryStore(clk)
	sender := &captureSender{}
	audits := audit.NewMemoryRepository()

	tokens, err := sec.NewTokenService(strings.Repeat("s", 32), "shopauth", 24*time.Hour, 7*24*time.Hour, clk)
	require.NoError(t, err)

	deps := auth.Dependencies{
		Accounts:   serviceAccounts,
		Lockout:    lockout.New(5, 15*time.Minute),
		Challenges: otp.NewService(store, serviceAccounts, sender, 10*time.Minute, clk),
		Tokens:     tokens,
		Audit:      audit.NewRecorder(audits, clk, metrics.NewNop(), nil),
		Phones:     account.PhoneNormalizer{CountryCode: "91"},
		Clock:      clk,
	}
	if withDenylist {
		deps.Denylist = auth.NewDenylist(store, clk)
	}

	return &fixture{
		service:  auth.NewService(deps),
		clock:    clk,
		accounts: accounts,
		audits:   audits,
		sender:   sender,
		tokens:   tokens,
	}
}

func (fixture *fixture) registerAlice(t *testing.T) *auth.Session {
	t.Helper()
	session, err := fixture.service.Register(context.Background(), account.Draft{
		Email:                aliceEmail,
		Password:             alicePassword,
		PasswordConfirmation: alicePassword,
		FirstName:            "Alice",
	})
	require.NoError(t, err)
	return session
}

func (fixture *fixture) registerBob(t *testing.T, password string) *auth.Session {
	t.Helper()
	session, err := fixture.service.Register(context.Background(), account.Draft{Phone: bobPhone, Password: password})
	require.NoError(t, err)
	return session
}

func (fixture *fixture) loginAlice(password string) (*auth.Session, error) {
	return fixture.service.Login(context.Background(), auth.Credentials{Email: aliceEmail, Password: password})
}

func (fixture *fixture) count(action audit.Action) int {
	total := 0
	for _, entry := range fixture.audits.All() {
		if entry.Action == action {
			total++
		}
	}
	return total
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, apperr.HasCode(err, code), "want %s, got %v", code, err)
}

/*
TestLockoutScenario walks register, five failures, a locked correct login,
and a login after the lock lapses.
*/
func TestLockoutScenario(t *testing.T) {
	fixture := newFixture(t, false)

	registered := fixture.registerAlice(t)
	assert.NotEmpty(t, registered.AccessToken.Value)
	assert.NotEmpty(t, registered.RefreshToken.Value)
	assert.Equal(t, 1, fixture.count(audit.ActionRegistration))

	for range 4 {
		_, err := fixture.loginAlice("Wr0ng!pass")
		requireCode(t, err, apperr.CodeInvalidCredentials)
	}

	_, err := fixture.loginAlice("Wr0ng!pass")
	requireCode(t, err, apperr.CodeAccountLocked)
	assert.Equal(t, 900, apperr.As(err).Meta["remaining_seconds"])
	assert.Equal(t, 1, fixture.count(audit.ActionAccountLocked))

	_, err = fixture.loginAlice(alicePassword)
	requireCode(t, err, apperr.CodeAccountLocked)
	assert.Positive(t, apperr.As(err).Meta["remaining_seconds"])

	fixture.clock.Advance(15*time.Minute + time.Second)

	session, err := fixture.loginAlice(alicePassword)
	require.NoError(t, err)
	assert.Equal(t, registered.Account.ID, session.Account.ID)
	assert.Zero(t, session.Account.FailedAttempts)
	assert.Nil(t, session.Account.LockedAt)
	assert.Nil(t, session.Account.LockExpiresAt)
	assert.Equal(t, 1, fixture.count(audit.ActionAccountAutoUnlocked))
	assert.Equal(t, 5, fixture.count(audit.ActionLoginFailure))
}

/*
TestLogin_LapsedLockWithWrongPassword counts afresh after an automatic unlock.
*/
func TestLogin_LapsedLockWithWrongPassword(t *testing.T) {
	fixture := newFixture(t, false)
	fixture.registerAlice(t)

	for range 5 {
		_, _ = fixture.loginAlice("Wr0ng!pass")
	}
	fixture.clock.Advance(16 * time.Minute)

	_, err := fixture.loginAlice("Wr0ng!pass")
	requireCode(t, err, apperr.CodeInvalidCredentials)

	stored, err := fixture.accounts.FindByEmail(context.Background(), aliceEmail)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.FailedAttempts)
	assert.Nil(t, stored.LockedAt)
}

/*
TestLogin_UnknownIdentityIsGeneric ensures an unknown email looks exactly like
a wrong password.
*/
func TestLogin_UnknownIdentityIsGeneric(t *testing.T) {
	fixture := newFixture(t, false)
	fixture.registerAlice(t)

	_, unknown := fixture.service.Login(context.Background(), auth.Credentials{Email: "mallory@example.com", Password: alicePassword})
	_, wrong := fixture.loginAlice("Wr0ng!pass")

	requireCode(t, unknown, apperr.CodeInvalidCredentials)
	assert.Equal(t, apperr.As(wrong).Message, apperr.As(unknown).Message)
	assert.Equal(t, apperr.As(wrong).HTTPStatus, apperr.As(unknown).HTTPStatus)

	var notFound *audit.Entry
	for _, entry := range fixture.audits.All() {
		if entry.Action == audit.ActionLoginFailure && entry.AccountID == "" {
			notFound = &entry
		}
	}
	require.NotNil(t, notFound)
	assert.Equal(t, auth.ReasonNotFound, notFound.Metadata["reason"])
}

/*
TestLogin_EmailIsCaseInsensitive normalizes the identifier before lookup.
*/
func TestLogin_EmailIsCaseInsensitive(t *testing.T) {
	fixture := newFixture(t, false)
	fixture.registerAlice(t)

	_, err := fixture.service.Login(context.Background(), auth.Credentials{Email: "  Alice@Example.COM ", Password: alicePassword})
	assert.NoError(t, err)
}

/*
TestLogin_SuccessResetsCounter clears partial failures on success.
*/
func TestLogin_SuccessResetsCounter(t *testing.T) {
	fixture := newFixture(t, false)
	fixture.registerAlice(t)

	for range 3 {
		_, _ = fixture.loginAlice("Wr0ng!pass")
	}

	session, err := fixture.loginAlice(alicePassword)
	require.NoError(t, err)
	assert.Zero(t, session.Account.FailedAttempts)
	require.NotNil(t, session.Account.LastLoginAt)
	assert.Equal(t, epoch, *session.Account.LastLoginAt)
}

/*
TestLogin_Validation rejects malformed attempts before any lookup.
*/
func TestLogin_Validation(t *testing.T) {
	fixture := newFixture(t, false)

	tests := []struct {
		name        string
		credentials auth.Credentials
	}{
		{"no_identifier", auth.Credentials{Password: alicePassword}},
		{"no_secret", auth.Credentials{Email: aliceEmail}},
		{"otp_with_email", auth.Credentials{Email: aliceEmail, OTP: "123456"}},
		{"short_otp", auth.Credentials{Phone: bobPhone, OTP: "123"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fixture.service.Login(context.Background(), tt.credentials)
			requireCode(t, err, apperr.CodeValidation)
		})
	}
}

/*
TestLogin_InactiveRevealedOnlyWithCorrectSecret checks the status after the
secret.
*/
func TestLogin_InactiveRevealedOnlyWithCorrectSecret(t *testing.T) {
	fixture := newFixture(t, false)
	registered := fixture.registerAlice(t)

	_, err := fixture.accounts.Mutate(context.Background(), registered.Account.ID, func(current *account.Account) error {
		current.Status = account.StatusSuspended
		return nil
	})
	require.NoError(t, err)

	_, err = fixture.loginAlice("Wr0ng!pass")
	requireCode(t, err, apperr.CodeInvalidCredentials)

	_, err = fixture.loginAlice(alicePassword)
	requireCode(t, err, apperr.CodeAccountInactive)
}

/*
TestLogin_MixedMethodsShareCounter locks after password and OTP failures
combined, and the lock then blocks both methods.
*/
func TestLogin_MixedMethodsShareCounter(t *testing.T) {
	fixture := newFixture(t, false)
	fixture.registerBob(t, alicePassword)
	ctx := context.Background()

	_, err := fixture.service.SendOTP(ctx, bobPhone)
	require.NoError(t, err)
	code := fixture.sender.last()
	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}

	for range 3 {
		_, err := fixture.service.Login(ctx, auth.Credentials{Phone: bobPhone, Password: "Wr0ng!pass"})
		requireCode(t, err, apperr.CodeInvalidCredentials)
	}

	_, err = fixture.service.LoginWithOTP(ctx, bobPhone, wrong)
	requireCode(t, err, apperr.CodeChallengeMismatch)

	_, err = fixture.service.LoginWithOTP(ctx, bobPhone, wrong)
	requireCode(t, err, apperr.CodeAccountLocked)

	_, err = fixture.service.LoginWithOTP(ctx, bobPhone, code)
	requireCode(t, err, apperr.CodeAccountLocked)

	_, err = fixture.service.Login(ctx, auth.Credentials{Phone: bobPhone, Password: alicePassword})
	requireCode(t, err, apperr.CodeAccountLocked)

	assert.Equal(t, 2, fixture.count(audit.ActionOTPFailed))
}

/*
TestOTPScenario covers send, mismatch, success and replay.
*/
func TestOTPScenario(t *testing.T) {
	fixture := newFixture(t, false)
	fixture.registerBob(t, "")
	ctx := context.Background()

	challenge, err := fixture.service.SendOTP(ctx, "+91 98765 43210")
	require.NoError(t, err)
	assert.Equal(t, bobCanonical, challenge.Phone)
	assert.Equal(t, 1, fixture.count(audit.ActionOTPSent))

	code := fixture.sender.last()
	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}

	_, err = fixture.service.VerifyOTP(ctx, bobPhone, wrong)
	requireCode(t, err, apperr.CodeChallengeMismatch)

	session, err := fixture.service.VerifyOTP(ctx, bobPhone, code)
	require.NoError(t, err)
	assert.Equal(t, bobCanonical, session.Account.Phone)
	assert.Zero(t, session.Account.FailedAttempts)

	_, err = fixture.service.LoginWithOTP(ctx, bobPhone, code)
	requireCode(t, err, apperr.CodeChallengeNotFound)
}

/*
TestOTP_Expired answers a late code with CHALLENGE_EXPIRED.
*/
func TestOTP_Expired(t *testing.T) {
	fixture := newFixture(t, false)
	fixture.registerBob(t, "")
	ctx := context.Background()

	_, err := fixture.service.SendOTP(ctx, bobPhone)
	require.NoError(t, err)
	fixture.clock.Advance(11 * time.Minute)

	_, err = fixture.service.LoginWithOTP(ctx, bobPhone, fixture.sender.last())
	requireCode(t, err, apperr.CodeChallengeExpired)
}

/*
TestSendOTP_Rejections covers unknown and invalid phones.
*/
func TestSendOTP_Rejections(t *testing.T) {
	fixture := newFixture(t, false)
	ctx := context.Background()

	_, err := fixture.service.SendOTP(ctx, bobPhone)
	requireCode(t, err, apperr.CodeNotRegistered)

	_, err = fixture.service.SendOTP(ctx, "12")
	requireCode(t, err, apperr.CodeValidation)

	_, err = fixture.service.SendOTP(ctx, "")
	requireCode(t, err, apperr.CodeValidation)
}

/*
TestRegister_Duplicate never creates a second account for the same email.
*/
func TestRegister_Duplicate(t *testing.T) {
	fixture := newFixture(t, false)
	first := fixture.registerAlice(t)

	_, err := fixture.service.Register(context.Background(), account.Draft{
		Email:    "ALICE@example.com",
		Password: "An0ther!pass",
	})
	requireCode(t, err, apperr.CodeDuplicateIdentity)
	assert.Equal(t, "email", apperr.As(err).Details[0].Field)

	stored, err := fixture.accounts.FindByEmail(context.Background(), aliceEmail)
	require.NoError(t, err)
	assert.Equal(t, first.Account.ID, stored.ID)
	assert.Equal(t, 1, fixture.count(audit.ActionRegistration))
}

/*
TestRegister_PolicyViolations returns field-level 422 errors.
*/
func TestRegister_PolicyViolations(t *testing.T) {
	fixture := newFixture(t, false)

	_, err := fixture.service.Register(context.Background(), account.Draft{
		Email:                aliceEmail,
		Password:             "password",
		PasswordConfirmation: "different",
	})
	requireCode(t, err, apperr.CodeUnprocessable)

	fields := map[string]bool{}
	for _, detail := range apperr.As(err).Details {
		fields[detail.Field] = true
	}
	assert.True(t, fields["password"])
	assert.True(t, fields["password_confirmation"])
}

/*
TestRefresh issues a new pair and rejects access tokens.
*/
func TestRefresh(t *testing.T) {
	fixture := newFixture(t, false)
	registered := fixture.registerAlice(t)
	ctx := context.Background()

	fixture.clock.Advance(time.Hour)
	session, err := fixture.service.Refresh(ctx, registered.RefreshToken.Value)
	require.NoError(t, err)
	assert.NotEqual(t, registered.AccessToken.Value, session.AccessToken.Value)
	assert.Equal(t, 1, fixture.count(audit.ActionTokenRefresh))

	_, err = fixture.service.Refresh(ctx, registered.AccessToken.Value)
	requireCode(t, err, apperr.CodeTokenMalformed)

	_, err = fixture.service.Refresh(ctx, "")
	requireCode(t, err, apperr.CodeTokenMalformed)

	fixture.clock.Advance(8 * 24 * time.Hour)
	_, err = fixture.service.Refresh(ctx, session.RefreshToken.Value)
	requireCode(t, err, apperr.CodeTokenExpired)
}

/*
TestRefresh_Denylist rotates refresh tokens and revokes them on logout.
*/
func TestRefresh_Denylist(t *testing.T) {
	fixture := newFixture(t, true)
	registered := fixture.registerAlice(t)
	ctx := context.Background()

	rotated, err := fixture.service.Refresh(ctx, registered.RefreshToken.Value)
	require.NoError(t, err)

	_, err = fixture.service.Refresh(ctx, registered.RefreshToken.Value)
	requireCode(t, err, apperr.CodeTokenRevoked)

	claims, err := fixture.tokens.VerifyToken(rotated.AccessToken.Value)
	require.NoError(t, err)
	fixture.service.Logout(ctx, claims, rotated.RefreshToken.Value)

	_, err = fixture.service.Refresh(ctx, rotated.RefreshToken.Value)
	requireCode(t, err, apperr.CodeTokenRevoked)
	assert.Equal(t, 1, fixture.count(audit.ActionLogout))
}

/*
TestLogout_ForeignRefreshTokenIgnored keeps another account's token valid.
*/
func TestLogout_ForeignRefreshTokenIgnored(t *testing.T) {
	fixture := newFixture(t, true)
	alice := fixture.registerAlice(t)
	bob := fixture.registerBob(t, "")
	ctx := context.Background()

	claims, err := fixture.tokens.VerifyToken(alice.AccessToken.Value)
	require.NoError(t, err)
	fixture.service.Logout(ctx, claims, bob.RefreshToken.Value)

	_, err = fixture.service.Refresh(ctx, bob.RefreshToken.Value)
	assert.NoError(t, err)
}

/*
TestUnlock clears a lock on behalf of an administrator.
*/
func TestUnlock(t *testing.T) {
	fixture := newFixture(t, false)
	registered := fixture.registerAlice(t)
	ctx := context.Background()

	for range 5 {
		_, _ = fixture.loginAlice("Wr0ng!pass")
	}

	unlocked, err := fixture.service.Unlock(ctx, registered.Account.ID, "admin-1")
	require.NoError(t, err)
	assert.Nil(t, unlocked.LockedAt)

	_, err = fixture.loginAlice(alicePassword)
	assert.NoError(t, err)
	assert.Equal(t, 1, fixture.count(audit.ActionAccountUnlocked))

	_, err = fixture.service.Unlock(ctx, "0190a0e1-0000-7000-8000-00000000dead", "admin-1")
	requireCode(t, err, apperr.CodeNotFound)
}

/*
TestLogin_ConcurrentFailures locks exactly once under concurrent wrong passwords.
*/
func TestLogin_ConcurrentFailures(t *testing.T) {
	fixture := newFixture(t, false)
	fixture.registerAlice(t)

	var wg sync.WaitGroup
	for range 12 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = fixture.loginAlice("Wr0ng!pass")
		}()
	}
	wg.Wait()

	stored, err := fixture.accounts.FindByEmail(context.Background(), aliceEmail)
	require.NoError(t, err)

	assert.NotNil(t, stored.LockedAt)
	assert.Equal(t, 5, stored.FailedAttempts)
	assert.Equal(t, 1, fixture.count(audit.ActionAccountLocked))
}

/*
TestLogin_StoreUnavailable keeps infrastructure failures distinct from
credential failures.
*/
func TestLogin_StoreUnavailable(t *testing.T) {
	fixture := newFixture(t, false)
	fixture.registerAlice(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fixture.service.Login(ctx, auth.Credentials{Email: aliceEmail, Password: alicePassword})
	requireCode(t, err, apperr.CodeStoreUnavailable)
}

// lockingStore locks the account right after a lookup hands out its snapshot,
// as a concurrent request crossing the threshold would.
type lockingStore struct {
	*account.MemoryStore
	clock clock.Clock
	armed atomic.Bool
}

func (store *lockingStore) FindByEmail(ctx context.Context, email string) (*account.Account, error) {
	found, err := store.MemoryStore.FindByEmail(ctx, email)
	if err != nil || !store.armed.CompareAndSwap(true, false) {
		return found, err
	}

	_, lockErr := store.Mutate(ctx, found.ID, func(current *account.Account) error {
		now := store.clock.Now()
		current.FailedAttempts = 5
		current.LockedAt = &now
		expires := now.Add(15 * time.Minute)
		current.LockExpiresAt = &expires
		current.UpdatedAt = now
		return nil
	})
	return found, lockErr
}

/*
TestLogin_CorrectSecretDoesNotClearConcurrentLock keeps a lock placed after
the first lock check.
*/
func TestLogin_CorrectSecretDoesNotClearConcurrentLock(t *testing.T) {
	var interposer *lockingStore
	fixture := newFixtureWith(t, false, func(accounts *account.MemoryStore, clk clock.Clock) account.Store {
		interposer = &lockingStore{MemoryStore: accounts, clock: clk}
		return interposer
	})
	fixture.registerAlice(t)
	interposer.armed.Store(true)

	_, err := fixture.loginAlice(alicePassword)
	requireCode(t, err, apperr.CodeAccountLocked)

	stored, err := fixture.accounts.FindByEmail(context.Background(), aliceEmail)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.FailedAttempts)
	assert.NotNil(t, stored.LockedAt)
	assert.Zero(t, fixture.count(audit.ActionLoginSuccess))
}

/*
TestRefresh_ConcurrentRotation lets exactly one of many concurrent refreshes
spend the same token.
*/
func TestRefresh_ConcurrentRotation(t *testing.T) {
	fixture := newFixture(t, true)
	registered := fixture.registerAlice(t)

	var (
		successes atomic.Int32
		revoked   atomic.Int32
		group     sync.WaitGroup
	)
	for range 16 {
		group.Add(1)
		go func() {
			defer group.Done()
			_, err := fixture.service.Refresh(context.Background(), registered.RefreshToken.Value)
			switch {
			case err == nil:
				successes.Add(1)
			case apperr.HasCode(err, apperr.CodeTokenRevoked):
				revoked.Add(1)
			}
		}()
	}
	group.Wait()

	assert.Equal(t, int32(1), successes.Load())
	assert.Equal(t, int32(15), revoked.Load())
	assert.Equal(t, 1, fixture.count(audit.ActionTokenRefresh))
}

/*
TestLogin_UnknownIdentityCostsAHashComparison keeps the unknown-identifier
path from answering measurably faster than a wrong password.
*/
func TestLogin_UnknownIdentityCostsAHashComparison(t *testing.T) {
	fixture := newFixture(t, false)
	fixture.registerAlice(t)
	ctx := context.Background()

	// Warm the comparison hash so its one-time creation is not measured.
	_, _ = fixture.service.Login(ctx, auth.Credentials{Email: "warmup@example.com", Password: alicePassword})

	started := time.Now()
	_, err := fixture.loginAlice("Wr0ng!pass")
	known := time.Since(started)
	requireCode(t, err, apperr.CodeInvalidCredentials)

	started = time.Now()
	_, err = fixture.service.Login(ctx, auth.Credentials{Email: "mallory@example.com", Password: alicePassword})
	unknown := time.Since(started)
	requireCode(t, err, apperr.CodeInvalidCredentials)

	assert.GreaterOrEqual(t, unknown, known/4, "unknown=%s known=%s", unknown, known)
}

func (fixture *fixture) last(action audit.Action) audit.Entry {
	var found audit.Entry
	for _, entry := range fixture.audits.All() {
		if entry.Action == action {
			found = entry
		}
	}
	return found
}

/*
TestAudit_ResourceAndSession ties entries to the account record and to the
session token they concern.
*/
func TestAudit_ResourceAndSession(t *testing.T) {
	fixture := newFixture(t, true)
	registered := fixture.registerAlice(t)
	ctx := context.Background()
	accountID := registered.Account.ID

	registration := fixture.last(audit.ActionRegistration)
	assert.Equal(t, audit.ResourceAccount, registration.ResourceType)
	assert.Equal(t, accountID, registration.ResourceID)
	assert.Equal(t, registered.RefreshToken.ID, registration.SessionID)

	session, err := fixture.loginAlice(alicePassword)
	require.NoError(t, err)
	assert.Equal(t, session.RefreshToken.ID, fixture.last(audit.ActionLoginSuccess).SessionID)

	rotated, err := fixture.service.Refresh(ctx, session.RefreshToken.Value)
	require.NoError(t, err)
	refresh := fixture.last(audit.ActionTokenRefresh)
	assert.Equal(t, rotated.RefreshToken.ID, refresh.SessionID)
	assert.Equal(t, session.RefreshToken.ID, refresh.Metadata["token_id"])

	fixture.service.Logout(ctx, nil, rotated.RefreshToken.Value)
	assert.Equal(t, rotated.RefreshToken.ID, fixture.last(audit.ActionLogout).SessionID)

	for range 5 {
		_, _ = fixture.loginAlice("Wr0ng!pass")
	}
	locked := fixture.last(audit.ActionAccountLocked)
	assert.Equal(t, audit.ResourceAccount, locked.ResourceType)
	assert.Equal(t, accountID, locked.ResourceID)

	_, err = fixture.service.Unlock(ctx, accountID, "admin-1")
	require.NoError(t, err)
	unlocked := fixture.last(audit.ActionAccountUnlocked)
	assert.Equal(t, audit.ResourceAccount, unlocked.ResourceType)
	assert.Equal(t, accountID, unlocked.ResourceID)
}
