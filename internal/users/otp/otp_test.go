// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package otp_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/shopauth/internal/platform/apperr"
	"github.com/taibuivan/shopauth/internal/platform/kv"
	"github.com/taibuivan/shopauth/internal/users/account"
	"github.com/taibuivan/shopauth/internal/users/otp"
	"github.com/taibuivan/shopauth/pkg/clock"
)

const phone = "+919876543210"

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

type fixture struct {
	service  *otp.Service
	clock    *clock.Manual
	accounts *account.MemoryStore
	sender   *captureSender
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clk := clock.NewManual(time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC))
	accounts := account.NewMemoryStore()
	sender := &captureSender{}

	owner, err := account.New(account.Draft{Phone: phone}, account.PhoneNormalizer{CountryCode: "91"}, clk.Now())
	require.NoError(t, err)
	require.NoError(t, accounts.Create(context.Background(), owner))

	return &fixture{
		service:  otp.NewService(kv.NewMemoryStore(clk), accounts, sender, 10*time.Minute, clk),
		clock:    clk,
		accounts: accounts,
		sender:   sender,
	}
}

/*
TestService_RoundTrip verifies a code succeeds exactly once.
*/
func TestService_RoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	challenge, err := f.service.Send(ctx, phone)
	require.NoError(t, err)
	assert.Len(t, challenge.Code, 6)
	assert.Equal(t, []string{challenge.Code}, f.sender.codes)

	result, err := f.service.Verify(ctx, phone, challenge.Code)
	require.NoError(t, err)
	assert.Equal(t, otp.ResultOK, result)

	result, err = f.service.Verify(ctx, phone, challenge.Code)
	require.NoError(t, err)
	assert.Equal(t, otp.ResultNotFound, result)
}

/*
TestService_MismatchKeepsChallenge ensures a wrong code does not burn the live challenge.
*/
func TestService_MismatchKeepsChallenge(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	challenge, err := f.service.Send(ctx, phone)
	require.NoError(t, err)

	wrong := "000000"
	if challenge.Code == wrong {
		wrong = "111111"
	}

	result, err := f.service.Verify(ctx, phone, wrong)
	require.NoError(t, err)
	assert.Equal(t, otp.ResultMismatch, result)
	assert.True(t, apperr.HasCode(result.Err(), apperr.CodeChallengeMismatch))

	result, err = f.service.Verify(ctx, phone, challenge.Code)
	require.NoError(t, err)
	assert.Equal(t, otp.ResultOK, result)
}

/*
TestService_Expired checks that a late verify reports Expired and consumes the challenge.
*/
func TestService_Expired(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	challenge, err := f.service.Send(ctx, phone)
	require.NoError(t, err)

	f.clock.Advance(10*time.Minute + time.Second)

	result, err := f.service.Verify(ctx, phone, challenge.Code)
	require.NoError(t, err)
	assert.Equal(t, otp.ResultExpired, result)

	result, err = f.service.Verify(ctx, phone, challenge.Code)
	require.NoError(t, err)
	assert.Equal(t, otp.ResultNotFound, result)
}

func TestService_ResendInvalidatesPrevious(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first, err := f.service.Send(ctx, phone)
	require.NoError(t, err)

	var second *otp.Challenge
	for {
		second, err = f.service.Send(ctx, phone)
		require.NoError(t, err)
		if second.Code != first.Code {
			break
		}
	}

	result, err := f.service.Verify(ctx, phone, first.Code)
	require.NoError(t, err)
	assert.Equal(t, otp.ResultMismatch, result)

	result, err = f.service.Verify(ctx, phone, second.Code)
	require.NoError(t, err)
	assert.Equal(t, otp.ResultOK, result)
}

/*
TestService_ConcurrentVerifySingleSuccess verifies that racing correct verifies yield one success.
*/
func TestService_ConcurrentVerifySingleSuccess(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	challenge, err := f.service.Send(ctx, phone)
	require.NoError(t, err)

	var successes atomic.Int32
	var group sync.WaitGroup
	for i := 0; i < 20; i++ {
		group.Add(1)
		go func() {
			defer group.Done()
			if result, err := f.service.Verify(ctx, phone, challenge.Code); err == nil && result == otp.ResultOK {
				successes.Add(1)
			}
		}()
	}
	group.Wait()

	assert.Equal(t, int32(1), successes.Load())
}

func TestService_SendRejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.service.Send(ctx, "+919999999999")
	assert.True(t, apperr.HasCode(err, apperr.CodeNotRegistered))

	owner, err := f.accounts.FindByPhone(ctx, phone)
	require.NoError(t, err)
	owner.Status = account.StatusSuspended
	require.NoError(t, f.accounts.Persist(ctx, owner))

	_, err = f.service.Send(ctx, phone)
	assert.True(t, apperr.HasCode(err, apperr.CodeAccountInactive))
	assert.Empty(t, f.sender.codes)
}

func TestMaskPhone(t *testing.T) {
	assert.Equal(t, "+91******3210", otp.MaskPhone("+919876543210"))
	assert.Equal(t, "****", otp.MaskPhone("1234"))
}
