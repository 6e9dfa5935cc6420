// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/shopauth/internal/platform/apperr"
	"github.com/taibuivan/shopauth/internal/platform/sec"
	"github.com/taibuivan/shopauth/internal/users/account"
	"github.com/taibuivan/shopauth/pkg/pointer"
)

var (
	phones = account.PhoneNormalizer{CountryCode: "91"}
	epoch  = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
)

/*
TestNew_EmailFirst verifies normalization and password hashing for email registrations.
*/
func TestNew_EmailFirst(t *testing.T) {
	created, err := account.New(account.Draft{
		Email:                " Alice@Example.com",
		Password:             "Secur3!pass",
		PasswordConfirmation: "Secur3!pass",
		FirstName:            "Alice",
	}, phones, epoch)
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", created.Email)
	assert.Equal(t, account.StatusActive, created.Status)
	assert.Equal(t, sec.RoleUser, created.Role)
	assert.NotEqual(t, "Secur3!pass", created.PasswordHash)
	assert.True(t, account.VerifyPassword(created, "Secur3!pass"))
	assert.NoError(t, created.Validate())
}

/*
TestNew_PhoneFirst verifies the placeholder password for phone-only registrations.
*/
func TestNew_PhoneFirst(t *testing.T) {
	created, err := account.New(account.Draft{Phone: "9876543210"}, phones, epoch)
	require.NoError(t, err)

	assert.Equal(t, "+919876543210", created.Phone)
	assert.Empty(t, created.Email)
	assert.NotEmpty(t, created.PasswordHash)
	assert.False(t, account.VerifyPassword(created, ""))
}

func TestNew_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		draft account.Draft
		field string
	}{
		{"no_identifier", account.Draft{Password: "Secur3!pass"}, account.FieldEmail},
		{"bad_email", account.Draft{Email: "alice", Password: "Secur3!pass"}, account.FieldEmail},
		{"weak_password", account.Draft{Email: "alice@example.com", Password: "password"}, account.FieldPassword},
		{"missing_password", account.Draft{Email: "alice@example.com"}, account.FieldPassword},
		{"confirmation_mismatch", account.Draft{Email: "alice@example.com", Password: "Secur3!pass", PasswordConfirmation: "Other1!pass"}, account.FieldPasswordConfirmation},
		{"bad_phone", account.Draft{Phone: "12345"}, account.FieldPhone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := account.New(tt.draft, phones, epoch)

			appError := apperr.As(err)
			require.NotNil(t, appError)
			assert.Equal(t, apperr.CodeUnprocessable, appError.Code)

			fields := make([]string, 0, len(appError.Details))
			for _, detail := range appError.Details {
				fields = append(fields, detail.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

/*
TestAccount_Validate checks the structural invariants.
*/
func TestAccount_Validate(t *testing.T) {
	valid := func() *account.Account {
		return &account.Account{ID: "a", Email: "alice@example.com", Status: account.StatusActive}
	}

	tests := []struct {
		name   string
		mutate func(*account.Account)
		want   error
	}{
		{"valid", func(*account.Account) {}, nil},
		{"phone_only", func(a *account.Account) { a.Email = ""; a.Phone = "+919876543210" }, nil},
		{"no_identifier", func(a *account.Account) { a.Email = "" }, account.ErrNoIdentifier},
		{"half_locked", func(a *account.Account) { a.LockedAt = pointer.To(epoch) }, account.ErrLockFieldsMismatch},
		{"negative_attempts", func(a *account.Account) { a.FailedAttempts = -1 }, account.ErrNegativeAttempts},
		{"unknown_status", func(a *account.Account) { a.Status = "deleted" }, account.ErrUnknownStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidate := valid()
			tt.mutate(candidate)
			assert.ErrorIs(t, candidate.Validate(), tt.want)
		})
	}
}

func TestStatus_CanAuthenticate(t *testing.T) {
	assert.True(t, account.StatusActive.CanAuthenticate())
	assert.False(t, account.StatusInactive.CanAuthenticate())
	assert.False(t, account.StatusPending.CanAuthenticate())
	assert.False(t, account.StatusSuspended.CanAuthenticate())
}
