// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"fmt"
	"time"

	"github.com/taibuivan/shopauth/internal/platform/sec"
	"github.com/taibuivan/shopauth/internal/platform/validate"
	"github.com/taibuivan/shopauth/pkg/uuid"
)

// nameMaxLen bounds first and last names.
const nameMaxLen = 50

// Draft is the caller-supplied data for a new account.
type Draft struct {
	Email                string
	Phone                string
	Password             string
	PasswordConfirmation string
	FirstName            string
	LastName             string
}

// PhoneFirst reports whether the draft registers by phone only.
func (draft Draft) PhoneFirst() bool {
	return draft.Email == "" && draft.Phone != ""
}

/*
New validates a draft and builds the account to be persisted.

Description: Identifiers are normalized before validation. Email-first
accounts must supply a password meeting the password policy. Phone-first
accounts without a password receive a random placeholder hash that is
never disclosed, so they can only authenticate with one-time codes.

Parameters:
  - draft: Draft
  - phones: PhoneNormalizer
  - now: time.Time

Returns:
  - *Account: Active account with role user
  - error: apperr.Unprocessable with field details, or hashing failures
*/
func New(draft Draft, phones PhoneNormalizer, now time.Time) (*Account, error) {
	draft.Email = NormalizeEmail(draft.Email)
	draft.Phone = phones.Normalize(draft.Phone)

	validator := &validate.Validator{}
	validator.Custom(FieldEmail, draft.Email == "" && draft.Phone == "", "Email or phone is required")

	if draft.Email != "" {
		validator.Email(FieldEmail, draft.Email)
	}
	if draft.Phone != "" {
		validator.Phone(FieldPhone, draft.Phone)
	}

	if !draft.PhoneFirst() || draft.Password != "" {
		validator.Required(FieldPassword, draft.Password).
			Password(FieldPassword, draft.Password)
		validator.Custom(FieldPasswordConfirmation,
			draft.PasswordConfirmation != "" && draft.PasswordConfirmation != draft.Password,
			"Does not match password")
	}

	validator.MaxLen(FieldFirstName, draft.FirstName, nameMaxLen).
		MaxLen(FieldLastName, draft.LastName, nameMaxLen)

	if err := validator.Unprocessable(); err != nil {
		return nil, err
	}

	var passwordHash string
	var err error
	if draft.Password != "" {
		passwordHash, err = sec.HashPassword(draft.Password)
	} else {
		passwordHash, err = sec.PlaceholderPasswordHash()
	}
	if err != nil {
		return nil, fmt.Errorf("account_password_hash_failed: %w", err)
	}

	return &Account{
		ID:           uuid.New(),
		Email:        draft.Email,
		Phone:        draft.Phone,
		PasswordHash: passwordHash,
		FirstName:    draft.FirstName,
		LastName:     draft.LastName,
		Role:         sec.RoleUser,
		Status:       StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// VerifyPassword compares plaintext against the account's stored hash in constant time.
func VerifyPassword(account *Account, plaintext string) bool {
	if account == nil || plaintext == "" {
		return false
	}
	return sec.CheckPasswordHash(plaintext, account.PasswordHash)
}
