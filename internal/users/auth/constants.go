// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

// # Request & Response Fields

const (
	FieldEmail                = "email"
	FieldPhone                = "phone"
	FieldPassword             = "password"
	FieldPasswordConfirmation = "password_confirmation"
	FieldOTP                  = "otp"
	FieldRefreshToken         = "refresh_token"
	FieldUser                 = "user"
	FieldToken                = "token"
	FieldTokenType            = "token_type"
	FieldExpiresIn            = "expires_in"
	FieldExpiresAt            = "expires_at"
	FieldCode                 = "code"
)

// TokenTypeBearer is the token_type returned with every session.
const TokenTypeBearer = "Bearer"

// # Audit Metadata

// Reasons attached to login_failure entries.
const (
	ReasonNotFound      = "not_found"
	ReasonWrongPassword = "wrong_password"
	ReasonInactive      = "inactive"
)

// Metadata keys on audit entries written by this package.
const (
	metaMethod         = "method"
	metaReason         = "reason"
	metaFailedAttempts = "failed_attempts"
	metaLockExpiresAt  = "lock_expires_at"
	metaIdentifier     = "identifier_type"
	metaPhone          = "phone"
	metaTokenID        = "token_id"
	metaUnlockedBy     = "unlocked_by"
)
