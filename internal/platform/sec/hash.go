// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// placeholderSecretLength is the byte length of the random secret behind
// system-generated passwords.
const placeholderSecretLength = 32

// HashPassword hashes a plain-text password using the bcrypt algorithm.
func HashPassword(plainTextPassword string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckPasswordHash compares a plain-text password with its hashed version.
func CheckPasswordHash(plainTextPassword, existingHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextPassword))
	return err == nil
}

// PlaceholderPasswordHash returns the bcrypt hash of a random secret that is
// never disclosed. Phone-first accounts get one so that the password column is
// always populated but password login can never succeed for them.
func PlaceholderPasswordHash() (string, error) {
	secret, err := GenerateSecureToken(placeholderSecretLength)
	if err != nil {
		return "", err
	}
	return HashPassword(secret)
}

// timingHash is compared against when no account matched, so that unknown
// identifiers cost one bcrypt comparison like known ones.
var timingHash = sync.OnceValue(func() string {
	hash, err := PlaceholderPasswordHash()
	if err != nil {
		return ""
	}
	return hash
})

// SimulatePasswordCheck spends the time of one [CheckPasswordHash] call and
// always reports a mismatch.
func SimulatePasswordCheck(plainTextPassword string) {
	_ = CheckPasswordHash(plainTextPassword, timingHash())
}
