// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/big"
)

// GenerateSecureToken returns a URL-safe random string built from length random bytes.
func GenerateSecureToken(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("sec: failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// RandomDigits returns a zero-padded numeric code of exactly n digits drawn
// uniformly from crypto/rand.
func RandomDigits(n int) (string, error) {
	upper := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
	value, err := rand.Int(rand.Reader, upper)
	if err != nil {
		return "", fmt.Errorf("sec: failed to draw random code: %w", err)
	}
	return fmt.Sprintf("%0*d", n, value.Int64()), nil
}

// HashToken returns the hex SHA-256 digest of a token. Short-lived secrets
// (OTP codes, refresh token IDs) are stored by digest only.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// EqualDigests compares two digests in constant time.
func EqualDigests(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
