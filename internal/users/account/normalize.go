// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeEmail folds an email to the form used for lookups and uniqueness.
// Full-width and other compatibility characters are folded by NFKC first.
func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFKC.String(raw)))
}

// localNumberLength is the digit count of a bare national mobile number.
const localNumberLength = 10

// PhoneNormalizer canonicalizes phone numbers to +<countrycode><digits>.
type PhoneNormalizer struct {
	CountryCode string
}

// Normalize applies the canonicalization rules:
//
//   - a bare 10-digit number starting with 6-9 gets "+<country code>"
//   - a number of country code plus 10 digits gets "+"
//   - an already canonical "+<digits>" number passes through
//
// Anything else is returned trimmed but otherwise unchanged, for validation
// to reject downstream.
func (normalizer PhoneNormalizer) Normalize(raw string) string {
	trimmed := strings.TrimSpace(norm.NFKC.String(raw))
	if trimmed == "" {
		return ""
	}

	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, trimmed)

	switch {
	case digits == "":
		return trimmed
	case len(digits) == localNumberLength && digits[0] >= '6' && digits[0] <= '9':
		return "+" + normalizer.CountryCode + digits
	case len(digits) == len(normalizer.CountryCode)+localNumberLength && strings.HasPrefix(digits, normalizer.CountryCode):
		return "+" + digits
	case strings.HasPrefix(trimmed, "+"):
		return "+" + digits
	default:
		return trimmed
	}
}
