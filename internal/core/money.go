// Package core provides the ledger entry model and money parsing utilities.
//
// This file contains functions for normalizing raw currency literals into
// fixed-point cent amounts and converting between cents and dollars.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseAmount normalizes a raw currency literal into a Money value.
//
// Every rune that is not a digit, a decimal point, or a leading minus sign is
// stripped before parsing, so currency symbols and thousands separators are
// tolerated ("$1,234.56" -> 123456 cents). A third fractional digit is rounded
// half-up. The extractor grammar never produces a minus sign, but a leading
// minus is accepted here so the normalizer can be exercised on its own.
//
// Returns ErrMalformedAmount when nothing is left after stripping or the
// remainder has more than one decimal point.
func ParseAmount(token string) (Money, error) {
	stripped := stripToDecimal(token)
	if !strings.ContainsAny(stripped, "0123456789") {
		return Money{}, ErrMalformedAmount
	}

	negative := strings.HasPrefix(stripped, "-")
	stripped = strings.TrimPrefix(stripped, "-")

	parts := strings.Split(stripped, ".")
	if len(parts) > 2 {
		return Money{}, ErrMalformedAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}

	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return Money{}, ErrMalformedAmount
	}
	// Prevent overflow when scaling to cents.
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return Money{}, ErrMalformedAmount
	}

	// Take the first two fractional digits; half-up rounding on the third.
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}

	cents := iv*100 + fracCents
	if negative {
		cents = -cents
	}
	return Money{Cents: cents}, nil
}

// stripToDecimal drops everything except digits, decimal points, and a minus
// sign in the leading position.
func stripToDecimal(s string) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case unicode.IsDigit(r), r == '.':
			b.WriteRune(r)
		case r == '-' && i == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Add returns the sum of two amounts.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// Sub returns m minus other.
func (m Money) Sub(other Money) Money {
	return Money{Cents: m.Cents - other.Cents}
}

// Dollars returns the dollar value as a float64 for display purposes.
// Use cents for calculations to avoid floating-point precision issues.
func (m Money) Dollars() float64 {
	return float64(m.Cents) / 100.0
}

// String formats the amount as a plain dollar string, e.g. "1234.56".
func (m Money) String() string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return sign + strconv.FormatInt(cents/100, 10) + "." + pad2(cents%100)
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}
