package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// KaratFactor converts a gold purity percentage into karats (24K scale).
var KaratFactor = decimal.RequireFromString("0.2402")

// ErrNegative is returned when a quantity that must be non-negative is below zero
var ErrNegative = errors.New("value must not be negative")

var digitWords = [10]string{
	"ZERO", "ONE", "TWO", "THREE", "FOUR",
	"FIVE", "SIX", "SEVEN", "EIGHT", "NINE",
}

// ParseDecimal parses a user-entered non-negative number.
// Rounding everywhere in this package is half away from zero on exact decimals.
func ParseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("not a number: %q", s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%q: %w", s, ErrNegative)
	}
	return d, nil
}

// PercentageToWords spells a percentage digit by digit after fixing it to two
// decimal places, e.g. 91.6 -> "NINE ONE / SIX ZERO".
func PercentageToWords(v decimal.Decimal) string {
	fixed := v.StringFixed(2)
	intPart, fracPart, _ := strings.Cut(fixed, ".")

	words := spellDigits(intPart)
	if frac := spellDigits(fracPart); frac != "" {
		words += " / " + frac
	}
	return words
}

func spellDigits(s string) string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		if r < '0' || r > '9' {
			continue
		}
		out = append(out, digitWords[r-'0'])
	}
	return strings.Join(out, " ")
}

// Karat returns the karat value for a gold percentage, e.g. 91.60 -> "22.00K".
func Karat(v decimal.Decimal) string {
	return v.Mul(KaratFactor).StringFixed(2) + "K"
}

// FormatPercent renders a percentage with two decimals and a "%" suffix.
func FormatPercent(v decimal.Decimal) string {
	return v.StringFixed(2) + "%"
}

// FormatWeight renders a stored weight in grams with exactly three decimals.
func FormatWeight(s string) (string, error) {
	d, err := ParseDecimal(s)
	if err != nil {
		return "", fmt.Errorf("item weight: %w", err)
	}
	return d.StringFixed(3), nil
}
