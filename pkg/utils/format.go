package utils

import (
	"fmt"
	"math"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatINR formats an amount in Indian Rupee format (₹12,34,567.89).
// Uses the Indian numbering system: last 3 digits, then groups of 2.
func FormatINR(amount decimal.Decimal) string {
	paise := amount.Round(2).Shift(2).IntPart()
	m := money.New(paise, money.INR)

	abs := m.Absolute().Amount()
	formatted := fmt.Sprintf("%s.%02d", formatIndianNumber(abs/100), abs%100)

	grapheme := money.GetCurrency(money.INR).Grapheme
	if m.IsNegative() {
		return "-" + grapheme + formatted
	}
	return grapheme + formatted
}

// FormatINRCompact formats an amount in compact Indian notation.
// e.g., 1927345 → "₹19.27 L", 192734500000 → "₹19273.45 Cr"
func FormatINRCompact(amount decimal.Decimal) string {
	f := amount.InexactFloat64()
	negative := f < 0
	f = math.Abs(f)

	prefix := "₹"
	if negative {
		prefix = "-₹"
	}

	switch {
	case f >= 1e12:
		return fmt.Sprintf("%s%s L Cr", prefix, formatWithDecimals(f/1e12))
	case f >= 1e7:
		return fmt.Sprintf("%s%s Cr", prefix, formatWithDecimals(f/1e7))
	case f >= 1e5:
		return fmt.Sprintf("%s%s L", prefix, formatWithDecimals(f/1e5))
	default:
		return FormatINR(amount)
	}
}

// formatIndianNumber formats an integer with Indian grouping (last 3, then 2s).
func formatIndianNumber(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	result := s[len(s)-3:]
	remaining := s[:len(s)-3]

	for len(remaining) > 2 {
		result = remaining[len(remaining)-2:] + "," + result
		remaining = remaining[:len(remaining)-2]
	}
	return remaining + "," + result
}

// formatWithDecimals formats a number with up to 2 decimal places,
// removing trailing zeros.
func formatWithDecimals(n float64) string {
	s := fmt.Sprintf("%.2f", n)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
