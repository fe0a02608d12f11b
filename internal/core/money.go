// Package core holds the timesheet domain: dates, clock times, money,
// the date-range filter and the summary aggregation. Everything in this
// package is pure computation over in-memory values; persistence and
// presentation live elsewhere.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseDecimalToCents converts a decimal string to cents with half-up
// rounding on the third decimal place. It accepts both dot (12.34) and
// comma (12,34) separators. Amounts must be non-negative; zero is valid
// (an hourly rate of 0 is allowed).
//
// Examples:
//
//	ParseDecimalToCents("12.34") -> 1234, nil
//	ParseDecimalToCents("12,34") -> 1234, nil
//	ParseDecimalToCents("12.345") -> 1235, nil (rounds up)
//	ParseDecimalToCents("-1")    -> 0, ErrInvalidAmount
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Prevent overflow when multiplying by 100
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	// Take first two fractional digits; half-up rounding on the third
	var fracCents int64
	if len(fracPart) > 0 {
		d1 := int64(fracPart[0] - '0')
		fracCents = d1 * 10
		if len(fracPart) > 1 {
			d2 := int64(fracPart[1] - '0')
			fracCents += d2
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	return iv*100 + fracCents, nil
}

// CentihoursOf converts whole minutes to hundredths of an hour with
// half-up rounding. 480 -> 800, 545 -> 908 (9.08 hours).
func CentihoursOf(minutes int64) int64 {
	neg := minutes < 0
	if neg {
		minutes = -minutes
	}
	ch := (minutes*100 + 30) / 60
	if neg {
		return -ch
	}
	return ch
}

// GrossCents computes minutes x hourly rate in integer cents with
// half-up rounding, never going through floating point.
func GrossCents(minutes, rateCents int64) int64 {
	if minutes <= 0 || rateCents <= 0 {
		return 0
	}
	return (minutes*rateCents + 30) / 60
}

// FormatCents renders cents as a plain two-decimal string ("400.00").
// Currency symbols are a display concern and stay in the UI layer.
func FormatCents(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := strconv.FormatInt(cents/100, 10) + "." + pad2(cents%100)
	if neg {
		return "-" + s
	}
	return s
}

// FormatCentihours renders centihours as a two-decimal string ("8.00").
func FormatCentihours(ch int64) string {
	neg := ch < 0
	if neg {
		ch = -ch
	}
	s := strconv.FormatInt(ch/100, 10) + "." + pad2(ch%100)
	if neg {
		return "-" + s
	}
	return s
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}
