package utils

import (
	"strings"
	"unicode"
)

// CEPLength is the number of digits in a Brazilian postal code.
const CEPLength = 8

// PrefixLength is the number of leading digits that identify a postal region.
const PrefixLength = 5

// NormalizePostalCode strips every non-digit character from a raw postal code.
func NormalizePostalCode(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsValidPostalCode reports whether the raw value normalizes to exactly 8 digits.
func IsValidPostalCode(raw string) bool {
	return len(NormalizePostalCode(raw)) == CEPLength
}

// FormatPostalCode renders 8 normalized digits as NNNNN-NNN.
// Inputs of any other length are returned unchanged.
func FormatPostalCode(digits string) string {
	if len(digits) != CEPLength {
		return digits
	}
	return digits[:PrefixLength] + "-" + digits[PrefixLength:]
}

// PostalPrefix returns the first 5 digits of a normalized postal code,
// or the whole value when it is shorter.
func PostalPrefix(digits string) string {
	if len(digits) < PrefixLength {
		return digits
	}
	return digits[:PrefixLength]
}

// ParseCityState splits a "city, state" free-text location. The state part is
// upper-cased; a missing state yields an empty second value.
func ParseCityState(raw string) (city, state string) {
	parts := strings.SplitN(raw, ",", 2)
	city = strings.TrimSpace(parts[0])
	if len(parts) == 2 {
		state = strings.ToUpper(strings.TrimSpace(parts[1]))
	}
	return city, state
}
