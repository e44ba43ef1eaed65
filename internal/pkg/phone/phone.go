// Package phone normalizes phone numbers into the canonical channel
// identifier used across issue, verify and lookup. Every call site must use
// the same normalization or records become unreachable.
package phone

import (
	"regexp"
	"strings"
)

var formatRe = regexp.MustCompile(`^\+?[\d\s\-()]{10,15}$`)

// Identifier builds the canonical phone channel identifier: the country code
// with any leading "+" stripped, concatenated with the local number.
func Identifier(countryCode, number string) string {
	return strings.TrimPrefix(countryCode, "+") + number
}

// Valid reports whether the raw input looks like a phone number
// (10-15 digits with optional +, spaces, dashes or parentheses).
func Valid(number string) bool {
	return formatRe.MatchString(number)
}
