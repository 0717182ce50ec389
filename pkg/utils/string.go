// Package utils provides common utility functions.
package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Ellipsis is appended by Truncate.
const Ellipsis = "…"

var controlChars = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]+`)

// Normalize replaces non-breaking spaces, strips control characters and
// collapses whitespace runs into a single space. Empty input yields "".
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = controlChars.ReplaceAllString(s, "")

	return strings.Join(strings.Fields(s), " ")
}

// FirstNonEmpty returns the first candidate whose normalized form is non-empty.
func FirstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if n := Normalize(v); n != "" {
			return n
		}
	}

	return ""
}

// Truncate cuts str to maxLength runes and appends an ellipsis.
func Truncate(str string, maxLength int) string {
	if utf8.RuneCountInString(str) <= maxLength {
		return str
	}

	runes := []rune(str)

	return strings.TrimSpace(string(runes[:maxLength])) + Ellipsis
}

// Slug lowercases s and keeps only ASCII letters and digits, joined by "-".
func Slug(s string) string {
	var sb strings.Builder

	dash := false

	for _, r := range strings.ToLower(s) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			sb.WriteRune(r)

			dash = false
		case sb.Len() > 0 && !dash:
			sb.WriteByte('-')

			dash = true
		}
	}

	return strings.TrimSuffix(sb.String(), "-")
}
