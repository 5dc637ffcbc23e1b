// Package sanitizer normalizes untrusted input before it is validated or stored.
package sanitizer

import (
	"regexp"
	"strings"
)

var dotRegex = regexp.MustCompile(`\.{2,}`)

// NormalizeEmail lowercases and trims an email address so lookups are
// case-insensitive. Consecutive dots in the local part are consolidated to
// prevent delivery failures.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	email = strings.ToLower(email)

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return email
	}

	local := strings.Trim(dotRegex.ReplaceAllString(parts[0], "."), ".")
	return local + "@" + parts[1]
}

// TrimString collapses surrounding whitespace on free-form text fields.
func TrimString(s string) string {
	return strings.TrimSpace(s)
}
