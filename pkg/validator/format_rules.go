package validator

import "regexp"

// emailRegex is intentionally permissive; true verification happens via the
// emailed one-time code, so this only rejects obviously malformed addresses.
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidEmail validates that a string looks like an email address.
func ValidEmail(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return emailRegex.MatchString(value)
		},
		Error: ValidationError{
			Field:   field,
			Message: "must be a valid email address",
		},
	}
}
