package validator

import (
	"fmt"
	"strings"
)

// Required validates that a string is not empty after trimming whitespace.
func Required(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return strings.TrimSpace(value) != ""
		},
		Error: ValidationError{
			Field:   field,
			Message: "field is required",
		},
	}
}

// MinLen validates that a string is at least min bytes long.
func MinLen(field, value string, min int) Rule {
	return Rule{
		Check: func() bool {
			return len(value) >= min
		},
		Error: ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be at least %d characters long", min),
		},
	}
}

// MaxLen validates that a string is at most max bytes long.
func MaxLen(field, value string, max int) Rule {
	return Rule{
		Check: func() bool {
			return len(value) <= max
		},
		Error: ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be at most %d characters long", max),
		},
	}
}

// LenBetween validates an inclusive length range in one rule.
func LenBetween(field, value string, min, max int) Rule {
	return Rule{
		Check: func() bool {
			return len(value) >= min && len(value) <= max
		},
		Error: ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be between %d and %d characters long", min, max),
		},
	}
}

// ExactDigits validates that a string is exactly n ASCII digits.
func ExactDigits(field, value string, n int) Rule {
	return Rule{
		Check: func() bool {
			if len(value) != n {
				return false
			}
			for _, r := range value {
				if r < '0' || r > '9' {
					return false
				}
			}
			return true
		},
		Error: ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be exactly %d digits", n),
		},
	}
}
