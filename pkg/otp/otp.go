// Package otp generates the short numeric codes used to prove control of an
// email address during registration and password reset.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// CodeLength is the number of digits in a generated code.
const CodeLength = 6

var codeSpace = big.NewInt(1_000_000)

// GenerateCode returns a random 6-digit numeric code, zero-padded.
// crypto/rand keeps codes unguessable; math/rand would be predictable enough
// to brute-force within the 5-minute validity window.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", fmt.Errorf("otp: failed to read random source: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
