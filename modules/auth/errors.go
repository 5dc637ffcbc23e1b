package auth

import "errors"

var (
	// ErrEmailTaken is returned when a user already exists for the email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidOTP is returned when no verification record matches the
	// (email, code, purpose) triple.
	ErrInvalidOTP = errors.New("invalid or expired verification code")

	// ErrOTPExpired is returned when the code matches but its window has passed.
	ErrOTPExpired = errors.New("verification code expired")

	// ErrNoPendingVerification is returned by resend when there is nothing to resend.
	ErrNoPendingVerification = errors.New("no pending verification for this email")

	// ErrInvalidCredentials is returned for any login failure.
	// Deliberately generic to prevent user enumeration.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrRecordNotFound is the store-level miss; the service maps it to
	// ErrInvalidOTP or ErrNoPendingVerification depending on the operation.
	ErrRecordNotFound = errors.New("verification record not found")
)
