// Package auth implements the OTP-gated identity flows: registration,
// login, and password reset.
package auth

import (
	"context"
	"time"
)

// Purpose is the closed set of flows a verification record can gate.
type Purpose string

const (
	PurposeRegister       Purpose = "REGISTER"
	PurposeForgotPassword Purpose = "FORGOT_PASSWORD"
)

// PendingUser carries registration details inside a REGISTER record until the
// code is confirmed, before any User record exists. The password is already
// hashed; the plaintext is never stored.
type PendingUser struct {
	Name         string `bson:"name"`
	PasswordHash string `bson:"password_hash"`
}

// VerificationRecord is a transient credential-issuance token keyed by
// (email, purpose). At most one live record exists per key; issuing a new one
// supersedes the previous. Records are consumed on successful verification
// and auto-purged by the store after expiry, but every read path must still
// reject an expired-but-not-yet-purged record.
type VerificationRecord struct {
	Email     string       `bson:"email"`
	OTPCode   string       `bson:"otp_code"`
	Purpose   Purpose      `bson:"purpose"`
	ExpiresAt time.Time    `bson:"expires_at"`
	Pending   *PendingUser `bson:"pending,omitempty"` // REGISTER only
	CreatedAt time.Time    `bson:"created_at"`
}

// Expired reports whether the record's validity window has passed.
func (r *VerificationRecord) Expired(now time.Time) bool {
	return r.ExpiresAt.Before(now)
}

// VerificationStore persists verification records. Implementations must give
// Upsert replace-by-key semantics so a resend or re-register supersedes the
// previous record, and should auto-purge expired records (TTL semantics).
type VerificationStore interface {
	// Upsert replaces any record with the same (email, purpose) key.
	Upsert(ctx context.Context, rec *VerificationRecord) error

	// Find returns the record matching the exact (email, code, purpose) triple.
	Find(ctx context.Context, email, code string, purpose Purpose) (*VerificationRecord, error)

	// FindPending returns the live record for (email, purpose) regardless of code.
	FindPending(ctx context.Context, email string, purpose Purpose) (*VerificationRecord, error)

	// Delete removes the record for (email, purpose). Deleting a missing
	// record is not an error.
	Delete(ctx context.Context, email string, purpose Purpose) error
}
