package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/taskflow/modules/user"
	"github.com/dmitrymomot/taskflow/pkg/email"
	"github.com/dmitrymomot/taskflow/pkg/logger"
	"github.com/dmitrymomot/taskflow/pkg/otp"
	"github.com/dmitrymomot/taskflow/pkg/sanitizer"
	"github.com/dmitrymomot/taskflow/pkg/validator"
)

// defaultOTPTTL is the verification window: issue time + 5 minutes.
const defaultOTPTTL = 5 * time.Minute

// Service drives the verification state machine. Per (email, purpose) a
// record moves absent -> pending -> consumed, with resend superseding the
// pending record in place.
type Service struct {
	users      user.Store
	records    VerificationStore
	mailer     email.EmailSender
	log        *slog.Logger
	bcryptCost int
	otpTTL     time.Duration
	now        func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) { s.log = log }
}

// WithBcryptCost sets the bcrypt cost for password hashing.
func WithBcryptCost(cost int) ServiceOption {
	return func(s *Service) { s.bcryptCost = cost }
}

// WithOTPTTL overrides the verification window.
func WithOTPTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) { s.otpTTL = ttl }
}

// NewService creates the verification service.
func NewService(users user.Store, records VerificationStore, mailer email.EmailSender, opts ...ServiceOption) *Service {
	s := &Service{
		users:      users,
		records:    records,
		mailer:     mailer,
		log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		bcryptCost: bcrypt.DefaultCost,
		otpTTL:     defaultOTPTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register starts the registration flow: it hashes the password, stores a
// pending verification record, and emails the code. No User exists until the
// code is verified. A repeated register for the same email supersedes the
// previous pending record.
func (s *Service) Register(ctx context.Context, name, emailAddr, password string) error {
	name = sanitizer.TrimString(name)
	emailAddr = sanitizer.NormalizeEmail(emailAddr)

	if err := validator.Apply(
		validator.Required("name", name),
		validator.MaxLen("name", name, 100),
		validator.ValidEmail("email", emailAddr),
		validator.MinLen("password", password, 8),
		validator.MaxLen("password", password, 128),
	); err != nil {
		return err
	}

	if _, err := s.users.ByEmail(ctx, emailAddr); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, user.ErrNotFound) {
		return fmt.Errorf("failed to check existing user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	rec, err := s.issueRecord(ctx, emailAddr, PurposeRegister, &PendingUser{
		Name:         name,
		PasswordHash: string(hash),
	})
	if err != nil {
		return err
	}

	s.sendCode(ctx, rec)
	return nil
}

// VerifyOTP consumes a REGISTER record and creates the User from its pending
// data. The user check is repeated here to guard the race with a concurrent
// successful registration for the same email.
func (s *Service) VerifyOTP(ctx context.Context, emailAddr, code string) (*user.User, error) {
	emailAddr = sanitizer.NormalizeEmail(emailAddr)

	rec, err := s.lookupCode(ctx, emailAddr, code, PurposeRegister)
	if err != nil {
		return nil, err
	}
	if rec.Pending == nil {
		return nil, ErrInvalidOTP
	}

	if _, err := s.users.ByEmail(ctx, emailAddr); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, user.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	now := s.now()
	u := &user.User{
		ID:           uuid.NewString(),
		Name:         rec.Pending.Name,
		Email:        emailAddr,
		PasswordHash: rec.Pending.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.records.Delete(ctx, emailAddr, PurposeRegister); err != nil {
		// The user exists; a stale record only lives until its TTL.
		s.log.LogAttrs(ctx, slog.LevelWarn, "failed to consume verification record",
			logger.Email(emailAddr),
			logger.Error(err),
			logger.Component("auth"),
		)
	}

	return u, nil
}

// ResendOTP replaces the code and expiry of a pending REGISTER record,
// leaving the pending user data untouched, and re-sends the email.
func (s *Service) ResendOTP(ctx context.Context, emailAddr string) error {
	emailAddr = sanitizer.NormalizeEmail(emailAddr)

	rec, err := s.records.FindPending(ctx, emailAddr, PurposeRegister)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return ErrNoPendingVerification
		}
		return fmt.Errorf("failed to load verification record: %w", err)
	}
	// An expired record still awaiting the TTL purge counts as absent.
	if rec.Expired(s.now()) {
		return ErrNoPendingVerification
	}

	code, err := otp.GenerateCode()
	if err != nil {
		return err
	}
	rec.OTPCode = code
	rec.ExpiresAt = s.now().Add(s.otpTTL)

	if err := s.records.Upsert(ctx, rec); err != nil {
		return err
	}

	s.sendCode(ctx, rec)
	return nil
}

// ForgotPassword starts the reset flow for an existing user.
func (s *Service) ForgotPassword(ctx context.Context, emailAddr string) error {
	emailAddr = sanitizer.NormalizeEmail(emailAddr)

	if _, err := s.users.ByEmail(ctx, emailAddr); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.ErrNotFound
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	rec, err := s.issueRecord(ctx, emailAddr, PurposeForgotPassword, nil)
	if err != nil {
		return err
	}

	s.sendCode(ctx, rec)
	return nil
}

// ResetPassword consumes a FORGOT_PASSWORD record and replaces the user's
// password hash.
func (s *Service) ResetPassword(ctx context.Context, emailAddr, code, newPassword string) error {
	emailAddr = sanitizer.NormalizeEmail(emailAddr)

	if err := validator.Apply(
		validator.MinLen("password", newPassword, 8),
		validator.MaxLen("password", newPassword, 128),
	); err != nil {
		return err
	}

	if _, err := s.lookupCode(ctx, emailAddr, code, PurposeForgotPassword); err != nil {
		return err
	}

	u, err := s.users.ByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.ErrNotFound
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, u.ID, string(hash)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.records.Delete(ctx, emailAddr, PurposeForgotPassword); err != nil {
		s.log.LogAttrs(ctx, slog.LevelWarn, "failed to consume verification record",
			logger.Email(emailAddr),
			logger.Error(err),
			logger.Component("auth"),
		)
	}

	return nil
}

// Login verifies email and password. Returns the generic
// ErrInvalidCredentials for any failure to prevent user enumeration.
func (s *Service) Login(ctx context.Context, emailAddr, password string) (*user.User, error) {
	emailAddr = sanitizer.NormalizeEmail(emailAddr)

	u, err := s.users.ByEmail(ctx, emailAddr)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// issueRecord generates a fresh code and upserts the (email, purpose) record,
// superseding any previous one.
func (s *Service) issueRecord(ctx context.Context, emailAddr string, purpose Purpose, pending *PendingUser) (*VerificationRecord, error) {
	code, err := otp.GenerateCode()
	if err != nil {
		return nil, err
	}

	now := s.now()
	rec := &VerificationRecord{
		Email:     emailAddr,
		OTPCode:   code,
		Purpose:   purpose,
		ExpiresAt: now.Add(s.otpTTL),
		Pending:   pending,
		CreatedAt: now,
	}
	if err := s.records.Upsert(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to store verification record: %w", err)
	}
	return rec, nil
}

// lookupCode finds a record by exact (email, code, purpose) and enforces the
// expiry window even when the store hasn't purged the record yet.
func (s *Service) lookupCode(ctx context.Context, emailAddr, code string, purpose Purpose) (*VerificationRecord, error) {
	rec, err := s.records.Find(ctx, emailAddr, code, purpose)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, ErrInvalidOTP
		}
		return nil, fmt.Errorf("failed to load verification record: %w", err)
	}
	if rec.Expired(s.now()) {
		return nil, ErrOTPExpired
	}
	return rec, nil
}

// sendCode emails the verification code. Delivery is best-effort: a send
// failure is logged and swallowed because the record already exists and the
// user can request a resend.
func (s *Service) sendCode(ctx context.Context, rec *VerificationRecord) {
	params, err := buildOTPEmail(rec)
	if err != nil {
		s.log.LogAttrs(ctx, slog.LevelError, "failed to render verification email",
			logger.Email(rec.Email),
			logger.Error(err),
			logger.Component("auth"),
		)
		return
	}

	if err := s.mailer.SendEmail(ctx, params); err != nil {
		s.log.LogAttrs(ctx, slog.LevelError, "failed to send verification email",
			logger.Email(rec.Email),
			logger.Error(err),
			logger.Component("auth"),
		)
	}
}
