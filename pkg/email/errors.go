package email

import (
	"errors"
	"regexp"
)

var (
	ErrInvalidConfig     = errors.New("email: invalid config")
	ErrFailedToSendEmail = errors.New("email: failed to send")
	ErrInvalidRecipient  = errors.New("email: invalid recipient address")
	ErrMissingSubject    = errors.New("email: subject is required")
	ErrMissingBody       = errors.New("email: body is required")
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
