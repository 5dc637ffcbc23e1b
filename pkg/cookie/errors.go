package cookie

import "errors"

var (
	ErrNoSecret         = errors.New("cookie: at least one signing secret is required")
	ErrSecretTooShort   = errors.New("cookie: signing secret too short")
	ErrCookieNotFound   = errors.New("cookie: not found")
	ErrInvalidSignature = errors.New("cookie: invalid signature")
)
