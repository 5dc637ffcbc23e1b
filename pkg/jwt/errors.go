package jwt

import "errors"

var (
	ErrMissingSigningKey       = errors.New("jwt: missing signing key")
	ErrMissingClaims           = errors.New("jwt: missing claims")
	ErrInvalidToken            = errors.New("jwt: invalid token")
	ErrInvalidSignature        = errors.New("jwt: invalid signature")
	ErrExpiredToken            = errors.New("jwt: token expired")
	ErrUnexpectedSigningMethod = errors.New("jwt: unexpected signing method")
)
