// Package cookie provides an HMAC-signed cookie manager for session material.
package cookie

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"
)

const minSecretLength = 32

// Manager signs and verifies cookie values. Multiple secrets support key
// rotation: the first secret signs, all secrets verify.
type Manager struct {
	secrets  []string
	defaults Options
}

func New(secrets []string, opts ...Option) (*Manager, error) {
	if len(secrets) == 0 {
		return nil, ErrNoSecret
	}

	secrets = slices.DeleteFunc(secrets, func(s string) bool { return s == "" })
	if len(secrets) == 0 {
		return nil, ErrNoSecret
	}

	for i, s := range secrets {
		if len(s) < minSecretLength {
			return nil, fmt.Errorf("%w: secret %d has %d chars, need at least %d", ErrSecretTooShort, i, len(s), minSecretLength)
		}
	}

	defaults := Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	defaults = applyOptions(defaults, opts)

	return &Manager{
		secrets:  secrets,
		defaults: defaults,
	}, nil
}

// SetSigned writes a cookie whose value carries an HMAC signature.
func (m *Manager) SetSigned(w http.ResponseWriter, name, value string, opts ...Option) error {
	options := applyOptions(m.defaults, opts)

	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    m.sign(value),
		Path:     options.Path,
		Domain:   options.Domain,
		MaxAge:   options.MaxAge,
		Secure:   options.Secure,
		HttpOnly: options.HttpOnly,
		SameSite: options.SameSite,
	})
	return nil
}

// GetSigned reads a cookie and verifies its signature, returning the original value.
func (m *Manager) GetSigned(r *http.Request, name string) (string, error) {
	cookie, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrCookieNotFound
		}
		return "", err
	}
	return m.verify(cookie.Value)
}

// Delete expires the named cookie immediately.
func (m *Manager) Delete(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     m.defaults.Path,
		Domain:   m.defaults.Domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: m.defaults.HttpOnly,
		SameSite: m.defaults.SameSite,
		Secure:   m.defaults.Secure,
	})
}

// sign encodes value as base64url(value).base64url(hmac) using the newest secret.
func (m *Manager) sign(value string) string {
	encoded := base64.RawURLEncoding.EncodeToString([]byte(value))
	return encoded + "." + m.mac(encoded, m.secrets[0])
}

// verify checks the signature against every configured secret so cookies
// issued before a key rotation remain valid.
func (m *Manager) verify(signed string) (string, error) {
	encoded, sig, ok := strings.Cut(signed, ".")
	if !ok {
		return "", ErrInvalidSignature
	}

	for _, secret := range m.secrets {
		expected := m.mac(encoded, secret)
		if subtle.ConstantTimeCompare([]byte(sig), []byte(expected)) == 1 {
			raw, err := base64.RawURLEncoding.DecodeString(encoded)
			if err != nil {
				return "", ErrInvalidSignature
			}
			return string(raw), nil
		}
	}
	return "", ErrInvalidSignature
}

func (m *Manager) mac(payload, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}
