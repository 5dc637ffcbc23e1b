// Package session issues and validates the signed cookie-based session token
// and exposes the middleware that gates authenticated routes.
package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/taskflow/pkg/cookie"
	"github.com/dmitrymomot/taskflow/pkg/jwt"
)

// ErrUnauthenticated is returned for any missing, tampered, or expired session.
var ErrUnauthenticated = errors.New("unauthenticated")

// Config holds session token configuration.
type Config struct {
	Secret     string        `env:"SESSION_SECRET,required"`
	TTL        time.Duration `env:"SESSION_TTL" envDefault:"168h"` // 7 days
	CookieName string        `env:"SESSION_COOKIE" envDefault:"session"`
}

// Manager issues and reads the opaque signed session token carried in an
// http-only cookie. The token subject is the user id.
type Manager struct {
	jwt        *jwt.Service
	cookies    *cookie.Manager
	ttl        time.Duration
	cookieName string
}

// New creates a session manager.
func New(cfg Config, cookies *cookie.Manager) (*Manager, error) {
	svc, err := jwt.NewFromString(cfg.Secret)
	if err != nil {
		return nil, err
	}
	return &Manager{
		jwt:        svc,
		cookies:    cookies,
		ttl:        cfg.TTL,
		cookieName: cfg.CookieName,
	}, nil
}

// Issue writes a fresh session cookie for the user.
func (m *Manager) Issue(w http.ResponseWriter, userID string) error {
	now := time.Now()
	token, err := m.jwt.Generate(jwt.StandardClaims{
		ID:        uuid.NewString(),
		Subject:   userID,
		ExpiresAt: now.Add(m.ttl).Unix(),
		IssuedAt:  now.Unix(),
	})
	if err != nil {
		return err
	}
	return m.cookies.SetSigned(w, m.cookieName, token, cookie.WithMaxAge(int(m.ttl.Seconds())))
}

// Clear expires the session cookie.
func (m *Manager) Clear(w http.ResponseWriter) {
	m.cookies.Delete(w, m.cookieName)
}

// UserID extracts and validates the session, returning the user id.
// Any missing, tampered, or expired token yields ErrUnauthenticated.
func (m *Manager) UserID(r *http.Request) (string, error) {
	token, err := m.cookies.GetSigned(r, m.cookieName)
	if err != nil {
		return "", ErrUnauthenticated
	}

	var claims jwt.StandardClaims
	if err := m.jwt.Parse(token, &claims); err != nil {
		return "", ErrUnauthenticated
	}
	if claims.Subject == "" {
		return "", ErrUnauthenticated
	}
	return claims.Subject, nil
}
