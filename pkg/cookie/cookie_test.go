package cookie_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/taskflow/pkg/cookie"
)

var (
	secretA = strings.Repeat("a", 32)
	secretB = strings.Repeat("b", 32)
)

func setAndRequest(t *testing.T, m *cookie.Manager, name, value string) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, m.SetSigned(rec, name, value))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := cookie.New(nil)
	assert.ErrorIs(t, err, cookie.ErrNoSecret)

	_, err = cookie.New([]string{""})
	assert.ErrorIs(t, err, cookie.ErrNoSecret)

	_, err = cookie.New([]string{"too-short"})
	assert.ErrorIs(t, err, cookie.ErrSecretTooShort)

	m, err := cookie.New([]string{secretA})
	require.NoError(t, err)
	assert.NotNil(t, m)
}

func TestSignedRoundTrip(t *testing.T) {
	t.Parallel()
	m, err := cookie.New([]string{secretA})
	require.NoError(t, err)

	req := setAndRequest(t, m, "session", "user-42")

	got, err := m.GetSigned(req, "session")
	require.NoError(t, err)
	assert.Equal(t, "user-42", got)
}

func TestGetSigned(t *testing.T) {
	t.Parallel()
	m, err := cookie.New([]string{secretA})
	require.NoError(t, err)

	t.Run("missing cookie", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		_, err := m.GetSigned(req, "session")
		assert.ErrorIs(t, err, cookie.ErrCookieNotFound)
	})

	t.Run("tampered value", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "session", Value: "forged.signature"})
		_, err := m.GetSigned(req, "session")
		assert.ErrorIs(t, err, cookie.ErrInvalidSignature)
	})

	t.Run("signed by unknown secret", func(t *testing.T) {
		t.Parallel()
		other, err := cookie.New([]string{secretB})
		require.NoError(t, err)
		req := setAndRequest(t, other, "session", "user-42")

		_, err = m.GetSigned(req, "session")
		assert.ErrorIs(t, err, cookie.ErrInvalidSignature)
	})
}

func TestKeyRotation(t *testing.T) {
	t.Parallel()

	old, err := cookie.New([]string{secretA})
	require.NoError(t, err)
	req := setAndRequest(t, old, "session", "user-42")

	// After rotation the new secret signs but the old one still verifies.
	rotated, err := cookie.New([]string{secretB, secretA})
	require.NoError(t, err)

	got, err := rotated.GetSigned(req, "session")
	require.NoError(t, err)
	assert.Equal(t, "user-42", got)
}

func TestDelete(t *testing.T) {
	t.Parallel()
	m, err := cookie.New([]string{secretA})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	m.Delete(rec, "session")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "session", cookies[0].Name)
	assert.Equal(t, -1, cookies[0].MaxAge)
	assert.Empty(t, cookies[0].Value)
}
