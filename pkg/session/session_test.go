package session_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/taskflow/pkg/cookie"
	"github.com/dmitrymomot/taskflow/pkg/session"
)

func newManager(t *testing.T) *session.Manager {
	t.Helper()
	cookies, err := cookie.New([]string{strings.Repeat("s", 32)})
	require.NoError(t, err)

	m, err := session.New(session.Config{
		Secret:     "session-signing-secret",
		TTL:        time.Hour,
		CookieName: "session",
	}, cookies)
	require.NoError(t, err)
	return m
}

func requestWithSession(t *testing.T, m *session.Manager, userID string) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, m.Issue(rec, userID))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestIssueAndUserID(t *testing.T) {
	t.Parallel()
	m := newManager(t)

	req := requestWithSession(t, m, "user-42")

	userID, err := m.UserID(req)
	require.NoError(t, err)
	assert.Equal(t, "user-42", userID)
}

func TestUserIDRejections(t *testing.T) {
	t.Parallel()
	m := newManager(t)

	t.Run("no cookie", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		_, err := m.UserID(req)
		assert.ErrorIs(t, err, session.ErrUnauthenticated)
	})

	t.Run("forged cookie", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "session", Value: "forged.value"})
		_, err := m.UserID(req)
		assert.ErrorIs(t, err, session.ErrUnauthenticated)
	})

	t.Run("cookie issued by another manager", func(t *testing.T) {
		t.Parallel()
		other := newManagerWithSecret(t, "a-different-signing-secret")
		req := requestWithSession(t, other, "user-42")

		_, err := m.UserID(req)
		assert.ErrorIs(t, err, session.ErrUnauthenticated)
	})
}

func newManagerWithSecret(t *testing.T, secret string) *session.Manager {
	t.Helper()
	cookies, err := cookie.New([]string{strings.Repeat("s", 32)})
	require.NoError(t, err)
	m, err := session.New(session.Config{
		Secret:     secret,
		TTL:        time.Hour,
		CookieName: "session",
	}, cookies)
	require.NoError(t, err)
	return m
}

func TestClear(t *testing.T) {
	t.Parallel()
	m := newManager(t)

	rec := httptest.NewRecorder()
	m.Clear(rec)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestMiddleware(t *testing.T) {
	t.Parallel()
	m := newManager(t)

	var gotUserID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = session.UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	handler := session.Middleware(m)(next)

	t.Run("valid session passes through with user id", func(t *testing.T) {
		req := requestWithSession(t, m, "user-42")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "user-42", gotUserID)
	})

	t.Run("missing session is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Unauthorized")
	})
}

func TestUserIDFromContext(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := session.UserIDFromContext(req.Context())
	assert.False(t, ok)

	ctx := session.WithUserID(req.Context(), "user-42")
	id, ok := session.UserIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "user-42", id)
}
