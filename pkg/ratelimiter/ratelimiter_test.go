package ratelimiter_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/taskflow/pkg/ratelimiter"
)

func TestNewWindow(t *testing.T) {
	t.Parallel()

	_, err := ratelimiter.NewWindow(ratelimiter.NewMemoryStore(), ratelimiter.Config{Capacity: 0, Window: time.Minute})
	assert.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)

	_, err = ratelimiter.NewWindow(ratelimiter.NewMemoryStore(), ratelimiter.Config{Capacity: 5, Window: 0})
	assert.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)
}

func TestWindowAllow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("allows up to capacity then denies", func(t *testing.T) {
		t.Parallel()
		limiter, err := ratelimiter.NewWindow(ratelimiter.NewMemoryStore(), ratelimiter.Config{
			Capacity: 3,
			Window:   time.Minute,
		})
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			res, err := limiter.Allow(ctx, "ip-1")
			require.NoError(t, err)
			assert.True(t, res.Allowed, "request %d should be allowed", i+1)
			assert.Equal(t, 3, res.Limit)
			assert.Equal(t, 2-i, res.Remaining)
		}

		res, err := limiter.Allow(ctx, "ip-1")
		require.NoError(t, err)
		assert.False(t, res.Allowed)
		assert.Equal(t, 0, res.Remaining)
	})

	t.Run("keys are independent", func(t *testing.T) {
		t.Parallel()
		limiter, err := ratelimiter.NewWindow(ratelimiter.NewMemoryStore(), ratelimiter.Config{
			Capacity: 1,
			Window:   time.Minute,
		})
		require.NoError(t, err)

		res, err := limiter.Allow(ctx, "ip-1")
		require.NoError(t, err)
		require.True(t, res.Allowed)

		res, err = limiter.Allow(ctx, "ip-2")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	})

	t.Run("window expiry resets the counter", func(t *testing.T) {
		t.Parallel()
		limiter, err := ratelimiter.NewWindow(ratelimiter.NewMemoryStore(), ratelimiter.Config{
			Capacity: 1,
			Window:   30 * time.Millisecond,
		})
		require.NoError(t, err)

		res, err := limiter.Allow(ctx, "ip-1")
		require.NoError(t, err)
		require.True(t, res.Allowed)

		res, err = limiter.Allow(ctx, "ip-1")
		require.NoError(t, err)
		require.False(t, res.Allowed)

		time.Sleep(50 * time.Millisecond)

		res, err = limiter.Allow(ctx, "ip-1")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	})
}

type failingStore struct{}

func (failingStore) Incr(context.Context, string, time.Duration) (int, time.Time, error) {
	return 0, time.Time{}, assert.AnError
}

func TestMiddleware(t *testing.T) {
	t.Parallel()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("allows within capacity and sets headers", func(t *testing.T) {
		t.Parallel()
		limiter, err := ratelimiter.NewWindow(ratelimiter.NewMemoryStore(), ratelimiter.Config{
			Capacity: 2,
			Window:   time.Minute,
		})
		require.NoError(t, err)
		handler := ratelimiter.Middleware(limiter, log)(next)

		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Remaining"))
	})

	t.Run("rejects over capacity", func(t *testing.T) {
		t.Parallel()
		limiter, err := ratelimiter.NewWindow(ratelimiter.NewMemoryStore(), ratelimiter.Config{
			Capacity: 1,
			Window:   time.Minute,
		})
		require.NoError(t, err)
		handler := ratelimiter.Middleware(limiter, log)(next)

		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	})

	t.Run("fails open when the store errors", func(t *testing.T) {
		t.Parallel()
		limiter, err := ratelimiter.NewWindow(failingStore{}, ratelimiter.Config{
			Capacity: 1,
			Window:   time.Minute,
		})
		require.NoError(t, err)
		handler := ratelimiter.Middleware(limiter, log)(next)

		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}
