// Package ratelimiter provides a fixed-window rate limiter for the
// unauthenticated auth endpoints. State lives behind a Store so the limiter
// can run against Redis in production and in memory under test.
package ratelimiter

import (
	"context"
	"fmt"
	"time"
)

// Config defines the limit: at most Capacity requests per Window per key.
type Config struct {
	Capacity int           `env:"RATE_LIMIT_CAPACITY" envDefault:"10"`
	Window   time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
}

func (c Config) validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidConfig, c.Capacity)
	}
	if c.Window <= 0 {
		return fmt.Errorf("%w: window must be positive, got %v", ErrInvalidConfig, c.Window)
	}
	return nil
}

// Result describes the state of a key after an Allow call.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RateLimiter decides whether a request identified by key may proceed.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (*Result, error)
}

// Store tracks request counts per key within the current window.
type Store interface {
	// Incr increments the counter for key, starting a fresh window of the
	// given length when the key is new, and returns the post-increment count
	// together with the window expiry.
	Incr(ctx context.Context, key string, window time.Duration) (count int, resetAt time.Time, err error)
}

// Window implements fixed-window rate limiting on top of a Store.
type Window struct {
	store  Store
	config Config
}

// NewWindow creates a fixed-window limiter.
func NewWindow(store Store, config Config) (*Window, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &Window{store: store, config: config}, nil
}

func (w *Window) Allow(ctx context.Context, key string) (*Result, error) {
	count, resetAt, err := w.store.Incr(ctx, key, w.config.Window)
	if err != nil {
		return nil, err
	}

	return &Result{
		Allowed:   count <= w.config.Capacity,
		Limit:     w.config.Capacity,
		Remaining: max(w.config.Capacity-count, 0),
		ResetAt:   resetAt,
	}, nil
}
