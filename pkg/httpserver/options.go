package httpserver

import (
	"log/slog"
	"time"
)

// Option customizes server behavior.
type Option func(*config)

func WithAddr(addr string) Option {
	return func(c *config) { c.addr = addr }
}

func WithReadTimeout(d time.Duration) Option {
	return func(c *config) { c.readTimeout = d }
}

// WithWriteTimeout sets the response write deadline. Leave it at zero when the
// handler tree includes long-lived SSE streams, which must outlive any fixed
// write deadline.
func WithWriteTimeout(d time.Duration) Option {
	return func(c *config) { c.writeTimeout = d }
}

func WithIdleTimeout(d time.Duration) Option {
	return func(c *config) { c.idleTimeout = d }
}

func WithShutdownTimeout(d time.Duration) Option {
	return func(c *config) { c.shutdownTimeout = d }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}
