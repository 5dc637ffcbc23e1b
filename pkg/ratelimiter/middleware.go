package ratelimiter

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/dmitrymomot/taskflow/pkg/logger"
)

// Middleware limits requests per client IP. The limiter fails open: if the
// backing store is unreachable the request proceeds, because rate limiting is
// protection, not a correctness precondition.
func Middleware(limiter RateLimiter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			result, err := limiter.Allow(r.Context(), clientIP(r))
			if err != nil {
				log.LogAttrs(r.Context(), slog.LevelWarn, "rate limiter unavailable, failing open",
					logger.Error(err),
					logger.Component("ratelimiter"),
				)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))

			if !result.Allowed {
				w.Header().Set("Retry-After", strconv.FormatInt(result.ResetAt.Unix(), 10))
				http.Error(w, "too many requests", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
