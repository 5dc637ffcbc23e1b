package ratelimiter

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps window counters in Redis so limits hold across restarts.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore creates a Redis-backed store. Keys are namespaced with prefix
// to avoid collisions with other users of the same database.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) Incr(ctx context.Context, key string, window time.Duration) (int, time.Time, error) {
	redisKey := s.prefix + ":" + key

	// INCR then set the expiry only on the first hit, so the window is
	// anchored at the first request rather than sliding with every call.
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	ttl := pipe.TTL(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, time.Time{}, errors.Join(ErrStoreUnavailable, err)
	}

	count := int(incr.Val())
	remaining := ttl.Val()
	if remaining < 0 {
		// Key without expiry: first request of a fresh window.
		remaining = window
		if err := s.client.Expire(ctx, redisKey, window).Err(); err != nil {
			return 0, time.Time{}, errors.Join(ErrStoreUnavailable, err)
		}
	}

	return count, time.Now().Add(remaining), nil
}
