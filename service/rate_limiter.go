// file: service/rate_limiter.go

package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// ICounterStore is the subset of the Redis client the rate limiter needs.
// *redis.Client satisfies it; tests substitute an in-memory fake.
type ICounterStore interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	PExpire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	PTTL(ctx context.Context, key string) *redis.DurationCmd
}

// RateDecision is the outcome of one Allow call.
type RateDecision struct {
	Allowed    bool
	Limit      int64
	Remaining  int64
	RetryAfter time.Duration
}

// RateLimiter counts requests per client in fixed windows.
type RateLimiter struct {
	store  ICounterStore
	limit  int64
	window time.Duration
	prefix string
}

func NewRateLimiter(store ICounterStore, limit int64, window time.Duration) *RateLimiter {
	return &RateLimiter{store: store, limit: limit, window: window, prefix: "ratelimit:"}
}

// Allow records one request for clientKey and reports whether it fits in the current window.
func (l *RateLimiter) Allow(ctx context.Context, clientKey string) (RateDecision, error) {
	key := l.prefix + clientKey
	d := RateDecision{Limit: l.limit}

	count, err := l.store.Incr(ctx, key).Result()
	if err != nil {
		return d, err
	}
	if count == 1 {
		if err := l.store.PExpire(ctx, key, l.window).Err(); err != nil {
			return d, err
		}
	}

	if count <= l.limit {
		d.Allowed = true
		d.Remaining = l.limit - count
		return d, nil
	}

	ttl, err := l.store.PTTL(ctx, key).Result()
	if err != nil {
		return d, err
	}
	if ttl < 0 {
		// counter lost its expiry; start the window over
		if err := l.store.PExpire(ctx, key, l.window).Err(); err != nil {
			return d, err
		}
		ttl = l.window
	}
	d.RetryAfter = ttl
	return d, nil
}
