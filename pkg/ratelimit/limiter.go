package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "ratelimit"

// Result reports the state of the counter after a request was counted.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter counts requests per identifier in fixed windows stored in redis.
type Limiter struct {
	rdb *redis.Client
}

func NewLimiter(rdb *redis.Client) *Limiter {
	return &Limiter{rdb: rdb}
}

// Allow counts one request for identifier under scope. The first request of a
// window starts its expiry. A redis failure returns the error with an allowed result.
func (l *Limiter) Allow(ctx context.Context, scope, identifier string, rule Rule) (Result, error) {
	open := Result{Allowed: true, Limit: rule.Limit, Remaining: rule.Limit}
	if l.rdb == nil {
		return open, nil
	}

	key := fmt.Sprintf("%s:%s:%s", keyPrefix, scope, identifier)

	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return open, fmt.Errorf("failed to count request: %w", err)
	}
	if count == 1 {
		if err := l.rdb.Expire(ctx, key, rule.Window).Err(); err != nil {
			return open, fmt.Errorf("failed to start rate limit window: %w", err)
		}
	}

	ttl, err := l.rdb.TTL(ctx, key).Result()
	if err != nil {
		return open, fmt.Errorf("failed to read rate limit window: %w", err)
	}
	if ttl < 0 {
		// The key lost its expiry; restart the window so it cannot block forever.
		if err := l.rdb.Expire(ctx, key, rule.Window).Err(); err != nil {
			return open, fmt.Errorf("failed to start rate limit window: %w", err)
		}
		ttl = rule.Window
	}

	remaining := rule.Limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return Result{
		Allowed:    count <= int64(rule.Limit),
		Limit:      rule.Limit,
		Remaining:  remaining,
		RetryAfter: ttl,
	}, nil
}
