package redisstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const rateLimitPrefix = "hrm:ratelimit:"

// FixedWindowLimiter allows Limit hits per Window for each key.
type FixedWindowLimiter struct {
	client *redis.Client
	Limit  int64
	Window time.Duration
}

func NewFixedWindowLimiter(client *redis.Client, limit int64, window time.Duration) *FixedWindowLimiter {
	return &FixedWindowLimiter{client: client, Limit: limit, Window: window}
}

// Allow records a hit for key. When the limit is exceeded it returns false and
// the time until the window resets.
func (l *FixedWindowLimiter) Allow(ctx context.Context, scope, key string) (bool, time.Duration, error) {
	redisKey := rateLimitPrefix + scope + ":" + key

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, 0, err
	}
	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, l.Window).Err(); err != nil {
			return false, 0, err
		}
	}

	if count > l.Limit {
		retry, err := l.client.TTL(ctx, redisKey).Result()
		if err != nil || retry <= 0 {
			retry = l.Window
		}
		return false, retry, nil
	}
	return true, 0, nil
}
