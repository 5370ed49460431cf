package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/turtacn/BioSecure-Portal/pkg/errors"
)

// RateLimit is the state of one key's current window.
type RateLimit struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// FixedWindowLimiter counts requests per key in fixed windows shared by every
// API replica.
type FixedWindowLimiter struct {
	client *Client
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewFixedWindowLimiter(client *Client, limit int, window time.Duration) *FixedWindowLimiter {
	return &FixedWindowLimiter{client: client, limit: limit, window: window, now: time.Now}
}

// Allow counts one request for key.
func (l *FixedWindowLimiter) Allow(ctx context.Context, key string) (RateLimit, error) {
	rdb, err := l.client.Underlying()
	if err != nil {
		return RateLimit{}, err
	}
	start := l.now().Truncate(l.window)
	k := l.client.Key("ratelimit:" + key + ":" + strconv.FormatInt(start.Unix(), 10))

	n, err := rdb.Incr(ctx, k).Result()
	if err != nil {
		return RateLimit{}, errors.Wrap(err, errors.ErrCodeCacheError, "rate limit counter failed")
	}
	if n == 1 {
		if err := rdb.Expire(ctx, k, l.window).Err(); err != nil {
			return RateLimit{}, errors.Wrap(err, errors.ErrCodeCacheError, "rate limit expiry failed")
		}
	}

	remaining := l.limit - int(n)
	if remaining < 0 {
		remaining = 0
	}
	return RateLimit{
		Allowed:   int(n) <= l.limit,
		Limit:     l.limit,
		Remaining: remaining,
		ResetAt:   start.Add(l.window),
	}, nil
}
