package redis

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedWindowLimiter(t *testing.T) {
	db, mock := redismock.NewClientMock()
	limiter := NewFixedWindowLimiter(NewClientWith(db, "biosec:", nil), 2, time.Minute)
	now := time.Date(2026, 3, 1, 10, 30, 15, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	windowStart := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	key := "biosec:ratelimit:10.0.0.1:" + strconv.FormatInt(windowStart.Unix(), 10)

	mock.ExpectIncr(key).SetVal(1)
	mock.ExpectExpire(key, time.Minute).SetVal(true)
	mock.ExpectIncr(key).SetVal(2)
	mock.ExpectIncr(key).SetVal(3)

	ctx := context.Background()
	first, err := limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, first.Allowed)
	assert.Equal(t, 1, first.Remaining)
	assert.Equal(t, windowStart.Add(time.Minute), first.ResetAt)

	second, err := limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, second.Allowed)
	assert.Equal(t, 0, second.Remaining)

	third, err := limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, third.Allowed)
	assert.Equal(t, 0, third.Remaining)
	assert.Equal(t, 2, third.Limit)

	assert.NoError(t, mock.ExpectationsWereMet())
}
