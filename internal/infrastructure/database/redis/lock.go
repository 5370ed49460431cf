package redis

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/turtacn/BioSecure-Portal/pkg/errors"
)

var ErrLockNotHeld = errors.New(errors.ErrCodeConflict, "lock not held by this owner")

var unlockScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	else
		return 0
	end
`)

// JobLock is a single-holder lease used to keep scheduled jobs from running on
// more than one worker at a time.
type JobLock struct {
	client *Client
	key    string
	token  string
	ttl    time.Duration
}

func NewJobLock(client *Client, name string, ttl time.Duration) *JobLock {
	return &JobLock{
		client: client,
		key:    client.Key("lock:" + name),
		token:  uuid.NewString(),
		ttl:    ttl,
	}
}

// TryLock acquires the lease without waiting.
func (l *JobLock) TryLock(ctx context.Context) (bool, error) {
	rdb, err := l.client.Underlying()
	if err != nil {
		return false, err
	}
	ok, err := rdb.SetNX(ctx, l.key, l.token, l.ttl).Result()
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeCacheError, "failed to acquire lock")
	}
	return ok, nil
}

// Unlock releases the lease if this holder still owns it.
func (l *JobLock) Unlock(ctx context.Context) error {
	rdb, err := l.client.Underlying()
	if err != nil {
		return err
	}
	res, err := unlockScript.Run(ctx, rdb, []string{l.key}, l.token).Int64()
	if err != nil && !stderrors.Is(err, redis.Nil) {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to release lock")
	}
	if res == 0 {
		return ErrLockNotHeld
	}
	return nil
}
