package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"

	"github.com/turtacn/BioSecure-Portal/internal/application/common"
	"github.com/turtacn/BioSecure-Portal/internal/application/events"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/database/redis"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/storage/minio"
)

// RecordingEvents is an events.Publisher that keeps every event.
type RecordingEvents struct {
	mu     sync.Mutex
	events []events.Event
}

// Publish records e.
func (r *RecordingEvents) Publish(_ context.Context, e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events.
func (r *RecordingEvents) Events() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Types returns the recorded event types in order.
func (r *RecordingEvents) Types() []string {
	evs := r.Events()
	out := make([]string, len(evs))
	for i, e := range evs {
		out[i] = e.Type
	}
	return out
}

// MockObjectStore is a testify mock of common.ObjectStore.
type MockObjectStore struct{ mock.Mock }

var _ common.ObjectStore = (*MockObjectStore)(nil)

func (m *MockObjectStore) Put(ctx context.Context, req *minio.PutRequest) (*minio.ObjectInfo, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*minio.ObjectInfo), args.Error(1)
}

func (m *MockObjectStore) Delete(ctx context.Context, bucket, key string) error {
	return m.Called(ctx, bucket, key).Error(0)
}

func (m *MockObjectStore) PresignedURL(ctx context.Context, bucket, key, filename string) (string, time.Time, error) {
	args := m.Called(ctx, bucket, key, filename)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

// NewTestCache returns a cache backed by an in-process miniredis server that
// is shut down when t finishes.
func NewTestCache(t testing.TB) (redis.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	client := redis.NewClientWith(rdb, "test:", logging.NewNopLogger())
	return redis.NewCache(client, logging.NewNopLogger()), mr
}
