package redis

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/BioSecure-Portal/pkg/errors"
)

type cachedProfile struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

type CacheTestSuite struct {
	suite.Suite
	mock  redismock.ClientMock
	cache Cache
}

func (s *CacheTestSuite) SetupTest() {
	db, mock := redismock.NewClientMock()
	s.mock = mock
	s.cache = NewCache(NewClientWith(db, "test:", nil), logging.NewNopLogger())
}

func (s *CacheTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *CacheTestSuite) TestGet_Hit() {
	s.mock.ExpectGet("test:k").SetVal(`{"name":"Ann","age":41}`)

	var dest cachedProfile
	s.Require().NoError(s.cache.Get(context.Background(), "k", &dest))
	s.Equal(cachedProfile{Name: "Ann", Age: 41}, dest)
}

func (s *CacheTestSuite) TestGet_Miss() {
	s.mock.ExpectGet("test:k").RedisNil()

	var dest cachedProfile
	s.Equal(ErrCacheMiss, s.cache.Get(context.Background(), "k", &dest))
}

func (s *CacheTestSuite) TestGet_NullMarkerIsMiss() {
	s.mock.ExpectGet("test:k").SetVal(nullMarker)

	var dest cachedProfile
	s.Equal(ErrCacheMiss, s.cache.Get(context.Background(), "k", &dest))
}

func (s *CacheTestSuite) TestGet_BackendError() {
	s.mock.ExpectGet("test:k").SetErr(stderrors.New("READONLY"))

	var dest cachedProfile
	err := s.cache.Get(context.Background(), "k", &dest)
	s.True(errors.IsCode(err, errors.ErrCodeCacheError))
}

func (s *CacheTestSuite) TestGetOrSet_LoaderErrorIsReturned() {
	s.mock.ExpectGet("test:k").RedisNil()
	boom := stderrors.New("db down")

	var dest cachedProfile
	err := s.cache.GetOrSet(context.Background(), "k", &dest, time.Minute, func(context.Context) (interface{}, error) {
		return nil, boom
	})
	s.ErrorIs(err, boom)
}

func (s *CacheTestSuite) TestDelete() {
	s.mock.ExpectDel("test:a", "test:b").SetVal(2)
	s.NoError(s.cache.Delete(context.Background(), "a", "b"))
	s.NoError(s.cache.Delete(context.Background()))
}

func TestCacheTestSuite(t *testing.T) {
	suite.Run(t, new(CacheTestSuite))
}

func TestGetOrSet_PopulatesAndReuses(t *testing.T) {
	client, mr := newMiniClient(t)
	cache := NewCache(client, logging.NewNopLogger())
	ctx := context.Background()

	var calls int32
	loader := func(context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		return cachedProfile{Name: "Ann", Age: 41}, nil
	}

	var first, second cachedProfile
	require.NoError(t, cache.GetOrSet(ctx, "profile:1", &first, time.Minute, loader))
	require.NoError(t, cache.GetOrSet(ctx, "profile:1", &second, time.Minute, loader))

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.True(t, mr.Exists("biosec:profile:1"))
	ttl := mr.TTL("biosec:profile:1")
	assert.True(t, ttl >= 54*time.Second && ttl <= 66*time.Second, "ttl %s outside jitter band", ttl)
}

func TestGetOrSet_ConcurrentMissesShareLoader(t *testing.T) {
	client, _ := newMiniClient(t)
	cache := NewCache(client, logging.NewNopLogger())

	var calls int32
	release := make(chan struct{})
	loader := func(context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return cachedProfile{Name: "Ann"}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var dest cachedProfile
			assert.NoError(t, cache.GetOrSet(context.Background(), "hot", &dest, time.Minute, loader))
			assert.Equal(t, "Ann", dest.Name)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt32(&calls), int32(2))
}

func TestGetOrSet_NilIsCachedAsMiss(t *testing.T) {
	client, mr := newMiniClient(t)
	cache := NewCache(client, logging.NewNopLogger(), WithNullCacheTTL(5*time.Second))

	var dest cachedProfile
	err := cache.GetOrSet(context.Background(), "gone", &dest, time.Minute, func(context.Context) (interface{}, error) {
		return nil, nil
	})
	assert.Equal(t, ErrCacheMiss, err)
	v, err := mr.Get("biosec:gone")
	require.NoError(t, err)
	assert.Equal(t, nullMarker, v)
}

func TestDeleteByPrefix(t *testing.T) {
	client, mr := newMiniClient(t)
	cache := NewCache(client, logging.NewNopLogger())
	ctx := context.Background()

	for _, k := range []string{"dashboard:1", "dashboard:2", "stats"} {
		require.NoError(t, cache.Set(ctx, k, 1, time.Minute))
	}
	n, err := cache.DeleteByPrefix(ctx, "dashboard:")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.True(t, mr.Exists("biosec:stats"))
}

func TestJitterTTL(t *testing.T) {
	assert.Equal(t, time.Duration(0), jitterTTL(0))
	for i := 0; i < 100; i++ {
		got := jitterTTL(time.Minute)
		assert.True(t, got >= 54*time.Second && got <= 66*time.Second)
	}
}
