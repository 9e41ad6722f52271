package storage

import (
	"context"
	"errors"
	"testing"
	"time"
	"tintas-bot/pkg/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCache struct {
	counters map[string]int64
	expiries map[string]time.Duration
	deleted  []string
	incrErr  error
}

func newFakeCache() *fakeCache {
	return &fakeCache{counters: map[string]int64{}, expiries: map[string]time.Duration{}}
}

func (f *fakeCache) Get(context.Context, string) ([]byte, error) { return nil, errors.New("miss") }
func (f *fakeCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (f *fakeCache) Del(_ context.Context, keys ...string) error {
	f.deleted = append(f.deleted, keys...)
	return nil
}

func (f *fakeCache) IncrWindow(_ context.Context, key string, window time.Duration) (int64, error) {
	if f.incrErr != nil {
		return 0, f.incrErr
	}
	if _, ok := f.counters[key]; !ok {
		f.expiries[key] = window
	}
	f.counters[key]++
	return f.counters[key], nil
}

func TestCheckRateLimit(t *testing.T) {
	ctx := context.Background()
	cache := newFakeCache()

	for i := 0; i < 3; i++ {
		exceeded, err := CheckRateLimit(ctx, cache, "10.0.0.1", "calculate", 3, time.Minute)
		require.NoError(t, err)
		assert.False(t, exceeded, "request %d", i+1)
	}

	exceeded, err := CheckRateLimit(ctx, cache, "10.0.0.1", "calculate", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, exceeded)

	assert.Equal(t, time.Minute, cache.expiries["ratelimit:10.0.0.1:calculate"])
	assert.Len(t, cache.expiries, 1)
}

func TestCheckRateLimit_WindowExpires(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.New(mr.Addr(), "", 0, time.Hour)
	t.Cleanup(client.Close)

	for i := 0; i < 2; i++ {
		_, err := CheckRateLimit(ctx, client, "tg:42", "calculate", 1, time.Minute)
		require.NoError(t, err)
	}
	exceeded, err := CheckRateLimit(ctx, client, "tg:42", "calculate", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, exceeded)
	assert.Equal(t, time.Minute, mr.TTL("ratelimit:tg:42:calculate"))

	mr.FastForward(time.Minute)

	exceeded, err = CheckRateLimit(ctx, client, "tg:42", "calculate", 1, time.Minute)
	require.NoError(t, err)
	assert.False(t, exceeded)
}

func TestCheckRateLimit_Error(t *testing.T) {
	cache := newFakeCache()
	cache.incrErr = errors.New("redis down")

	_, err := CheckRateLimit(context.Background(), cache, "x", "y", 1, time.Second)
	assert.ErrorIs(t, err, cache.incrErr)
}
