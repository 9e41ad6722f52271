package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	c := New(mr.Addr(), "", 0, time.Hour)
	t.Cleanup(c.Close)
	return c, mr
}

func TestIncrWindow(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestClient(t)

	n, err := c.IncrWindow(ctx, "ratelimit:1.2.3.4:calculate", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, time.Minute, mr.TTL("ratelimit:1.2.3.4:calculate"))

	mr.FastForward(20 * time.Second)

	n, err = c.IncrWindow(ctx, "ratelimit:1.2.3.4:calculate", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	// later increments keep the original window
	assert.Equal(t, 40*time.Second, mr.TTL("ratelimit:1.2.3.4:calculate"))

	mr.FastForward(time.Minute)

	n, err = c.IncrWindow(ctx, "ratelimit:1.2.3.4:calculate", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestIncrWindow_Error(t *testing.T) {
	// nothing listens on port 1
	c := New("127.0.0.1:1", "", 0, time.Hour)
	t.Cleanup(c.Close)

	_, err := c.IncrWindow(context.Background(), "ratelimit:x:y", time.Minute)
	assert.Error(t, err)
}

func TestJSONRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestClient(t)

	type stats struct {
		Total int `json:"total"`
	}

	var out stats
	assert.ErrorIs(t, c.GetJSON(ctx, "calculation_stats", &out), ErrCacheMiss)

	require.NoError(t, c.SetJSON(ctx, "calculation_stats", stats{Total: 7}, 0))
	require.NoError(t, c.GetJSON(ctx, "calculation_stats", &out))
	assert.Equal(t, 7, out.Total)
	// zero ttl uses the client default
	assert.Equal(t, time.Hour, mr.TTL("calculation_stats"))

	require.NoError(t, c.Del(ctx, "calculation_stats"))
	assert.False(t, mr.Exists("calculation_stats"))
}
