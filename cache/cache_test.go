package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/hypermark/blogsearch/cache"
)

func newTestCache(t *testing.T) (*cache.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := cache.NewWithClient(rdb, nil)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestGetBytes_MissOnAbsentKey(t *testing.T) {
	c, _ := newTestCache(t)

	_, ok := c.GetBytes(context.Background(), "post:1")
	assert.False(t, ok)
}

func TestSetGetRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	c.SetBytes(ctx, "post:1", []byte(`{"id":1}`), time.Hour)

	b, ok := c.GetBytes(ctx, "post:1")
	assert.True(t, ok)
	assert.Equal(t, []byte(`{"id":1}`), b)
}

func TestEntryExpiresAfterTTL(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	c.SetBytes(ctx, "post:1", []byte(`{"id":1}`), 3600*time.Second)

	mr.FastForward(3599 * time.Second)
	_, ok := c.GetBytes(ctx, "post:1")
	assert.True(t, ok, "entry must survive within the TTL window")

	mr.FastForward(2 * time.Second)
	_, ok = c.GetBytes(ctx, "post:1")
	assert.False(t, ok, "entry must expire once the TTL elapses")
}

func TestLastWriteWins(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	c.SetBytes(ctx, "post:1", []byte("old"), time.Hour)
	c.SetBytes(ctx, "post:1", []byte("new"), time.Hour)

	b, ok := c.GetBytes(ctx, "post:1")
	assert.True(t, ok)
	assert.Equal(t, []byte("new"), b)
}

func TestUnreachableServerDegradesToMiss(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	c.SetBytes(ctx, "post:1", []byte(`{"id":1}`), time.Hour)
	mr.Close()

	_, ok := c.GetBytes(ctx, "post:1")
	assert.False(t, ok, "errors must read as misses")
	// Writes must also be silent no-ops.
	c.SetBytes(ctx, "post:2", []byte(`{"id":2}`), time.Hour)
}
