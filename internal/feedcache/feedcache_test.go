package feedcache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/linkrank/internal/model"
)

func newCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, time.Minute), mr
}

func TestLoadStore(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()

	_, v, ok, err := c.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int64(0), v)

	items := []model.FeedItem{{ID: "b", URL: "https://b", Score: 5}, {ID: "a", URL: "https://a", Score: 5}}
	require.NoError(t, c.Store(ctx, v, items))

	got, _, ok, err := c.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"b", "a"}, []string{got[0].ID, got[1].ID})
	assert.Equal(t, Counters{Hits: 1, Misses: 1}, c.Counters())
}

func TestInvalidateHidesOlderVersion(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()

	_, v0, _, err := c.Load(ctx)
	require.NoError(t, err)

	// 读者在失效前加载数据库，失效后才写回
	require.NoError(t, c.Invalidate(ctx))
	require.NoError(t, c.Store(ctx, v0, []model.FeedItem{{ID: "stale"}}))

	_, v1, ok, err := c.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, v0+1, v1)
	assert.Equal(t, int64(1), c.Counters().Invalidations)

	c.ResetCounters()
	assert.Equal(t, Counters{}, c.Counters())
}

func TestSnapshotExpires(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	require.NoError(t, c.Store(ctx, 0, []model.FeedItem{{ID: "a"}}))
	mr.FastForward(2 * time.Minute)

	_, _, ok, err := c.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCorruptSnapshotIsMiss(t *testing.T) {
	c, mr := newCache(t)
	require.NoError(t, mr.Set(snapshotKey(0), "{not json"))

	_, _, ok, err := c.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisDown(t *testing.T) {
	c, mr := newCache(t)
	mr.Close()

	_, _, _, err := c.Load(context.Background())
	assert.Error(t, err)
	assert.Error(t, c.Invalidate(context.Background()))
}
