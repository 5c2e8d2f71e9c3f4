package feedcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/d60-Lab/linkrank/internal/model"
)

const (
	versionKey  = "feed:approved:version"
	snapshotFmt = "feed:approved:v%d"
)

// RedisCache caches the approved-feed snapshot in Redis.
//
// Snapshots are stored under a versioned key. Invalidate bumps the version,
// so a reader that loaded the database before an invalidation writes its
// snapshot under the old version and never shadows newer data; old versions
// age out through the TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration

	hits          atomic.Int64
	misses        atomic.Int64
	invalidations atomic.Int64
}

// New builds a cache over the given client. ttl bounds how long a snapshot
// may be served after the last write that did not invalidate it.
func New(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisCache{client: client, ttl: ttl}
}

func snapshotKey(version int64) string { return fmt.Sprintf(snapshotFmt, version) }

// Load returns the cached snapshot for the current version. ok is false on a
// miss; version is still valid and must be passed to Store.
func (c *RedisCache) Load(ctx context.Context) ([]model.FeedItem, int64, bool, error) {
	version, err := c.version(ctx)
	if err != nil {
		return nil, 0, false, err
	}

	data, err := c.client.Get(ctx, snapshotKey(version)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.misses.Add(1)
		return nil, version, false, nil
	}
	if err != nil {
		return nil, version, false, err
	}

	var items []model.FeedItem
	if err := json.Unmarshal(data, &items); err != nil {
		// 脏数据按未命中处理
		c.misses.Add(1)
		return nil, version, false, nil
	}
	c.hits.Add(1)
	return items, version, true, nil
}

// Store writes a snapshot under the version observed by Load.
func (c *RedisCache) Store(ctx context.Context, version int64, items []model.FeedItem) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, snapshotKey(version), payload, c.ttl).Err()
}

// Invalidate moves readers to a fresh version.
func (c *RedisCache) Invalidate(ctx context.Context) error {
	pipe := c.client.TxPipeline()
	pipe.Incr(ctx, versionKey)
	pipe.Expire(ctx, versionKey, 24*time.Hour)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}
	c.invalidations.Add(1)
	return nil
}

func (c *RedisCache) version(ctx context.Context) (int64, error) {
	raw, err := c.client.Get(ctx, versionKey).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("feed cache version %q: %w", raw, err)
	}
	return v, nil
}

// Counters reports cache effectiveness since the last reset.
func (c *RedisCache) Counters() Counters {
	return Counters{
		Hits:          c.hits.Load(),
		Misses:        c.misses.Load(),
		Invalidations: c.invalidations.Load(),
	}
}

// ResetCounters clears recorded counters.
func (c *RedisCache) ResetCounters() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.invalidations.Store(0)
}

// Counters summarises cache traffic.
type Counters struct {
	Hits          int64
	Misses        int64
	Invalidations int64
}
