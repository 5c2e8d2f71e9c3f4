package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/d60-Lab/linkrank/internal/feedcache"
	"github.com/d60-Lab/linkrank/internal/model"
	"github.com/d60-Lab/linkrank/internal/repository"
	"github.com/d60-Lab/linkrank/internal/testutil"
)

func newStore(t *testing.T) (*repository.Store, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	return repository.NewStore(db), db
}

func newCache(t *testing.T) (*feedcache.RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return feedcache.New(client, time.Minute), mr
}

// brokenCache 模拟 Redis 不可用
type brokenCache struct {
	invalidations atomic.Int64
}

var errCacheDown = errors.New("cache down")

func (b *brokenCache) Load(context.Context) ([]model.FeedItem, int64, bool, error) {
	return nil, 0, false, errCacheDown
}

func (b *brokenCache) Store(context.Context, int64, []model.FeedItem) error { return errCacheDown }

func (b *brokenCache) Invalidate(context.Context) error {
	b.invalidations.Add(1)
	return errCacheDown
}

func curator(t *testing.T, db *gorm.DB) model.Principal {
	t.Helper()
	u := testutil.CreateUser(t, db, "curator", model.RoleCurator)
	return model.Principal{UserID: u.ID, Role: u.Role}
}
