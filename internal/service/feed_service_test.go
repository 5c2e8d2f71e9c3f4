package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/linkrank/internal/model"
	"github.com/d60-Lab/linkrank/internal/testutil"
	"github.com/d60-Lab/linkrank/pkg/apperr"
)

func feedIDs(items []model.FeedItem) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}

func TestListApproved_Ranking(t *testing.T) {
	store, db := newStore(t)
	svc := NewFeedService(store)
	owner := testutil.CreateUser(t, db, "owner", model.RoleMember)

	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a := testutil.CreateLink(t, db, owner.ID, "https://a.example", testutil.WithStatus(model.LinkStatusApproved), testutil.WithScore(5), testutil.WithCreatedAt(t1))
	b := testutil.CreateLink(t, db, owner.ID, "https://b.example", testutil.WithStatus(model.LinkStatusApproved), testutil.WithScore(5), testutil.WithCreatedAt(t1.Add(time.Minute)))
	c := testutil.CreateLink(t, db, owner.ID, "https://c.example", testutil.WithStatus(model.LinkStatusApproved), testutil.WithScore(3), testutil.WithCreatedAt(t1.Add(2*time.Minute)))
	testutil.CreateLink(t, db, owner.ID, "https://pending.example", testutil.WithScore(1000))

	items, err := svc.ListApproved(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID, a.ID, c.ID}, feedIDs(items))
	assert.Equal(t, "owner", items[0].OwnerName)
}

func TestListApproved_Empty(t *testing.T) {
	store, _ := newStore(t)
	items, err := NewFeedService(store).ListApproved(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestListApproved_CacheAside(t *testing.T) {
	store, db := newStore(t)
	cache, _ := newCache(t)
	svc := NewFeedService(store, WithFeedCache(cache))
	ctx := context.Background()
	owner := testutil.CreateUser(t, db, "owner", model.RoleMember)
	link := testutil.CreateLink(t, db, owner.ID, "https://a.example", testutil.WithStatus(model.LinkStatusApproved))

	first, err := svc.ListApproved(ctx)
	require.NoError(t, err)
	second, err := svc.ListApproved(ctx)
	require.NoError(t, err)
	assert.Equal(t, feedIDs(first), feedIDs(second))

	c := cache.Counters()
	assert.Equal(t, int64(1), c.Misses)
	assert.Equal(t, int64(1), c.Hits)

	// 绕过服务直接改库，缓存期内仍返回旧快照
	require.NoError(t, store.Links.SetScore(ctx, link.ID, 7))
	third, err := svc.ListApproved(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), third[0].Score)

	require.NoError(t, cache.Invalidate(ctx))
	fourth, err := svc.ListApproved(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), fourth[0].Score)
}

func TestListApproved_CacheDownFallsThrough(t *testing.T) {
	store, db := newStore(t)
	svc := NewFeedService(store, WithFeedCache(&brokenCache{}))
	owner := testutil.CreateUser(t, db, "owner", model.RoleMember)
	testutil.CreateLink(t, db, owner.ID, "https://a.example", testutil.WithStatus(model.LinkStatusApproved))

	items, err := svc.ListApproved(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestGetLink(t *testing.T) {
	store, db := newStore(t)
	svc := NewFeedService(store)
	owner := testutil.CreateUser(t, db, "owner", model.RoleMember)
	link := testutil.CreateLink(t, db, owner.ID, "https://a.example")

	got, err := svc.GetLink(context.Background(), link.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LinkStatusPending, got.Status)

	_, err = svc.GetLink(context.Background(), "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
