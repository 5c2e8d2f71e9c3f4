package main

import (
	"bufio"
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/d60-Lab/linkrank/config"
	"github.com/d60-Lab/linkrank/internal/feedcache"
	"github.com/d60-Lab/linkrank/internal/model"
	"github.com/d60-Lab/linkrank/internal/repository"
	"github.com/d60-Lab/linkrank/internal/service"
	"github.com/d60-Lab/linkrank/pkg/database"
)

type scenarioResult struct {
	durations   []time.Duration
	counters    feedcache.Counters
	cacheKeys   int
	memoryBytes int64
}

func main() {
	ctx := context.Background()
	cfg := must(config.Load())
	db := must(database.InitDB(cfg))
	mustDo(db.AutoMigrate(model.Models()...))

	links := envInt("LINKS", 2000)
	reqs := envInt("REQS", 5000)
	// 每 VOTE_EVERY 次读请求穿插一次投票（触发失效）
	voteEvery := envInt("VOTE_EVERY", 50)

	fmt.Println("Setting up test data...")
	owner := model.User{ID: uuid.NewString(), Role: model.RoleMember, PasswordHash: "x"}
	owner.Username = "feed_" + owner.ID[:8]
	owner.Email = owner.Username + "@example.com"
	mustDo(db.Create(&owner).Error)

	rows := make([]model.Link, links)
	base := time.Now().UTC()
	for i := range rows {
		rows[i] = model.Link{
			ID:        uuid.NewString(),
			URL:       fmt.Sprintf("https://feedbench.example/%s/%d", owner.ID[:8], i),
			OwnerID:   owner.ID,
			Status:    model.LinkStatusApproved,
			Score:     int64(i % 97),
			CreatedAt: base.Add(-time.Duration(i) * time.Second),
		}
	}
	mustDo(db.CreateInBatches(&rows, 500).Error)

	voters := make([]model.User, reqs/voteEvery+1)
	for i := range voters {
		id := uuid.NewString()
		voters[i] = model.User{ID: id, Username: "fv" + id[:8], Email: id + "@example.com", PasswordHash: "x", Role: model.RoleMember}
	}
	mustDo(db.CreateInBatches(&voters, 500).Error)
	fmt.Printf("Test data ready: %d approved links\n", links)

	client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	defer client.Close()
	if err := client.Ping(ctx).Err(); err != nil {
		panic(fmt.Sprintf("Failed to connect to Redis at %s: %v", cfg.Redis.Addr, err))
	}

	store := repository.NewStore(db)
	cache := feedcache.New(client, cfg.Redis.FeedTTL)

	noCache := runScenario(ctx, client, cache, service.NewFeedService(store), nil, reqs, 0, voters)
	readOnly := runScenario(ctx, client, cache, service.NewFeedService(store, service.WithFeedCache(cache)), nil, reqs, 0, voters)
	churn := runScenario(ctx, client, cache,
		service.NewFeedService(store, service.WithFeedCache(cache)),
		service.NewVoteService(store, service.WithFeedCache(cache)),
		reqs, voteEvery, voters,
	)

	fmt.Printf("\nFeed latency (%d req, %d links)\n", reqs, links)
	report("No cache", noCache)
	report("Cache, read only", readOnly)
	report(fmt.Sprintf("Cache, vote/%d", voteEvery), churn)
}

func runScenario(ctx context.Context, client *redis.Client, cache *feedcache.RedisCache, feed service.FeedService, votes service.VoteService, reqs, voteEvery int, voters []model.User) scenarioResult {
	client.FlushDB(ctx)
	cache.ResetCounters()

	var target string
	if votes != nil {
		items := must(feed.ListApproved(ctx))
		target = items[len(items)-1].ID
	}

	fmt.Print("  Running benchmark...")
	out := make([]time.Duration, 0, reqs)
	v := 0
	for i := 0; i < reqs; i++ {
		if votes != nil && voteEvery > 0 && i%voteEvery == 0 && v < len(voters) {
			_, err := votes.CastVote(ctx, target, voters[v].ID)
			mustDo(err)
			v++
		}
		start := time.Now()
		_, err := feed.ListApproved(ctx)
		mustDo(err)
		out = append(out, time.Since(start))
	}
	fmt.Println(" done")

	keys, _ := client.Keys(ctx, "feed:*").Result()
	info, err := client.Info(ctx, "memory").Result()
	var memBytes int64
	if err == nil {
		memBytes = parseRedisMemory(info)
	}
	return scenarioResult{
		durations:   out,
		counters:    cache.Counters(),
		cacheKeys:   len(keys),
		memoryBytes: memBytes,
	}
}

func report(name string, r scenarioResult) {
	fmt.Printf("%-20s avg=%v p95=%v p99=%v hits=%d misses=%d invalidations=%d cache_keys=%d mem=%s\n",
		name, avg(r.durations), pct(r.durations, 0.95), pct(r.durations, 0.99),
		r.counters.Hits, r.counters.Misses, r.counters.Invalidations,
		r.cacheKeys, formatBytes(r.memoryBytes),
	)
}

// parseRedisMemory 取 INFO memory 中的 used_memory
func parseRedisMemory(info string) int64 {
	sc := bufio.NewScanner(strings.NewReader(info))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if v, ok := strings.CutPrefix(line, "used_memory:"); ok {
			n, _ := strconv.ParseInt(v, 10, 64)
			return n
		}
	}
	return 0
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func avg(vs []time.Duration) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range vs {
		sum += v
	}
	return sum / time.Duration(len(vs))
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), vs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(math.Ceil(p*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func envInt(name string, def int) int {
	if s := os.Getenv(name); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func mustDo(err error) {
	if err != nil {
		panic(err)
	}
}
