package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/d60-Lab/linkrank/config"
	"github.com/d60-Lab/linkrank/internal/model"
	"github.com/d60-Lab/linkrank/internal/repository"
	"github.com/d60-Lab/linkrank/internal/service"
	"github.com/d60-Lab/linkrank/pkg/apperr"
	"github.com/d60-Lab/linkrank/pkg/database"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func check(err error) {
	if err != nil {
		panic(err)
	}
}

func envInt(name string, def int) int {
	if s := os.Getenv(name); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func main() {
	cfg := must(config.Load())
	db := must(database.InitDB(cfg))
	check(db.AutoMigrate(model.Models()...))

	store := repository.NewStore(db)
	votes := service.NewVoteService(store, service.WithOpTimeout(cfg.Database.OpTimeout))
	ctx := context.Background()

	// N 个投票用户，每人投 DUP 次，只有第一次应当成功
	N := envInt("N", 2000)
	CONC := envInt("CONC", 32)
	DUP := envInt("DUP", 2)

	owner := model.User{ID: uuid.New().String(), Role: model.RoleMember, PasswordHash: "x"}
	owner.Username = "bench_" + owner.ID[:8]
	owner.Email = owner.Username + "@example.com"
	check(db.Create(&owner).Error)

	link := model.Link{
		ID:      uuid.New().String(),
		URL:     "https://bench.example/" + owner.ID,
		OwnerID: owner.ID,
		Status:  model.LinkStatusApproved,
	}
	check(db.Create(&link).Error)

	users := make([]model.User, N)
	batch := 1000
	for i := 0; i < N; i++ {
		id := uuid.New().String()
		users[i] = model.User{ID: id, Username: "v" + id[:8] + strconv.Itoa(i), Email: id + "@example.com", PasswordHash: "x", Role: model.RoleMember}
		if (i+1)%batch == 0 {
			sub := users[i+1-batch : i+1]
			check(db.Create(&sub).Error)
		}
	}
	if N%batch != 0 {
		sub := users[N-N%batch:]
		check(db.Create(&sub).Error)
	}

	total := N * DUP
	feed := make(chan int, total)
	for d := 0; d < DUP; d++ {
		for i := 0; i < N; i++ {
			feed <- i
		}
	}
	close(feed)

	var ok, dup, failed atomic.Int64
	latCh := make(chan time.Duration, total)
	workers := CONC
	if workers > total {
		workers = total
	}
	done := make(chan struct{}, workers)

	t0 := time.Now()
	for w := 0; w < workers; w++ {
		go func() {
			for i := range feed {
				st := time.Now()
				_, err := votes.CastVote(ctx, link.ID, users[i].ID)
				latCh <- time.Since(st)
				switch {
				case err == nil:
					ok.Add(1)
				case apperr.KindOf(err) == apperr.KindDuplicateVote:
					dup.Add(1)
				default:
					failed.Add(1)
				}
			}
			done <- struct{}{}
		}()
	}
	for w := 0; w < workers; w++ {
		<-done
	}
	elapsed := time.Since(t0)
	close(latCh)
	lats := make([]time.Duration, 0, total)
	for d := range latCh {
		lats = append(lats, d)
	}

	pct := func(vs []time.Duration, p float64) time.Duration {
		if len(vs) == 0 {
			return 0
		}
		xs := append([]time.Duration(nil), vs...)
		sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
		k := int(math.Ceil(p*float64(len(xs)))) - 1
		if k < 0 {
			k = 0
		}
		if k >= len(xs) {
			k = len(xs) - 1
		}
		return xs[k]
	}

	score := must(store.Links.GetByID(ctx, link.ID)).Score
	voters := must(store.Upvotes.CountByLink(ctx, link.ID))

	fmt.Printf("driver=%s N=%d CONC=%d DUP=%d\n", cfg.Database.Driver, N, CONC, DUP)
	fmt.Printf("votes total=%d ok=%d duplicate=%d failed=%d elapsed=%v qps=%.0f\n",
		total, ok.Load(), dup.Load(), failed.Load(), elapsed, float64(total)/elapsed.Seconds())
	fmt.Printf("latency p50=%v p95=%v p99=%v\n", pct(lats, 0.50), pct(lats, 0.95), pct(lats, 0.99))
	fmt.Printf("score=%d voters=%d invariant=%v\n", score, voters, score == voters && voters == ok.Load())
	if score != voters {
		os.Exit(1)
	}
}
