package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/d60-Lab/linkrank/config"
	"github.com/d60-Lab/linkrank/internal/repository"
	"github.com/d60-Lab/linkrank/pkg/logger"
)

// ReconcileReport 一轮校正的统计
type ReconcileReport struct {
	Scanned  int
	Healed   int
	Duration time.Duration
}

// ScoreReconciler 周期性地按投票记录重算 score，修复 score 与投票数的偏差
type ScoreReconciler struct {
	store     *repository.Store
	cache     FeedCache
	interval  time.Duration
	batchSize int
	limiter   *rate.Limiter

	mu   sync.Mutex
	last ReconcileReport
}

func NewScoreReconciler(store *repository.Store, cfg config.ReconcileConfig, cache FeedCache) *ScoreReconciler {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	return &ScoreReconciler{
		store:     store,
		cache:     cache,
		interval:  cfg.Interval,
		batchSize: cfg.BatchSize,
		limiter:   rate.NewLimiter(limit, cfg.BatchSize),
	}
}

// Start 后台按间隔执行校正；返回停止函数，等待当前一轮结束或 ctx 到期
func (r *ScoreReconciler) Start() func(context.Context) error {
	stop := make(chan struct{})
	done := make(chan struct{})
	runCtx, cancel := context.WithCancel(context.Background())

	go func() {
		defer close(done)
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if _, err := r.ReconcileOnce(runCtx); err != nil && runCtx.Err() == nil {
					logger.Error("score reconcile failed", zap.Error(err))
				}
			}
		}
	}()

	return func(ctx context.Context) error {
		close(stop)
		select {
		case <-done:
			cancel()
			return nil
		case <-ctx.Done():
			cancel()
			<-done
			return ctx.Err()
		}
	}
}

// ReconcileOnce 扫描全部链接一轮
func (r *ScoreReconciler) ReconcileOnce(ctx context.Context) (report ReconcileReport, err error) {
	ctx, span := tracer.Start(ctx, "ScoreReconciler.ReconcileOnce")
	defer func() { endSpan(span, err) }()

	start := time.Now()
	after := ""
	for {
		page, err := r.store.Links.ListAfter(ctx, after, r.batchSize)
		if err != nil {
			return report, classify(err)
		}
		if len(page) == 0 {
			break
		}
		if err := r.limiter.WaitN(ctx, len(page)); err != nil {
			return report, err
		}

		ids := make([]string, len(page))
		for i, l := range page {
			ids[i] = l.ID
		}
		counts, err := r.store.Upvotes.CountByLinks(ctx, ids)
		if err != nil {
			return report, classify(err)
		}

		for _, l := range page {
			report.Scanned++
			if l.Score == counts[l.ID] {
				continue
			}
			healed, err := r.heal(ctx, l.ID)
			if err != nil {
				return report, err
			}
			if healed {
				report.Healed++
			}
		}
		after = page[len(page)-1].ID
		if len(page) < r.batchSize {
			break
		}
	}

	if report.Healed > 0 && r.cache != nil {
		if err := r.cache.Invalidate(ctx); err != nil {
			logger.Warn("feed cache invalidate failed", zap.Error(err))
		}
	}
	report.Duration = time.Since(start)

	r.mu.Lock()
	r.last = report
	r.mu.Unlock()

	logger.Debug("score reconcile done",
		zap.Int("scanned", report.Scanned),
		zap.Int("healed", report.Healed),
		zap.Duration("took", report.Duration),
	)
	return report, nil
}

// heal 锁住链接行后重新计数；批量读取到的偏差可能只是并发投票的中间态
func (r *ScoreReconciler) heal(ctx context.Context, linkID string) (bool, error) {
	var (
		healed bool
		from   int64
		to     int64
	)
	err := r.store.Transaction(ctx, func(tx *repository.Store) error {
		link, err := tx.Links.GetForUpdate(ctx, linkID)
		if err != nil {
			return err
		}
		n, err := tx.Upvotes.CountByLink(ctx, linkID)
		if err != nil {
			return err
		}
		if link.Score == n {
			return nil
		}
		healed, from, to = true, link.Score, n
		return tx.Links.SetScore(ctx, linkID, n)
	})
	if err != nil {
		return false, classify(err)
	}
	if healed {
		logger.Warn("score drift healed",
			zap.String("link_id", linkID),
			zap.Int64("from", from),
			zap.Int64("to", to),
		)
	}
	return healed, nil
}

// LastReport 最近一轮的统计
func (r *ScoreReconciler) LastReport() ReconcileReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}
