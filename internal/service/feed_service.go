package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/d60-Lab/linkrank/internal/model"
	"github.com/d60-Lab/linkrank/internal/repository"
	"github.com/d60-Lab/linkrank/pkg/logger"
)

// FeedService 排行榜
type FeedService interface {
	// ListApproved 已通过审核的链接快照，score 降序，同分时新的在前
	ListApproved(ctx context.Context) ([]model.FeedItem, error)
	// GetLink 任意状态的单个链接
	GetLink(ctx context.Context, id string) (*model.Link, error)
}

type feedService struct {
	store *repository.Store
	opts  options
}

func NewFeedService(store *repository.Store, opts ...Option) FeedService {
	return &feedService{store: store, opts: newOptions(opts)}
}

func (s *feedService) ListApproved(ctx context.Context) (items []model.FeedItem, err error) {
	ctx, span := tracer.Start(ctx, "FeedService.ListApproved")
	defer func() { endSpan(span, err) }()

	var (
		version   int64
		cacheable bool
	)
	if s.opts.cache != nil {
		cached, v, ok, loadErr := s.opts.cache.Load(ctx)
		switch {
		case loadErr != nil:
			// 缓存故障直接回源
			logger.Warn("feed cache load failed", zap.Error(loadErr))
		case ok:
			span.SetAttributes(attribute.Bool("feed.cache_hit", true))
			return cached, nil
		default:
			version, cacheable = v, true
		}
	}

	dbCtx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	items, err = s.store.Links.ListApproved(dbCtx)
	if err != nil {
		err = classify(err)
		return nil, err
	}

	if cacheable {
		if storeErr := s.opts.cache.Store(ctx, version, items); storeErr != nil {
			logger.Warn("feed cache store failed", zap.Error(storeErr))
		}
	}
	span.SetAttributes(attribute.Int("feed.size", len(items)))
	return items, nil
}

func (s *feedService) GetLink(ctx context.Context, id string) (link *model.Link, err error) {
	ctx, span := tracer.Start(ctx, "FeedService.GetLink", trace.WithAttributes(attribute.String("link.id", id)))
	defer func() { endSpan(span, err) }()

	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	link, err = s.store.Links.GetByID(ctx, id)
	if err != nil {
		err = classify(err)
		return nil, err
	}
	return link, nil
}
