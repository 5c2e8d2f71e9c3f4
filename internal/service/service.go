// Package service implements link submission, moderation, voting, the
// ranked feed and the background score reconciler on top of the
// repository layer.
package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/d60-Lab/linkrank/internal/model"
	"github.com/d60-Lab/linkrank/pkg/apperr"
	"github.com/d60-Lab/linkrank/pkg/logger"
)

var tracer = otel.Tracer("github.com/d60-Lab/linkrank/internal/service")

// FeedCache 榜单快照缓存，实现见 internal/feedcache
type FeedCache interface {
	Load(ctx context.Context) ([]model.FeedItem, int64, bool, error)
	Store(ctx context.Context, version int64, items []model.FeedItem) error
	Invalidate(ctx context.Context) error
}

// Option 服务可选项
type Option func(*options)

type options struct {
	opTimeout time.Duration
	now       func() time.Time
	cache     FeedCache
}

// WithOpTimeout 单次操作的存储超时，<=0 表示不限制
func WithOpTimeout(d time.Duration) Option { return func(o *options) { o.opTimeout = d } }

// WithClock 替换时钟（测试用）
func WithClock(now func() time.Time) Option { return func(o *options) { o.now = now } }

// WithFeedCache 启用榜单缓存，nil 表示不缓存
func WithFeedCache(c FeedCache) Option { return func(o *options) { o.cache = c } }

func newOptions(opts []Option) options {
	o := options{
		opTimeout: 3 * time.Second,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.opTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.opTimeout)
}

// invalidateFeed 提交成功后使榜单缓存失效；失败只记录日志，快照靠 TTL 兜底
func (o options) invalidateFeed(ctx context.Context) {
	if o.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
	defer cancel()
	if err := o.cache.Invalidate(ctx); err != nil {
		logger.Warn("feed cache invalidate failed", zap.Error(err))
	}
}

// classify 未分类的错误统一视为存储故障
func classify(err error) error {
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	return apperr.Transient(err)
}

// endSpan 记录错误并结束 span
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, apperr.KindOf(err).Code())
	}
	span.End()
}
