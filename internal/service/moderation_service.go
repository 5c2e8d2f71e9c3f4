package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/d60-Lab/linkrank/internal/model"
	"github.com/d60-Lab/linkrank/internal/repository"
	"github.com/d60-Lab/linkrank/pkg/apperr"
	"github.com/d60-Lab/linkrank/pkg/logger"
)

const (
	defaultPendingLimit = 50
	maxPendingLimit     = 500
)

// ModerationResult 审核结果
type ModerationResult struct {
	ID     string           `json:"id"`
	Status model.LinkStatus `json:"status"`
}

// ModerationService 审核闸门：只有 pending 链接可以被审核，且只能审核一次
type ModerationService interface {
	Approve(ctx context.Context, actor model.Principal, linkID string) (*ModerationResult, error)
	Reject(ctx context.Context, actor model.Principal, linkID string) (*ModerationResult, error)
	// ListPending 待审核队列，最早提交的在前
	ListPending(ctx context.Context, actor model.Principal, limit int) ([]*model.Link, error)
}

type moderationService struct {
	store *repository.Store
	opts  options
}

func NewModerationService(store *repository.Store, opts ...Option) ModerationService {
	return &moderationService{store: store, opts: newOptions(opts)}
}

func (s *moderationService) Approve(ctx context.Context, actor model.Principal, linkID string) (*ModerationResult, error) {
	return s.transition(ctx, actor, linkID, model.LinkStatusApproved)
}

func (s *moderationService) Reject(ctx context.Context, actor model.Principal, linkID string) (*ModerationResult, error) {
	return s.transition(ctx, actor, linkID, model.LinkStatusRejected)
}

func (s *moderationService) transition(ctx context.Context, actor model.Principal, linkID string, to model.LinkStatus) (res *ModerationResult, err error) {
	ctx, span := tracer.Start(ctx, "ModerationService.Transition", trace.WithAttributes(
		attribute.String("link.id", linkID),
		attribute.String("link.status", string(to)),
		attribute.String("actor.role", string(actor.Role)),
	))
	defer func() { endSpan(span, err) }()

	if !actor.Role.Can(model.CapModerate) {
		err = apperr.Forbidden("moderation requires the curator or admin role")
		return nil, err
	}

	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	ok, err := s.store.Links.TransitionStatus(ctx, linkID, model.LinkStatusPending, to, actor.UserID, s.opts.now())
	if err != nil {
		err = classify(err)
		return nil, err
	}
	if !ok {
		// 区分不存在与状态不符
		link, getErr := s.store.Links.GetByID(ctx, linkID)
		if getErr != nil {
			err = classify(getErr)
			return nil, err
		}
		err = apperr.Newf(apperr.KindInvalidState, "link is already %s", link.Status)
		return nil, err
	}

	if to == model.LinkStatusApproved {
		s.opts.invalidateFeed(ctx)
	}
	logger.Info("link moderated",
		zap.String("link_id", linkID),
		zap.String("status", string(to)),
		zap.String("moderator_id", actor.UserID),
	)
	return &ModerationResult{ID: linkID, Status: to}, nil
}

func (s *moderationService) ListPending(ctx context.Context, actor model.Principal, limit int) (links []*model.Link, err error) {
	ctx, span := tracer.Start(ctx, "ModerationService.ListPending")
	defer func() { endSpan(span, err) }()

	if !actor.Role.Can(model.CapModerate) {
		err = apperr.Forbidden("moderation requires the curator or admin role")
		return nil, err
	}
	if limit <= 0 {
		limit = defaultPendingLimit
	}
	if limit > maxPendingLimit {
		limit = maxPendingLimit
	}

	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	links, err = s.store.Links.ListByStatus(ctx, model.LinkStatusPending, limit)
	if err != nil {
		err = classify(err)
		return nil, err
	}
	return links, nil
}
