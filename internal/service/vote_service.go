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

// VoteResult 投票结果
type VoteResult struct {
	ID       string `json:"id"`
	NewScore int64  `json:"new_score"`
}

// VoteService 投票服务
type VoteService interface {
	// CastVote 为已通过审核的链接投一票，每个用户对每个链接至多一票
	CastVote(ctx context.Context, linkID, userID string) (*VoteResult, error)
	// ListUpvoted 用户投过票的链接 id，最近的在前
	ListUpvoted(ctx context.Context, userID string) ([]string, error)
}

type voteService struct {
	store *repository.Store
	opts  options
}

func NewVoteService(store *repository.Store, opts ...Option) VoteService {
	return &voteService{store: store, opts: newOptions(opts)}
}

func (s *voteService) CastVote(ctx context.Context, linkID, userID string) (res *VoteResult, err error) {
	ctx, span := tracer.Start(ctx, "VoteService.CastVote", trace.WithAttributes(
		attribute.String("link.id", linkID),
		attribute.String("user.id", userID),
	))
	defer func() { endSpan(span, err) }()

	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	var score int64
	// 前置检查、写入投票记录、score+1 在同一事务内完成，任一步失败整体回滚
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		link, err := tx.Links.GetByID(ctx, linkID)
		if err != nil {
			return err
		}
		if link.Status != model.LinkStatusApproved {
			return apperr.Forbidden("only approved links can be voted on")
		}

		ok, err := tx.Users.Exists(ctx, userID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("user not found")
		}

		inserted, err := tx.Upvotes.AddIfAbsent(ctx, userID, linkID)
		if err != nil {
			return err
		}
		if !inserted {
			return apperr.New(apperr.KindDuplicateVote, "you have already voted on this link")
		}

		score, err = tx.Links.IncrementScore(ctx, linkID)
		return err
	})
	if err != nil {
		err = classify(err)
		return nil, err
	}

	s.opts.invalidateFeed(ctx)
	logger.Debug("vote recorded",
		zap.String("link_id", linkID),
		zap.String("user_id", userID),
		zap.Int64("score", score),
	)
	return &VoteResult{ID: linkID, NewScore: score}, nil
}

func (s *voteService) ListUpvoted(ctx context.Context, userID string) (ids []string, err error) {
	ctx, span := tracer.Start(ctx, "VoteService.ListUpvoted")
	defer func() { endSpan(span, err) }()

	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	ids, err = s.store.Upvotes.ListLinkIDsByUser(ctx, userID)
	if err != nil {
		err = classify(err)
		return nil, err
	}
	return ids, nil
}
