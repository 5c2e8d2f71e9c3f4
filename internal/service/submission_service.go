package service

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/d60-Lab/linkrank/internal/model"
	"github.com/d60-Lab/linkrank/internal/repository"
	"github.com/d60-Lab/linkrank/pkg/apperr"
	"github.com/d60-Lab/linkrank/pkg/logger"
)

const maxURLLength = 2048

var validate = validator.New()

// SubmissionService 链接提交
type SubmissionService interface {
	// SubmitLink 创建待审核链接，URL 按原样精确去重
	SubmitLink(ctx context.Context, ownerID, rawURL string) (*model.Link, error)
}

type submissionService struct {
	store *repository.Store
	opts  options
}

func NewSubmissionService(store *repository.Store, opts ...Option) SubmissionService {
	return &submissionService{store: store, opts: newOptions(opts)}
}

func (s *submissionService) SubmitLink(ctx context.Context, ownerID, rawURL string) (link *model.Link, err error) {
	ctx, span := tracer.Start(ctx, "SubmissionService.SubmitLink", trace.WithAttributes(
		attribute.String("owner.id", ownerID),
	))
	defer func() { endSpan(span, err) }()

	if err = checkURL(rawURL); err != nil {
		return nil, err
	}

	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	ok, err := s.store.Users.Exists(ctx, ownerID)
	if err != nil {
		err = classify(err)
		return nil, err
	}
	if !ok {
		err = apperr.NotFound("owner not found")
		return nil, err
	}

	if _, err = s.store.Links.GetByURL(ctx, rawURL); err == nil {
		err = apperr.Conflict("link already submitted")
		return nil, err
	} else if !errors.Is(err, apperr.ErrNotFound) {
		err = classify(err)
		return nil, err
	}

	link = &model.Link{
		ID:        uuid.New().String(),
		URL:       rawURL,
		OwnerID:   ownerID,
		Status:    model.LinkStatusPending,
		Score:     0,
		CreatedAt: s.opts.now(),
	}
	link.UpdatedAt = link.CreatedAt
	// 预检查与插入之间的竞争由唯一索引兜底
	if err = s.store.Links.Create(ctx, link); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			err = apperr.Conflict("link already submitted")
		}
		err = classify(err)
		return nil, err
	}

	logger.Info("link submitted", zap.String("link_id", link.ID), zap.String("owner_id", ownerID))
	return link, nil
}

// checkURL 要求可解析且带 scheme 和 host，不做规范化
func checkURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return apperr.Validation("url is required")
	}
	if len(raw) > maxURLLength {
		return apperr.Validation("url is too long")
	}
	if raw != strings.TrimSpace(raw) {
		return apperr.Validation("url must not contain surrounding whitespace")
	}
	if err := validate.Var(raw, "url"); err != nil {
		return apperr.Validation("url is malformed")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return apperr.Validation("url is malformed")
	}
	return nil
}
