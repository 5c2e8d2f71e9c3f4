package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/linkrank/internal/model"
)

// LinkRepository 链接仓储接口
type LinkRepository interface {
	// Create 创建链接，URL 冲突返回 conflict
	Create(ctx context.Context, link *model.Link) error

	// GetByID 根据ID查询
	GetByID(ctx context.Context, id string) (*model.Link, error)

	// GetForUpdate 事务内读取并锁定该行（SQLite 下退化为普通读取）
	GetForUpdate(ctx context.Context, id string) (*model.Link, error)

	// GetByURL 精确匹配 URL（区分大小写，不做规范化）
	GetByURL(ctx context.Context, url string) (*model.Link, error)

	// TransitionStatus 仅当当前状态为 from 时更新为 to，返回是否更新成功
	TransitionStatus(ctx context.Context, id string, from, to model.LinkStatus, moderatorID string, at time.Time) (bool, error)

	// IncrementScore 对已通过审核的链接 score+1，返回新分数
	IncrementScore(ctx context.Context, id string) (int64, error)

	// SetScore 校正分数
	SetScore(ctx context.Context, id string, score int64) error

	// ListApproved 已通过的链接，score 降序、创建时间降序
	ListApproved(ctx context.Context) ([]model.FeedItem, error)

	// ListByStatus 按状态查询，最早提交的在前
	ListByStatus(ctx context.Context, status model.LinkStatus, limit int) ([]*model.Link, error)

	// ListAfter 按 id 游标分页扫描全部链接
	ListAfter(ctx context.Context, afterID string, limit int) ([]*model.Link, error)
}

type linkRepository struct {
	db *gorm.DB
}

func NewLinkRepository(db *gorm.DB) LinkRepository {
	return &linkRepository{db: db}
}

func (r *linkRepository) Create(ctx context.Context, link *model.Link) error {
	return translateErr(r.db.WithContext(ctx).Create(link).Error, "link")
}

func (r *linkRepository) GetByID(ctx context.Context, id string) (*model.Link, error) {
	var link model.Link
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&link).Error
	if err != nil {
		return nil, translateErr(err, "link")
	}
	return &link, nil
}

func (r *linkRepository) GetForUpdate(ctx context.Context, id string) (*model.Link, error) {
	q := r.db.WithContext(ctx)
	if q.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var link model.Link
	if err := q.Where("id = ?", id).First(&link).Error; err != nil {
		return nil, translateErr(err, "link")
	}
	return &link, nil
}

func (r *linkRepository) GetByURL(ctx context.Context, url string) (*model.Link, error) {
	var link model.Link
	err := r.db.WithContext(ctx).Where("url = ?", url).First(&link).Error
	if err != nil {
		return nil, translateErr(err, "link")
	}
	return &link, nil
}

func (r *linkRepository) TransitionStatus(ctx context.Context, id string, from, to model.LinkStatus, moderatorID string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Link{}).
		Where("id = ? AND status = ?", id, from).
		UpdateColumns(map[string]interface{}{
			"status":       to,
			"moderated_at": at,
			"moderated_by": moderatorID,
			"updated_at":   at,
		})
	if res.Error != nil {
		return false, translateErr(res.Error, "link")
	}
	return res.RowsAffected == 1, nil
}

func (r *linkRepository) IncrementScore(ctx context.Context, id string) (int64, error) {
	db := r.db.WithContext(ctx)
	res := db.Model(&model.Link{}).
		Where("id = ? AND status = ?", id, model.LinkStatusApproved).
		UpdateColumn("score", gorm.Expr("score + ?", 1))
	if res.Error != nil {
		return 0, translateErr(res.Error, "link")
	}
	if res.RowsAffected == 0 {
		return 0, translateErr(gorm.ErrRecordNotFound, "approved link")
	}

	var score int64
	if err := db.Model(&model.Link{}).Where("id = ?", id).Select("score").Scan(&score).Error; err != nil {
		return 0, translateErr(err, "link")
	}
	return score, nil
}

func (r *linkRepository) SetScore(ctx context.Context, id string, score int64) error {
	res := r.db.WithContext(ctx).Model(&model.Link{}).Where("id = ?", id).UpdateColumn("score", score)
	if res.Error != nil {
		return translateErr(res.Error, "link")
	}
	if res.RowsAffected == 0 {
		return translateErr(gorm.ErrRecordNotFound, "link")
	}
	return nil
}

func (r *linkRepository) ListApproved(ctx context.Context) ([]model.FeedItem, error) {
	items := make([]model.FeedItem, 0)
	err := r.db.WithContext(ctx).
		Table("links").
		Select("links.id, links.url, links.owner_id, COALESCE(users.username, '') AS owner_name, links.score, links.created_at").
		Joins("LEFT JOIN users ON users.id = links.owner_id").
		Where("links.status = ?", model.LinkStatusApproved).
		Order("links.score DESC, links.created_at DESC, links.id DESC").
		Scan(&items).Error
	if err != nil {
		return nil, translateErr(err, "link")
	}
	return items, nil
}

func (r *linkRepository) ListByStatus(ctx context.Context, status model.LinkStatus, limit int) ([]*model.Link, error) {
	var links []*model.Link
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&links).Error
	if err != nil {
		return nil, translateErr(err, "link")
	}
	return links, nil
}

func (r *linkRepository) ListAfter(ctx context.Context, afterID string, limit int) ([]*model.Link, error) {
	var links []*model.Link
	err := r.db.WithContext(ctx).
		Where("id > ?", afterID).
		Order("id ASC").
		Limit(limit).
		Find(&links).Error
	if err != nil {
		return nil, translateErr(err, "link")
	}
	return links, nil
}
