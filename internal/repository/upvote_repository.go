package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/linkrank/internal/model"
)

type UpvoteRepository interface {
	// AddIfAbsent 原子地插入 (user, link)，返回是否为新插入
	AddIfAbsent(ctx context.Context, userID, linkID string) (bool, error)
	Exists(ctx context.Context, userID, linkID string) (bool, error)
	ListLinkIDsByUser(ctx context.Context, userID string) ([]string, error)
	CountByLink(ctx context.Context, linkID string) (int64, error)
	CountByLinks(ctx context.Context, linkIDs []string) (map[string]int64, error)
}

type upvoteRepository struct {
	db *gorm.DB
}

func NewUpvoteRepository(db *gorm.DB) UpvoteRepository { return &upvoteRepository{db: db} }

func (r *upvoteRepository) AddIfAbsent(ctx context.Context, userID, linkID string) (bool, error) {
	up := &model.Upvote{ID: uuid.New().String(), UserID: userID, LinkID: linkID}
	// 唯一键冲突时不插入也不报错，靠影响行数区分
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(up)
	if res.Error != nil {
		return false, translateErr(res.Error, "upvote")
	}
	return res.RowsAffected == 1, nil
}

func (r *upvoteRepository) Exists(ctx context.Context, userID, linkID string) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Upvote{}).
		Where("user_id = ? AND link_id = ?", userID, linkID).
		Count(&cnt).Error; err != nil {
		return false, translateErr(err, "upvote")
	}
	return cnt > 0, nil
}

func (r *upvoteRepository) ListLinkIDsByUser(ctx context.Context, userID string) ([]string, error) {
	ids := make([]string, 0)
	err := r.db.WithContext(ctx).
		Model(&model.Upvote{}).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Pluck("link_id", &ids).Error
	return ids, translateErr(err, "upvote")
}

func (r *upvoteRepository) CountByLink(ctx context.Context, linkID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Upvote{}).Where("link_id = ?", linkID).Count(&cnt).Error
	return cnt, translateErr(err, "upvote")
}

func (r *upvoteRepository) CountByLinks(ctx context.Context, linkIDs []string) (map[string]int64, error) {
	out := make(map[string]int64, len(linkIDs))
	if len(linkIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		LinkID string
		Cnt    int64
	}
	if err := r.db.WithContext(ctx).
		Model(&model.Upvote{}).
		Select("link_id, COUNT(*) AS cnt").
		Where("link_id IN ?", linkIDs).
		Group("link_id").
		Scan(&rows).Error; err != nil {
		return nil, translateErr(err, "upvote")
	}
	for _, id := range linkIDs {
		out[id] = 0
	}
	for _, row := range rows {
		out[row.LinkID] = row.Cnt
	}
	return out, nil
}
