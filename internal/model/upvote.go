package model

import (
	"time"
)

// Upvote 用户的点赞集合（User.upvotedLinks 的落地表）
type Upvote struct {
	ID     string `gorm:"primaryKey;type:varchar(36)"`
	UserID string `gorm:"type:varchar(36);index:idx_upvote_user;uniqueIndex:ux_upvote_pair;not null"`
	LinkID string `gorm:"type:varchar(36);index:idx_upvote_link;uniqueIndex:ux_upvote_pair;not null"`
	// 复合唯一键，一个用户对一个链接至多一票
	// ux_upvote_pair = (user_id, link_id)
	CreatedAt time.Time
}

func (Upvote) TableName() string { return "user_upvotes" }
