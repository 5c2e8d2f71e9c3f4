package model

import "time"

// LinkStatus 审核状态
type LinkStatus string

const (
	LinkStatusPending  LinkStatus = "pending"
	LinkStatusApproved LinkStatus = "approved"
	LinkStatusRejected LinkStatus = "rejected"
)

func (s LinkStatus) Valid() bool {
	switch s {
	case LinkStatusPending, LinkStatusApproved, LinkStatusRejected:
		return true
	}
	return false
}

// Link 提交的链接
type Link struct {
	ID      string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	URL     string     `json:"url" gorm:"type:varchar(2048);uniqueIndex:ux_link_url;not null"`
	OwnerID string     `json:"owner" gorm:"type:varchar(36);index:idx_link_owner;not null"`
	Status  LinkStatus `json:"status" gorm:"type:varchar(16);index:idx_link_feed,priority:1;not null;default:pending"`
	// Score == count(user_upvotes where link_id = id)
	Score       int64      `json:"score" gorm:"index:idx_link_feed,priority:2;not null;default:0"`
	CreatedAt   time.Time  `json:"created_at" gorm:"index:idx_link_feed,priority:3;not null"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ModeratedAt *time.Time `json:"moderated_at,omitempty"`
	ModeratedBy string     `json:"moderated_by,omitempty" gorm:"type:varchar(36)"`
}

func (Link) TableName() string { return "links" }

// FeedItem 榜单条目，owner_name 读取时关联 users 得到
type FeedItem struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	OwnerID   string    `json:"owner"`
	OwnerName string    `json:"owner_name"`
	Score     int64     `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}
