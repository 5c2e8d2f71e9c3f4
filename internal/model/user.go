package model

import "time"

// User 用户；点赞集合见 Upvote
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Username     string    `json:"username" gorm:"type:varchar(64);uniqueIndex;not null"`
	Email        string    `json:"email" gorm:"type:varchar(191);uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"type:varchar(100);not null"`
	Role         Role      `json:"role" gorm:"type:varchar(16);not null;default:member"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// Models 需要迁移的全部表
func Models() []interface{} {
	return []interface{}{&User{}, &Link{}, &Upvote{}}
}
