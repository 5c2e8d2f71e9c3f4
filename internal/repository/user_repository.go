package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/linkrank/internal/model"
)

// userColumns 默认读取不包含 password_hash
var userColumns = []string{"id", "username", "email", "role", "created_at", "updated_at"}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	// GetCredentials 按用户名或邮箱查询，包含密码哈希，仅供登录使用
	GetCredentials(ctx context.Context, login string) (*model.User, error)
	Exists(ctx context.Context, id string) (bool, error)
}

type userRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepository{db: db} }

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return translateErr(r.db.WithContext(ctx).Create(user).Error, "user")
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).Select(userColumns).Where("id = ?", id).First(&u).Error
	if err != nil {
		return nil, translateErr(err, "user")
	}
	return &u, nil
}

func (r *userRepository) GetCredentials(ctx context.Context, login string) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).Where("username = ? OR email = ?", login, login).First(&u).Error
	if err != nil {
		return nil, translateErr(err, "user")
	}
	return &u, nil
}

func (r *userRepository) Exists(ctx context.Context, id string) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Count(&cnt).Error; err != nil {
		return false, translateErr(err, "user")
	}
	return cnt > 0, nil
}
