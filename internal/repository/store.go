package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/d60-Lab/linkrank/pkg/apperr"
)

// Store 聚合各仓储；同一个 Store 内的仓储共享同一个连接或事务
type Store struct {
	db      *gorm.DB
	Users   UserRepository
	Links   LinkRepository
	Upvotes UpvoteRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:      db,
		Users:   NewUserRepository(db),
		Links:   NewLinkRepository(db),
		Upvotes: NewUpvoteRepository(db),
	}
}

// Transaction 在一个数据库事务内执行 fn，fn 返回错误则回滚。
// fn 返回的错误原样透出；提交失败按 transient 处理。
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	var fnErr error
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fnErr = fn(NewStore(tx))
		return fnErr
	})
	if err == nil {
		return nil
	}
	if fnErr != nil {
		return fnErr
	}
	return apperr.Transient(err)
}

// DB 返回底层连接
func (s *Store) DB() *gorm.DB { return s.db }

// translateErr 把驱动/gorm 错误转换为 apperr 分类
func translateErr(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound(what + " not found")
	case isUniqueViolation(err):
		return apperr.Wrap(apperr.KindConflict, err, what+" already exists")
	default:
		return apperr.Transient(err)
	}
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
