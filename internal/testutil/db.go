// Package testutil builds migrated in-memory databases and fixtures for
// package tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/linkrank/internal/model"
	"github.com/d60-Lab/linkrank/pkg/database"
)

// NewDB opens a private in-memory SQLite database with the schema migrated.
// The pool is pinned to one connection so the in-memory database survives
// and concurrent callers queue the way writers do on a single-writer engine.
func NewDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), database.GormConfig("silent"))
	if err != nil {
		tb.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(model.Models()...); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	tb.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func CreateUser(tb testing.TB, db *gorm.DB, username string, role model.Role) *model.User {
	tb.Helper()
	u := &model.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        fmt.Sprintf("%s@example.com", username),
		PasswordHash: "x",
		Role:         role,
	}
	if err := db.Create(u).Error; err != nil {
		tb.Fatalf("seed user %s: %v", username, err)
	}
	return u
}

// LinkOpt tweaks a fixture link before insert.
type LinkOpt func(*model.Link)

func WithStatus(s model.LinkStatus) LinkOpt { return func(l *model.Link) { l.Status = s } }
func WithScore(n int64) LinkOpt             { return func(l *model.Link) { l.Score = n } }
func WithCreatedAt(t time.Time) LinkOpt     { return func(l *model.Link) { l.CreatedAt = t } }

func CreateLink(tb testing.TB, db *gorm.DB, ownerID, url string, opts ...LinkOpt) *model.Link {
	tb.Helper()
	l := &model.Link{
		ID:        uuid.New().String(),
		URL:       url,
		OwnerID:   ownerID,
		Status:    model.LinkStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if err := db.Create(l).Error; err != nil {
		tb.Fatalf("seed link %s: %v", url, err)
	}
	return l
}

// Score reads a link's stored score.
func Score(tb testing.TB, db *gorm.DB, linkID string) int64 {
	tb.Helper()
	var score int64
	if err := db.Model(&model.Link{}).Where("id = ?", linkID).Select("score").Scan(&score).Error; err != nil {
		tb.Fatalf("read score: %v", err)
	}
	return score
}

// Voters counts user_upvotes rows for a link.
func Voters(tb testing.TB, db *gorm.DB, linkID string) int64 {
	tb.Helper()
	var n int64
	if err := db.Model(&model.Upvote{}).Where("link_id = ?", linkID).Count(&n).Error; err != nil {
		tb.Fatalf("count voters: %v", err)
	}
	return n
}
