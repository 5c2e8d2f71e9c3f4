package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/linkrank/internal/model"
	"github.com/d60-Lab/linkrank/internal/testutil"
	"github.com/d60-Lab/linkrank/pkg/apperr"
)

func TestUserRepository_ReadOmitsPasswordHash(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := &model.User{ID: "u1", Username: "alice", Email: "alice@example.com", PasswordHash: "hash", Role: model.RoleCurator}
	require.NoError(t, repo.Create(ctx, u))

	got, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, model.RoleCurator, got.Role)
	assert.Empty(t, got.PasswordHash)

	creds, err := repo.GetCredentials(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "hash", creds.PasswordHash)

	ok, err := repo.Exists(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUserRepository_UniqueUsername(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.User{ID: "u1", Username: "alice", Email: "a@example.com", PasswordHash: "h", Role: model.RoleMember}))
	err := repo.Create(ctx, &model.User{ID: "u2", Username: "alice", Email: "b@example.com", PasswordHash: "h", Role: model.RoleMember})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestStore_TransactionRollsBack(t *testing.T) {
	db := testutil.NewDB(t)
	store := NewStore(db)
	ctx := context.Background()
	owner := testutil.CreateUser(t, db, "alice", model.RoleMember)
	link := testutil.CreateLink(t, db, owner.ID, "https://x.com/a", testutil.WithStatus(model.LinkStatusApproved))

	boom := errors.New("boom")
	err := store.Transaction(ctx, func(tx *Store) error {
		if _, err := tx.Upvotes.AddIfAbsent(ctx, owner.ID, link.ID); err != nil {
			return err
		}
		if _, err := tx.Links.IncrementScore(ctx, link.ID); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int64(0), testutil.Score(t, db, link.ID))
	assert.Equal(t, int64(0), testutil.Voters(t, db, link.ID))
}
