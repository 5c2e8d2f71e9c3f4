package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/linkrank/internal/model"
	"github.com/d60-Lab/linkrank/pkg/apperr"
	"github.com/d60-Lab/linkrank/pkg/auth"
)

func TestAuth_RegisterAndLogin(t *testing.T) {
	store, _ := newStore(t)
	issuer := auth.NewTokenIssuer("secret", time.Hour, "linkrank")
	svc := NewAuthService(store, issuer)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "Alice@Example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleMember, user.Role)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Empty(t, user.PasswordHash)

	res, err := svc.Login(ctx, "alice", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, res.User.ID)
	assert.Empty(t, res.User.PasswordHash)

	claims, err := issuer.Parse(res.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.Subject)
	assert.Equal(t, string(model.RoleMember), claims.Role)

	_, err = svc.Login(ctx, "alice@example.com", "correct-horse")
	assert.NoError(t, err)

	// 按注册时的大小写输入邮箱也能登录
	_, err = svc.Login(ctx, "Alice@Example.com", "correct-horse")
	assert.NoError(t, err)
}

func TestAuth_RegisterRejects(t *testing.T) {
	store, _ := newStore(t)
	svc := NewAuthService(store, auth.NewTokenIssuer("secret", time.Hour, "linkrank"))
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Username: "alice", Email: "other@example.com", Password: "correct-horse"})
	assert.ErrorIs(t, err, apperr.ErrConflict)
	_, err = svc.Register(ctx, RegisterInput{Username: "bob", Email: "alice@example.com", Password: "correct-horse"})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	invalid := []RegisterInput{
		{Username: "ab", Email: "ab@example.com", Password: "correct-horse"},
		{Username: "bob!", Email: "bob@example.com", Password: "correct-horse"},
		{Username: "bob", Email: "not-an-email", Password: "correct-horse"},
		{Username: "bob", Email: "bob@example.com", Password: "short"},
	}
	for _, in := range invalid {
		_, err := svc.Register(ctx, in)
		assert.ErrorIs(t, err, apperr.ErrValidation, "%+v", in)
	}
}

func TestAuth_LoginRejects(t *testing.T) {
	store, _ := newStore(t)
	svc := NewAuthService(store, auth.NewTokenIssuer("secret", time.Hour, "linkrank"))
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "alice", "wrong-horse")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	_, err = svc.Login(ctx, "nobody", "correct-horse")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	_, err = svc.Login(ctx, "", "")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
