package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/d60-Lab/linkrank/internal/model"
	"github.com/d60-Lab/linkrank/internal/repository"
	"github.com/d60-Lab/linkrank/pkg/apperr"
	"github.com/d60-Lab/linkrank/pkg/auth"
	"github.com/d60-Lab/linkrank/pkg/logger"
)

// RegisterInput 注册参数
type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=32,alphanum"`
	Email    string `json:"email" validate:"required,email,max=191"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginResult 登录结果
type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

// AuthService 注册与登录
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	// Login 支持用户名或邮箱
	Login(ctx context.Context, login, password string) (*LoginResult, error)
}

type authService struct {
	store  *repository.Store
	tokens *auth.TokenIssuer
	opts   options
}

func NewAuthService(store *repository.Store, tokens *auth.TokenIssuer, opts ...Option) AuthService {
	return &authService{store: store, tokens: tokens, opts: newOptions(opts)}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (user *model.User, err error) {
	ctx, span := tracer.Start(ctx, "AuthService.Register")
	defer func() { endSpan(span, err) }()

	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if vErr := validate.Struct(in); vErr != nil {
		err = apperr.Wrap(apperr.KindValidation, vErr, "username, email or password is invalid")
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		err = apperr.Wrap(apperr.KindInternal, err, "hash password")
		return nil, err
	}

	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	now := s.opts.now()
	user = &model.User{
		ID:           uuid.New().String(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         model.RoleMember,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err = s.store.Users.Create(ctx, user); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			err = apperr.Conflict("username or email already taken")
		}
		err = classify(err)
		return nil, err
	}

	logger.Info("user registered", zap.String("user_id", user.ID), zap.String("username", user.Username))
	user.PasswordHash = ""
	return user, nil
}

func (s *authService) Login(ctx context.Context, login, password string) (res *LoginResult, err error) {
	ctx, span := tracer.Start(ctx, "AuthService.Login")
	defer func() { endSpan(span, err) }()

	login = strings.TrimSpace(login)
	// 邮箱注册时已转小写
	if strings.Contains(login, "@") {
		login = strings.ToLower(login)
	}
	if login == "" || password == "" {
		err = apperr.Validation("login and password are required")
		return nil, err
	}

	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	user, err := s.store.Users.GetCredentials(ctx, login)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			err = apperr.Unauthorized("invalid credentials")
			return nil, err
		}
		err = classify(err)
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		err = apperr.Unauthorized("invalid credentials")
		return nil, err
	}

	token, exp, err := s.tokens.Generate(user.ID, string(user.Role))
	if err != nil {
		err = apperr.Wrap(apperr.KindInternal, err, "issue token")
		return nil, err
	}
	user.PasswordHash = ""
	return &LoginResult{Token: token, ExpiresAt: exp, User: user}, nil
}
