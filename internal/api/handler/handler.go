package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/linkrank/internal/api/middleware"
	"github.com/d60-Lab/linkrank/internal/model"
	"github.com/d60-Lab/linkrank/internal/service"
	"github.com/d60-Lab/linkrank/pkg/apperr"
	"github.com/d60-Lab/linkrank/pkg/response"
)

// Handler HTTP 处理器集合
type Handler struct {
	submissions service.SubmissionService
	moderation  service.ModerationService
	votes       service.VoteService
	feed        service.FeedService
	auth        service.AuthService
	ping        func(ctx context.Context) error
}

// Services 处理器依赖的服务
type Services struct {
	Submissions service.SubmissionService
	Moderation  service.ModerationService
	Votes       service.VoteService
	Feed        service.FeedService
	Auth        service.AuthService
	// Ping 健康检查，nil 表示只检查进程存活
	Ping func(ctx context.Context) error
}

func New(s Services) *Handler {
	return &Handler{
		submissions: s.Submissions,
		moderation:  s.Moderation,
		votes:       s.Votes,
		feed:        s.Feed,
		auth:        s.Auth,
		ping:        s.Ping,
	}
}

// principal 路由已挂 Auth 中间件时总能取到
func principal(c *gin.Context) (model.Principal, bool) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
	}
	return p, ok
}

// Health 健康检查
// @Summary 健康检查
// @Tags 系统
// @Produce json
// @Success 200 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /healthz [get]
func (h *Handler) Health(c *gin.Context) {
	if h.ping != nil {
		if err := h.ping(c.Request.Context()); err != nil {
			response.Error(c, apperr.Transient(err))
			return
		}
	}
	response.Success(c, gin.H{"status": "ok"})
}
