package router

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "github.com/d60-Lab/linkrank/docs"
	"github.com/d60-Lab/linkrank/internal/api/handler"
	"github.com/d60-Lab/linkrank/internal/api/middleware"
	"github.com/d60-Lab/linkrank/internal/model"
	"github.com/d60-Lab/linkrank/pkg/auth"
)

// Setup 注册全部路由
func Setup(h *handler.Handler, issuer *auth.TokenIssuer, serviceName string) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.Recovery(),
		otelgin.Middleware(serviceName),
		middleware.Logger(),
		gzip.Gzip(gzip.DefaultCompression),
	)

	r.GET("/healthz", h.Health)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		authGroup := v1.Group("/auth")
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)

		v1.GET("/links", h.ListLinks)
		v1.GET("/links/:id", h.GetLink)
	}

	authed := v1.Group("", middleware.Auth(issuer))
	{
		authed.POST("/links", middleware.RequireCapability(model.CapSubmit), h.SubmitLink)
		authed.POST("/links/:id/vote", middleware.RequireCapability(model.CapVote), h.Vote)
		authed.GET("/users/me/upvotes", h.MyUpvotes)

		moderate := middleware.RequireCapability(model.CapModerate)
		authed.POST("/links/:id/approve", moderate, h.Approve)
		authed.POST("/links/:id/reject", moderate, h.Reject)
		authed.GET("/moderation/pending", moderate, h.ListPending)
	}

	return r
}
