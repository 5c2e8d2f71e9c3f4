package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/linkrank/pkg/apperr"
	"github.com/d60-Lab/linkrank/pkg/logger"
	"github.com/d60-Lab/linkrank/pkg/response"
)

// Recovery 每个请求绑定独立的 Sentry hub，panic 时上报并返回 500
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		hub := sentry.CurrentHub().Clone()
		hub.Scope().SetRequest(c.Request)
		ctx := sentry.SetHubOnContext(c.Request.Context(), hub)
		c.Request = c.Request.WithContext(ctx)

		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			// 客户端断开不是服务端故障
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			hub.RecoverWithContext(ctx, rec)
			hub.Flush(2 * time.Second)
			logger.Error("panic recovered",
				zap.Any("panic", rec),
				zap.String("path", c.Request.URL.Path),
				zap.ByteString("stack", debug.Stack()),
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
				Code:    apperr.KindInternal.Code(),
				Message: "internal error",
			})
		}()

		c.Next()
	}
}
