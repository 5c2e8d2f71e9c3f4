package response

import (
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/linkrank/pkg/apperr"
	"github.com/d60-Lab/linkrank/pkg/logger"
)

const CodeOK = "ok"

// Response 统一响应结构
type Response struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

var kindStatus = map[apperr.Kind]int{
	apperr.KindValidation:    http.StatusBadRequest,
	apperr.KindConflict:      http.StatusConflict,
	apperr.KindNotFound:      http.StatusNotFound,
	apperr.KindForbidden:     http.StatusForbidden,
	apperr.KindDuplicateVote: http.StatusConflict,
	apperr.KindInvalidState:  http.StatusConflict,
	apperr.KindTransient:     http.StatusServiceUnavailable,
	apperr.KindUnauthorized:  http.StatusUnauthorized,
	apperr.KindInternal:      http.StatusInternalServerError,
}

// StatusOf 错误分类对应的 HTTP 状态码
func StatusOf(kind apperr.Kind) int {
	if s, ok := kindStatus[kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: CodeOK, Message: "success", Data: data})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Code: CodeOK, Message: "created", Data: data})
}

func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Code: apperr.KindValidation.Code(), Message: msg})
}

func Unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, Response{Code: apperr.KindUnauthorized.Code(), Message: msg})
}

func Forbidden(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusForbidden, Response{Code: apperr.KindForbidden.Code(), Message: msg})
}

// InternalError 记录日志并上报 Sentry，不向客户端暴露细节
func InternalError(c *gin.Context, err error) {
	logger.Error("internal error",
		zap.Error(err),
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
	)
	if hub := sentry.GetHubFromContext(c.Request.Context()); hub != nil {
		hub.CaptureException(err)
	} else {
		sentry.CaptureException(err)
	}
	c.JSON(http.StatusInternalServerError, Response{
		Code:    apperr.KindInternal.Code(),
		Message: apperr.MessageOf(err),
	})
}

// Error 按错误分类写出响应
func Error(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		InternalError(c, err)
		return
	}
	if kind == apperr.KindTransient {
		logger.Warn("transient failure", zap.Error(err), zap.String("path", c.FullPath()))
	}
	c.JSON(StatusOf(kind), Response{Code: kind.Code(), Message: apperr.MessageOf(err)})
}
