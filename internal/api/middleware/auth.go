package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/linkrank/internal/model"
	"github.com/d60-Lab/linkrank/pkg/auth"
	"github.com/d60-Lab/linkrank/pkg/response"
)

const principalKey = "principal"

// Auth 校验 Authorization: Bearer <token>，通过后在上下文中写入调用方
func Auth(issuer *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			response.Unauthorized(c, "missing bearer token")
			return
		}

		claims, err := issuer.Parse(strings.TrimSpace(token))
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			return
		}
		role := model.Role(claims.Role)
		if !role.Valid() {
			response.Unauthorized(c, "invalid or expired token")
			return
		}

		c.Set(principalKey, model.Principal{UserID: claims.Subject, Role: role})
		c.Next()
	}
}

// RequireCapability 必须在 Auth 之后使用
func RequireCapability(capability model.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok {
			response.Unauthorized(c, "authentication required")
			return
		}
		if !p.Role.Can(capability) {
			response.Forbidden(c, "your role cannot "+string(capability))
			return
		}
		c.Next()
	}
}

// PrincipalFrom 取出 Auth 写入的调用方
func PrincipalFrom(c *gin.Context) (model.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return model.Principal{}, false
	}
	p, ok := v.(model.Principal)
	return p, ok
}
