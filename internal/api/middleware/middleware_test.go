package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/linkrank/internal/model"
	"github.com/d60-Lab/linkrank/pkg/auth"
	"github.com/d60-Lab/linkrank/pkg/response"
)

func init() { gin.SetMode(gin.TestMode) }

func generateTestToken(t *testing.T, issuer *auth.TokenIssuer, role model.Role) string {
	t.Helper()
	tok, _, err := issuer.Generate("user-1", string(role))
	require.NoError(t, err)
	return tok
}

func TestAuthMiddleware(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour, "linkrank")
	other := auth.NewTokenIssuer("other-secret", time.Hour, "linkrank")

	r := gin.New()
	r.GET("/me", Auth(issuer), func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"user_id": p.UserID, "role": p.Role})
	})
	r.GET("/moderate", Auth(issuer), RequireCapability(model.CapModerate), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/no-auth", RequireCapability(model.CapVote), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	tests := []struct {
		name           string
		path           string
		header         string
		expectedStatus int
		expectedCode   string
	}{
		{"no header", "/me", "", http.StatusUnauthorized, "unauthorized"},
		{"wrong scheme", "/me", "Basic " + generateTestToken(t, issuer, model.RoleMember), http.StatusUnauthorized, "unauthorized"},
		{"garbage token", "/me", "Bearer invalid", http.StatusUnauthorized, "unauthorized"},
		{"foreign signature", "/me", "Bearer " + generateTestToken(t, other, model.RoleMember), http.StatusUnauthorized, "unauthorized"},
		{"unknown role", "/me", "Bearer " + generateTestToken(t, issuer, model.Role("root")), http.StatusUnauthorized, "unauthorized"},
		{"valid member", "/me", "Bearer " + generateTestToken(t, issuer, model.RoleMember), http.StatusOK, ""},
		{"lowercase scheme", "/me", "bearer " + generateTestToken(t, issuer, model.RoleMember), http.StatusOK, ""},
		{"member cannot moderate", "/moderate", "Bearer " + generateTestToken(t, issuer, model.RoleMember), http.StatusForbidden, "forbidden"},
		{"curator can moderate", "/moderate", "Bearer " + generateTestToken(t, issuer, model.RoleCurator), http.StatusOK, ""},
		{"capability without auth", "/no-auth", "", http.StatusUnauthorized, "unauthorized"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedCode != "" {
				var body response.Response
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
				assert.Equal(t, tt.expectedCode, body.Code)
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(), Logger())
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	var body response.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "internal", body.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)
}
