package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newAuthRouter(adminKey string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/guarded", AdminKeyAuth(adminKey), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestAdminKeyAuth(t *testing.T) {
	tests := []struct {
		name     string
		adminKey string
		provided string
		want     int
	}{
		{"valid key", "secret", "secret", http.StatusNoContent},
		{"missing key", "secret", "", http.StatusUnauthorized},
		{"wrong key", "secret", "guess", http.StatusUnauthorized},
		{"not configured", "", "secret", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/guarded", nil)
			if tt.provided != "" {
				req.Header.Set(AdminKeyHeader, tt.provided)
			}
			w := httptest.NewRecorder()
			newAuthRouter(tt.adminKey).ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}
