package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/EternisAI/momo-provisioner/internal/api/http/dto"
	"github.com/gin-gonic/gin"
)

const AdminKeyHeader = "X-API-Key"

// AdminKeyAuth guards the routes that hand out provider secrets. With no key
// configured every request is refused.
func AdminKeyAuth(adminKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if adminKey == "" {
			slog.Warn("Admin API key not configured, rejecting request",
				"path", c.Request.URL.Path,
				"client_ip", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, dto.ErrorResponse{
				Error: "Provisioning API is not configured",
			})
			return
		}

		provided := c.GetHeader(AdminKeyHeader)
		switch {
		case provided == "":
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Missing API key"})
		case subtle.ConstantTimeCompare([]byte(provided), []byte(adminKey)) != 1:
			slog.Warn("Invalid API key attempt",
				"path", c.Request.URL.Path,
				"client_ip", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Invalid API key"})
		default:
			c.Next()
		}
	}
}
