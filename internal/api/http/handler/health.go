package handler

import (
	"net/http"

	"github.com/EternisAI/momo-provisioner/internal/api/http/dto"
	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	version string
	product string
}

func NewHealthHandler(version, product string) *HealthHandler {
	return &HealthHandler{version: version, product: product}
}

// Check only reports that the process is serving; it never calls the provider.
func (h *HealthHandler) Check(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.HealthResponse{
		Status:  "ok",
		Version: h.version,
		Product: h.product,
	})
}
