package http

import (
	"github.com/EternisAI/momo-provisioner/internal/api/http/handler"
	"github.com/EternisAI/momo-provisioner/internal/api/http/middleware"
	"github.com/gin-gonic/gin"
)

type Services struct {
	Provisioner handler.Provisioner
	AdminAPIKey string
	Version     string
	Product     string
}

func SetupRoute(engine *gin.Engine, srvs *Services) {
	engine.Use(middleware.RequestLogger())

	healthHandler := handler.NewHealthHandler(srvs.Version, srvs.Product)
	engine.GET("/health", healthHandler.Check)

	if srvs.Provisioner != nil {
		provisioningHandler := handler.NewProvisioningHandler(srvs.Provisioner)

		api := engine.Group("/api/v1", middleware.AdminKeyAuth(srvs.AdminAPIKey))
		api.POST("/apiuser", provisioningHandler.CreateAPIUser)
		api.GET("/apiuser", provisioningHandler.GetAPIUser)
		api.POST("/apikey", provisioningHandler.CreateAPIKey)
		api.POST("/token", provisioningHandler.IssueAccessToken)
		api.POST("/bootstrap", provisioningHandler.Bootstrap)
	}
}
