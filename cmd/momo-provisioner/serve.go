package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	internalhttp "github.com/EternisAI/momo-provisioner/internal/api/http"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Expose the provisioning steps over HTTP",
		Long: `Run an HTTP server that exposes create-user, create-key, token and bootstrap
under /api/v1. Requests must carry the X-API-Key header matching http.admin_api_key.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func newEngine(services *internalhttp.Services) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST"},
		AllowHeaders:  []string{"Origin", "Content-Length", "Content-Type", "X-API-Key"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))
	engine.Use(gin.Recovery())
	internalhttp.SetupRoute(engine, services)
	return engine
}

func runServe(ctx context.Context) error {
	slog.Info("MoMo Provisioner", "version", AppVersion)

	p, err := newProvisioner()
	if err != nil {
		return err
	}

	if config.Http.AdminAPIKey == "" {
		slog.Warn("http.admin_api_key is empty, /api/v1 routes will reject every request")
	}

	server := &http.Server{
		Addr: fmt.Sprintf(":%d", config.Http.Port),
		Handler: newEngine(&internalhttp.Services{
			Provisioner: p,
			AdminAPIKey: config.Http.AdminAPIKey,
			Version:     AppVersion,
			Product:     config.Momo.Product,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "address", server.Addr, "user_id", p.UserID())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		slog.Info("Received shutdown signal")
	}

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown error: %w", err)
	}

	slog.Info("Shutdown complete")
	return nil
}
