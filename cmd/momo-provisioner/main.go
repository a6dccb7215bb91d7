package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/EternisAI/momo-provisioner/internal/momo"
)

var AppVersion = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		reportError(err)
		os.Exit(1)
	}
}

func reportError(err error) {
	var e *momo.Error
	if errors.As(err, &e) {
		slog.Error("Provisioning failed",
			"op", e.Op,
			"kind", e.Kind,
			"status_code", e.StatusCode,
			"code", e.Code,
			"retryable", momo.IsRetryable(err))
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
}
