package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/maccam912/vikunja-ai/internal/app"
	mcpinternal "github.com/maccam912/vikunja-ai/internal/mcp"
	"github.com/maccam912/vikunja-ai/pkg/config"
	"github.com/maccam912/vikunja-ai/pkg/observability"
)

var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		observability.NewLogger(observability.DefaultLogConfig()).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:          cfg.LogLevel,
		Format:         observability.LogFormat(cfg.LogFormat),
		ServiceName:    "vikunja-ai-mcp",
		ServiceVersion: version,
	})

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	cliApp := mcpinternal.NewCLIApp(container)

	if err := mcpinternal.Serve(ctx, cfg, cliApp, version, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
