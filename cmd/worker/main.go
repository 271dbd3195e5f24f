package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/maccam912/vikunja-ai/internal/app"
	"github.com/maccam912/vikunja-ai/internal/productivity/application/commands"
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
		ServiceName:    "vikunja-ai-worker",
		ServiceVersion: version,
	})
	logger.Info("starting vikunja-ai worker", "interval", cfg.WorkerInterval)

	metrics := observability.NewInMemoryMetrics()
	container, err := app.NewContainer(ctx, cfg, logger, app.WithMetrics(metrics))
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	if cfg.WorkerHealthAddr != "" {
		healthSrv := &http.Server{
			Addr:              cfg.WorkerHealthAddr,
			Handler:           healthMux(container.Health, metrics),
			ReadHeaderTimeout: 5 * time.Second,
		}

		go func() {
			logger.Info("health server starting", "addr", cfg.WorkerHealthAddr)
			if err := healthSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("health server error", "error", err)
			}
		}()

		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := healthSrv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("health server shutdown error", "error", err)
			}
		}()
	}

	runLoop(ctx, cfg.WorkerInterval, container.RecalculatePrioritiesHandler, logger)
	logger.Info("worker stopped")
}

// runLoop recalculates once immediately and then on every tick until ctx is done.
// A failed run is logged and retried on the next tick.
func runLoop(ctx context.Context, interval time.Duration, handler *commands.RecalculatePrioritiesHandler, logger *slog.Logger) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	recalculate := func() {
		runCtx := observability.WithCorrelationID(ctx, "")
		result, err := handler.Handle(runCtx, commands.RecalculatePrioritiesCommand{})
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				logger.ErrorContext(runCtx, "priority recalculation failed", "error", err)
			}
			return
		}
		logger.InfoContext(runCtx, "priorities recalculated",
			"tasks", result.TaskCount,
			"blocked", result.BlockedCount,
			"top_task_id", result.TopTaskID,
			"top_score", result.TopScore,
		)
	}

	recalculate()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			recalculate()
		}
	}
}

func healthMux(health *observability.HealthRegistry, metrics *observability.InMemoryMetrics) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})
	mux.Handle("GET /readyz", health.ReadinessHandler())
	mux.HandleFunc("GET /metrics", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(metrics.Snapshot())
	})
	return mux
}
