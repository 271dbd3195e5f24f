package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/maccam912/vikunja-ai/adapter/api"
	"github.com/maccam912/vikunja-ai/adapter/cli"
	"github.com/maccam912/vikunja-ai/adapter/cli/mcp"
	"github.com/maccam912/vikunja-ai/adapter/cli/priority"
	"github.com/maccam912/vikunja-ai/adapter/cli/project"
	cliSettings "github.com/maccam912/vikunja-ai/adapter/cli/settings"
	"github.com/maccam912/vikunja-ai/adapter/cli/task"
	"github.com/maccam912/vikunja-ai/internal/app"
	mcpinternal "github.com/maccam912/vikunja-ai/internal/mcp"
	"github.com/maccam912/vikunja-ai/pkg/config"
	"github.com/maccam912/vikunja-ai/pkg/observability"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := observability.NewLogger(observability.DefaultLogConfig())

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = observability.NewLogger(observability.LogConfig{
		Level:          cfg.LogLevel,
		Format:         observability.LogFormat(cfg.LogFormat),
		ServiceName:    "vikunja-ai",
		ServiceVersion: cli.Version,
	})
	cli.SetLogger(logger)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		// Commands that need the container report ErrNotInitialized; version and help still work.
		logger.Debug("container unavailable", "error", err)
	} else {
		defer container.Close()

		cliApp := mcpinternal.NewCLIApp(container)
		cliApp.Serve = func(ctx context.Context) error {
			return newAPIServer(cfg, container).Run(ctx)
		}
		cli.SetApp(cliApp)
	}

	cli.AddCommand(task.Cmd)
	cli.AddCommand(priority.Cmd)
	cli.AddCommand(cliSettings.Cmd)
	cli.AddCommand(project.Cmd)
	cli.AddCommand(mcp.Cmd)

	cli.Execute(ctx)
}

func newAPIServer(cfg *config.Config, c *app.Container) *api.Server {
	serverCfg := api.DefaultServerConfig()
	serverCfg.Addr = cfg.HTTPAddr

	tasks := api.NewTaskHandler(api.TaskHandlerConfig{
		CreateTask:            c.CreateTaskHandler,
		UpdateTask:            c.UpdateTaskHandler,
		CompleteTask:          c.CompleteTaskHandler,
		DeleteTask:            c.DeleteTaskHandler,
		RelateTasks:           c.RelateTasksHandler,
		RecalculatePriorities: c.RecalculatePrioritiesHandler,
		ListRankedTasks:       c.ListRankedTasksHandler,
		GetTopPriority:        c.GetTopPriorityHandler,
		ExplainTask:           c.ExplainTaskHandler,
		Logger:                c.Logger,
	})

	return api.NewServer(serverCfg, api.Handlers{
		Tasks:    tasks,
		Chat:     api.NewChatHandler(c.Agent, c.Logger),
		Settings: api.NewSettingsHandler(c.SettingsService, c.UserID, c.Logger),
		Health:   c.Health,
	}, c.Logger)
}
