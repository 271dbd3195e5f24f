package mcp

import (
	"github.com/maccam912/vikunja-ai/adapter/cli"
	"github.com/maccam912/vikunja-ai/internal/app"
)

// NewCLIApp creates a CLI application instance backed by the provided container.
func NewCLIApp(container *app.Container) *cli.App {
	cliApp := &cli.App{
		CreateTaskHandler:            container.CreateTaskHandler,
		UpdateTaskHandler:            container.UpdateTaskHandler,
		CompleteTaskHandler:          container.CompleteTaskHandler,
		DeleteTaskHandler:            container.DeleteTaskHandler,
		RelateTasksHandler:           container.RelateTasksHandler,
		RecalculatePrioritiesHandler: container.RecalculatePrioritiesHandler,
		ListRankedTasksHandler:       container.ListRankedTasksHandler,
		GetTopPriorityHandler:        container.GetTopPriorityHandler,
		ExplainTaskHandler:           container.ExplainTaskHandler,
		SettingsService:              container.SettingsService,
		Agent:                        container.Agent,
		CurrentUserID:                container.UserID,
	}
	if container.Projects != nil {
		cliApp.Projects = container.Projects
	}
	return cliApp
}
