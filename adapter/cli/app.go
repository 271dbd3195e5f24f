package cli

import (
	"context"

	"github.com/google/uuid"

	"github.com/maccam912/vikunja-ai/internal/assistant"
	identitySettings "github.com/maccam912/vikunja-ai/internal/identity/application/settings"
	"github.com/maccam912/vikunja-ai/internal/productivity/application/commands"
	"github.com/maccam912/vikunja-ai/internal/productivity/application/queries"
	"github.com/maccam912/vikunja-ai/internal/productivity/infrastructure/vikunja"
)

// ProjectLister lists the projects visible to the configured token.
type ProjectLister interface {
	Projects(ctx context.Context) ([]vikunja.Project, error)
}

// App holds the CLI application dependencies.
type App struct {
	// Task Command Handlers
	CreateTaskHandler            *commands.CreateTaskHandler
	UpdateTaskHandler            *commands.UpdateTaskHandler
	CompleteTaskHandler          *commands.CompleteTaskHandler
	DeleteTaskHandler            *commands.DeleteTaskHandler
	RelateTasksHandler           *commands.RelateTasksHandler
	RecalculatePrioritiesHandler *commands.RecalculatePrioritiesHandler

	// Task Query Handlers
	ListRankedTasksHandler *queries.ListRankedTasksHandler
	GetTopPriorityHandler  *queries.GetTopPriorityHandler
	ExplainTaskHandler     *queries.ExplainTaskHandler

	// Settings
	SettingsService *identitySettings.Service

	// Assistant is nil when no LLM is configured.
	Agent *assistant.Agent

	Projects ProjectLister

	// Serve runs the HTTP API until the context is canceled.
	Serve func(ctx context.Context) error

	// Current user (configured per environment)
	CurrentUserID uuid.UUID
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}
