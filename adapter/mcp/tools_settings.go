package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/maccam912/vikunja-ai/adapter/cli"
	identitySettings "github.com/maccam912/vikunja-ai/internal/identity/application/settings"
	"github.com/maccam912/vikunja-ai/internal/identity/domain"
)

var errSettingsNotConfigured = errors.New("settings service not configured")

type settingsSetInput struct {
	DefaultProjectID *int64  `json:"default_project_id,omitempty"`
	Model            *string `json:"model,omitempty"`
	Theme            *string `json:"theme,omitempty"`
	SystemPrompt     *string `json:"system_prompt,omitempty"`
}

type settingsTools struct {
	app *cli.App
}

func registerSettingsTools(srv *mcp.Server, deps ToolDependencies) error {
	tools := settingsTools{app: deps.App}

	srv.Tool("settings.get").
		Description("Get the assistant settings").
		Handler(tools.get)

	srv.Tool("settings.set").
		Description("Change assistant settings. Only provided fields change").
		Handler(tools.set)

	return nil
}

func (s settingsTools) get(ctx context.Context, input struct{}) (*domain.Settings, error) {
	if s.app.SettingsService == nil {
		return nil, errSettingsNotConfigured
	}
	return s.app.SettingsService.Get(ctx, s.app.CurrentUserID)
}

func (s settingsTools) set(ctx context.Context, input settingsSetInput) (*domain.Settings, error) {
	if s.app.SettingsService == nil {
		return nil, errSettingsNotConfigured
	}
	return s.app.SettingsService.Update(ctx, s.app.CurrentUserID, identitySettings.Update{
		DefaultProjectID: input.DefaultProjectID,
		Model:            input.Model,
		Theme:            input.Theme,
		SystemPrompt:     input.SystemPrompt,
	})
}
