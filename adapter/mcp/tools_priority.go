package mcp

import (
	"context"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/maccam912/vikunja-ai/internal/productivity/application/commands"
)

func registerPriorityTools(srv *mcp.Server, deps ToolDependencies) error {
	app := deps.App

	srv.Tool("priority.recalculate").
		Description("Rescore every open task and store the snapshot").
		Handler(func(ctx context.Context, input struct{}) (*commands.RecalculatePrioritiesResult, error) {
			if app.RecalculatePrioritiesHandler == nil {
				return nil, ErrNotConfigured
			}
			return app.RecalculatePrioritiesHandler.Handle(ctx, commands.RecalculatePrioritiesCommand{})
		})

	return nil
}
