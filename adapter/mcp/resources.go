package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/maccam912/vikunja-ai/adapter/cli"
	"github.com/maccam912/vikunja-ai/internal/productivity/application/queries"
)

const (
	uriRankedTasks = "vikunja://tasks/ranked"
	uriTopTask     = "vikunja://tasks/top"
)

// RegisterResources registers MCP resources that expose the ranked snapshot.
func RegisterResources(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}
	res := taskResources{app: deps.App}

	srv.Resource(uriRankedTasks).
		Name("Ranked Tasks").
		Description("Open tasks ordered by derived priority score").
		MimeType("application/json").
		Handler(res.ranked)

	srv.Resource(uriTopTask).
		Name("Top Task").
		Description("The single task to work on next").
		MimeType("application/json").
		Handler(res.top)

	return nil
}

type taskResources struct {
	app *cli.App
}

func (r taskResources) ranked(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
	if r.app == nil || r.app.ListRankedTasksHandler == nil {
		return nil, ErrNotConfigured
	}
	tasks, err := r.app.ListRankedTasksHandler.Handle(ctx, queries.ListRankedTasksQuery{Limit: 100})
	if err != nil {
		return nil, err
	}
	return jsonResource(uri, tasks)
}

func (r taskResources) top(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
	if r.app == nil || r.app.GetTopPriorityHandler == nil {
		return nil, ErrNotConfigured
	}
	top, err := r.app.GetTopPriorityHandler.Handle(ctx, queries.GetTopPriorityQuery{})
	if errors.Is(err, queries.ErrNoIncompleteTasks) {
		return jsonResource(uri, nil)
	}
	if err != nil {
		return nil, err
	}
	return jsonResource(uri, top)
}

func jsonResource(uri string, v any) (*mcp.ResourceContent, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return &mcp.ResourceContent{
		URI:      uri,
		MimeType: "application/json",
		Text:     string(data),
	}, nil
}
