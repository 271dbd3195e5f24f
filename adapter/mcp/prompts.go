package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/mcp-go"
)

// RegisterPrompts registers MCP prompts for common workflows.
func RegisterPrompts(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}

	srv.Prompt("plan_next").
		Description("Decide what to work on next from the ranked task list, and fix missing relations or due dates on the way.").
		Handler(planNext)

	return nil
}

func planNext(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
	var b strings.Builder
	b.WriteString(`Help me decide what to work on next. Please:

1. Read the ranked list from the ` + uriRankedTasks + ` resource
2. Read the current top task from the ` + uriTopTask + ` resource
3. Use task.explain on the top two or three tasks to see why they rank where they do

Then:
- Recommend one task to start now and say why in a sentence
- Point out tasks that look blocked by something not recorded, and offer to add the relation with task.relate
- Point out urgent-sounding tasks with no due date and offer to set one with task.update
- Skip anything already done`)

	if focus := strings.TrimSpace(args["focus"]); focus != "" {
		fmt.Fprintf(&b, "\n\nI only have time for: %s. Prefer tasks that fit.", focus)
	}

	return &mcp.PromptResult{
		Description: "Plan the next task",
		Messages: []mcp.PromptMessage{
			{
				Role: string(mcp.RoleUser),
				Content: mcp.TextContent{
					Type: "text",
					Text: b.String(),
				},
			},
		},
	}, nil
}
