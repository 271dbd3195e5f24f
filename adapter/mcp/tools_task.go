package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/maccam912/vikunja-ai/adapter/cli"
	"github.com/maccam912/vikunja-ai/internal/productivity/application/commands"
	"github.com/maccam912/vikunja-ai/internal/productivity/application/queries"
)

type taskListInput struct {
	IncludeDone bool  `json:"include_done,omitempty"`
	ProjectID   int64 `json:"project_id,omitempty"`
	Limit       int   `json:"limit,omitempty"`
}

type taskTopInput struct {
	ProjectID int64 `json:"project_id,omitempty"`
}

type taskIDInput struct {
	TaskID int64 `json:"task_id" jsonschema:"required"`
}

type taskCreateInput struct {
	Title       string `json:"title" jsonschema:"required"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority,omitempty"`
	DueDate     string `json:"due_date,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	ProjectID   int64  `json:"project_id,omitempty"`
}

type taskUpdateInput struct {
	TaskID         int64   `json:"task_id" jsonschema:"required"`
	Title          *string `json:"title,omitempty"`
	Description    *string `json:"description,omitempty"`
	Priority       *string `json:"priority,omitempty"`
	DueDate        string  `json:"due_date,omitempty"`
	StartDate      string  `json:"start_date,omitempty"`
	ClearDueDate   bool    `json:"clear_due_date,omitempty"`
	ClearStartDate bool    `json:"clear_start_date,omitempty"`
}

type taskRelationInput struct {
	TaskID      int64  `json:"task_id" jsonschema:"required"`
	Kind        string `json:"kind" jsonschema:"required"`
	OtherTaskID int64  `json:"other_task_id" jsonschema:"required"`
}

type taskTools struct {
	app *cli.App
}

func registerTaskTools(srv *mcp.Server, deps ToolDependencies) error {
	tools := taskTools{app: deps.App}

	srv.Tool("task.list").
		Description("List tasks ordered by derived priority score, highest first").
		Handler(tools.list)

	srv.Tool("task.top").
		Description("Return the single task to work on next, or null when nothing is open").
		Handler(tools.top)

	srv.Tool("task.explain").
		Description("Explain a task's score: each component, its blockers, and what it unblocks").
		Handler(tools.explain)

	srv.Tool("task.create").
		Description("Create a new task. Dates accept RFC 3339 or YYYY-MM-DD").
		Handler(tools.create)

	srv.Tool("task.update").
		Description("Change fields of a task. Only provided fields change").
		Handler(tools.update)

	srv.Tool("task.complete").
		Description("Mark a task as done").
		Handler(tools.complete)

	srv.Tool("task.delete").
		Description("Delete a task").
		Handler(tools.delete)

	srv.Tool("task.relate").
		Description("Add a relation such as blocking or subtask between two tasks").
		Handler(tools.relate)

	srv.Tool("task.unrelate").
		Description("Remove a relation between two tasks").
		Handler(tools.unrelate)

	return nil
}

func (t taskTools) list(ctx context.Context, input taskListInput) ([]queries.RankedTaskDTO, error) {
	if t.app.ListRankedTasksHandler == nil {
		return nil, ErrNotConfigured
	}
	return t.app.ListRankedTasksHandler.Handle(ctx, queries.ListRankedTasksQuery{
		IncludeDone: input.IncludeDone,
		ProjectID:   input.ProjectID,
		Limit:       input.Limit,
	})
}

func (t taskTools) top(ctx context.Context, input taskTopInput) (map[string]any, error) {
	if t.app.GetTopPriorityHandler == nil {
		return nil, ErrNotConfigured
	}
	top, err := t.app.GetTopPriorityHandler.Handle(ctx, queries.GetTopPriorityQuery{ProjectID: input.ProjectID})
	if errors.Is(err, queries.ErrNoIncompleteTasks) {
		return map[string]any{"task": nil, "message": "no incomplete tasks"}, nil
	}
	if err != nil {
		return nil, err
	}
	return map[string]any{"task": top}, nil
}

func (t taskTools) explain(ctx context.Context, input taskIDInput) (*queries.TaskExplanation, error) {
	if t.app.ExplainTaskHandler == nil {
		return nil, ErrNotConfigured
	}
	if err := requireTaskID(input.TaskID); err != nil {
		return nil, err
	}
	return t.app.ExplainTaskHandler.Handle(ctx, queries.ExplainTaskQuery{TaskID: input.TaskID})
}

func (t taskTools) create(ctx context.Context, input taskCreateInput) (*commands.CreateTaskResult, error) {
	if t.app.CreateTaskHandler == nil {
		return nil, ErrNotConfigured
	}
	if input.Title == "" {
		return nil, errors.New("title is required")
	}
	due, err := parseOptionalDate(input.DueDate)
	if err != nil {
		return nil, fmt.Errorf("invalid due_date: %w", err)
	}
	start, err := parseOptionalDate(input.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start_date: %w", err)
	}

	return t.app.CreateTaskHandler.Handle(ctx, commands.CreateTaskCommand{
		ProjectID:   input.ProjectID,
		Title:       input.Title,
		Description: input.Description,
		Priority:    input.Priority,
		DueDate:     due,
		StartDate:   start,
	})
}

func (t taskTools) update(ctx context.Context, input taskUpdateInput) (*commands.UpdateTaskResult, error) {
	if t.app.UpdateTaskHandler == nil {
		return nil, ErrNotConfigured
	}
	if err := requireTaskID(input.TaskID); err != nil {
		return nil, err
	}
	due, err := parseOptionalDate(input.DueDate)
	if err != nil {
		return nil, fmt.Errorf("invalid due_date: %w", err)
	}
	start, err := parseOptionalDate(input.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start_date: %w", err)
	}

	return t.app.UpdateTaskHandler.Handle(ctx, commands.UpdateTaskCommand{
		TaskID:         input.TaskID,
		Title:          input.Title,
		Description:    input.Description,
		Priority:       input.Priority,
		DueDate:        due,
		StartDate:      start,
		ClearDueDate:   input.ClearDueDate,
		ClearStartDate: input.ClearStartDate,
	})
}

func (t taskTools) complete(ctx context.Context, input taskIDInput) (map[string]any, error) {
	if t.app.CompleteTaskHandler == nil {
		return nil, ErrNotConfigured
	}
	if err := requireTaskID(input.TaskID); err != nil {
		return nil, err
	}
	if _, err := t.app.CompleteTaskHandler.Handle(ctx, commands.CompleteTaskCommand{TaskID: input.TaskID}); err != nil {
		return nil, err
	}
	return map[string]any{"task_id": input.TaskID, "completed": true}, nil
}

func (t taskTools) delete(ctx context.Context, input taskIDInput) (map[string]any, error) {
	if t.app.DeleteTaskHandler == nil {
		return nil, ErrNotConfigured
	}
	if err := requireTaskID(input.TaskID); err != nil {
		return nil, err
	}
	if _, err := t.app.DeleteTaskHandler.Handle(ctx, commands.DeleteTaskCommand{TaskID: input.TaskID}); err != nil {
		return nil, err
	}
	return map[string]any{"task_id": input.TaskID, "deleted": true}, nil
}

func (t taskTools) relate(ctx context.Context, input taskRelationInput) (*commands.RelateTasksResult, error) {
	return t.changeRelation(ctx, input, false)
}

func (t taskTools) unrelate(ctx context.Context, input taskRelationInput) (*commands.RelateTasksResult, error) {
	return t.changeRelation(ctx, input, true)
}

func (t taskTools) changeRelation(ctx context.Context, input taskRelationInput, remove bool) (*commands.RelateTasksResult, error) {
	if t.app.RelateTasksHandler == nil {
		return nil, ErrNotConfigured
	}
	if err := requireTaskID(input.TaskID); err != nil {
		return nil, err
	}
	if input.OtherTaskID <= 0 {
		return nil, errors.New("other_task_id is required")
	}
	return t.app.RelateTasksHandler.Handle(ctx, commands.RelateTasksCommand{
		TaskID:      input.TaskID,
		OtherTaskID: input.OtherTaskID,
		Kind:        input.Kind,
		Remove:      remove,
	})
}
