package commands

import (
	"context"
	"log/slog"

	"github.com/maccam912/vikunja-ai/internal/productivity/domain/task"
)

// RelateTasksCommand adds or removes the edge TaskID -kind-> OtherTaskID.
type RelateTasksCommand struct {
	TaskID      int64
	OtherTaskID int64
	Kind        string
	Remove      bool
}

// RelateTasksResult describes the edge that changed.
type RelateTasksResult struct {
	TaskID      int64
	OtherTaskID int64
	Kind        task.RelationKind
	Removed     bool
}

// RelateTasksHandler handles the RelateTasksCommand.
type RelateTasksHandler struct {
	taskRepo task.Repository
	events   *EventEmitter
	logger   *slog.Logger
}

// NewRelateTasksHandler creates a new RelateTasksHandler.
func NewRelateTasksHandler(taskRepo task.Repository, events *EventEmitter, logger *slog.Logger) *RelateTasksHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RelateTasksHandler{taskRepo: taskRepo, events: events, logger: logger}
}

// Handle executes the RelateTasksCommand.
func (h *RelateTasksHandler) Handle(ctx context.Context, cmd RelateTasksCommand) (*RelateTasksResult, error) {
	kind, err := task.ParseRelationKind(cmd.Kind)
	if err != nil {
		return nil, err
	}
	if cmd.TaskID == cmd.OtherTaskID {
		return nil, task.ErrSelfRelation
	}

	if cmd.Remove {
		err = h.taskRepo.RemoveRelation(ctx, cmd.TaskID, kind, cmd.OtherTaskID)
	} else {
		err = h.taskRepo.AddRelation(ctx, cmd.TaskID, kind, cmd.OtherTaskID)
	}
	if err != nil {
		return nil, err
	}

	h.logger.InfoContext(ctx, "task relation changed",
		"task_id", cmd.TaskID,
		"other_task_id", cmd.OtherTaskID,
		"kind", kind,
		"removed", cmd.Remove,
	)
	h.events.Emit(ctx, task.NewRelationChanged(cmd.TaskID, cmd.OtherTaskID, kind, cmd.Remove))

	return &RelateTasksResult{
		TaskID:      cmd.TaskID,
		OtherTaskID: cmd.OtherTaskID,
		Kind:        kind,
		Removed:     cmd.Remove,
	}, nil
}
