package commands

import (
	"context"
	"log/slog"

	"github.com/maccam912/vikunja-ai/internal/productivity/domain/task"
)

// DeleteTaskCommand contains the data needed to delete a task.
type DeleteTaskCommand struct {
	TaskID int64
}

// DeleteTaskResult echoes the removed task id.
type DeleteTaskResult struct {
	TaskID int64
}

// DeleteTaskHandler handles the DeleteTaskCommand.
type DeleteTaskHandler struct {
	taskRepo task.Repository
	events   *EventEmitter
	logger   *slog.Logger
}

// NewDeleteTaskHandler creates a new DeleteTaskHandler.
func NewDeleteTaskHandler(taskRepo task.Repository, events *EventEmitter, logger *slog.Logger) *DeleteTaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DeleteTaskHandler{taskRepo: taskRepo, events: events, logger: logger}
}

// Handle executes the DeleteTaskCommand.
func (h *DeleteTaskHandler) Handle(ctx context.Context, cmd DeleteTaskCommand) (*DeleteTaskResult, error) {
	if err := h.taskRepo.Delete(ctx, cmd.TaskID); err != nil {
		return nil, err
	}

	h.logger.InfoContext(ctx, "task deleted", "task_id", cmd.TaskID)
	h.events.Emit(ctx, task.NewTaskDeleted(cmd.TaskID))

	return &DeleteTaskResult{TaskID: cmd.TaskID}, nil
}
