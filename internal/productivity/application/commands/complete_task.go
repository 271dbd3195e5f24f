package commands

import (
	"context"
	"log/slog"

	"github.com/maccam912/vikunja-ai/internal/productivity/domain/task"
	"github.com/maccam912/vikunja-ai/pkg/observability"
)

// CompleteTaskCommand contains the data needed to complete a task.
type CompleteTaskCommand struct {
	TaskID int64
}

// CompleteTaskResult contains the completed task.
type CompleteTaskResult struct {
	Task *task.Task
}

// CompleteTaskHandler handles the CompleteTaskCommand.
type CompleteTaskHandler struct {
	taskRepo task.Repository
	events   *EventEmitter
	metrics  observability.Metrics
	logger   *slog.Logger
}

// NewCompleteTaskHandler creates a new CompleteTaskHandler.
func NewCompleteTaskHandler(taskRepo task.Repository, events *EventEmitter, metrics observability.Metrics, logger *slog.Logger) *CompleteTaskHandler {
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CompleteTaskHandler{taskRepo: taskRepo, events: events, metrics: metrics, logger: logger}
}

// Handle executes the CompleteTaskCommand.
func (h *CompleteTaskHandler) Handle(ctx context.Context, cmd CompleteTaskCommand) (*CompleteTaskResult, error) {
	t, err := h.taskRepo.Get(ctx, cmd.TaskID)
	if err != nil {
		return nil, err
	}
	if err := t.Complete(); err != nil {
		return nil, err
	}

	updated, err := h.taskRepo.Update(ctx, t)
	if err != nil {
		return nil, err
	}

	h.logger.InfoContext(ctx, "task completed", "task_id", updated.ID)
	h.metrics.Counter(observability.MetricTasksCompleted, 1)
	h.events.Emit(ctx, task.NewTaskCompleted(updated.ID))

	return &CompleteTaskResult{Task: updated}, nil
}
