package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/maccam912/vikunja-ai/internal/productivity/domain/task"
	"github.com/maccam912/vikunja-ai/internal/productivity/domain/value_objects"
)

// ErrNothingToUpdate is returned when an update names no fields.
var ErrNothingToUpdate = errors.New("no fields to update")

// UpdateTaskCommand changes the non-nil fields of a task. The Clear flags
// remove a date and win over a value given for the same date.
type UpdateTaskCommand struct {
	TaskID         int64
	Title          *string
	Description    *string
	Priority       *string
	DueDate        *time.Time
	StartDate      *time.Time
	ClearDueDate   bool
	ClearStartDate bool
}

// UpdateTaskResult contains the updated task and the fields that changed.
type UpdateTaskResult struct {
	Task   *task.Task
	Fields []string
}

// UpdateTaskHandler handles the UpdateTaskCommand.
type UpdateTaskHandler struct {
	taskRepo task.Repository
	events   *EventEmitter
	logger   *slog.Logger
}

// NewUpdateTaskHandler creates a new UpdateTaskHandler.
func NewUpdateTaskHandler(taskRepo task.Repository, events *EventEmitter, logger *slog.Logger) *UpdateTaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UpdateTaskHandler{taskRepo: taskRepo, events: events, logger: logger}
}

// Handle reads the task, applies the changes and writes it back.
func (h *UpdateTaskHandler) Handle(ctx context.Context, cmd UpdateTaskCommand) (*UpdateTaskResult, error) {
	t, err := h.taskRepo.Get(ctx, cmd.TaskID)
	if err != nil {
		return nil, err
	}

	fields, err := applyUpdate(t, cmd)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, ErrNothingToUpdate
	}

	updated, err := h.taskRepo.Update(ctx, t)
	if err != nil {
		return nil, err
	}

	h.logger.InfoContext(ctx, "task updated", "task_id", updated.ID, "fields", fields)
	h.events.Emit(ctx, task.NewTaskUpdated(updated.ID, fields))

	return &UpdateTaskResult{Task: updated, Fields: fields}, nil
}

func applyUpdate(t *task.Task, cmd UpdateTaskCommand) ([]string, error) {
	var fields []string

	if cmd.Title != nil {
		title := strings.TrimSpace(*cmd.Title)
		if title == "" {
			return nil, task.ErrEmptyTitle
		}
		t.Title = title
		fields = append(fields, "title")
	}
	if cmd.Description != nil {
		t.Description = strings.TrimSpace(*cmd.Description)
		fields = append(fields, "description")
	}
	if cmd.Priority != nil {
		priority, err := value_objects.ParsePriority(*cmd.Priority)
		if err != nil {
			return nil, err
		}
		t.Priority = priority
		fields = append(fields, "priority")
	}
	switch {
	case cmd.ClearDueDate:
		t.DueDate = nil
		fields = append(fields, "due_date")
	case cmd.DueDate != nil:
		due := cmd.DueDate.UTC()
		t.DueDate = &due
		fields = append(fields, "due_date")
	}
	switch {
	case cmd.ClearStartDate:
		t.StartDate = nil
		fields = append(fields, "start_date")
	case cmd.StartDate != nil:
		start := cmd.StartDate.UTC()
		t.StartDate = &start
		fields = append(fields, "start_date")
	}
	return fields, nil
}
