package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/maccam912/vikunja-ai/internal/productivity/domain/task"
	"github.com/maccam912/vikunja-ai/internal/productivity/domain/value_objects"
	"github.com/maccam912/vikunja-ai/pkg/observability"
)

// CreateTaskCommand contains the data needed to create a task.
type CreateTaskCommand struct {
	// ProjectID falls back to the configured default project when zero.
	ProjectID   int64
	Title       string
	Description string
	Priority    string
	DueDate     *time.Time
	StartDate   *time.Time
}

// CreateTaskResult contains the created task as stored remotely.
type CreateTaskResult struct {
	Task *task.Task
}

// CreateTaskHandler handles the CreateTaskCommand.
type CreateTaskHandler struct {
	taskRepo         task.Repository
	events           *EventEmitter
	defaultProjectID int64
	projectSource    DefaultProjectSource
	metrics          observability.Metrics
	logger           *slog.Logger
}

// DefaultProjectSource looks up the project used when a command names none.
// A zero result falls back to the handler's static default.
type DefaultProjectSource func(ctx context.Context) (int64, error)

// NewCreateTaskHandler creates a new CreateTaskHandler.
func NewCreateTaskHandler(taskRepo task.Repository, events *EventEmitter, defaultProjectID int64, metrics observability.Metrics, logger *slog.Logger) *CreateTaskHandler {
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CreateTaskHandler{
		taskRepo:         taskRepo,
		events:           events,
		defaultProjectID: defaultProjectID,
		metrics:          metrics,
		logger:           logger,
	}
}

// SetDefaultProjectSource makes the fallback project dynamic.
func (h *CreateTaskHandler) SetDefaultProjectSource(source DefaultProjectSource) {
	h.projectSource = source
}

// Handle executes the CreateTaskCommand.
func (h *CreateTaskHandler) Handle(ctx context.Context, cmd CreateTaskCommand) (*CreateTaskResult, error) {
	projectID := cmd.ProjectID
	if projectID == 0 {
		projectID = h.defaultProject(ctx)
	}

	draft, err := task.NewDraft(projectID, cmd.Title)
	if err != nil {
		return nil, err
	}
	draft.Description = strings.TrimSpace(cmd.Description)
	draft.DueDate = cmd.DueDate
	draft.StartDate = cmd.StartDate

	if cmd.Priority != "" {
		priority, err := value_objects.ParsePriority(cmd.Priority)
		if err != nil {
			return nil, err
		}
		draft.Priority = priority
	}

	created, err := h.taskRepo.Create(ctx, draft)
	if err != nil {
		return nil, err
	}

	h.logger.InfoContext(ctx, "task created",
		"task_id", created.ID,
		"project_id", created.ProjectID,
		"priority", created.Priority.String(),
	)
	h.metrics.Counter(observability.MetricTasksCreated, 1)
	h.events.Emit(ctx, task.NewTaskCreated(created))

	return &CreateTaskResult{Task: created}, nil
}

func (h *CreateTaskHandler) defaultProject(ctx context.Context) int64 {
	if h.projectSource != nil {
		id, err := h.projectSource(ctx)
		if err != nil {
			h.logger.WarnContext(ctx, "default project lookup failed", "error", err)
		}
		if err == nil && id > 0 {
			return id
		}
	}
	return h.defaultProjectID
}
