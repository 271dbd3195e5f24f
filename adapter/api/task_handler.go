package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/maccam912/vikunja-ai/internal/productivity/application/commands"
	"github.com/maccam912/vikunja-ai/internal/productivity/application/queries"
	"github.com/maccam912/vikunja-ai/internal/productivity/domain/task"
)

// TaskHandler handles task and priority requests.
type TaskHandler struct {
	create      *commands.CreateTaskHandler
	update      *commands.UpdateTaskHandler
	complete    *commands.CompleteTaskHandler
	remove      *commands.DeleteTaskHandler
	relate      *commands.RelateTasksHandler
	recalculate *commands.RecalculatePrioritiesHandler
	list        *queries.ListRankedTasksHandler
	top         *queries.GetTopPriorityHandler
	explain     *queries.ExplainTaskHandler
	logger      *slog.Logger
}

// TaskHandlerConfig holds dependencies for the task handler.
type TaskHandlerConfig struct {
	CreateTask            *commands.CreateTaskHandler
	UpdateTask            *commands.UpdateTaskHandler
	CompleteTask          *commands.CompleteTaskHandler
	DeleteTask            *commands.DeleteTaskHandler
	RelateTasks           *commands.RelateTasksHandler
	RecalculatePriorities *commands.RecalculatePrioritiesHandler
	ListRankedTasks       *queries.ListRankedTasksHandler
	GetTopPriority        *queries.GetTopPriorityHandler
	ExplainTask           *queries.ExplainTaskHandler
	Logger                *slog.Logger
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(cfg TaskHandlerConfig) *TaskHandler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &TaskHandler{
		create:      cfg.CreateTask,
		update:      cfg.UpdateTask,
		complete:    cfg.CompleteTask,
		remove:      cfg.DeleteTask,
		relate:      cfg.RelateTasks,
		recalculate: cfg.RecalculatePriorities,
		list:        cfg.ListRankedTasks,
		top:         cfg.GetTopPriority,
		explain:     cfg.ExplainTask,
		logger:      cfg.Logger,
	}
}

type createTaskRequest struct {
	ProjectID   int64  `json:"project_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date"`
	StartDate   string `json:"start_date"`
}

type updateTaskRequest struct {
	Title          *string `json:"title"`
	Description    *string `json:"description"`
	Priority       *string `json:"priority"`
	DueDate        *string `json:"due_date"`
	StartDate      *string `json:"start_date"`
	ClearDueDate   bool    `json:"clear_due_date"`
	ClearStartDate bool    `json:"clear_start_date"`
}

type relationRequest struct {
	OtherTaskID int64  `json:"other_task_id"`
	Kind        string `json:"kind"`
}

// List handles GET /api/v1/tasks
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	query := queries.ListRankedTasksQuery{
		IncludeDone: parseBoolParam(r, "include_done", false),
		ProjectID:   parseInt64Param(r, "project_id"),
		Limit:       parseIntParam(r, "limit", 0),
	}

	ranked, err := h.list.Handle(r.Context(), query)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tasks": ranked,
		"total": len(ranked),
	})
}

// Top handles GET /api/v1/tasks/top
func (h *TaskHandler) Top(w http.ResponseWriter, r *http.Request) {
	top, err := h.top.Handle(r.Context(), queries.GetTopPriorityQuery{
		ProjectID: parseInt64Param(r, "project_id"),
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, top)
}

// Breakdown handles GET /api/v1/tasks/{id}/breakdown
func (h *TaskHandler) Breakdown(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	explanation, err := h.explain.Handle(r.Context(), queries.ExplainTaskQuery{TaskID: id})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, explanation)
}

// Create handles POST /api/v1/tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	cmd := commands.CreateTaskCommand{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
	}
	var err error
	if cmd.DueDate, err = optionalDate(req.DueDate); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if cmd.StartDate, err = optionalDate(req.StartDate); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	result, err := h.create.Handle(r.Context(), cmd)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTaskResponse(result.Task))
}

// Update handles PATCH /api/v1/tasks/{id}
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req updateTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	cmd := commands.UpdateTaskCommand{
		TaskID:         id,
		Title:          req.Title,
		Description:    req.Description,
		Priority:       req.Priority,
		ClearDueDate:   req.ClearDueDate,
		ClearStartDate: req.ClearStartDate,
	}
	if req.DueDate != nil {
		if cmd.DueDate, err = optionalDate(*req.DueDate); err != nil {
			writeError(w, r, h.logger, err)
			return
		}
	}
	if req.StartDate != nil {
		if cmd.StartDate, err = optionalDate(*req.StartDate); err != nil {
			writeError(w, r, h.logger, err)
			return
		}
	}

	result, err := h.update.Handle(r.Context(), cmd)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"task":   toTaskResponse(result.Task),
		"fields": result.Fields,
	})
}

// Complete handles POST /api/v1/tasks/{id}/complete
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	result, err := h.complete.Handle(r.Context(), commands.CompleteTaskCommand{TaskID: id})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskResponse(result.Task))
}

// Delete handles DELETE /api/v1/tasks/{id}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if _, err := h.remove.Handle(r.Context(), commands.DeleteTaskCommand{TaskID: id}); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Relate handles POST /api/v1/tasks/{id}/relations
func (h *TaskHandler) Relate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req relationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	result, err := h.relate.Handle(r.Context(), commands.RelateTasksCommand{
		TaskID:      id,
		OtherTaskID: req.OtherTaskID,
		Kind:        req.Kind,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRelationResponse(result))
}

// Unrelate handles DELETE /api/v1/tasks/{id}/relations/{kind}/{other}
func (h *TaskHandler) Unrelate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	other, err := pathID(r, "other")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	result, err := h.relate.Handle(r.Context(), commands.RelateTasksCommand{
		TaskID:      id,
		OtherTaskID: other,
		Kind:        r.PathValue("kind"),
		Remove:      true,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toRelationResponse(result))
}

// Recalculate handles POST /api/v1/priorities/recalculate
func (h *TaskHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	result, err := h.recalculate.Handle(r.Context(), commands.RecalculatePrioritiesCommand{})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"task_count":    result.TaskCount,
		"blocked_count": result.BlockedCount,
		"top_task_id":   result.TopTaskID,
		"top_score":     result.TopScore,
		"calculated_at": result.CalculatedAt,
	})
}

func optionalDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	return task.ParseDate(value)
}

type taskResponse struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	ProjectID   int64      `json:"project_id"`
	Priority    string     `json:"priority"`
	Done        bool       `json:"done"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	BlockedBy   []int64    `json:"blocked_by,omitempty"`
	Blocking    []int64    `json:"blocking,omitempty"`
}

func toTaskResponse(t *task.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		ProjectID:   t.ProjectID,
		Priority:    t.Priority.String(),
		Done:        t.Done,
		DueDate:     t.DueDate,
		StartDate:   t.StartDate,
		BlockedBy:   t.BlockedByIDs(),
		Blocking:    t.BlockingIDs(),
	}
}

type relationResponse struct {
	TaskID      int64  `json:"task_id"`
	OtherTaskID int64  `json:"other_task_id"`
	Kind        string `json:"kind"`
	Removed     bool   `json:"removed"`
}

func toRelationResponse(result *commands.RelateTasksResult) relationResponse {
	return relationResponse{
		TaskID:      result.TaskID,
		OtherTaskID: result.OtherTaskID,
		Kind:        string(result.Kind),
		Removed:     result.Removed,
	}
}
