package queries

import (
	"context"

	"github.com/maccam912/vikunja-ai/internal/productivity/application/services"
	"github.com/maccam912/vikunja-ai/internal/productivity/domain/task"
)

// GetTopPriorityQuery asks for the single most urgent open task.
type GetTopPriorityQuery struct {
	ProjectID int64
}

// GetTopPriorityHandler handles the GetTopPriorityQuery.
type GetTopPriorityHandler struct {
	taskRepo task.Repository
	engine   *services.PriorityEngine
}

// NewGetTopPriorityHandler creates a new GetTopPriorityHandler.
func NewGetTopPriorityHandler(taskRepo task.Repository, engine *services.PriorityEngine) *GetTopPriorityHandler {
	if engine == nil {
		engine = services.NewPriorityEngine(services.DefaultPriorityEngineConfig())
	}
	return &GetTopPriorityHandler{taskRepo: taskRepo, engine: engine}
}

// Handle returns the top task with rank 1.
func (h *GetTopPriorityHandler) Handle(ctx context.Context, query GetTopPriorityQuery) (*RankedTaskDTO, error) {
	tasks, err := h.taskRepo.List(ctx, task.ListFilter{})
	if err != nil {
		return nil, err
	}

	top, ok := services.TopScored(inProject(h.engine.ScoreAll(tasks), query.ProjectID))
	if !ok {
		return nil, ErrNoIncompleteTasks
	}
	dto := toRankedDTO(1, *top)
	return &dto, nil
}
