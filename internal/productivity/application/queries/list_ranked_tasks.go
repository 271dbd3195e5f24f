package queries

import (
	"context"
	"log/slog"

	"github.com/maccam912/vikunja-ai/internal/productivity/application/services"
	"github.com/maccam912/vikunja-ai/internal/productivity/domain/task"
)

// ListRankedTasksQuery contains the parameters for listing ranked tasks.
type ListRankedTasksQuery struct {
	IncludeDone bool
	ProjectID   int64
	// Limit caps the result; 0 returns everything.
	Limit int
}

// ListRankedTasksHandler scores the snapshot and returns it in rank order.
type ListRankedTasksHandler struct {
	taskRepo task.Repository
	engine   *services.PriorityEngine
	logger   *slog.Logger
}

// NewListRankedTasksHandler creates a new ListRankedTasksHandler.
func NewListRankedTasksHandler(taskRepo task.Repository, engine *services.PriorityEngine, logger *slog.Logger) *ListRankedTasksHandler {
	if engine == nil {
		engine = services.NewPriorityEngine(services.DefaultPriorityEngineConfig())
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ListRankedTasksHandler{taskRepo: taskRepo, engine: engine, logger: logger}
}

// Handle executes the ListRankedTasksQuery.
func (h *ListRankedTasksHandler) Handle(ctx context.Context, query ListRankedTasksQuery) ([]RankedTaskDTO, error) {
	tasks, err := h.taskRepo.List(ctx, task.ListFilter{IncludeDone: query.IncludeDone})
	if err != nil {
		return nil, err
	}

	// Relations cross projects, so the whole snapshot is scored first.
	scored := inProject(h.engine.ScoreAll(tasks), query.ProjectID)
	ranked := services.SortByScore(scored)
	if query.Limit > 0 && len(ranked) > query.Limit {
		ranked = ranked[:query.Limit]
	}

	dtos := make([]RankedTaskDTO, 0, len(ranked))
	for i, st := range ranked {
		dtos = append(dtos, toRankedDTO(i+1, st))
	}

	h.logger.DebugContext(ctx, "ranked tasks listed", "snapshot", len(tasks), "returned", len(dtos))
	return dtos, nil
}
