package queries

import (
	"context"

	"github.com/maccam912/vikunja-ai/internal/productivity/application/services"
	"github.com/maccam912/vikunja-ai/internal/productivity/domain/task"
)

// ExplainTaskQuery asks why a task scores the way it does.
type ExplainTaskQuery struct {
	TaskID int64
}

// TaskExplanation is the breakdown of one task plus its resolved neighbours.
type TaskExplanation struct {
	Task       RankedTaskDTO `json:"task"`
	Blockers   []TaskRef     `json:"blockers"`
	Dependents []TaskRef     `json:"dependents"`
}

// TaskRef names a related task.
type TaskRef struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

// ExplainTaskHandler handles the ExplainTaskQuery.
type ExplainTaskHandler struct {
	taskRepo task.Repository
	engine   *services.PriorityEngine
}

// NewExplainTaskHandler creates a new ExplainTaskHandler.
func NewExplainTaskHandler(taskRepo task.Repository, engine *services.PriorityEngine) *ExplainTaskHandler {
	if engine == nil {
		engine = services.NewPriorityEngine(services.DefaultPriorityEngineConfig())
	}
	return &ExplainTaskHandler{taskRepo: taskRepo, engine: engine}
}

// Handle scores the task against the full snapshot, completed tasks included,
// and reports its rank among all tasks.
func (h *ExplainTaskHandler) Handle(ctx context.Context, query ExplainTaskQuery) (*TaskExplanation, error) {
	tasks, err := h.taskRepo.List(ctx, task.ListFilter{IncludeDone: true})
	if err != nil {
		return nil, err
	}

	ranked := services.SortByScore(h.engine.ScoreAll(tasks))
	for i, st := range ranked {
		if st.Task.ID != query.TaskID {
			continue
		}
		return &TaskExplanation{
			Task:       toRankedDTO(i+1, st),
			Blockers:   refs(services.Blockers(st.Task, tasks)),
			Dependents: refs(services.Dependents(st.Task, tasks)),
		}, nil
	}
	return nil, task.ErrTaskNotFound
}

func refs(tasks []task.Task) []TaskRef {
	out := make([]TaskRef, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, TaskRef{ID: t.ID, Title: t.Title, Done: t.Done})
	}
	return out
}
