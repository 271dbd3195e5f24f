package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/maccam912/vikunja-ai/internal/productivity/application/services"
	"github.com/maccam912/vikunja-ai/internal/productivity/domain/task"
	sharedApplication "github.com/maccam912/vikunja-ai/internal/shared/application"
	"github.com/maccam912/vikunja-ai/pkg/observability"
)

// RecalculatePrioritiesCommand refreshes the stored score snapshot.
type RecalculatePrioritiesCommand struct{}

// RecalculatePrioritiesResult describes the outcome of the scan.
type RecalculatePrioritiesResult struct {
	TaskCount    int
	BlockedCount int
	TopTaskID    int64
	TopScore     float64
	CalculatedAt time.Time
}

// RecalculatePrioritiesHandler scores every open task and stores the result.
type RecalculatePrioritiesHandler struct {
	taskRepo  task.Repository
	scoreRepo task.PriorityScoreRepository
	engine    *services.PriorityEngine
	uow       sharedApplication.UnitOfWork
	events    *EventEmitter
	metrics   observability.Metrics
	logger    *slog.Logger
}

// NewRecalculatePrioritiesHandler creates a new handler.
func NewRecalculatePrioritiesHandler(
	taskRepo task.Repository,
	scoreRepo task.PriorityScoreRepository,
	engine *services.PriorityEngine,
	uow sharedApplication.UnitOfWork,
	events *EventEmitter,
	metrics observability.Metrics,
	logger *slog.Logger,
) *RecalculatePrioritiesHandler {
	if engine == nil {
		engine = services.NewPriorityEngine(services.DefaultPriorityEngineConfig())
	}
	if uow == nil {
		uow = sharedApplication.NoopUnitOfWork{}
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RecalculatePrioritiesHandler{
		taskRepo:  taskRepo,
		scoreRepo: scoreRepo,
		engine:    engine,
		uow:       uow,
		events:    events,
		metrics:   metrics,
		logger:    logger,
	}
}

// Handle executes the recalculation.
func (h *RecalculatePrioritiesHandler) Handle(ctx context.Context, _ RecalculatePrioritiesCommand) (*RecalculatePrioritiesResult, error) {
	tasks, err := h.taskRepo.List(ctx, task.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("fetch tasks: %w", err)
	}

	now := time.Now().UTC()
	scored := h.engine.ScoreAll(tasks)
	result := &RecalculatePrioritiesResult{TaskCount: len(scored), CalculatedAt: now}

	scores := make([]task.PriorityScore, 0, len(scored))
	for _, st := range scored {
		if st.Breakdown.IsBlocked {
			result.BlockedCount++
		}
		var blockerIDs, dependentIDs []int64
		for _, b := range services.Blockers(st.Task, tasks) {
			blockerIDs = append(blockerIDs, b.ID)
		}
		for _, d := range services.Dependents(st.Task, tasks) {
			dependentIDs = append(dependentIDs, d.ID)
		}
		scores = append(scores, task.PriorityScore{
			TaskID:       st.Task.ID,
			Title:        st.Task.Title,
			Score:        st.Score,
			Subtotal:     st.Breakdown.Subtotal,
			IsBlocked:    st.Breakdown.IsBlocked,
			BlockerIDs:   blockerIDs,
			DependentIDs: dependentIDs,
			Explanation:  st.Breakdown.Explain(),
			CalculatedAt: now,
		})
	}

	if top, ok := h.engine.TopPriorityTask(tasks); ok {
		result.TopTaskID = top.Task.ID
		result.TopScore = top.Score
	}

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		return h.scoreRepo.ReplaceAll(txCtx, scores)
	})
	if err != nil {
		return nil, fmt.Errorf("store priority scores: %w", err)
	}

	h.metrics.Counter(observability.MetricRecalculations, 1)
	h.metrics.Gauge(observability.MetricTasksScored, float64(result.TaskCount))
	h.metrics.Gauge(observability.MetricTasksBlocked, float64(result.BlockedCount))
	h.metrics.Gauge(observability.MetricTopScore, result.TopScore)

	h.logger.InfoContext(ctx, "priorities recalculated",
		"tasks", result.TaskCount,
		"blocked", result.BlockedCount,
		"top_task_id", result.TopTaskID,
		"top_score", result.TopScore,
	)
	h.events.Emit(ctx, task.NewPrioritiesRecalculated(result.TaskCount, result.BlockedCount, result.TopTaskID, result.TopScore))

	return result, nil
}
