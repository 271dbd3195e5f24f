package queries

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/maccam912/vikunja-ai/internal/productivity/application/services"
	"github.com/maccam912/vikunja-ai/internal/productivity/domain/task"
	"github.com/maccam912/vikunja-ai/internal/productivity/domain/value_objects"
)

// mockTaskRepo is a mock implementation of task.Repository. Only List is
// used by queries.
type mockTaskRepo struct {
	mock.Mock
	task.Repository
}

func (m *mockTaskRepo) List(ctx context.Context, filter task.ListFilter) ([]task.Task, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]task.Task), args.Error(1)
}

var testNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func testEngine() *services.PriorityEngine {
	return services.NewPriorityEngine(services.DefaultPriorityEngineConfig(), services.WithClock(func() time.Time { return testNow }))
}

func snapshot() []task.Task {
	overdue := testNow.Add(-time.Hour)
	return []task.Task{
		{ID: 1, Title: "write tests", Priority: value_objects.PriorityMedium},
		{ID: 2, Title: "fix outage", Priority: value_objects.PriorityHigh, DueDate: &overdue},
		{ID: 3, Title: "unblock deploy", Priority: value_objects.PriorityLow,
			Relations: []task.Relation{{Kind: task.RelationBlocking, TaskID: 4}}},
		{ID: 4, Title: "deploy", Priority: value_objects.PriorityUrgent,
			Relations: []task.Relation{{Kind: task.RelationBlocked, TaskID: 3}}},
		{ID: 5, Title: "archived", Priority: value_objects.PriorityDoNow, Done: true},
	}
}

func TestListRankedTasksHandler_Handle(t *testing.T) {
	ctx := context.Background()
	repo := new(mockTaskRepo)
	handler := NewListRankedTasksHandler(repo, testEngine(), nil)

	repo.On("List", ctx, task.ListFilter{IncludeDone: true, ProjectID: 0}).Return(snapshot(), nil)

	ranked, err := handler.Handle(ctx, ListRankedTasksQuery{IncludeDone: true})
	require.NoError(t, err)
	require.Len(t, ranked, 5)

	ids := make([]int64, 0, len(ranked))
	for i, r := range ranked {
		assert.Equal(t, i+1, r.Rank)
		ids = append(ids, r.ID)
	}
	// fix outage 30+50=80, unblock deploy 10+15+12/2=31, write tests 20, deploy 40*0.3=12.
	assert.Equal(t, []int64{2, 3, 1, 4, 5}, ids)
	assert.True(t, ranked[3].Blocked)
	assert.Equal(t, []int64{3}, ranked[3].BlockedBy)
	assert.Equal(t, "high", ranked[0].Priority)
	assert.Contains(t, ranked[0].Explanation, "due=50.00")
	assert.Zero(t, ranked[4].Score)
}

func TestListRankedTasksHandler_Limit(t *testing.T) {
	ctx := context.Background()
	repo := new(mockTaskRepo)
	handler := NewListRankedTasksHandler(repo, testEngine(), nil)

	repo.On("List", ctx, task.ListFilter{}).Return(snapshot()[:4], nil)

	ranked, err := handler.Handle(ctx, ListRankedTasksQuery{Limit: 2})
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, int64(2), ranked[0].ID)
	assert.Equal(t, int64(3), ranked[1].ID)
}

// crossProjectSnapshot has a project 1 task waiting on a project 2 task.
func crossProjectSnapshot() []task.Task {
	return []task.Task{
		{ID: 1, Title: "ship release", ProjectID: 1, Priority: value_objects.PriorityHigh,
			Relations: []task.Relation{{Kind: task.RelationBlocked, TaskID: 2}}},
		{ID: 2, Title: "sign contract", ProjectID: 2, Priority: value_objects.PriorityLow,
			Relations: []task.Relation{{Kind: task.RelationBlocking, TaskID: 1}}},
		{ID: 3, Title: "update docs", ProjectID: 1, Priority: value_objects.PriorityMedium},
	}
}

func TestListRankedTasksHandler_ProjectKeepsOutsideBlockers(t *testing.T) {
	ctx := context.Background()
	repo := new(mockTaskRepo)
	handler := NewListRankedTasksHandler(repo, testEngine(), nil)

	repo.On("List", ctx, task.ListFilter{}).Return(crossProjectSnapshot(), nil)

	ranked, err := handler.Handle(ctx, ListRankedTasksQuery{ProjectID: 1})
	require.NoError(t, err)
	require.Len(t, ranked, 2)

	// update docs 20, ship release 30*0.3=9.
	assert.Equal(t, int64(3), ranked[0].ID)
	assert.Equal(t, int64(1), ranked[1].ID)
	assert.True(t, ranked[1].Blocked)
	assert.Equal(t, 1, ranked[1].Breakdown.BlockerCount)
	assert.InDelta(t, 9.0, ranked[1].Score, 1e-9)
	assert.Equal(t, 2, ranked[1].Rank)
	repo.AssertExpectations(t)
}

func TestListRankedTasksHandler_Error(t *testing.T) {
	ctx := context.Background()
	repo := new(mockTaskRepo)
	repo.On("List", ctx, mock.Anything).Return(nil, assert.AnError)

	_, err := NewListRankedTasksHandler(repo, nil, nil).Handle(ctx, ListRankedTasksQuery{})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestGetTopPriorityHandler_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("returns highest open task", func(t *testing.T) {
		repo := new(mockTaskRepo)
		repo.On("List", ctx, task.ListFilter{}).Return(snapshot(), nil)

		top, err := NewGetTopPriorityHandler(repo, testEngine()).Handle(ctx, GetTopPriorityQuery{})
		require.NoError(t, err)
		assert.Equal(t, int64(2), top.ID)
		assert.Equal(t, 1, top.Rank)
		assert.InDelta(t, 80.0, top.Score, 1e-9)
	})

	t.Run("project scope keeps outside blockers", func(t *testing.T) {
		repo := new(mockTaskRepo)
		repo.On("List", ctx, task.ListFilter{}).Return(crossProjectSnapshot(), nil)

		top, err := NewGetTopPriorityHandler(repo, testEngine()).Handle(ctx, GetTopPriorityQuery{ProjectID: 1})
		require.NoError(t, err)
		assert.Equal(t, int64(3), top.ID)
		assert.False(t, top.Blocked)
	})

	t.Run("project without open tasks", func(t *testing.T) {
		repo := new(mockTaskRepo)
		repo.On("List", ctx, task.ListFilter{}).Return(crossProjectSnapshot(), nil)

		_, err := NewGetTopPriorityHandler(repo, testEngine()).Handle(ctx, GetTopPriorityQuery{ProjectID: 9})
		assert.ErrorIs(t, err, ErrNoIncompleteTasks)
	})

	t.Run("no incomplete tasks", func(t *testing.T) {
		repo := new(mockTaskRepo)
		repo.On("List", ctx, task.ListFilter{}).Return([]task.Task{{ID: 1, Done: true}}, nil)

		_, err := NewGetTopPriorityHandler(repo, testEngine()).Handle(ctx, GetTopPriorityQuery{})
		assert.ErrorIs(t, err, ErrNoIncompleteTasks)
	})
}

func TestExplainTaskHandler_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("explains blocker", func(t *testing.T) {
		repo := new(mockTaskRepo)
		repo.On("List", ctx, task.ListFilter{IncludeDone: true}).Return(snapshot(), nil)

		got, err := NewExplainTaskHandler(repo, testEngine()).Handle(ctx, ExplainTaskQuery{TaskID: 3})
		require.NoError(t, err)

		assert.Equal(t, 2, got.Task.Rank)
		assert.InDelta(t, 21.0, got.Task.Breakdown.BlockingBonus, 1e-9)
		assert.Equal(t, 1, got.Task.Breakdown.DependentCount)
		assert.Empty(t, got.Blockers)
		assert.Equal(t, []TaskRef{{ID: 4, Title: "deploy"}}, got.Dependents)
	})

	t.Run("explains blocked task", func(t *testing.T) {
		repo := new(mockTaskRepo)
		repo.On("List", ctx, task.ListFilter{IncludeDone: true}).Return(snapshot(), nil)

		got, err := NewExplainTaskHandler(repo, testEngine()).Handle(ctx, ExplainTaskQuery{TaskID: 4})
		require.NoError(t, err)
		assert.True(t, got.Task.Breakdown.IsBlocked)
		assert.InDelta(t, 40.0, got.Task.Breakdown.Subtotal, 1e-9)
		assert.InDelta(t, 12.0, got.Task.Score, 1e-9)
		assert.Equal(t, []TaskRef{{ID: 3, Title: "unblock deploy"}}, got.Blockers)
	})

	t.Run("unknown task", func(t *testing.T) {
		repo := new(mockTaskRepo)
		repo.On("List", ctx, task.ListFilter{IncludeDone: true}).Return(snapshot(), nil)

		_, err := NewExplainTaskHandler(repo, testEngine()).Handle(ctx, ExplainTaskQuery{TaskID: 99})
		assert.ErrorIs(t, err, task.ErrTaskNotFound)
	})
}
