package commands

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/maccam912/vikunja-ai/internal/productivity/domain/task"
	"github.com/maccam912/vikunja-ai/internal/shared/domain"
)

// mockTaskRepo is a mock implementation of task.Repository.
type mockTaskRepo struct {
	mock.Mock
}

func (m *mockTaskRepo) List(ctx context.Context, filter task.ListFilter) ([]task.Task, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]task.Task), args.Error(1)
}

func (m *mockTaskRepo) Get(ctx context.Context, id int64) (*task.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *mockTaskRepo) Create(ctx context.Context, draft task.Draft) (*task.Task, error) {
	args := m.Called(ctx, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *mockTaskRepo) Update(ctx context.Context, t *task.Task) (*task.Task, error) {
	args := m.Called(ctx, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *mockTaskRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockTaskRepo) AddRelation(ctx context.Context, id int64, kind task.RelationKind, otherID int64) error {
	return m.Called(ctx, id, kind, otherID).Error(0)
}

func (m *mockTaskRepo) RemoveRelation(ctx context.Context, id int64, kind task.RelationKind, otherID int64) error {
	return m.Called(ctx, id, kind, otherID).Error(0)
}

// mockScoreRepo is a mock implementation of task.PriorityScoreRepository.
type mockScoreRepo struct {
	mock.Mock
}

func (m *mockScoreRepo) ReplaceAll(ctx context.Context, scores []task.PriorityScore) error {
	return m.Called(ctx, scores).Error(0)
}

func (m *mockScoreRepo) Get(ctx context.Context, taskID int64) (*task.PriorityScore, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.PriorityScore), args.Error(1)
}

func (m *mockScoreRepo) List(ctx context.Context, limit int) ([]task.PriorityScore, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]task.PriorityScore), args.Error(1)
}

// mockUnitOfWork is a mock implementation of UnitOfWork.
type mockUnitOfWork struct {
	mock.Mock
}

func (m *mockUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	args := m.Called(ctx)
	return args.Get(0).(context.Context), args.Error(1)
}

func (m *mockUnitOfWork) Commit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockUnitOfWork) Rollback(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	events []domain.DomainEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, events ...domain.DomainEvent) error {
	p.events = append(p.events, events...)
	return p.err
}

func (p *recordingPublisher) routingKeys() []string {
	keys := make([]string, 0, len(p.events))
	for _, e := range p.events {
		keys = append(keys, e.RoutingKey())
	}
	return keys
}
