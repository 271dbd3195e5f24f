package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/maccam912/vikunja-ai/internal/productivity/domain/task"
	"github.com/maccam912/vikunja-ai/internal/productivity/domain/value_objects"
	"github.com/maccam912/vikunja-ai/pkg/observability"
)

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

// memoryStore is an in-memory Store. Setting failing makes every command
// return an error.
type memoryStore struct {
	mu      sync.Mutex
	values  map[string][]byte
	sets    map[string]map[string]struct{}
	ttls    map[string]time.Duration
	failing bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		values: map[string][]byte{},
		sets:   map[string]map[string]struct{}{},
		ttls:   map[string]time.Duration{},
	}
}

var errRedisDown = errors.New("redis down")

func (s *memoryStore) Get(_ context.Context, key string) *redis.StringCmd {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return redis.NewStringResult("", errRedisDown)
	}
	v, ok := s.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(string(v), nil)
}

func (s *memoryStore) Set(_ context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return redis.NewStatusResult("", errRedisDown)
	}
	s.values[key] = value.([]byte)
	s.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (s *memoryStore) SAdd(_ context.Context, key string, members ...any) *redis.IntCmd {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return redis.NewIntResult(0, errRedisDown)
	}
	if s.sets[key] == nil {
		s.sets[key] = map[string]struct{}{}
	}
	for _, m := range members {
		s.sets[key][m.(string)] = struct{}{}
	}
	return redis.NewIntResult(int64(len(members)), nil)
}

func (s *memoryStore) SMembers(_ context.Context, key string) *redis.StringSliceCmd {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return redis.NewStringSliceResult(nil, errRedisDown)
	}
	var out []string
	for m := range s.sets[key] {
		out = append(out, m)
	}
	return redis.NewStringSliceResult(out, nil)
}

func (s *memoryStore) Del(_ context.Context, keys ...string) *redis.IntCmd {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return redis.NewIntResult(0, errRedisDown)
	}
	for _, k := range keys {
		delete(s.values, k)
		delete(s.sets, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func sampleTasks() []task.Task {
	due := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return []task.Task{
		{ID: 1, Title: "A", Priority: value_objects.PriorityHigh, DueDate: &due,
			Relations: []task.Relation{{Kind: task.RelationBlocking, TaskID: 2}}},
		{ID: 2, Title: "B"},
	}
}

func TestCachedRepository_ListCachesSnapshot(t *testing.T) {
	ctx := context.Background()
	inner := new(mockTaskRepo)
	store := newMemoryStore()
	metrics := observability.NewInMemoryMetrics()
	repo := NewCachedRepository(inner, store, time.Minute, metrics, nil)

	filter := task.ListFilter{}
	inner.On("List", ctx, filter).Return(sampleTasks(), nil).Once()

	first, err := repo.List(ctx, filter)
	require.NoError(t, err)
	second, err := repo.List(ctx, filter)
	require.NoError(t, err)

	assert.Equal(t, sampleTasks(), first)
	assert.Equal(t, first, second)
	assert.Equal(t, time.Minute, store.ttls[listKey(filter)])
	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricCacheHits))
	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricCacheMisses))
	inner.AssertExpectations(t)
}

func TestCachedRepository_FiltersUseSeparateKeys(t *testing.T) {
	assert.NotEqual(t, listKey(task.ListFilter{}), listKey(task.ListFilter{IncludeDone: true}))
	assert.NotEqual(t, listKey(task.ListFilter{}), listKey(task.ListFilter{ProjectID: 3}))
}

func TestCachedRepository_MutationsInvalidate(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name   string
		setup  func(m *mockTaskRepo)
		mutate func(r *CachedRepository) error
	}{
		{
			name:  "create",
			setup: func(m *mockTaskRepo) { m.On("Create", ctx, mock.Anything).Return(&task.Task{ID: 3}, nil) },
			mutate: func(r *CachedRepository) error {
				_, err := r.Create(ctx, task.Draft{ProjectID: 1, Title: "x"})
				return err
			},
		},
		{
			name:  "update",
			setup: func(m *mockTaskRepo) { m.On("Update", ctx, mock.Anything).Return(&task.Task{ID: 1}, nil) },
			mutate: func(r *CachedRepository) error {
				_, err := r.Update(ctx, &task.Task{ID: 1})
				return err
			},
		},
		{
			name:   "delete",
			setup:  func(m *mockTaskRepo) { m.On("Delete", ctx, int64(1)).Return(nil) },
			mutate: func(r *CachedRepository) error { return r.Delete(ctx, 1) },
		},
		{
			name: "add relation",
			setup: func(m *mockTaskRepo) {
				m.On("AddRelation", ctx, int64(1), task.RelationBlocking, int64(2)).Return(nil)
			},
			mutate: func(r *CachedRepository) error { return r.AddRelation(ctx, 1, task.RelationBlocking, 2) },
		},
		{
			name: "failed remove relation",
			setup: func(m *mockTaskRepo) {
				m.On("RemoveRelation", ctx, int64(1), task.RelationBlocking, int64(2)).Return(assert.AnError)
			},
			mutate: func(r *CachedRepository) error {
				err := r.RemoveRelation(ctx, 1, task.RelationBlocking, 2)
				if errors.Is(err, assert.AnError) {
					return nil
				}
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner := new(mockTaskRepo)
			store := newMemoryStore()
			repo := NewCachedRepository(inner, store, 0, nil, nil)

			inner.On("List", ctx, task.ListFilter{}).Return(sampleTasks(), nil).Twice()
			tt.setup(inner)

			_, err := repo.List(ctx, task.ListFilter{})
			require.NoError(t, err)
			require.NoError(t, tt.mutate(repo))
			assert.Empty(t, store.values)

			_, err = repo.List(ctx, task.ListFilter{})
			require.NoError(t, err)
			inner.AssertExpectations(t)
		})
	}
}

func TestCachedRepository_RedisFailureFallsThrough(t *testing.T) {
	ctx := context.Background()
	inner := new(mockTaskRepo)
	store := newMemoryStore()
	store.failing = true
	repo := NewCachedRepository(inner, store, 0, nil, observability.DiscardLogger())

	inner.On("List", ctx, task.ListFilter{}).Return(sampleTasks(), nil).Twice()
	inner.On("Delete", ctx, int64(2)).Return(nil)

	for range 2 {
		tasks, err := repo.List(ctx, task.ListFilter{})
		require.NoError(t, err)
		assert.Len(t, tasks, 2)
	}
	assert.NoError(t, repo.Delete(ctx, 2))
	inner.AssertExpectations(t)
}

func TestCachedRepository_InnerErrorNotCached(t *testing.T) {
	ctx := context.Background()
	inner := new(mockTaskRepo)
	store := newMemoryStore()
	repo := NewCachedRepository(inner, store, 0, nil, nil)

	inner.On("List", ctx, task.ListFilter{}).Return(nil, assert.AnError)

	_, err := repo.List(ctx, task.ListFilter{})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Empty(t, store.values)
}

func TestCachedRepository_GetBypassesCache(t *testing.T) {
	ctx := context.Background()
	inner := new(mockTaskRepo)
	repo := NewCachedRepository(inner, newMemoryStore(), 0, nil, nil)

	inner.On("Get", ctx, int64(5)).Return(nil, task.ErrTaskNotFound)
	_, err := repo.Get(ctx, 5)
	assert.ErrorIs(t, err, task.ErrTaskNotFound)
}
