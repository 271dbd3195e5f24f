package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maccam912/vikunja-ai/internal/productivity/domain/task"
)

func TestRepository_CreateListFilter(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(
		task.Task{ID: 4, Title: "old", ProjectID: 1, Done: true},
		task.Task{ID: 2, Title: "open", ProjectID: 2},
	)

	created, err := repo.Create(ctx, task.Draft{ProjectID: 1, Title: "new"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), created.ID)
	assert.NotNil(t, created.Updated)

	open, err := repo.List(ctx, task.ListFilter{})
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, int64(2), open[0].ID)
	assert.Equal(t, int64(5), open[1].ID)

	project1, err := repo.List(ctx, task.ListFilter{IncludeDone: true, ProjectID: 1})
	require.NoError(t, err)
	assert.Len(t, project1, 2)
}

func TestRepository_RelationsAreSymmetric(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(task.Task{ID: 1, Title: "a"}, task.Task{ID: 2, Title: "b"})

	require.NoError(t, repo.AddRelation(ctx, 1, task.RelationBlocking, 2))
	require.NoError(t, repo.AddRelation(ctx, 1, task.RelationBlocking, 2))

	a, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	b, err := repo.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, a.BlockingIDs())
	assert.Equal(t, []int64{1}, b.BlockedByIDs())

	require.NoError(t, repo.RemoveRelation(ctx, 1, task.RelationBlocking, 2))
	b, err = repo.Get(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, b.Relations)
}

func TestRepository_UpdateKeepsRelations(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(task.Task{ID: 1, Title: "a"}, task.Task{ID: 2, Title: "b"})
	require.NoError(t, repo.AddRelation(ctx, 1, task.RelationRelated, 2))

	a, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	a.Title = "renamed"
	a.Relations = nil

	updated, err := repo.Update(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.Len(t, updated.Relations, 1)
}

func TestRepository_DeleteDropsEdges(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(task.Task{ID: 1, Title: "a"}, task.Task{ID: 2, Title: "b"})
	require.NoError(t, repo.AddRelation(ctx, 1, task.RelationBlocked, 2))

	require.NoError(t, repo.Delete(ctx, 2))
	assert.ErrorIs(t, repo.Delete(ctx, 2), task.ErrTaskNotFound)

	a, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, a.Relations)

	_, err = repo.Get(ctx, 2)
	assert.ErrorIs(t, err, task.ErrTaskNotFound)
}

func TestRepository_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(task.Task{ID: 1, Title: "a"})

	a, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	a.Title = "mutated"

	again, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "a", again.Title)
}
