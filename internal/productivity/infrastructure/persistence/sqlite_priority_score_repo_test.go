package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maccam912/vikunja-ai/internal/productivity/domain/task"
	"github.com/maccam912/vikunja-ai/internal/shared/application"
	"github.com/maccam912/vikunja-ai/internal/shared/infrastructure/database"
	_ "github.com/maccam912/vikunja-ai/internal/shared/infrastructure/database/sqlite"
	"github.com/maccam912/vikunja-ai/internal/shared/infrastructure/migrations"
)

func setupSQLiteTestDB(t *testing.T) database.Connection {
	t.Helper()
	ctx := context.Background()

	conn, err := database.NewConnection(ctx, database.Config{SQLitePath: t.TempDir() + "/scores.db"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	_, err = migrations.Run(ctx, conn)
	require.NoError(t, err)
	return conn
}

func TestSQLitePriorityScoreRepository_ReplaceAllAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLitePriorityScoreRepository(setupSQLiteTestDB(t))
	now := time.Date(2026, 2, 3, 4, 5, 6, 7, time.UTC)

	first := []task.PriorityScore{
		{TaskID: 1, Title: "old", Score: 10, Subtotal: 10, CalculatedAt: now},
	}
	require.NoError(t, repo.ReplaceAll(ctx, first))

	second := []task.PriorityScore{
		{TaskID: 2, Title: "blocked", Score: 3, Subtotal: 10, IsBlocked: true, BlockerIDs: []int64{3}, CalculatedAt: now},
		{TaskID: 3, Title: "blocker", Score: 40.5, Subtotal: 40.5, DependentIDs: []int64{2, 4}, Explanation: "base 25.5 + blocking 15", CalculatedAt: now},
		{TaskID: 4, Title: "tie", Score: 3, Subtotal: 3, CalculatedAt: now},
	}
	require.NoError(t, repo.ReplaceAll(ctx, second))

	all, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{3, 2, 4}, []int64{all[0].TaskID, all[1].TaskID, all[2].TaskID})
	assert.Equal(t, []int64{2, 4}, all[0].DependentIDs)
	assert.Nil(t, all[0].BlockerIDs)
	assert.True(t, all[1].IsBlocked)
	assert.True(t, now.Equal(all[0].CalculatedAt))

	top, err := repo.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, int64(3), top[0].TaskID)

	_, err = repo.Get(ctx, 1)
	assert.ErrorIs(t, err, task.ErrTaskNotFound)
}

func TestSQLitePriorityScoreRepository_Get(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLitePriorityScoreRepository(setupSQLiteTestDB(t))
	now := time.Now().UTC()

	require.NoError(t, repo.ReplaceAll(ctx, []task.PriorityScore{
		{TaskID: 9, Title: "x", Score: 1.5, Subtotal: 5, IsBlocked: true, BlockerIDs: []int64{1, 2}, Explanation: "e", CalculatedAt: now},
	}))

	got, err := repo.Get(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, "x", got.Title)
	assert.Equal(t, 1.5, got.Score)
	assert.Equal(t, 5.0, got.Subtotal)
	assert.Equal(t, []int64{1, 2}, got.BlockerIDs)
	assert.Equal(t, "e", got.Explanation)
}

func TestSQLitePriorityScoreRepository_RollbackKeepsPreviousSnapshot(t *testing.T) {
	ctx := context.Background()
	conn := setupSQLiteTestDB(t)
	repo := NewSQLitePriorityScoreRepository(conn)
	uow := database.NewUnitOfWork(conn)
	now := time.Now().UTC()

	require.NoError(t, repo.ReplaceAll(ctx, []task.PriorityScore{{TaskID: 1, CalculatedAt: now}}))

	err := application.WithUnitOfWork(ctx, uow, func(ctx context.Context) error {
		if err := repo.ReplaceAll(ctx, []task.PriorityScore{{TaskID: 2, CalculatedAt: now}}); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	all, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, int64(1), all[0].TaskID)
}
