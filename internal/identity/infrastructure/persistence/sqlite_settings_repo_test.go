package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maccam912/vikunja-ai/internal/identity/domain"
	"github.com/maccam912/vikunja-ai/internal/shared/infrastructure/database"
	_ "github.com/maccam912/vikunja-ai/internal/shared/infrastructure/database/sqlite"
	"github.com/maccam912/vikunja-ai/internal/shared/infrastructure/migrations"
)

func setupSettingsTestDB(t *testing.T) database.Connection {
	t.Helper()
	ctx := context.Background()

	conn, err := database.NewConnection(ctx, database.Config{SQLitePath: t.TempDir() + "/settings.db"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	_, err = migrations.Run(ctx, conn)
	require.NoError(t, err)
	return conn
}

func TestSQLiteSettingsRepository_GetMissing(t *testing.T) {
	repo := NewSQLiteSettingsRepository(setupSettingsTestDB(t))

	_, err := repo.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrSettingsNotFound)
}

func TestSQLiteSettingsRepository_SaveUpserts(t *testing.T) {
	ctx := context.Background()
	conn := setupSettingsTestDB(t)
	repo := NewSQLiteSettingsRepository(conn)
	userID := uuid.New()
	now := time.Date(2026, 7, 1, 8, 30, 0, 0, time.UTC)

	require.NoError(t, repo.Save(ctx, domain.Settings{
		UserID: userID, DefaultProjectID: 2, Model: "a", Theme: domain.ThemeLight, UpdatedAt: now,
	}))
	require.NoError(t, repo.Save(ctx, domain.Settings{
		UserID: userID, DefaultProjectID: 5, Model: "b", Theme: domain.ThemeDark, SystemPrompt: "hi", UpdatedAt: now.Add(time.Hour),
	}))

	got, err := repo.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.DefaultProjectID)
	assert.Equal(t, "b", got.Model)
	assert.Equal(t, domain.ThemeDark, got.Theme)
	assert.Equal(t, "hi", got.SystemPrompt)
	assert.True(t, now.Add(time.Hour).Equal(got.UpdatedAt))

	var count int
	require.NoError(t, conn.QueryRow(ctx, `SELECT COUNT(*) FROM user_settings`).Scan(&count))
	assert.Equal(t, 1, count)
}
