package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	identityPersistence "github.com/maccam912/vikunja-ai/internal/identity/infrastructure/persistence"
	productivityPersistence "github.com/maccam912/vikunja-ai/internal/productivity/infrastructure/persistence"
	"github.com/maccam912/vikunja-ai/internal/shared/infrastructure/database"
)

// stubConnection implements database.Connection for driver selection tests.
type stubConnection struct {
	database.Executor
	driver database.Driver
}

func (s stubConnection) Driver() database.Driver { return s.driver }
func (s stubConnection) Close() error { return nil }
func (s stubConnection) Ping(ctx context.Context) error { return nil }
func (s stubConnection) BeginTx(ctx context.Context) (database.Transaction, error) {
	return nil, database.ErrNoTransaction
}

func TestRepositoryFactory_SQLite(t *testing.T) {
	factory := NewRepositoryFactory(stubConnection{driver: database.DriverSQLite})

	scores, err := factory.PriorityScoreRepository()
	require.NoError(t, err)
	assert.IsType(t, &productivityPersistence.SQLitePriorityScoreRepository{}, scores)

	settings, err := factory.SettingsRepository()
	require.NoError(t, err)
	assert.IsType(t, &identityPersistence.SQLiteSettingsRepository{}, settings)
}

func TestRepositoryFactory_Postgres(t *testing.T) {
	factory := NewRepositoryFactory(stubConnection{driver: database.DriverPostgres})

	scores, err := factory.PriorityScoreRepository()
	require.NoError(t, err)
	assert.IsType(t, &productivityPersistence.PostgresPriorityScoreRepository{}, scores)

	settings, err := factory.SettingsRepository()
	require.NoError(t, err)
	assert.IsType(t, &identityPersistence.PostgresSettingsRepository{}, settings)
}

func TestRepositoryFactory_UnsupportedDriver(t *testing.T) {
	factory := NewRepositoryFactory(stubConnection{driver: "mysql"})

	_, err := factory.PriorityScoreRepository()
	assert.Error(t, err)
	_, err = factory.SettingsRepository()
	assert.Error(t, err)
	assert.Equal(t, database.Driver("mysql"), factory.Driver())
}
