package app

import (
	"fmt"

	identityDomain "github.com/maccam912/vikunja-ai/internal/identity/domain"
	identityPersistence "github.com/maccam912/vikunja-ai/internal/identity/infrastructure/persistence"
	"github.com/maccam912/vikunja-ai/internal/productivity/domain/task"
	productivityPersistence "github.com/maccam912/vikunja-ai/internal/productivity/infrastructure/persistence"
	"github.com/maccam912/vikunja-ai/internal/shared/infrastructure/database"
)

// RepositoryFactory creates repositories based on the database driver.
type RepositoryFactory struct {
	conn   database.Connection
	driver database.Driver
}

// NewRepositoryFactory creates a new repository factory.
func NewRepositoryFactory(conn database.Connection) *RepositoryFactory {
	return &RepositoryFactory{
		conn:   conn,
		driver: conn.Driver(),
	}
}

// PriorityScoreRepository creates a score snapshot repository for the configured driver.
func (f *RepositoryFactory) PriorityScoreRepository() (task.PriorityScoreRepository, error) {
	switch f.driver {
	case database.DriverPostgres:
		return productivityPersistence.NewPostgresPriorityScoreRepository(f.conn), nil
	case database.DriverSQLite:
		return productivityPersistence.NewSQLitePriorityScoreRepository(f.conn), nil
	default:
		return nil, fmt.Errorf("unsupported driver: %s", f.driver)
	}
}

// SettingsRepository creates a settings repository for the configured driver.
func (f *RepositoryFactory) SettingsRepository() (identityDomain.SettingsRepository, error) {
	switch f.driver {
	case database.DriverPostgres:
		return identityPersistence.NewPostgresSettingsRepository(f.conn), nil
	case database.DriverSQLite:
		return identityPersistence.NewSQLiteSettingsRepository(f.conn), nil
	default:
		return nil, fmt.Errorf("unsupported driver: %s", f.driver)
	}
}

// Driver returns the database driver type.
func (f *RepositoryFactory) Driver() database.Driver {
	return f.driver
}

// Connection returns the underlying database connection.
func (f *RepositoryFactory) Connection() database.Connection {
	return f.conn
}
