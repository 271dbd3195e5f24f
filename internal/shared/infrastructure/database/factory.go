package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds database configuration.
type Config struct {
	// Driver is detected from URL when empty.
	Driver Driver
	// URL is a Postgres connection string or a SQLite location.
	URL string
	// SQLitePath takes precedence over a SQLite URL. Defaults to
	// ~/.vikunja-ai/data.db.
	SQLitePath string
	// MaxConns caps the Postgres pool.
	MaxConns int
}

// ConnectFunc opens a connection for one driver.
type ConnectFunc func(ctx context.Context, cfg Config) (Connection, error)

var connectors = map[Driver]ConnectFunc{}

// Register makes a driver available to NewConnection. Driver packages call it
// from init, so importing them for side effects is enough.
func Register(driver Driver, fn ConnectFunc) {
	connectors[driver] = fn
}

// NewConnection opens a connection for the configured or detected driver.
func NewConnection(ctx context.Context, cfg Config) (Connection, error) {
	if cfg.Driver == "" {
		cfg.Driver = DetectDriver(cfg.URL)
	}
	if cfg.Driver == DriverSQLite && cfg.SQLitePath == "" {
		cfg.SQLitePath = SQLitePathFromURL(cfg.URL)
	}

	connect, ok := connectors[cfg.Driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	return connect(ctx, cfg)
}

// DefaultSQLitePath returns the default SQLite database path.
func DefaultSQLitePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".vikunja-ai", "data.db")
}

// EnsureDirectory creates the parent directory for a file path if it doesn't exist.
func EnsureDirectory(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
