package database

import (
	"strconv"
	"strings"
)

// Driver represents a database backend type.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

// String returns the string representation of the driver.
func (d Driver) String() string {
	return string(d)
}

// IsValid returns true if the driver is a known type.
func (d Driver) IsValid() bool {
	return d == DriverPostgres || d == DriverSQLite
}

// Placeholder returns the bind marker for the n-th (1-based) argument.
func (d Driver) Placeholder(n int) string {
	if d == DriverPostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// DetectDriver picks a backend from a connection string. An empty string or a
// bare file path selects SQLite; URLs with an unknown scheme yield an invalid
// driver.
func DetectDriver(url string) Driver {
	switch {
	case url == "":
		return DriverSQLite
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return DriverPostgres
	case strings.HasPrefix(url, "sqlite://"), strings.HasPrefix(url, "file:"):
		return DriverSQLite
	case strings.Contains(url, "://"):
		return Driver(url[:strings.Index(url, "://")])
	default:
		return DriverSQLite
	}
}

// SQLitePathFromURL strips sqlite:// and file: prefixes.
func SQLitePathFromURL(url string) string {
	for _, prefix := range []string{"sqlite://", "file:"} {
		if strings.HasPrefix(url, prefix) {
			return strings.TrimPrefix(url, prefix)
		}
	}
	return url
}
