package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ru-addr/internal/config"
)

// Driver names registered with database/sql
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Connection holds the database connection
type Connection struct {
	DB     *sql.DB
	Driver string
}

// NewConnection opens a connection using DATABASE_URL or the DB_* variables
func NewConnection() (*Connection, error) {
	return Open(config.DatabaseURL())
}

// Open connects to dsn. "sqlite:" prefixed DSNs and paths ending in .db,
// .sqlite or .sqlite3 use SQLite; everything else is handed to lib/pq.
func Open(dsn string) (*Connection, error) {
	driver, dsn := ResolveDriver(dsn)

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if driver == DriverSQLite {
		// in-memory databases live per connection
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(20)
		db.SetMaxIdleConns(10)
	}

	return &Connection{DB: db, Driver: driver}, nil
}

// ResolveDriver picks the database/sql driver for dsn and strips any
// driver prefix
func ResolveDriver(dsn string) (driver, cleaned string) {
	switch {
	case strings.HasPrefix(dsn, "sqlite://"):
		return DriverSQLite, strings.TrimPrefix(dsn, "sqlite://")
	case strings.HasPrefix(dsn, "sqlite:"):
		return DriverSQLite, strings.TrimPrefix(dsn, "sqlite:")
	case dsn == ":memory:",
		strings.HasPrefix(dsn, "file:"),
		strings.HasSuffix(dsn, ".db"),
		strings.HasSuffix(dsn, ".sqlite"),
		strings.HasSuffix(dsn, ".sqlite3"):
		return DriverSQLite, dsn
	}
	return DriverPostgres, dsn
}

// Close closes the database connection
func (c *Connection) Close() error {
	return c.DB.Close()
}
