// Package sqlstore implements storage.Store on database/sql. PostgreSQL is
// the production backend; SQLite serves embedded runs and tests.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/Vasu1712/scenyx-chat/pkg/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type dialect struct {
	driverName    string
	idColumn      string
	timestampType string
}

var dialects = map[string]dialect{
	DriverPostgres: {driverName: "postgres", idColumn: "BIGSERIAL PRIMARY KEY", timestampType: "TIMESTAMPTZ"},
	DriverSQLite:   {driverName: "sqlite3", idColumn: "INTEGER PRIMARY KEY AUTOINCREMENT", timestampType: "TIMESTAMP"},
}

// Store implements storage.Store using a SQL database.
type Store struct {
	db      *sql.DB
	dialect dialect
}

// Open connects to the database identified by driver ("postgres" or
// "sqlite") and dataSourceName, and verifies the connection.
func Open(ctx context.Context, driver, dataSourceName string) (*Store, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(d.driverName, dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if driver == DriverSQLite {
		// A single connection keeps :memory: databases alive and serializes writers.
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logger.Info().Str("driver", driver).Msg("connected to database")
	return &Store{db: db, dialect: d}, nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

type rowScanner interface {
	Scan(dest ...any) error
}
