// Package repomanager vends dialect-specific repositories and runs the
// embedded schema migrations.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophvault/internal/dbx"
	"github.com/dmitrijs2005/gophvault/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/gophvault/internal/server/repositories/users"
)

// Supported drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type RepositoryManager interface {
	Dialect() string
	RunMigrations(ctx context.Context, db *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Credentials(db dbx.DBTX) credentials.Repository
}

// sqlOpen is a seam for tests.
var sqlOpen = sql.Open

// Open opens a connection pool for driver and returns it with the matching
// manager. "pgx" and "postgresql" are accepted as aliases of postgres.
func Open(driver, dsn string) (*sql.DB, RepositoryManager, error) {
	if dsn == "" {
		return nil, nil, fmt.Errorf("empty dsn for driver %q", driver)
	}

	switch strings.ToLower(driver) {
	case DriverPostgres, "postgresql", "pgx":
		db, err := sqlOpen("pgx", dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		return db, NewPostgresRepositoryManager(), nil

	case DriverSQLite, "sqlite3":
		db, err := sqlOpen("sqlite", dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		// one connection keeps in-memory databases alive and avoids SQLITE_BUSY
		db.SetMaxOpenConns(1)
		return db, NewSQLiteRepositoryManager(), nil

	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}
