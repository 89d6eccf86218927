package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq" // PostgreSQL driver for database/sql
	"github.com/socialvote/socialvote/migrations"
)

// MigrationDirection selects which way RunMigrations moves the schema.
type MigrationDirection string

const (
	MigrateUp   MigrationDirection = "up"
	MigrateDown MigrationDirection = "down"
)

// MigrationResult reports the schema version after a migration run.
type MigrationResult struct {
	Version uint
	Dirty   bool
	Changed bool
}

// RunMigrations applies the embedded migrations against databaseURL.
// Running up on an already current schema is not an error.
func RunMigrations(databaseURL string, direction MigrationDirection) (*MigrationResult, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance for migrations: %w", err)
	}

	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	switch direction {
	case MigrateUp:
		err = m.Up()
	case MigrateDown:
		err = m.Down()
	default:
		return nil, fmt.Errorf("unknown migration direction %q", direction)
	}

	result := &MigrationResult{Changed: true}
	if err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			return nil, fmt.Errorf("failed to run migrations %s: %w", direction, err)
		}
		result.Changed = false
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return nil, fmt.Errorf("failed to read migration version: %w", err)
	}
	result.Version = version
	result.Dirty = dirty

	return result, nil
}
