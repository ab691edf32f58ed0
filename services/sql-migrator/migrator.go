// Package migrator applies the embedded SQL migrations to a Postgres database.
package migrator

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/rudderlabs/sheetsync/sql/migrations"
)

// Migrator runs the migrations of one directory under sql/migrations and
// records their versions in MigrationsTable.
type Migrator struct {
	Handle          *sql.DB
	MigrationsTable string
}

// Migrate applies every pending up migration of migrationsDir.
func (m *Migrator) Migrate(migrationsDir string) error {
	source, err := iofs.New(migrations.FS, migrationsDir)
	if err != nil {
		return fmt.Errorf("opening migrations %s: %w", migrationsDir, err)
	}

	driver, err := postgres.WithInstance(m.Handle, &postgres.Config{MigrationsTable: m.MigrationsTable})
	if err != nil {
		return fmt.Errorf("creating postgres driver: %w", err)
	}

	mi, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}

	if err := mi.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations %s: %w", migrationsDir, err)
	}
	return nil
}
