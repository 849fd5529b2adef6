package db

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	// postgres driver registration for migrations
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrator is the subset of *migrate.Migrate used here.
type Migrator interface {
	Up() error
	Close() (error, error)
}

// MigrationEngine builds a Migrator; tests swap it to avoid a database.
type MigrationEngine func(databaseURL string) (Migrator, error)

func DefaultEngine(databaseURL string) (Migrator, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}

	return migrate.NewWithSourceInstance("iofs", src, databaseURL)
}

// MigrateUp applies every pending migration. No pending migrations is not an error.
func MigrateUp(databaseURL string, engine MigrationEngine) (err error) {
	if engine == nil {
		engine = DefaultEngine
	}

	m, err := engine(databaseURL)
	if err != nil {
		return err
	}

	defer func() {
		serr, dberr := m.Close()
		if serr != nil {
			err = errors.Join(err, fmt.Errorf("migration source: %w", serr))
		}
		if dberr != nil {
			err = errors.Join(err, fmt.Errorf("migration database: %w", dberr))
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up: %w", err)
	}

	return nil
}
