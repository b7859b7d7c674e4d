package postgres

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // register postgres driver
	_ "github.com/golang-migrate/migrate/v4/source/file"       // register file source driver
)

// ErrDirtyMigration is returned when a previous migration failed halfway and
// the schema needs manual repair.
var ErrDirtyMigration = errors.New("postgres: database schema is dirty")

// RunMigrations applies all pending migrations from source (e.g.
// "file://./migrations") and returns the resulting schema version. Zero
// means the source holds no migrations.
func RunMigrations(dsn, source string) (uint, error) {
	m, err := migrate.New(source, dsn)
	if err != nil {
		return 0, fmt.Errorf("postgres: create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("postgres: run migrations up: %w", err)
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("postgres: read migration version: %w", err)
	case dirty:
		return version, fmt.Errorf("%w at version %d", ErrDirtyMigration, version)
	}
	return version, nil
}
