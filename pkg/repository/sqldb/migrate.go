package sqldb

import (
	"embed"
	"errors"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/m-mizutani/goerr/v2"
	"github.com/partnerflow/partnerflow/pkg/utils/logging"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrations embed.FS

// Migrate applies every pending schema migration
func (s *SQL) Migrate() error {
	sub, err := fs.Sub(migrations, "migrations/"+s.driver)
	if err != nil {
		return goerr.Wrap(err, "failed to open migrations", goerr.V("driver", s.driver))
	}
	src, err := iofs.New(sub, ".")
	if err != nil {
		return goerr.Wrap(err, "failed to read migrations", goerr.V("driver", s.driver))
	}

	var dbDriver database.Driver
	switch s.driver {
	case DriverPostgres:
		dbDriver, err = migratepg.WithInstance(s.db.DB, &migratepg.Config{})
	case DriverSQLite:
		dbDriver, err = migratesqlite.WithInstance(s.db.DB, &migratesqlite.Config{})
	default:
		return goerr.Wrap(ErrUnsupportedDriver, "cannot migrate", goerr.V("driver", s.driver))
	}
	if err != nil {
		return goerr.Wrap(err, "failed to prepare migration driver", goerr.V("driver", s.driver))
	}

	m, err := migrate.NewWithInstance("iofs", src, s.driver, dbDriver)
	if err != nil {
		return goerr.Wrap(err, "failed to create migrator", goerr.V("driver", s.driver))
	}

	logging.Default().Info("Running migrations", "driver", s.driver)
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return goerr.Wrap(err, "failed to run migrations", goerr.V("driver", s.driver))
	}

	version, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return goerr.Wrap(err, "failed to read schema version")
	}
	logging.Default().Info("Migrations applied", "driver", s.driver, "version", version)
	return nil
}
