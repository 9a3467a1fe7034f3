package sqldb

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/m-mizutani/goerr/v2"
	"github.com/partnerflow/partnerflow/pkg/domain/interfaces"

	_ "github.com/lib/pq"  // postgres driver
	_ "modernc.org/sqlite" // sqlite driver
)

// Supported database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// ErrUnsupportedDriver is returned for a driver other than postgres or sqlite
var ErrUnsupportedDriver = goerr.New("unsupported database driver")

// sqlitePragmas are applied to every sqlite connection
const sqlitePragmas = "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_time_format=sqlite"

type SQL struct {
	db         *sqlx.DB
	driver     string
	partner    *partnerRepository
	automation *automationRepository
}

var _ interfaces.Repository = &SQL{}

type Option func(*SQL)

// WithMaxOpenConns limits the size of the connection pool
func WithMaxOpenConns(n int) Option {
	return func(s *SQL) {
		s.db.SetMaxOpenConns(n)
	}
}

// New connects to the database. dsn is a lib/pq connection string for
// postgres and a file path for sqlite.
func New(ctx context.Context, driver, dsn string, opts ...Option) (*SQL, error) {
	switch driver {
	case DriverPostgres:
	case DriverSQLite:
		dsn = withSQLitePragmas(dsn)
	default:
		return nil, goerr.Wrap(ErrUnsupportedDriver, "cannot open database", goerr.V("driver", driver))
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to connect database", goerr.V("driver", driver))
	}
	if driver == DriverSQLite {
		// sqlite allows one writer at a time
		db.SetMaxOpenConns(1)
	}

	s := &SQL{
		db:         db,
		driver:     driver,
		partner:    newPartnerRepository(db),
		automation: newAutomationRepository(db),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func withSQLitePragmas(dsn string) string {
	if strings.Contains(dsn, "?") {
		return dsn + "&" + sqlitePragmas
	}
	return dsn + "?" + sqlitePragmas
}

func (s *SQL) Partner() interfaces.PartnerRepository {
	return s.partner
}

func (s *SQL) Automation() interfaces.AutomationRepository {
	return s.automation
}

// DB returns the underlying connection pool
func (s *SQL) DB() *sqlx.DB {
	return s.db
}

func (s *SQL) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
