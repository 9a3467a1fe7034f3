package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/partnerflow/partnerflow/pkg/domain/interfaces"
	"github.com/partnerflow/partnerflow/pkg/repository/firestore"
	"github.com/partnerflow/partnerflow/pkg/repository/memory"
	"github.com/partnerflow/partnerflow/pkg/repository/sqldb"
	"github.com/partnerflow/partnerflow/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Repository backends
const (
	BackendMemory    = "memory"
	BackendSQLite    = "sqlite"
	BackendPostgres  = "postgres"
	BackendFirestore = "firestore"
)

// Repository holds CLI flags for repository backend configuration
type Repository struct {
	backend      string
	dsn          string
	autoMigrate  bool
	projectID    string
	databaseID   string
	collectionNS string
}

// Flags returns CLI flags for repository configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Usage:       "Repository backend type (memory, sqlite, postgres or firestore)",
			Category:    "Repository",
			Value:       BackendMemory,
			Sources:     cli.EnvVars("PARTNERFLOW_REPOSITORY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "database-dsn",
			Usage:       "Database connection string (file path for sqlite)",
			Category:    "Repository",
			Sources:     cli.EnvVars("PARTNERFLOW_DATABASE_DSN"),
			Destination: &r.dsn,
		},
		&cli.BoolFlag{
			Name:        "database-auto-migrate",
			Usage:       "Apply pending schema migrations on startup",
			Category:    "Repository",
			Sources:     cli.EnvVars("PARTNERFLOW_DATABASE_AUTO_MIGRATE"),
			Destination: &r.autoMigrate,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("PARTNERFLOW_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Category:    "Repository",
			Sources:     cli.EnvVars("PARTNERFLOW_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
		&cli.StringFlag{
			Name:        "firestore-collection-prefix",
			Usage:       "Prefix of the Firestore collection names",
			Category:    "Repository",
			Sources:     cli.EnvVars("PARTNERFLOW_FIRESTORE_COLLECTION_PREFIX"),
			Destination: &r.collectionNS,
		},
	}
}

func (r Repository) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", r.backend),
		slog.Int("dsn.len", len(r.dsn)),
		slog.String("project_id", r.projectID),
		slog.String("database_id", r.databaseID),
	)
}

// Backend returns the configured backend type
func (r *Repository) Backend() string {
	return r.backend
}

// Configure initializes and returns a repository based on the configured backend.
// The caller is responsible for calling Close() on the returned repository.
func (r *Repository) Configure(ctx context.Context) (interfaces.Repository, error) {
	switch r.backend {
	case BackendFirestore:
		if r.projectID == "" {
			return nil, goerr.Wrap(ErrMissingFlag, "firestore-project-id is required when using firestore backend",
				goerr.V(FlagKey, "firestore-project-id"))
		}
		var opts []firestore.Option
		if r.databaseID != "" {
			opts = append(opts, firestore.WithDatabaseID(r.databaseID))
		}
		if r.collectionNS != "" {
			opts = append(opts, firestore.WithCollectionPrefix(r.collectionNS))
		}
		repo, err := firestore.New(ctx, r.projectID, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore repository")
		}
		logging.Default().Info("Using Firestore repository",
			"project_id", r.projectID,
			"database_id", r.databaseID,
		)
		return repo, nil

	case BackendSQLite, BackendPostgres:
		repo, err := r.openSQL(ctx)
		if err != nil {
			return nil, err
		}
		if r.autoMigrate {
			if err := repo.Migrate(); err != nil {
				_ = repo.Close()
				return nil, goerr.Wrap(err, "failed to migrate database")
			}
		}
		logging.Default().Info("Using SQL repository", "driver", r.backend)
		return repo, nil

	case BackendMemory:
		logging.Default().Info("Using in-memory repository (development mode)")
		return memory.New(), nil

	default:
		return nil, goerr.Wrap(ErrInvalidConfig, "invalid repository backend", goerr.V(BackendKey, r.backend))
	}
}

// ConfigureSQL opens the SQL repository for schema migration
func (r *Repository) ConfigureSQL(ctx context.Context) (*sqldb.SQL, error) {
	if r.backend != BackendSQLite && r.backend != BackendPostgres {
		return nil, goerr.Wrap(ErrInvalidConfig, "schema migration needs a sqlite or postgres backend",
			goerr.V(BackendKey, r.backend))
	}
	return r.openSQL(ctx)
}

func (r *Repository) openSQL(ctx context.Context) (*sqldb.SQL, error) {
	if r.dsn == "" {
		return nil, goerr.Wrap(ErrMissingFlag, "database-dsn is required for SQL backends",
			goerr.V(FlagKey, "database-dsn"), goerr.V(BackendKey, r.backend))
	}
	repo, err := sqldb.New(ctx, r.backend, r.dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize SQL repository")
	}
	return repo, nil
}
