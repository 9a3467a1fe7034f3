package repository_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/partnerflow/partnerflow/pkg/domain/interfaces"
	"github.com/partnerflow/partnerflow/pkg/repository/firestore"
	"github.com/partnerflow/partnerflow/pkg/repository/memory"
	"github.com/partnerflow/partnerflow/pkg/repository/sqldb"
)

// repositoryBackends lists every backend the shared suites run against
var repositoryBackends = map[string]func(t *testing.T) interfaces.Repository{
	"Memory":    newMemoryRepository,
	"SQLite":    newSQLiteRepository,
	"Postgres":  newPostgresRepository,
	"Firestore": newFirestoreRepository,
}

func runForEachBackend(t *testing.T, suite func(t *testing.T, newRepo func(t *testing.T) interfaces.Repository)) {
	for name, newRepo := range repositoryBackends {
		t.Run(name, func(t *testing.T) {
			suite(t, newRepo)
		})
	}
}

func newMemoryRepository(t *testing.T) interfaces.Repository {
	return memory.New()
}

func newSQLiteRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "partnerflow.db")
	repo, err := sqldb.New(ctx, sqldb.DriverSQLite, path)
	gt.NoError(t, err).Required()
	gt.NoError(t, repo.Migrate()).Required()
	t.Cleanup(func() {
		gt.NoError(t, repo.Close())
	})
	return repo
}

func newPostgresRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	repo, err := sqldb.New(ctx, sqldb.DriverPostgres, dsn)
	gt.NoError(t, err).Required()
	gt.NoError(t, repo.Migrate()).Required()
	_, err = repo.DB().ExecContext(ctx, "TRUNCATE partners, automations RESTART IDENTITY")
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		gt.NoError(t, repo.Close())
	})
	return repo
}

func newFirestoreRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}

	var opts []firestore.Option
	if databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID"); databaseID != "" {
		opts = append(opts, firestore.WithDatabaseID(databaseID))
	}

	ctx := context.Background()
	prefix := fmt.Sprintf("test_%d", time.Now().UnixNano())
	repo, err := firestore.New(ctx, projectID, append(opts, firestore.WithCollectionPrefix(prefix))...)
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		gt.NoError(t, repo.Close())
	})
	return repo
}
