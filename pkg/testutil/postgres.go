package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	pkgpostgres "github.com/lendwise/loanrisk/pkg/postgres"
)

// PostgresContainer wraps a testcontainers PostgreSQL instance.
type PostgresContainer struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	DSN       string
}

// NewPostgresContainer starts a PostgreSQL container for testing and
// registers its cleanup with t.
func NewPostgresContainer(ctx context.Context, t *testing.T) *PostgresContainer {
	t.Helper()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("ml_monitoring"),
		postgres.WithUsername("ml_user"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	pc := &PostgresContainer{Container: pgContainer}
	t.Cleanup(func() { pc.cleanup(t) })

	pc.DSN, err = pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	pc.Pool, err = pgxpool.New(ctx, pc.DSN)
	if err != nil {
		t.Fatalf("failed to create pgxpool: %v", err)
	}
	if err := pkgpostgres.HealthCheck(ctx, pc.Pool); err != nil {
		t.Fatalf("failed to ping postgres: %v", err)
	}

	return pc
}

// Migrate applies the golang-migrate migrations in dir.
func (pc *PostgresContainer) Migrate(t *testing.T, dir string) {
	t.Helper()

	abs, err := filepath.Abs(dir)
	if err != nil {
		t.Fatalf("failed to resolve migrations dir %s: %v", dir, err)
	}
	if _, err := pkgpostgres.RunMigrations(pc.DSN, "file://"+filepath.ToSlash(abs)); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
}

// Truncate empties the given tables between subtests.
func (pc *PostgresContainer) Truncate(t *testing.T, tables ...string) {
	t.Helper()

	for _, table := range tables {
		if _, err := pc.Pool.Exec(context.Background(), "TRUNCATE TABLE "+table); err != nil {
			t.Fatalf("failed to truncate %s: %v", table, err)
		}
	}
}

func (pc *PostgresContainer) cleanup(t *testing.T) {
	t.Helper()

	if pc.Pool != nil {
		pc.Pool.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := pc.Container.Terminate(ctx); err != nil {
		t.Logf("warning: failed to terminate postgres container: %v", err)
	}
}
