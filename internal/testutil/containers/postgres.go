//go:build integration

package containers

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"tracker/internal/config"
	"tracker/internal/infrastructure/postgres"
)

// PostgresContainer wraps a testcontainers PostgreSQL instance with the
// deliveries schema applied.
type PostgresContainer struct {
	Container *tcpostgres.PostgresContainer
	DB        *sqlx.DB
}

func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("tracker_test"),
		tcpostgres.WithUsername("tracker"),
		tcpostgres.WithPassword("tracker"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := postgres.Connect(ctx, dsn, config.DatabaseConfig{MaxOpenConns: 5, MaxIdleConns: 2})
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to connect to postgres: %v", err)
	}

	if err := postgres.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to apply schema: %v", err)
	}

	return &PostgresContainer{Container: container, DB: db}
}

func (p *PostgresContainer) Reset(t *testing.T) {
	t.Helper()
	if _, err := p.DB.Exec("TRUNCATE TABLE deliveries"); err != nil {
		t.Fatalf("failed to truncate deliveries: %v", err)
	}
}

func (p *PostgresContainer) Terminate() {
	_ = p.DB.Close()
	_ = p.Container.Terminate(context.Background())
}
