package testutil

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"tracker/internal/domain"
	"tracker/internal/infrastructure/mysql"
)

// SetupTestDB opens the MySQL test database named by TEST_MYSQL_DSN
// (default root:@tcp(localhost:3306)/tracker_test) and skips the test when it
// cannot be reached.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("TEST_MYSQL_DSN")
	if dsn == "" {
		dsn = "root:@tcp(localhost:3306)/tracker_test?parseTime=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("test database not available: %v", err)
	}

	return db
}

func SetupTestTables(t *testing.T, db *sql.DB) {
	t.Helper()

	if err := mysql.EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("failed to create deliveries table: %v", err)
	}
}

func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	if _, err := db.Exec("DELETE FROM deliveries"); err != nil {
		t.Logf("failed to clean table deliveries: %v", err)
	}

	db.Close()
}

// NewDelivery builds a valid IN_PROGRESS delivery started at startedAt.
func NewDelivery(startedAt time.Time) domain.Delivery {
	return domain.Delivery{
		ID:        uuid.New(),
		VehicleID: "AHV-123",
		Address:   "Test Street 1",
		StartedAt: startedAt.UTC(),
		Status:    domain.DeliveryStatusInProgress,
	}
}

// NewFinishedDelivery builds a valid DELIVERED delivery.
func NewFinishedDelivery(startedAt, finishedAt time.Time) domain.Delivery {
	d := NewDelivery(startedAt)
	f := finishedAt.UTC()
	d.FinishedAt = &f
	d.Status = domain.DeliveryStatusDelivered
	return d
}
