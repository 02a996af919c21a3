package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracker/internal/errors"
	"tracker/internal/testutil"
)

// Unit Tests

func TestNewMySQLDeliveryRepository(t *testing.T) {
	db := &sql.DB{}
	repo := NewMySQLDeliveryRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

func TestMySQLRepository_FindAllByIDs_EmptyList(t *testing.T) {
	repo := NewMySQLDeliveryRepository(&sql.DB{})

	found, err := repo.FindAllByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, found)
}

// Integration Tests

func TestMySQLRepository_InsertAndFindByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLDeliveryRepository(db)
	ctx := context.Background()

	d := testutil.NewFinishedDelivery(day.Add(10*time.Hour), day.Add(15*time.Hour))
	require.NoError(t, repo.Insert(ctx, d))

	got, err := repo.FindByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.ID, got.ID)
	assert.Equal(t, d.VehicleID, got.VehicleID)
	assert.Equal(t, d.Address, got.Address)
	assert.True(t, d.StartedAt.Equal(got.StartedAt))
	require.NotNil(t, got.FinishedAt)
	assert.True(t, d.FinishedAt.Equal(*got.FinishedAt))
	assert.Equal(t, d.Status, got.Status)
}

func TestMySQLRepository_InsertInProgress_NullFinishedAt(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLDeliveryRepository(db)
	ctx := context.Background()

	d := testutil.NewDelivery(day)
	require.NoError(t, repo.Insert(ctx, d))

	got, err := repo.FindByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Nil(t, got.FinishedAt)
}

func TestMySQLRepository_FindByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLDeliveryRepository(db)

	got, err := repo.FindByID(context.Background(), uuid.New())
	assert.Nil(t, got)
	_, ok := errors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestMySQLRepository_FindAllByIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLDeliveryRepository(db)
	ctx := context.Background()

	a := testutil.NewDelivery(day)
	b := testutil.NewDelivery(day.Add(time.Hour))
	require.NoError(t, repo.Insert(ctx, a))
	require.NoError(t, repo.Insert(ctx, b))

	found, err := repo.FindAllByIDs(ctx, []uuid.UUID{a.ID, uuid.New(), b.ID})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.ElementsMatch(t, []uuid.UUID{a.ID, b.ID}, []uuid.UUID{found[0].ID, found[1].ID})
}

func TestMySQLRepository_FindByStartedAtBetween(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLDeliveryRepository(db)
	ctx := context.Background()

	late := testutil.NewDelivery(day.Add(20 * time.Hour))
	early := testutil.NewDelivery(day.Add(8 * time.Hour))
	outside := testutil.NewDelivery(day.Add(25 * time.Hour))
	require.NoError(t, repo.Insert(ctx, late))
	require.NoError(t, repo.Insert(ctx, early))
	require.NoError(t, repo.Insert(ctx, outside))

	found, err := repo.FindByStartedAtBetween(ctx, day, day.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, early.ID, found[0].ID)
	assert.Equal(t, late.ID, found[1].ID)
}
