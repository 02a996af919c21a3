package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"tracker/internal/domain"
	"tracker/internal/errors"
)

type deliveryRow struct {
	ID         uuid.UUID    `db:"id"`
	VehicleID  string       `db:"vehicle_id"`
	Address    string       `db:"address"`
	StartedAt  time.Time    `db:"started_at"`
	FinishedAt sql.NullTime `db:"finished_at"`
	Status     string       `db:"status"`
}

func (r deliveryRow) toDomain() domain.Delivery {
	d := domain.Delivery{
		ID:        r.ID,
		VehicleID: r.VehicleID,
		Address:   r.Address,
		StartedAt: r.StartedAt.UTC(),
		Status:    domain.DeliveryStatus(r.Status),
	}
	if r.FinishedAt.Valid {
		t := r.FinishedAt.Time.UTC()
		d.FinishedAt = &t
	}
	return d
}

type PostgresDeliveryRepository struct {
	db *sqlx.DB
}

func NewPostgresDeliveryRepository(db *sqlx.DB) *PostgresDeliveryRepository {
	return &PostgresDeliveryRepository{db: db}
}

func (r *PostgresDeliveryRepository) Insert(ctx context.Context, d domain.Delivery) error {
	const q = `
		INSERT INTO deliveries (id, vehicle_id, address, started_at, finished_at, status)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	var finishedAt sql.NullTime
	if d.FinishedAt != nil {
		finishedAt = sql.NullTime{Time: d.FinishedAt.UTC(), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, q,
		d.ID.String(), d.VehicleID, d.Address, d.StartedAt.UTC(), finishedAt, string(d.Status),
	)
	if err != nil {
		return errors.NewInternalError("delivery insert", err)
	}
	return nil
}

func (r *PostgresDeliveryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Delivery, error) {
	const q = `SELECT ` + deliveryColumns + ` FROM deliveries WHERE id = $1`

	var row deliveryRow
	if err := r.db.GetContext(ctx, &row, q, id.String()); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError(fmt.Sprintf("Delivery not found: %s", id))
		}
		return nil, errors.NewInternalError("delivery get by id", err)
	}

	d := row.toDomain()
	return &d, nil
}

func (r *PostgresDeliveryRepository) FindAllByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Delivery, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	args := make([]string, len(ids))
	for i, id := range ids {
		args[i] = id.String()
	}

	q, params, err := sqlx.In(`SELECT `+deliveryColumns+` FROM deliveries WHERE id IN (?)`, args)
	if err != nil {
		return nil, errors.NewInternalError("delivery find all by ids", err)
	}

	return r.selectDeliveries(ctx, r.db.Rebind(q), params...)
}

func (r *PostgresDeliveryRepository) FindByStartedAtBetween(ctx context.Context, start, end time.Time) ([]domain.Delivery, error) {
	const q = `
		SELECT ` + deliveryColumns + `
		FROM deliveries
		WHERE started_at >= $1 AND started_at < $2
		ORDER BY started_at ASC
	`

	return r.selectDeliveries(ctx, q, start.UTC(), end.UTC())
}

func (r *PostgresDeliveryRepository) selectDeliveries(ctx context.Context, q string, args ...interface{}) ([]domain.Delivery, error) {
	var rows []deliveryRow
	if err := r.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.NewInternalError("delivery select", err)
	}

	if len(rows) == 0 {
		return nil, nil
	}

	deliveries := make([]domain.Delivery, len(rows))
	for i, row := range rows {
		deliveries[i] = row.toDomain()
	}
	return deliveries, nil
}
