package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"tracker/internal/domain"
	"tracker/internal/errors"
)

const deliveryColumns = `id, vehicle_id, address, started_at, finished_at, status`

type MySQLDeliveryRepository struct {
	db *sql.DB
}

func NewMySQLDeliveryRepository(db *sql.DB) *MySQLDeliveryRepository {
	return &MySQLDeliveryRepository{db: db}
}

func (r *MySQLDeliveryRepository) Insert(ctx context.Context, d domain.Delivery) error {
	query := `INSERT INTO deliveries (` + deliveryColumns + `) VALUES (?, ?, ?, ?, ?, ?)`

	var finishedAt sql.NullTime
	if d.FinishedAt != nil {
		finishedAt = sql.NullTime{Time: d.FinishedAt.UTC(), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		d.ID.String(), d.VehicleID, d.Address, d.StartedAt.UTC(), finishedAt, string(d.Status),
	)
	if err != nil {
		return errors.NewInternalError("inserting delivery", err)
	}

	return nil
}

func (r *MySQLDeliveryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Delivery, error) {
	query := `SELECT ` + deliveryColumns + ` FROM deliveries WHERE id = ?`

	d, err := scanDelivery(r.db.QueryRowContext(ctx, query, id.String()))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("Delivery not found: %s", id))
	}
	if err != nil {
		return nil, errors.NewInternalError("querying delivery by id", err)
	}

	return d, nil
}

// FindAllByIDs makes no promise about result order.
func (r *MySQLDeliveryRepository) FindAllByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Delivery, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id.String()
	}

	query := fmt.Sprintf(`SELECT %s FROM deliveries WHERE id IN (%s)`,
		deliveryColumns, strings.Join(placeholders, ", "))

	return r.queryDeliveries(ctx, query, args...)
}

func (r *MySQLDeliveryRepository) FindByStartedAtBetween(ctx context.Context, start, end time.Time) ([]domain.Delivery, error) {
	query := `SELECT ` + deliveryColumns + `
		FROM deliveries
		WHERE started_at >= ? AND started_at < ?
		ORDER BY started_at ASC`

	return r.queryDeliveries(ctx, query, start.UTC(), end.UTC())
}

func (r *MySQLDeliveryRepository) queryDeliveries(ctx context.Context, query string, args ...interface{}) ([]domain.Delivery, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewInternalError("querying deliveries", err)
	}
	defer rows.Close()

	var deliveries []domain.Delivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, errors.NewInternalError("scanning delivery row", err)
		}
		deliveries = append(deliveries, *d)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewInternalError("iterating delivery rows", err)
	}

	return deliveries, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDelivery(row rowScanner) (*domain.Delivery, error) {
	var (
		d          domain.Delivery
		status     string
		finishedAt sql.NullTime
	)

	if err := row.Scan(&d.ID, &d.VehicleID, &d.Address, &d.StartedAt, &finishedAt, &status); err != nil {
		return nil, err
	}

	d.StartedAt = d.StartedAt.UTC()
	if finishedAt.Valid {
		t := finishedAt.Time.UTC()
		d.FinishedAt = &t
	}
	d.Status = domain.DeliveryStatus(status)

	return &d, nil
}
