package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"tracker/internal/domain"
	"tracker/internal/errors"
)

type MemoryDeliveryRepository struct {
	mu   sync.RWMutex
	data map[uuid.UUID]domain.Delivery
}

func NewMemoryDeliveryRepository() *MemoryDeliveryRepository {
	return &MemoryDeliveryRepository{
		data: make(map[uuid.UUID]domain.Delivery),
	}
}

func (r *MemoryDeliveryRepository) Insert(ctx context.Context, d domain.Delivery) error {
	if d.ID == uuid.Nil {
		return errors.NewInternalError("inserting delivery: empty id", nil)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.data[d.ID]; exists {
		return errors.NewInternalError(fmt.Sprintf("inserting delivery: duplicate id %s", d.ID), nil)
	}

	r.data[d.ID] = copyDelivery(d)
	return nil
}

func (r *MemoryDeliveryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Delivery, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.data[id]
	if !ok {
		return nil, errors.NewNotFoundError(fmt.Sprintf("Delivery not found: %s", id))
	}

	cp := copyDelivery(d)
	return &cp, nil
}

func (r *MemoryDeliveryRepository) FindAllByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Delivery, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[uuid.UUID]struct{}, len(ids))
	var found []domain.Delivery
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		if d, ok := r.data[id]; ok {
			found = append(found, copyDelivery(d))
		}
	}

	return found, nil
}

func (r *MemoryDeliveryRepository) FindByStartedAtBetween(ctx context.Context, start, end time.Time) ([]domain.Delivery, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	var found []domain.Delivery
	for _, d := range r.data {
		if !d.StartedAt.Before(start) && d.StartedAt.Before(end) {
			found = append(found, copyDelivery(d))
		}
	}
	r.mu.RUnlock()

	sort.Slice(found, func(i, j int) bool { return found[i].StartedAt.Before(found[j].StartedAt) })
	return found, nil
}

func copyDelivery(d domain.Delivery) domain.Delivery {
	if d.FinishedAt != nil {
		t := *d.FinishedAt
		d.FinishedAt = &t
	}
	return d
}
