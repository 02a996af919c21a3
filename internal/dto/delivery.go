package dto

import (
	"time"

	"tracker/internal/domain"
)

// DeliveryDraft is the orchestrator input for a new delivery.
type DeliveryDraft struct {
	VehicleID  string
	Address    string
	StartedAt  *time.Time
	FinishedAt *time.Time
	Status     *domain.DeliveryStatus
}
