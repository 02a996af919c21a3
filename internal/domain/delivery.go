package domain

import (
	"time"

	"github.com/google/uuid"
)

type DeliveryStatus string

const (
	DeliveryStatusInProgress DeliveryStatus = "IN_PROGRESS"
	DeliveryStatusDelivered  DeliveryStatus = "DELIVERED"
)

func (s DeliveryStatus) Valid() bool {
	return s == DeliveryStatusInProgress || s == DeliveryStatusDelivered
}

// Delivery is never mutated after creation: IN_PROGRESS deliveries have no
// FinishedAt and DELIVERED ones always do.
type Delivery struct {
	ID         uuid.UUID
	VehicleID  string
	Address    string
	StartedAt  time.Time
	FinishedAt *time.Time
	Status     DeliveryStatus
}

// InvoiceReceipt is what the invoicing collaborator hands back. Sent is false
// when the receipt is a locally generated fallback.
type InvoiceReceipt struct {
	ID   uuid.UUID
	Sent bool
}

type InvoiceOutcome struct {
	DeliveryID uuid.UUID
	InvoiceID  uuid.UUID
	Sent       bool
}

type BusinessSummary struct {
	Deliveries                         int64
	AverageMinutesBetweenDeliveryStart int64
}
