package dto

import (
	"time"

	apperrors "tracker/internal/errors"
)

type DeliveryResponse struct {
	ID         string     `json:"id"`
	VehicleID  string     `json:"vehicleId"`
	Address    string     `json:"address"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt"`
	Status     string     `json:"status"`
}

type InvoiceResponse struct {
	DeliveryID string `json:"deliveryId"`
	InvoiceID  string `json:"invoiceId"`
	Sent       bool   `json:"sent"`
}

type BusinessSummaryResponse struct {
	Deliveries                         int64 `json:"deliveries"`
	AverageMinutesBetweenDeliveryStart int64 `json:"averageMinutesBetweenDeliveryStart"`
}

type ErrorResponse struct {
	Error     string                       `json:"error"`
	TraceID   string                       `json:"traceId"`
	Timestamp time.Time                    `json:"timestamp"`
	Details   []apperrors.ValidationDetail `json:"details,omitempty"`
}
