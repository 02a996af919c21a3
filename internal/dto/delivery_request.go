package dto

import "time"

// Pointer fields distinguish an absent value from a zero one.
type CreateDeliveryRequest struct {
	VehicleID  *string    `json:"vehicleId"`
	Address    *string    `json:"address"`
	StartedAt  *time.Time `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt"`
	Status     *string    `json:"status"`
}

type InvoiceRequest struct {
	DeliveryIDs []string `json:"deliveryIds"`
}
