package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"tracker/internal/domain"
	"tracker/internal/dto"
	apperrors "tracker/internal/errors"
)

const (
	invoiceUnavailableMessage = "Invoice service is currently unavailable. Please try again later."
	unexpectedErrorMessage    = "An unexpected error occurred. Please contact support with trace ID: "
)

type DeliveryService interface {
	CreateDelivery(ctx context.Context, draft dto.DeliveryDraft) (*domain.Delivery, error)
	SendInvoices(ctx context.Context, ids []uuid.UUID) ([]domain.InvoiceOutcome, error)
	GetDelivery(ctx context.Context, id uuid.UUID) (*domain.Delivery, error)
	BusinessSummary(ctx context.Context, day time.Time) (*domain.BusinessSummary, error)
}

type DeliveryController struct {
	service  DeliveryService
	logger   *zap.Logger
	location *time.Location
	now      func() time.Time
}

func NewDeliveryController(service DeliveryService, logger *zap.Logger, location *time.Location) *DeliveryController {
	if location == nil {
		location = time.UTC
	}
	return &DeliveryController{
		service:  service,
		logger:   logger,
		location: location,
		now:      time.Now,
	}
}

func (c *DeliveryController) CreateDelivery(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateDeliveryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	if err := validateCreateDeliveryRequest(req); err != nil {
		c.handleError(w, err)
		return
	}

	status := domain.DeliveryStatus(*req.Status)
	delivery, err := c.service.CreateDelivery(r.Context(), dto.DeliveryDraft{
		VehicleID:  *req.VehicleID,
		Address:    *req.Address,
		StartedAt:  req.StartedAt,
		FinishedAt: req.FinishedAt,
		Status:     &status,
	})
	if err != nil {
		c.handleError(w, err)
		return
	}

	c.writeJSON(w, http.StatusCreated, toDeliveryResponse(delivery))
}

func validateCreateDeliveryRequest(req dto.CreateDeliveryRequest) error {
	var details []apperrors.ValidationDetail

	if req.VehicleID == nil || strings.TrimSpace(*req.VehicleID) == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "vehicleId",
			Message: "Vehicle ID must not be blank",
		})
	}

	if req.Address == nil || strings.TrimSpace(*req.Address) == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "address",
			Message: "Address must not be blank",
		})
	}

	if req.StartedAt == nil {
		details = append(details, apperrors.ValidationDetail{
			Field:   "startedAt",
			Message: "Started at must not be null",
		})
	}

	if req.Status == nil || strings.TrimSpace(*req.Status) == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "status",
			Message: "Status must not be blank",
		})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}

	return nil
}

func (c *DeliveryController) SendInvoices(w http.ResponseWriter, r *http.Request) {
	var req dto.InvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	ids, err := parseInvoiceRequest(req)
	if err != nil {
		c.handleError(w, err)
		return
	}

	outcomes, err := c.service.SendInvoices(r.Context(), ids)
	if err != nil {
		c.handleError(w, err)
		return
	}

	response := make([]dto.InvoiceResponse, len(outcomes))
	for i, o := range outcomes {
		response[i] = dto.InvoiceResponse{
			DeliveryID: o.DeliveryID.String(),
			InvoiceID:  o.InvoiceID.String(),
			Sent:       o.Sent,
		}
	}

	c.writeJSON(w, http.StatusOK, response)
}

func parseInvoiceRequest(req dto.InvoiceRequest) ([]uuid.UUID, error) {
	if len(req.DeliveryIDs) == 0 {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "deliveryIds",
			Message: "Delivery IDs must not be empty",
		})
	}

	ids := make([]uuid.UUID, len(req.DeliveryIDs))
	var details []apperrors.ValidationDetail
	for i, raw := range req.DeliveryIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			details = append(details, apperrors.ValidationDetail{
				Field:   "deliveryIds[" + strconv.Itoa(i) + "]",
				Message: "must be a valid UUID",
			})
			continue
		}
		ids[i] = id
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("validation failed", details...)
	}

	return ids, nil
}

func (c *DeliveryController) GetDelivery(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		c.writeValidationError(w, apperrors.ValidationDetail{
			Field:   "id",
			Message: "must be a valid UUID",
		})
		return
	}

	delivery, err := c.service.GetDelivery(r.Context(), id)
	if err != nil {
		c.handleError(w, err)
		return
	}

	c.writeJSON(w, http.StatusOK, toDeliveryResponse(delivery))
}

// BusinessSummary defaults to yesterday when no date is given.
func (c *DeliveryController) BusinessSummary(w http.ResponseWriter, r *http.Request) {
	day := c.now().In(c.location).AddDate(0, 0, -1)
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.ParseInLocation(time.DateOnly, raw, c.location)
		if err != nil {
			c.writeValidationError(w, apperrors.ValidationDetail{
				Field:   "date",
				Message: "date must be formatted as YYYY-MM-DD",
			})
			return
		}
		day = parsed
	}

	summary, err := c.service.BusinessSummary(r.Context(), day)
	if err != nil {
		c.handleError(w, err)
		return
	}

	c.writeJSON(w, http.StatusOK, dto.BusinessSummaryResponse{
		Deliveries:                         summary.Deliveries,
		AverageMinutesBetweenDeliveryStart: summary.AverageMinutesBetweenDeliveryStart,
	})
}

func toDeliveryResponse(d *domain.Delivery) dto.DeliveryResponse {
	return dto.DeliveryResponse{
		ID:         d.ID.String(),
		VehicleID:  d.VehicleID,
		Address:    d.Address,
		StartedAt:  d.StartedAt,
		FinishedAt: d.FinishedAt,
		Status:     string(d.Status),
	}
}

func (c *DeliveryController) handleError(w http.ResponseWriter, err error) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	if ve, ok := apperrors.IsValidationError(err); ok {
		message := joinDetails(ve.Details, ve.Message)
		logger.Warn("validation failed", zap.String("reason", message))
		c.writeError(w, http.StatusBadRequest, traceID, message, ve.Details)
		return
	}

	if ise, ok := apperrors.IsInvalidStateError(err); ok {
		logger.Warn("invalid delivery state", zap.String("reason", ise.Message))
		c.writeError(w, http.StatusBadRequest, traceID, ise.Message, nil)
		return
	}

	if nfe, ok := apperrors.IsNotFoundError(err); ok {
		logger.Warn("delivery not found", zap.String("reason", nfe.Message))
		c.writeError(w, http.StatusNotFound, traceID, nfe.Message, nil)
		return
	}

	if _, ok := apperrors.IsInvoiceUnavailableError(err); ok {
		logger.Error("invoice service error", zap.Error(err))
		c.writeError(w, http.StatusServiceUnavailable, traceID, invoiceUnavailableMessage, nil)
		return
	}

	if ie, ok := apperrors.IsInternalError(err); ok {
		logger.Error("internal error", zap.String("reason", ie.Message), zap.Error(ie.Cause))
		c.writeError(w, http.StatusInternalServerError, traceID, unexpectedErrorMessage+traceID, nil)
		return
	}

	logger.Error("unexpected error", zap.Error(err))
	c.writeError(w, http.StatusInternalServerError, traceID, unexpectedErrorMessage+traceID, nil)
}

// joinDetails renders details as "field: message, field: message".
func joinDetails(details []apperrors.ValidationDetail, fallback string) string {
	if len(details) == 0 {
		return fallback
	}
	parts := make([]string, len(details))
	for i, d := range details {
		parts[i] = d.Field + ": " + d.Message
	}
	return strings.Join(parts, ", ")
}

func (c *DeliveryController) writeValidationError(w http.ResponseWriter, details ...apperrors.ValidationDetail) {
	c.handleError(w, apperrors.NewValidationError("validation failed", details...))
}

func (c *DeliveryController) writeError(w http.ResponseWriter, status int, traceID, message string, details []apperrors.ValidationDetail) {
	c.writeJSON(w, status, dto.ErrorResponse{
		Error:     message,
		TraceID:   traceID,
		Timestamp: c.now().UTC(),
		Details:   details,
	})
}

func (c *DeliveryController) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
