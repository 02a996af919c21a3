package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tracker/internal/domain"
	"tracker/internal/dto"
	apperrors "tracker/internal/errors"
)

type DeliveryRepository interface {
	Insert(ctx context.Context, d domain.Delivery) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Delivery, error)
	FindAllByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Delivery, error)
	FindByStartedAtBetween(ctx context.Context, start, end time.Time) ([]domain.Delivery, error)
}

type InvoiceClient interface {
	SendInvoice(ctx context.Context, deliveryID uuid.UUID, address string) (*domain.InvoiceReceipt, error)
}

type DeliveryMetrics interface {
	IncrementDeliveriesCreated()
}

type DeliveryService struct {
	repo        DeliveryRepository
	invoices    InvoiceClient
	metrics     DeliveryMetrics
	logger      *zap.Logger
	concurrency int
	location    *time.Location
}

func NewDeliveryService(
	repo DeliveryRepository,
	invoices InvoiceClient,
	metrics DeliveryMetrics,
	logger *zap.Logger,
	concurrency int,
	location *time.Location,
) *DeliveryService {
	if concurrency < 1 {
		concurrency = 1
	}
	if location == nil {
		location = time.UTC
	}
	return &DeliveryService{
		repo:        repo,
		invoices:    invoices,
		metrics:     metrics,
		logger:      logger,
		concurrency: concurrency,
		location:    location,
	}
}

func (s *DeliveryService) CreateDelivery(ctx context.Context, draft dto.DeliveryDraft) (*domain.Delivery, error) {
	if err := validateDraft(draft); err != nil {
		s.logger.Warn("delivery rejected", zap.Error(err))
		return nil, err
	}

	delivery := domain.Delivery{
		ID:        uuid.New(),
		VehicleID: draft.VehicleID,
		Address:   draft.Address,
		StartedAt: draft.StartedAt.UTC(),
		Status:    *draft.Status,
	}
	if draft.FinishedAt != nil {
		finished := draft.FinishedAt.UTC()
		delivery.FinishedAt = &finished
	}

	if err := s.repo.Insert(ctx, delivery); err != nil {
		return nil, fmt.Errorf("saving delivery: %w", err)
	}

	s.metrics.IncrementDeliveriesCreated()
	s.logger.Info("delivery created",
		zap.String("deliveryId", delivery.ID.String()),
		zap.String("vehicleId", delivery.VehicleID),
		zap.String("status", string(delivery.Status)),
	)

	return &delivery, nil
}

func validateDraft(draft dto.DeliveryDraft) error {
	if strings.TrimSpace(draft.VehicleID) == "" {
		return apperrors.NewInvalidStateError("vehicleId must not be blank")
	}
	if strings.TrimSpace(draft.Address) == "" {
		return apperrors.NewInvalidStateError("address must not be blank")
	}
	if draft.StartedAt == nil {
		return apperrors.NewInvalidStateError("startedAt must not be null")
	}
	if draft.Status == nil || strings.TrimSpace(string(*draft.Status)) == "" {
		return apperrors.NewInvalidStateError("Status must not be null nor blank")
	}

	status := *draft.Status
	if !status.Valid() {
		return apperrors.NewInvalidStateError(fmt.Sprintf("unknown delivery status %q", string(status)))
	}
	if status == domain.DeliveryStatusInProgress && draft.FinishedAt != nil {
		return apperrors.NewInvalidStateError("IN_PROGRESS deliveries must not have finishedAt")
	}
	if status == domain.DeliveryStatusDelivered && draft.FinishedAt == nil {
		return apperrors.NewInvalidStateError("DELIVERED deliveries must have finishedAt")
	}

	return nil
}

func (s *DeliveryService) GetDelivery(ctx context.Context, id uuid.UUID) (*domain.Delivery, error) {
	return s.repo.FindByID(ctx, id)
}

// SendInvoices checks that every id exists before any invoice goes out, then
// invoices each distinct delivery once. Outcomes follow the first-occurrence
// order of ids. Any collaborator error fails the whole batch.
func (s *DeliveryService) SendInvoices(ctx context.Context, ids []uuid.UUID) ([]domain.InvoiceOutcome, error) {
	if len(ids) == 0 {
		return nil, apperrors.NewInvalidStateError("Delivery IDs must not be empty")
	}

	unique := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	found, err := s.repo.FindAllByIDs(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("loading deliveries: %w", err)
	}

	byID := make(map[uuid.UUID]domain.Delivery, len(found))
	for _, d := range found {
		byID[d.ID] = d
	}

	var missing []string
	for _, id := range unique {
		if _, ok := byID[id]; !ok {
			missing = append(missing, id.String())
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.NewNotFoundError("Deliveries not found: " + strings.Join(missing, ", "))
	}

	outcomes := make([]domain.InvoiceOutcome, len(unique))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, id := range unique {
		delivery := byID[id]
		g.Go(func() error {
			receipt, err := s.invoices.SendInvoice(gctx, delivery.ID, delivery.Address)
			if err != nil {
				return err
			}
			outcomes[i] = domain.InvoiceOutcome{
				DeliveryID: delivery.ID,
				InvoiceID:  receipt.ID,
				Sent:       receipt.Sent,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("invoice batch failed", zap.Int("deliveries", len(unique)), zap.Error(err))
		return nil, err
	}

	var degraded int
	for _, o := range outcomes {
		if !o.Sent {
			degraded++
		}
	}
	if degraded > 0 {
		s.logger.Warn("invoices issued with fallback ids", zap.Int("fallbacks", degraded), zap.Int("deliveries", len(unique)))
	}
	s.logger.Info("invoices sent", zap.Int("deliveries", len(unique)))

	return outcomes, nil
}

// BusinessSummary covers deliveries started during the calendar day of day,
// read in the service time zone.
func (s *DeliveryService) BusinessSummary(ctx context.Context, day time.Time) (*domain.BusinessSummary, error) {
	local := day.In(s.location)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.location)
	end := start.AddDate(0, 0, 1)

	deliveries, err := s.repo.FindByStartedAtBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("loading deliveries for %s: %w", start.Format(time.DateOnly), err)
	}

	summary := &domain.BusinessSummary{Deliveries: int64(len(deliveries))}
	if len(deliveries) > 1 {
		span := deliveries[len(deliveries)-1].StartedAt.Sub(deliveries[0].StartedAt)
		summary.AverageMinutesBetweenDeliveryStart = int64(span/time.Minute) / int64(len(deliveries)-1)
	}

	return summary, nil
}

func (s *DeliveryService) Location() *time.Location {
	return s.location
}
