package invoice

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"tracker/internal/config"
	"tracker/internal/domain"
	apperrors "tracker/internal/errors"
	"tracker/internal/infrastructure/metrics"
)

type Sender interface {
	SendInvoice(ctx context.Context, deliveryID uuid.UUID, address string) (*domain.InvoiceReceipt, error)
}

// Policy configures retries and the circuit breaker around a Sender.
type Policy struct {
	MaxRetries          int
	InitialBackoff      time.Duration
	MaxBackoff          time.Duration
	FailureRatio        float64
	MinRequests         uint32
	Interval            time.Duration
	OpenTimeout         time.Duration
	HalfOpenMaxRequests uint32
}

func PolicyFromConfig(cfg config.InvoiceConfig) Policy {
	return Policy{
		MaxRetries:          cfg.MaxRetries,
		InitialBackoff:      cfg.InitialBackoff,
		MaxBackoff:          cfg.MaxBackoff,
		FailureRatio:        cfg.BreakerFailureRatio,
		MinRequests:         uint32(cfg.BreakerMinRequests),
		Interval:            cfg.BreakerInterval,
		OpenTimeout:         cfg.BreakerOpenTimeout,
		HalfOpenMaxRequests: uint32(cfg.BreakerHalfOpenMaxReqs),
	}
}

// callerAbortError marks a failure that happened after the caller's context
// was done. The breaker treats it as neutral: it says nothing about the
// health of the invoice service.
type callerAbortError struct {
	err error
}

func (e *callerAbortError) Error() string { return e.err.Error() }

func (e *callerAbortError) Unwrap() error { return e.err }

func collaboratorHealthy(err error) bool {
	var abort *callerAbortError
	return err == nil || errors.As(err, &abort)
}

// ResilientClient retries transient failures and trips a shared circuit
// breaker. When retries run out or the circuit is open it returns a fallback
// receipt with Sent=false instead of an error.
type ResilientClient struct {
	next    Sender
	policy  Policy
	breaker *gobreaker.CircuitBreaker
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewResilientClient(next Sender, policy Policy, m *metrics.Metrics, logger *zap.Logger) *ResilientClient {
	logger = logger.With(zap.String("component", "invoice_resilience"))

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:         "invoiceService",
		MaxRequests:  policy.HalfOpenMaxRequests,
		Interval:     policy.Interval,
		Timeout:      policy.OpenTimeout,
		IsSuccessful: collaboratorHealthy,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < policy.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= policy.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			m.SetBreakerState(float64(to))
		},
	})

	return &ResilientClient{
		next:    next,
		policy:  policy,
		breaker: breaker,
		metrics: m,
		logger:  logger,
	}
}

func (c *ResilientClient) SendInvoice(ctx context.Context, deliveryID uuid.UUID, address string) (*domain.InvoiceReceipt, error) {
	logger := c.logger.With(zap.String("deliveryId", deliveryID.String()))

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = c.policy.InitialBackoff
	expo.MaxInterval = c.policy.MaxBackoff
	expo.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(expo, uint64(c.policy.MaxRetries)), ctx)

	operation := func() (*domain.InvoiceReceipt, error) {
		if err := ctx.Err(); err != nil {
			return nil, backoff.Permanent(err)
		}
		res, err := c.breaker.Execute(func() (interface{}, error) {
			receipt, err := c.next.SendInvoice(ctx, deliveryID, address)
			if err != nil && ctx.Err() != nil {
				return nil, &callerAbortError{err: err}
			}
			return receipt, err
		})
		if err != nil {
			if !Transient(err) {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		return res.(*domain.InvoiceReceipt), nil
	}

	notify := func(err error, wait time.Duration) {
		logger.Warn("invoice attempt failed, retrying", zap.Duration("backoff", wait), zap.Error(err))
	}

	receipt, err := backoff.RetryNotifyWithData[*domain.InvoiceReceipt](operation, policy, notify)
	switch {
	case err == nil:
		c.metrics.RecordInvoice(metrics.InvoiceOutcomeSent)
		return receipt, nil
	case ctx.Err() != nil:
		return nil, ctx.Err()
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests), Transient(err):
		logger.Warn("circuit breaker open or retries exhausted, using fallback invoice", zap.Error(err))
		c.metrics.RecordInvoice(metrics.InvoiceOutcomeFallback)
		return &domain.InvoiceReceipt{ID: uuid.New(), Sent: false}, nil
	default:
		logger.Error("invoice service failed", zap.Error(err))
		c.metrics.RecordInvoice(metrics.InvoiceOutcomeFailed)
		return nil, apperrors.NewInvoiceUnavailableError("sending invoice", err)
	}
}

func (c *ResilientClient) State() gobreaker.State {
	return c.breaker.State()
}
