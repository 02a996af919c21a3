package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	InvoiceOutcomeSent     = "sent"
	InvoiceOutcomeFallback = "fallback"
	InvoiceOutcomeFailed   = "failed"
)

// Metrics holds all Prometheus collectors for the service.
type Metrics struct {
	DeliveriesCreated   prometheus.Counter
	InvoiceRequests     *prometheus.CounterVec
	InvoiceBreakerState prometheus.Gauge
	HTTPRequests        *prometheus.CounterVec
	HTTPDuration        *prometheus.HistogramVec
}

// New registers the collectors on reg. Tests pass a fresh prometheus.NewRegistry().
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		DeliveriesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "tracker_deliveries_created_total",
			Help: "Total number of deliveries created",
		}),
		InvoiceRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tracker_invoice_requests_total",
			Help: "Invoice requests by outcome (sent, fallback, failed)",
		}, []string{"outcome"}),
		InvoiceBreakerState: factory.NewGauge(prometheus.GaugeOpts{
			Name: "tracker_invoice_breaker_state",
			Help: "Invoice circuit breaker state: 0 closed, 1 half-open, 2 open",
		}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tracker_http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tracker_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func (m *Metrics) IncrementDeliveriesCreated() {
	m.DeliveriesCreated.Inc()
}

func (m *Metrics) RecordInvoice(outcome string) {
	m.InvoiceRequests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SetBreakerState(state float64) {
	m.InvoiceBreakerState.Set(state)
}
