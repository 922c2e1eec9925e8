package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"garantia/internal/domain"
)

// Metrics holds all Prometheus metrics for the pipeline.
type Metrics struct {
	TicketsSubmitted   prometheus.Counter
	ValidationFailures *prometheus.CounterVec
	TicketsProcessed   *prometheus.CounterVec
	DuplicateDelivery  prometheus.Counter
	NotificationsSent  prometheus.Counter
	ProcessingSeconds  prometheus.Histogram
}

// New creates and registers all metrics. A nil registerer falls back to the
// default registry; tests pass their own to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		TicketsSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "garantia_tickets_submitted_total",
			Help: "Ticket drafts accepted at intake and published to the queue",
		}),
		ValidationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "garantia_validation_failures_total",
			Help: "Validation rule violations at intake, by reason class",
		}, []string{"reason"}),
		TicketsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "garantia_tickets_processed_total",
			Help: "Tickets finalized by the processor, by terminal status",
		}, []string{"status"}),
		DuplicateDelivery: factory.NewCounter(prometheus.CounterOpts{
			Name: "garantia_duplicate_deliveries_total",
			Help: "Queue redeliveries absorbed by idempotent processing",
		}),
		NotificationsSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "garantia_notifications_sent_total",
			Help: "Outcome notifications dispatched to requesters",
		}),
		ProcessingSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "garantia_processing_duration_seconds",
			Help:    "Latency of processing one queued draft end to end",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// ObserveValidationFailures counts each violation under its reason class so
// field names never become label values.
func (m *Metrics) ObserveValidationFailures(errs []domain.FieldError) {
	for _, fe := range errs {
		m.ValidationFailures.WithLabelValues(domain.ReasonClass(fe.Reason)).Inc()
	}
}
