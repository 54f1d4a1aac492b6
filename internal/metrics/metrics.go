package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for OIB operations.
type Metrics struct {
	// Validation outcomes by result (valid/invalid) and reason code
	Validations *prometheus.CounterVec

	// Identifiers handed out by the generator
	Generated prometheus.Counter

	// Latency per operation (validate, generate, trace, batch)
	OperationDuration *prometheus.HistogramVec

	// Counter store failures by operation
	CounterErrors *prometheus.CounterVec
}

// New creates all metrics and registers them with reg. Each caller passes its
// own registry so tests and multiple servers never collide.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Validations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "oib_validations_total",
			Help: "Total validation requests by result and reason code",
		}, []string{"result", "reason"}),

		Generated: factory.NewCounter(prometheus.CounterOpts{
			Name: "oib_generated_total",
			Help: "Total identifiers generated",
		}),

		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "oib_operation_duration_seconds",
			Help:    "Duration of OIB operations including counter persistence",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"op"}),

		CounterErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "oib_counter_errors_total",
			Help: "Failures persisting usage counters",
		}, []string{"op"}),
	}
}

// ObserveValidation records a validation outcome. An empty reason means valid.
func (m *Metrics) ObserveValidation(valid bool, reason string) {
	if m == nil {
		return
	}
	result := "invalid"
	if valid {
		result = "valid"
		reason = "none"
	}
	m.Validations.WithLabelValues(result, reason).Inc()
}

// AddGenerated records n generated identifiers.
func (m *Metrics) AddGenerated(n int) {
	if m != nil {
		m.Generated.Add(float64(n))
	}
}

// ObserveDuration records how long an operation took.
func (m *Metrics) ObserveDuration(op string, d time.Duration) {
	if m != nil {
		m.OperationDuration.WithLabelValues(op).Observe(d.Seconds())
	}
}

// IncrementCounterError records a failed counter write.
func (m *Metrics) IncrementCounterError(op string) {
	if m != nil {
		m.CounterErrors.WithLabelValues(op).Inc()
	}
}
