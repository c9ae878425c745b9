package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	MutationsCommitted  *prometheus.CounterVec
	MutationPreviews    prometheus.Counter
	ValidationFailures  *prometheus.CounterVec
	StaleStateConflicts prometheus.Counter
	CommitDuration      prometheus.Histogram
	AreaTransferred     prometheus.Counter
	RequestDuration     *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		MutationsCommitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "letterc_mutations_committed_total",
			Help: "Committed land mutations by transfer type.",
		}, []string{"transfer_type"}),
		MutationPreviews: promauto.NewCounter(prometheus.CounterOpts{
			Name: "letterc_mutation_previews_total",
			Help: "Mutation preview requests, valid or not.",
		}),
		ValidationFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "letterc_mutation_validation_failures_total",
			Help: "Validation violations raised during preview or commit, by code.",
		}, []string{"code"}),
		StaleStateConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "letterc_mutation_stale_state_total",
			Help: "Commits rejected because store state changed after preview.",
		}),
		CommitDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "letterc_mutation_commit_duration_seconds",
			Help:    "Wall time of the atomic commit sequence.",
			Buckets: prometheus.DefBuckets,
		}),
		AreaTransferred: promauto.NewCounter(prometheus.CounterOpts{
			Name: "letterc_area_transferred_square_meters_total",
			Help: "Total area moved between parcels by committed mutations.",
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "letterc_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

// ObserveCommit records one committed mutation.
func (m *Metrics) ObserveCommit(transferType string, area float64, seconds float64) {
	if m != nil {
		m.MutationsCommitted.WithLabelValues(transferType).Inc()
		m.AreaTransferred.Add(area)
		m.CommitDuration.Observe(seconds)
	}
}

// ObserveViolations counts each violation code once.
func (m *Metrics) ObserveViolations(codes []string) {
	if m != nil {
		for _, code := range codes {
			m.ValidationFailures.WithLabelValues(code).Inc()
		}
	}
}

// IncPreview counts one preview request.
func (m *Metrics) IncPreview() {
	if m != nil {
		m.MutationPreviews.Inc()
	}
}

// IncStaleConflict counts one commit rejected on stale state.
func (m *Metrics) IncStaleConflict() {
	if m != nil {
		m.StaleStateConflicts.Inc()
	}
}
