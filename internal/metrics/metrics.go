// Package metrics holds the module's Prometheus instrumentation. The module
// starts no server of its own; embedding callers mount Handler wherever they
// expose metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	evaluationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "perfcore_evaluations_total",
			Help: "Total number of trajectory-point evaluations.",
		},
		[]string{"outcome"},
	)

	batchDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "perfcore_batch_duration_seconds",
			Help:    "Wall-clock duration of batch evaluations in seconds.",
			Buckets: prometheus.DefBuckets,
		},
	)

	validationDiscrepanciesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "perfcore_validation_discrepancies_total",
			Help: "Number of consistency validations exceeding the configured tolerance.",
		},
	)
)

func init() {
	prometheus.MustRegister(evaluationsTotal)
	prometheus.MustRegister(batchDurationSeconds)
	prometheus.MustRegister(validationDiscrepanciesTotal)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordBatch records one batch evaluation: its duration and how many points
// succeeded or failed.
func RecordBatch(duration time.Duration, succeeded, failed int) {
	batchDurationSeconds.Observe(duration.Seconds())
	evaluationsTotal.WithLabelValues("ok").Add(float64(succeeded))
	evaluationsTotal.WithLabelValues("error").Add(float64(failed))
}

// RecordValidationDiscrepancy counts a consistency check that exceeded its
// tolerance.
func RecordValidationDiscrepancy() {
	validationDiscrepanciesTotal.Inc()
}
