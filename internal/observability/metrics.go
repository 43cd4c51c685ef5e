// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recompute statuses
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Source metrics
	RecordsFetched *prometheus.CounterVec
	FetchFailures  *prometheus.CounterVec
	FetchDuration  *prometheus.HistogramVec

	// Normalization metrics
	RecordsSkipped prometheus.Counter

	// Recompute metrics
	RecomputeRunsTotal *prometheus.CounterVec
	RecomputeDuration  *prometheus.HistogramVec
	OrdersAggregated   prometheus.Gauge

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Server metrics
	WebsocketClients prometheus.Gauge

	// Health metrics
	LastSuccessfulRecompute prometheus.Gauge
}

// NewMetrics creates a new Metrics instance registered with reg.
// A nil reg registers with the default Prometheus registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "order_ledger"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		// Source metrics
		RecordsFetched: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "records_fetched_total",
			Help:      "Total number of raw order records fetched by source",
		}, []string{"source"}),
		FetchFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "fetch_failures_total",
			Help:      "Total number of failed snapshot fetches by source",
		}, []string{"source"}),
		FetchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "fetch_duration_seconds",
			Help:      "Snapshot fetch duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),

		// Normalization metrics
		RecordsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "normalization",
			Name:      "records_skipped_total",
			Help:      "Total number of malformed records dropped under the skip policy",
		}),

		// Recompute metrics
		RecomputeRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "recompute",
			Name:      "runs_total",
			Help:      "Total number of recompute passes by trigger and status",
		}, []string{"trigger", "status"}),
		RecomputeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "recompute",
			Name:      "duration_seconds",
			Help:      "Recompute pass duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		}, []string{"trigger"}),
		OrdersAggregated: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "recompute",
			Name:      "orders_aggregated",
			Help:      "Number of orders in the last successful pass",
		}),

		// Database metrics
		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Server metrics
		WebsocketClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "websocket_clients",
			Help:      "Current number of connected websocket clients",
		}),

		// Health metrics
		LastSuccessfulRecompute: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_recompute_timestamp",
			Help:      "Unix timestamp of last successful recompute",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("", nil)

// RecordFetch records one snapshot fetch.
func (m *Metrics) RecordFetch(source string, records int, seconds float64, err error) {
	m.FetchDuration.WithLabelValues(source).Observe(seconds)
	if err != nil {
		m.FetchFailures.WithLabelValues(source).Inc()
		return
	}
	m.RecordsFetched.WithLabelValues(source).Add(float64(records))
}

// RecordSkipped adds n malformed records to the skipped counter.
func (m *Metrics) RecordSkipped(n int) {
	if n > 0 {
		m.RecordsSkipped.Add(float64(n))
	}
}

// RecordRecompute records a recompute pass.
func (m *Metrics) RecordRecompute(trigger, status string, durationSeconds float64) {
	m.RecomputeRunsTotal.WithLabelValues(trigger, status).Inc()
	m.RecomputeDuration.WithLabelValues(trigger).Observe(durationSeconds)
}

// RecordSuccess marks a successful pass over orders orders at unixSeconds.
func (m *Metrics) RecordSuccess(orders int, unixSeconds float64) {
	m.OrdersAggregated.Set(float64(orders))
	m.LastSuccessfulRecompute.Set(unixSeconds)
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// UpdateWebsocketClients sets the connected websocket client gauge.
func UpdateWebsocketClients(n int) {
	DefaultMetrics.WebsocketClients.Set(float64(n))
}
