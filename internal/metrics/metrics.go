// Package metrics exposes Prometheus instrumentation for the analytics API.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus metrics published by the service.
type Metrics struct {
	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPLatency  *prometheus.HistogramVec

	// Engine metrics
	AttributionRuns     *prometheus.CounterVec
	DegradedCategories  *prometheus.CounterVec
	DashboardAssemblyMS *prometheus.HistogramVec

	// Cache metrics
	CacheLookups *prometheus.CounterVec

	// System metrics
	DBConnections *prometheus.GaugeVec
}

// DefaultMetrics is the process-wide metrics instance.
var DefaultMetrics *Metrics

// NewMetrics creates and registers all Prometheus metrics under namespace.
func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests by route and status",
			},
			[]string{"route", "method", "status"},
		),
		HTTPLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"route"},
		),
		AttributionRuns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "attribution_runs_total",
				Help:      "Attribution calculations by model",
			},
			[]string{"model"},
		),
		DegradedCategories: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dashboard_degraded_categories_total",
				Help:      "Dashboard categories that fell back to zero values",
			},
			[]string{"category"},
		),
		DashboardAssemblyMS: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "dashboard_assembly_duration_seconds",
				Help:      "Time to assemble the combined dashboard payload",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"cached"},
		),
		CacheLookups: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_lookups_total",
				Help:      "Snapshot cache lookups by outcome",
			},
			[]string{"key", "outcome"}, // hit, miss
		),
		DBConnections: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "db_connections",
				Help:      "Database connection pool stats",
			},
			[]string{"state"}, // idle, in_use, total
		),
	}

	DefaultMetrics = m
	return m
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordRequest records one served HTTP request.
func (m *Metrics) RecordRequest(route, method, status string, latency time.Duration) {
	m.HTTPRequests.WithLabelValues(route, method, status).Inc()
	m.HTTPLatency.WithLabelValues(route).Observe(latency.Seconds())
}

// RecordAttributionRun records an attribution calculation.
func (m *Metrics) RecordAttributionRun(model string) {
	m.AttributionRuns.WithLabelValues(model).Inc()
}

// RecordDegradedCategory records a dashboard category that degraded to its
// zero value.
func (m *Metrics) RecordDegradedCategory(category string) {
	m.DegradedCategories.WithLabelValues(category).Inc()
}

// RecordDashboardAssembly records how long the combined payload took.
func (m *Metrics) RecordDashboardAssembly(cached bool, latency time.Duration) {
	label := "false"
	if cached {
		label = "true"
	}
	m.DashboardAssemblyMS.WithLabelValues(label).Observe(latency.Seconds())
}

// RecordCacheLookup records a snapshot cache hit or miss.
func (m *Metrics) RecordCacheLookup(key string, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.CacheLookups.WithLabelValues(key, outcome).Inc()
}

// UpdateDBStats updates database connection metrics.
func (m *Metrics) UpdateDBStats(idle, inUse, total int) {
	m.DBConnections.WithLabelValues("idle").Set(float64(idle))
	m.DBConnections.WithLabelValues("in_use").Set(float64(inUse))
	m.DBConnections.WithLabelValues("total").Set(float64(total))
}
