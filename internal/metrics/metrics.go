// Package metrics provides the Prometheus collectors for the HTTP API and
// the station import.
package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "radiodir"

// Metrics holds every collector the service exports.
type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	importStationsTotal *prometheus.CounterVec
	importDuration      prometheus.Histogram
	importMissingFiles  prometheus.Counter
}

// New creates the collectors and registers them with registry.
func New(registry prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status_code"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Time taken for HTTP requests",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		importStationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "import_stations_total",
				Help:      "Stations processed by the import, by country and outcome",
			},
			[]string{"country", "outcome"}, // outcome: imported, skipped, failed
		),
		importDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "import_duration_seconds",
				Help:      "Wall time of a full import run",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 10), // 1s to ~8.5m
			},
		),
		importMissingFiles: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "import_missing_files_total",
				Help:      "Configured seed files that were not found",
			},
		),
	}
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	return m, nil
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.httpRequestsTotal.Describe(ch)
	m.httpRequestDuration.Describe(ch)
	m.importStationsTotal.Describe(ch)
	m.importDuration.Describe(ch)
	m.importMissingFiles.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.httpRequestsTotal.Collect(ch)
	m.httpRequestDuration.Collect(ch)
	m.importStationsTotal.Collect(ch)
	m.importDuration.Collect(ch)
	m.importMissingFiles.Collect(ch)
}

// ObserveRequest records one served HTTP request. route is the matched
// pattern, not the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Import outcomes.
const (
	OutcomeImported = "imported"
	OutcomeSkipped  = "skipped"
	OutcomeFailed   = "failed"
)

// RecordStation counts one processed seed record.
func (m *Metrics) RecordStation(country, outcome string) {
	if m == nil {
		return
	}
	m.importStationsTotal.WithLabelValues(country, outcome).Inc()
}

// RecordMissingFile counts a configured seed file that does not exist.
func (m *Metrics) RecordMissingFile() {
	if m == nil {
		return
	}
	m.importMissingFiles.Inc()
}

// ObserveImport records the duration of a completed import run.
func (m *Metrics) ObserveImport(d time.Duration) {
	if m == nil {
		return
	}
	m.importDuration.Observe(d.Seconds())
}
