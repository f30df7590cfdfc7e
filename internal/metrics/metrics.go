// Package metrics provides Prometheus metrics for the face-gate service.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains the Prometheus collectors for login, registration,
// duplicate cleanup and the feature extractor.
type Metrics struct {
	logins             *prometheus.CounterVec
	registrations      *prometheus.CounterVec
	cleanupRemovals    prometheus.Counter
	duplicateGroups    prometheus.Gauge
	extractionDuration *prometheus.HistogramVec
	registry           *prometheus.Registry
}

// New creates the service metrics and registers them with registry.
func New(registry *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register face-gate metrics: %w", err)
	}
	return m, nil
}

func (m *Metrics) initMetrics() {
	m.logins = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "facegate_logins_total",
		Help: "Total number of login attempts by outcome.",
	}, []string{"status"})

	m.registrations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "facegate_registrations_total",
		Help: "Total number of registration attempts by outcome.",
	}, []string{"status"})

	m.cleanupRemovals = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "facegate_cleanup_removed_total",
		Help: "Total number of identities removed by duplicate cleanup.",
	})

	m.duplicateGroups = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "facegate_duplicate_groups",
		Help: "Number of duplicate groups found by the last duplicate report.",
	})

	m.extractionDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "facegate_extraction_duration_seconds",
		Help:    "Duration of feature extraction requests in seconds.",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	}, []string{"result"})
}

// RecordLogin counts a login attempt with the given outcome status.
// All recording methods are no-ops on a nil *Metrics.
func (m *Metrics) RecordLogin(status string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(status).Inc()
}

// RecordRegistration counts a registration attempt with the given outcome status.
func (m *Metrics) RecordRegistration(status string) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(status).Inc()
}

// RecordCleanup adds removed identities to the cleanup counter.
func (m *Metrics) RecordCleanup(removed int) {
	if m == nil {
		return
	}
	m.cleanupRemovals.Add(float64(removed))
}

// SetDuplicateGroups records the size of the latest duplicate report.
func (m *Metrics) SetDuplicateGroups(groups int) {
	if m == nil {
		return
	}
	m.duplicateGroups.Set(float64(groups))
}

// ObserveExtraction records one extractor call. It matches embedding.ObserveFunc.
func (m *Metrics) ObserveExtraction(d time.Duration, faces int, err error) {
	if m == nil {
		return
	}
	result := "face"
	switch {
	case err != nil:
		result = "error"
	case faces == 0:
		result = "no_face"
	}
	m.extractionDuration.WithLabelValues(result).Observe(d.Seconds())
}

// Registry returns the registry the metrics were registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Collect implements the prometheus.Collector interface.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.logins.Collect(ch)
	m.registrations.Collect(ch)
	ch <- m.cleanupRemovals
	ch <- m.duplicateGroups
	m.extractionDuration.Collect(ch)
}

// Describe implements the prometheus.Collector interface.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.logins.Describe(ch)
	m.registrations.Describe(ch)
	ch <- m.cleanupRemovals.Desc()
	ch <- m.duplicateGroups.Desc()
	m.extractionDuration.Describe(ch)
}
