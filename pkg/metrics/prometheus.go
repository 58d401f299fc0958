package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// latencyBuckets covers per-round scoring in milliseconds.
var latencyBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250} //nolint:gochecknoglobals // bucket layout

// Manager manages all Prometheus metrics of the simulator.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer
	gatherer         prometheus.Gatherer

	// Run metrics
	runs          *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec
	roundsScored  *prometheus.CounterVec
	roundDuration *prometheus.HistogramVec

	// Ledger metrics, describing the competition being scored
	teams             prometheus.Gauge
	rounds            prometheus.Gauge
	capturesLoaded    prometheus.Gauge
	duplicateCaptures prometheus.Counter

	// Aggregator metrics
	workerCount prometheus.Gauge

	errorsByComponent *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "adsim",
		subsystem:        "simulator",
		histogramBuckets: latencyBuckets,
		registry:         prometheus.DefaultRegisterer,
		gatherer:         prometheus.DefaultGatherer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.runs = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_total",
		Help:      "Total number of formula runs by outcome",
	}, []string{"formula", "outcome"})

	m.runDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "run_duration_milliseconds",
		Help:      "Wall time of a complete formula run in milliseconds",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
	}, []string{"formula"})

	m.roundsScored = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rounds_scored_total",
		Help:      "Total number of rounds scored",
	}, []string{"formula"})

	m.roundDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "round_scoring_duration_milliseconds",
		Help:      "Histogram of per-round scoring latency in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"formula"})

	m.teams = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "teams",
		Help:      "Number of teams in the loaded competition",
	})

	m.rounds = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rounds",
		Help:      "Number of rounds in the loaded competition",
	})

	m.capturesLoaded = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "captures_loaded",
		Help:      "Number of captures indexed by the ledger",
	})

	m.duplicateCaptures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "duplicate_captures_total",
		Help:      "Repeated captures dropped while building the ledger (indicates data quality)",
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Number of workers scoring rounds",
	})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_component_total",
		Help:      "Total number of errors by component and error type",
	}, []string{"component", "error_type"})
}

// RecordRun counts a finished run of formula.
func (m *Manager) RecordRun(formula, outcome string, durationMs float64) {
	m.runs.WithLabelValues(formula, outcome).Inc()
	m.runDuration.WithLabelValues(formula).Observe(durationMs)
}

// RecordRoundScored counts a scored round and its latency.
func (m *Manager) RecordRoundScored(formula string, latencyMs float64) {
	m.roundsScored.WithLabelValues(formula).Inc()
	m.roundDuration.WithLabelValues(formula).Observe(latencyMs)
}

// UpdateLedger publishes the shape of the loaded competition.
func (m *Manager) UpdateLedger(teams, rounds, captures, duplicates int) {
	m.teams.Set(float64(teams))
	m.rounds.Set(float64(rounds))
	m.capturesLoaded.Set(float64(captures))
	m.duplicateCaptures.Add(float64(duplicates))
}

// UpdateWorkerCount sets the number of scoring workers.
func (m *Manager) UpdateWorkerCount(count int) {
	m.workerCount.Set(float64(count))
}

// RecordErrorByComponent records an error by component and type.
func (m *Manager) RecordErrorByComponent(component, errorType string) {
	m.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// WriteTextfile writes every gathered metric to path in the Prometheus text
// exposition format, for node_exporter's textfile collector.
func (m *Manager) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.gatherer); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrExportFailed, path, err)
	}
	return nil
}

// Global convenience functions for easy access.

// RecordRun counts a finished run of formula.
func RecordRun(formula, outcome string, durationMs float64) {
	globalManager.RecordRun(formula, outcome, durationMs)
}

// RecordRoundScored counts a scored round and its latency.
func RecordRoundScored(formula string, latencyMs float64) {
	globalManager.RecordRoundScored(formula, latencyMs)
}

// UpdateLedger publishes the shape of the loaded competition.
func UpdateLedger(teams, rounds, captures, duplicates int) {
	globalManager.UpdateLedger(teams, rounds, captures, duplicates)
}

// UpdateWorkerCount sets the number of scoring workers.
func UpdateWorkerCount(count int) {
	globalManager.UpdateWorkerCount(count)
}

// RecordErrorByComponent records an error by component and type.
func RecordErrorByComponent(component, errorType string) {
	globalManager.RecordErrorByComponent(component, errorType)
}

// WriteTextfile exports the global metrics to path.
func WriteTextfile(path string) error {
	return globalManager.WriteTextfile(path)
}
