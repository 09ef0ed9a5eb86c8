// Package metrics exposes Prometheus metrics for scan cycles.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rxtech-lab/argo-scanner/internal/engine"
	"github.com/rxtech-lab/argo-scanner/internal/types"
)

const namespace = "scanner"

// Metrics holds the scanner's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	CyclesTotal      *prometheus.CounterVec   // labels: frequency, status
	CycleDuration    prometheus.Histogram
	LastSuccess      prometheus.Gauge
	WatchlistSize    prometheus.Gauge
	PatternHits      *prometheus.GaugeVec     // labels: pattern
	HitsTotal        *prometheus.CounterVec   // labels: pattern
	MissingData      prometheus.Gauge
	MissingAnalysis  prometheus.Gauge
	EvaluationsTotal *prometheus.CounterVec   // labels: pattern, outcome
	DetectorDuration *prometheus.HistogramVec // labels: pattern

	mu        sync.Mutex
	started   time.Time
	frequency types.Frequency
}

// NewMetrics creates and registers every collector.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		CyclesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Scan cycles run, by frequency and outcome",
		}, []string{"frequency", "status"}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Wall time of a scan cycle",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful cycle",
		}),
		WatchlistSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "watchlist_symbols",
			Help:      "Symbols in the watchlist of the last cycle",
		}),
		PatternHits: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pattern_hits",
			Help:      "Symbols a pattern fired for in the last successful cycle",
		}, []string{"pattern"}),
		HitsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pattern_hits_total",
			Help:      "Symbols a pattern fired for, over all cycles",
		}, []string{"pattern"}),
		MissingData: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "missing_data_symbols",
			Help:      "Symbols excluded for missing or invalid data in the last successful cycle",
		}),
		MissingAnalysis: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "missing_analysis_symbols",
			Help:      "Symbols excluded for failed detectors in the last successful cycle",
		}),
		EvaluationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Detector evaluations, by pattern and outcome (hit, miss, error)",
		}, []string{"pattern", "outcome"}),
		DetectorDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "detector_duration_seconds",
			Help:      "Latency of one detector evaluation",
			Buckets:   []float64{0.000005, 0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		}, []string{"pattern"}),
	}

	m.registry.MustRegister(
		m.CyclesTotal,
		m.CycleDuration,
		m.LastSuccess,
		m.WatchlistSize,
		m.PatternHits,
		m.HitsTotal,
		m.MissingData,
		m.MissingAnalysis,
		m.EvaluationsTotal,
		m.DetectorDuration,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the private registry, for tests and additional collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Callbacks returns engine callbacks that update the metrics and then call next.
// Cycles are assumed not to overlap.
func (m *Metrics) Callbacks(next engine.Callbacks) engine.Callbacks {
	onStart := engine.OnCycleStartCallback(func(cycleID string, frequency types.Frequency, symbols int) error {
		m.mu.Lock()
		m.started = time.Now()
		m.frequency = frequency
		m.mu.Unlock()

		m.WatchlistSize.Set(float64(symbols))

		if next.OnCycleStart != nil {
			return (*next.OnCycleStart)(cycleID, frequency, symbols)
		}

		return nil
	})

	onEnd := engine.OnCycleEndCallback(func(report types.Report, err error) {
		m.ObserveCycle(report, err)

		if next.OnCycleEnd != nil {
			(*next.OnCycleEnd)(report, err)
		}
	})

	onEvaluation := engine.OnEvaluationCallback(func(symbol string, name types.PatternName, hit bool, err error, elapsed time.Duration) {
		m.ObserveEvaluation(name, hit, err, elapsed)

		if next.OnEvaluation != nil {
			(*next.OnEvaluation)(symbol, name, hit, err, elapsed)
		}
	})

	return engine.Callbacks{
		OnCycleStart: &onStart,
		OnCycleEnd:   &onEnd,
		OnEvaluation: &onEvaluation,
	}
}

// ObserveCycle records the outcome of a cycle.
func (m *Metrics) ObserveCycle(report types.Report, err error) {
	m.mu.Lock()
	started := m.started
	frequency := m.frequency
	m.mu.Unlock()

	if report.Frequency != "" {
		frequency = report.Frequency
	}

	if !started.IsZero() {
		m.CycleDuration.Observe(time.Since(started).Seconds())
	}

	if err != nil {
		m.CyclesTotal.WithLabelValues(string(frequency), "error").Inc()

		return
	}

	m.CyclesTotal.WithLabelValues(string(frequency), "ok").Inc()
	m.LastSuccess.SetToCurrentTime()
	m.MissingData.Set(float64(len(report.MissingData)))
	m.MissingAnalysis.Set(float64(len(report.MissingAnalysis)))

	m.PatternHits.Reset()

	for _, result := range report.Results {
		m.PatternHits.WithLabelValues(string(result.Name)).Set(float64(len(result.Symbols)))
		m.HitsTotal.WithLabelValues(string(result.Name)).Add(float64(len(result.Symbols)))
	}
}

// ObserveEvaluation records one detector evaluation.
func (m *Metrics) ObserveEvaluation(name types.PatternName, hit bool, err error, elapsed time.Duration) {
	outcome := "miss"

	switch {
	case err != nil:
		outcome = "error"
	case hit:
		outcome = "hit"
	}

	m.EvaluationsTotal.WithLabelValues(string(name), outcome).Inc()
	m.DetectorDuration.WithLabelValues(string(name)).Observe(elapsed.Seconds())
}
