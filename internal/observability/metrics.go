package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// normalization pipeline.
type Metrics struct {
	RowsExtracted    prometheus.Counter
	RecordsPublished *prometheus.CounterVec // labels: sink={kafka,postgres}
	LoadFailures     prometheus.Counter
	LoadDuration     prometheus.Histogram
	PipelineReady    prometheus.Gauge

	// Memoized-load cache metrics.
	CacheLookups *prometheus.CounterVec // labels: result={hit,miss}

	// Data quality: missing-value percentage per normalized column.
	MissingPct *prometheus.GaugeVec // labels: column
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RowsExtracted,
		m.RecordsPublished,
		m.LoadFailures,
		m.LoadDuration,
		m.PipelineReady,
		m.CacheLookups,
		m.MissingPct,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RowsExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "airq_etl",
			Name:      "rows_extracted_total",
			Help:      "Total raw rows read from the source export.",
		}),
		RecordsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "airq_etl",
			Name:      "records_published_total",
			Help:      "Normalized records delivered, by sink.",
		}, []string{"sink"}),
		LoadFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "airq_etl",
			Name:      "load_failures_total",
			Help:      "Total file-level load failures.",
		}),
		LoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "airq_etl",
			Name:      "load_duration_seconds",
			Help:      "Duration of a complete extract-normalize cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		PipelineReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "airq_etl",
			Name:      "pipeline_ready",
			Help:      "1 once a normalized dataset has been loaded, 0 before.",
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "airq_etl",
			Name:      "load_cache_lookups_total",
			Help:      "Memoized-load cache lookups by result.",
		}, []string{"result"}),
		MissingPct: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "airq_etl",
			Name:      "column_missing_percent",
			Help:      "Missing-value percentage per column after normalization.",
		}, []string{"column"}),
	}
}
