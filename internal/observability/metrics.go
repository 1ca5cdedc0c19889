package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "heatmap"

// Metrics holds the Prometheus collectors for the heat-map pipeline.
type Metrics struct {
	PipelineRuns     *prometheus.CounterVec // labels: outcome={success,file_not_found,network,data_processing}
	PipelineDuration prometheus.Histogram
	RowsLoaded       *prometheus.GaugeVec // labels: source={health,geo}
	RowsJoined       prometheus.Gauge

	// Loader memoization.
	MemoLookups *prometheus.CounterVec // labels: source={health,geo}, result={hit,miss}

	// Remote coordinate fetches.
	GeoFetches       *prometheus.CounterVec // labels: outcome={success,error}
	GeoFetchDuration prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.PipelineRuns,
		m.PipelineDuration,
		m.RowsLoaded,
		m.RowsJoined,
		m.MemoLookups,
		m.GeoFetches,
		m.GeoFetchDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		PipelineRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Pipeline runs by outcome.",
		}, []string{"outcome"}),
		PipelineDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_duration_seconds",
			Help:      "Duration of a complete load-join-aggregate run.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		RowsLoaded: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rows_loaded",
			Help:      "Rows returned by each loader on the last successful run.",
		}, []string{"source"}),
		RowsJoined: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rows_joined",
			Help:      "Joined rows on the last successful run.",
		}),
		MemoLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "memo_lookups_total",
			Help:      "Loader cache lookups by source and result.",
		}, []string{"source", "result"}),
		GeoFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geo_fetches_total",
			Help:      "Remote coordinate table fetch attempts by outcome.",
		}, []string{"outcome"}),
		GeoFetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geo_fetch_duration_seconds",
			Help:      "Remote coordinate table fetch duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}
