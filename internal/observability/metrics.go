package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "ecodrops"

// Metrics holds the Prometheus collectors for the dashboard.
type Metrics struct {
	DatasetRecords      prometheus.Gauge
	DatasetSkippedRows  prometheus.Gauge
	DatasetLoadDuration prometheus.Histogram

	Selections          *prometheus.CounterVec   // labels: outcome={found,empty}
	Exports             *prometheus.CounterVec   // labels: format={csv,xlsx}, scope={report,dataset,anomalies}
	PanelRenderDuration *prometheus.HistogramVec // labels: panel
	HTTPRequests        *prometheus.CounterVec   // labels: method, status
}

func newCollectors() *Metrics {
	return &Metrics{
		DatasetRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "dataset_records",
			Help:      "Number of usage records in the loaded table.",
		}),
		DatasetSkippedRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "dataset_skipped_rows",
			Help:      "Number of malformed CSV rows skipped during load.",
		}),
		DatasetLoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "dataset_load_duration_seconds",
			Help:      "Duration of the startup dataset load.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		}),
		Selections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "selections_total",
			Help:      "Country/year selections by outcome.",
		}, []string{"outcome"}),
		Exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "exports_total",
			Help:      "File downloads by format and scope.",
		}, []string{"format", "scope"}),
		PanelRenderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "panel_render_duration_seconds",
			Help:      "Time to render one dashboard panel.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}, []string{"panel"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status code.",
		}, []string{"method", "status"}),
	}
}

// NewMetrics creates and registers all dashboard metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newCollectors()
	prometheus.MustRegister(
		m.DatasetRecords,
		m.DatasetSkippedRows,
		m.DatasetLoadDuration,
		m.Selections,
		m.Exports,
		m.PanelRenderDuration,
		m.HTTPRequests,
	)
	return m
}

// NewMetricsForTesting creates unregistered collectors so tests can build as
// many sets as they need.
func NewMetricsForTesting() *Metrics {
	return newCollectors()
}
