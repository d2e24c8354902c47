package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// quicklook service.
type Metrics struct {
	RenderRequests *prometheus.CounterVec   // labels: plot={timeseries,map}, outcome={success,bad_request,error}
	RenderDuration *prometheus.HistogramVec // labels: plot={timeseries,map}

	DatasetLoadDuration prometheus.Histogram
	NavSamples          prometheus.Gauge
	NavDays             prometheus.Gauge
	IceSteps            prometheus.Gauge
	StoreReady          prometheus.Gauge

	// Basemap metrics.
	BasemapRequests *prometheus.CounterVec // labels: outcome={success,error}
	BasemapCache    *prometheus.CounterVec // labels: result={hit,miss}
	BasemapEnabled  prometheus.Gauge
}

// NewMetrics creates and registers all quicklook metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RenderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quicklook",
			Name:      "render_requests_total",
			Help:      "Plot render requests by plot kind and outcome.",
		}, []string{"plot", "outcome"}),
		RenderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "quicklook",
			Name:      "render_duration_seconds",
			Help:      "Duration of a slice-and-render cycle per plot kind.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"plot"}),
		DatasetLoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quicklook",
			Name:      "dataset_load_duration_seconds",
			Help:      "Duration of the one-time NetCDF dataset load.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		NavSamples: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quicklook",
			Name:      "nav_samples",
			Help:      "Number of navigation samples loaded.",
		}),
		NavDays: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quicklook",
			Name:      "nav_days",
			Help:      "Number of calendar days present in the navigation dataset.",
		}),
		IceSteps: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quicklook",
			Name:      "ice_time_steps",
			Help:      "Number of time steps in the sea-ice dataset.",
		}),
		StoreReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quicklook",
			Name:      "store_ready",
			Help:      "1 when the datasets are loaded and the service is ready.",
		}),
		BasemapRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quicklook",
			Name:      "basemap_requests_total",
			Help:      "Basemap fetches by outcome.",
		}, []string{"outcome"}),
		BasemapCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quicklook",
			Name:      "basemap_cache_total",
			Help:      "Basemap cache lookups by result.",
		}, []string{"result"}),
		BasemapEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quicklook",
			Name:      "basemap_enabled",
			Help:      "1 when the basemap layer is enabled, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.RenderRequests,
		m.RenderDuration,
		m.DatasetLoadDuration,
		m.NavSamples,
		m.NavDays,
		m.IceSteps,
		m.StoreReady,
		m.BasemapRequests,
		m.BasemapCache,
		m.BasemapEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RenderRequests:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "quicklook", Name: "render_requests_total"}, []string{"plot", "outcome"}),
		RenderDuration:      prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "quicklook", Name: "render_duration_seconds"}, []string{"plot"}),
		DatasetLoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "quicklook", Name: "dataset_load_duration_seconds"}),
		NavSamples:          prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "quicklook", Name: "nav_samples"}),
		NavDays:             prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "quicklook", Name: "nav_days"}),
		IceSteps:            prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "quicklook", Name: "ice_time_steps"}),
		StoreReady:          prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "quicklook", Name: "store_ready"}),
		BasemapRequests:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "quicklook", Name: "basemap_requests_total"}, []string{"outcome"}),
		BasemapCache:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "quicklook", Name: "basemap_cache_total"}, []string{"result"}),
		BasemapEnabled:      prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "quicklook", Name: "basemap_enabled"}),
	}
}
