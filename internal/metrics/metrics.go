package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all Prometheus metrics for the creature engine. A fresh
// Registry carries its own prometheus.Registry so tests never collide on the
// default registerer.
type Registry struct {
	reg *prometheus.Registry

	// Game activity
	ScansTotal      *prometheus.CounterVec
	CreaturesActive prometheus.Gauge
	HealsTotal      prometheus.Counter
	SellsTotal      *prometheus.CounterVec

	// Sweep health
	SweepRuns      prometheus.Counter
	SweepCreatures *prometheus.CounterVec
	StormsDetected *prometheus.CounterVec

	// Provider performance
	ProviderRequests *prometheus.CounterVec
	CacheHits        *prometheus.CounterVec
	CacheMisses      *prometheus.CounterVec

	// HTTP surface
	RequestDuration *prometheus.HistogramVec
}

// New creates a registry with all engine metrics registered.
func New() *Registry {
	r := &Registry{reg: prometheus.NewRegistry()}

	r.ScansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wealthlings_scans_total",
			Help: "Total number of brand scans by outcome",
		},
		[]string{"outcome"}, // new, repeat, error
	)

	r.CreaturesActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "wealthlings_creatures_active",
			Help: "Number of creatures currently held across all users",
		},
	)

	r.HealsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "wealthlings_heals_total",
			Help: "Total number of successful heals",
		},
	)

	r.SellsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wealthlings_sells_total",
			Help: "Total number of sales by storm condition",
		},
		[]string{"storm"}, // true, false
	)

	r.SweepRuns = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "wealthlings_sweep_runs_total",
			Help: "Total number of market sweep runs",
		},
	)

	r.SweepCreatures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wealthlings_sweep_creatures_total",
			Help: "Creatures visited by the sweeper by result",
		},
		[]string{"result"}, // updated, skipped, gone
	)

	r.StormsDetected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wealthlings_storms_detected_total",
			Help: "Market storms detected by sector",
		},
		[]string{"sector"},
	)

	r.ProviderRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wealthlings_provider_requests_total",
			Help: "Upstream market data requests by endpoint and result",
		},
		[]string{"endpoint", "result"},
	)

	r.CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wealthlings_cache_hits_total",
			Help: "Market data cache hits by kind",
		},
		[]string{"kind"},
	)

	r.CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wealthlings_cache_misses_total",
			Help: "Market data cache misses by kind",
		},
		[]string{"kind"},
	)

	r.RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wealthlings_http_request_duration_seconds",
			Help:    "HTTP handler latency by route and status",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		},
		[]string{"route", "status"},
	)

	r.reg.MustRegister(
		r.ScansTotal,
		r.CreaturesActive,
		r.HealsTotal,
		r.SellsTotal,
		r.SweepRuns,
		r.SweepCreatures,
		r.StormsDetected,
		r.ProviderRequests,
		r.CacheHits,
		r.CacheMisses,
		r.RequestDuration,
	)

	return r
}

// Handler exposes the registry in Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
