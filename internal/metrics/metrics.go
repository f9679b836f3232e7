package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Business metrics
	cacheHits         *prometheus.CounterVec
	cacheMisses       *prometheus.CounterVec
	providerFetches   *prometheus.CounterVec
	providerDuration  *prometheus.HistogramVec
	summariesComputed prometheus.Counter
	reportsArchived   *prometheus.CounterVec
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	// Business metrics
	r.cacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_cache_hits_total",
			Help: "Total number of price cache hits per tier",
		},
		[]string{"tier"},
	)
	r.cacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_cache_misses_total",
			Help: "Total number of price cache misses per tier",
		},
		[]string{"tier"},
	)
	r.providerFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_provider_fetches_total",
			Help: "Total number of remote price fetches",
		},
		[]string{"provider", "outcome"},
	)
	r.providerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pulse_provider_fetch_duration_seconds",
			Help:    "Remote price fetch duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"provider"},
	)
	r.summariesComputed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pulse_summaries_computed_total",
			Help: "Total number of performance summaries computed",
		},
	)
	r.reportsArchived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_reports_archived_total",
			Help: "Total number of reports written to archive storage",
		},
		[]string{"backend"},
	)

	reg.MustRegister(r.cacheHits)
	reg.MustRegister(r.cacheMisses)
	reg.MustRegister(r.providerFetches)
	reg.MustRegister(r.providerDuration)
	reg.MustRegister(r.summariesComputed)
	reg.MustRegister(r.reportsArchived)

	return r
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// CacheHit records a price cache hit for a tier.
func (r *Registry) CacheHit(tier string) {
	r.cacheHits.WithLabelValues(tier).Inc()
}

// CacheMiss records a price cache miss for a tier.
func (r *Registry) CacheMiss(tier string) {
	r.cacheMisses.WithLabelValues(tier).Inc()
}

// ProviderFetch records one remote fetch attempt with its outcome.
func (r *Registry) ProviderFetch(provider, outcome string, elapsed time.Duration) {
	r.providerFetches.WithLabelValues(provider, outcome).Inc()
	r.providerDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// RecordSummary records a completed summary computation.
func (r *Registry) RecordSummary() {
	r.summariesComputed.Inc()
}

// RecordReportArchived records a report written to the given backend.
func (r *Registry) RecordReportArchived(backend string) {
	r.reportsArchived.WithLabelValues(backend).Inc()
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
