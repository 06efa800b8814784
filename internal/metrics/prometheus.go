// Package metrics provides Prometheus metrics for the courtside service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns the service's Prometheus collectors. A nil *Manager is valid
// and records nothing.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	// Store
	queryDuration *prometheus.HistogramVec
	queryErrors   *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Memoization
	cacheResults *prometheus.CounterVec

	// Selection sessions
	wsSessions prometheus.Gauge
}

// NewManager creates a metrics manager on its own registry
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "courtside",
		subsystem:        "",
		histogramBuckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}

	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.queryDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_query_duration_seconds",
		Help:      "Store query latency by query name",
		Buckets:   m.histogramBuckets,
	}, []string{"query"})

	m.queryErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_query_errors_total",
		Help:      "Failed store queries by query name",
	}, []string{"query"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by route and method",
	}, []string{"route", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration by route and method",
		Buckets:   m.histogramBuckets,
	}, []string{"route", "method", "status_code"})

	m.cacheResults = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_lookups_total",
		Help:      "Memoized result lookups by outcome",
	}, []string{"result"})

	m.wsSessions = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "selection_sessions",
		Help:      "Open matchup selection sessions",
	})
}

// ObserveQuery records one store query. Its signature matches store.QueryObserver.
func (m *Manager) ObserveQuery(name string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.queryDuration.WithLabelValues(name).Observe(elapsed.Seconds())
	if err != nil {
		m.queryErrors.WithLabelValues(name).Inc()
	}
}

// ObserveHTTP records one served request
func (m *Manager) ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.httpRequests.WithLabelValues(route, method, code).Inc()
	m.httpRequestDuration.WithLabelValues(route, method, code).Observe(elapsed.Seconds())
}

// CacheResult records a memoization hit or miss
func (m *Manager) CacheResult(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheResults.WithLabelValues("hit").Inc()
		return
	}
	m.cacheResults.WithLabelValues("miss").Inc()
}

// SessionOpened counts a new selection session
func (m *Manager) SessionOpened() {
	if m == nil {
		return
	}
	m.wsSessions.Inc()
}

// SessionClosed counts a finished selection session
func (m *Manager) SessionClosed() {
	if m == nil {
		return
	}
	m.wsSessions.Dec()
}

// Registry returns the registry the collectors live on
func (m *Manager) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Manager) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
