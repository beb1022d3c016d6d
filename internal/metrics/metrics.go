package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector registers and records edgegate metrics for Prometheus export.
type Collector struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	invalidations   *prometheus.CounterVec
}

// NewCollector creates a Collector with its own registry (keeps tests from
// colliding on the default global registry).
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	c := &Collector{
		registry: reg,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "edgegate_requests_total",
			Help: "Requests handled, by route, method and status.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "edgegate_request_duration_seconds",
			Help:    "Request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "edgegate_cache_hits_total",
			Help: "Cache hits, by store and category.",
		}, []string{"store", "category"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "edgegate_cache_misses_total",
			Help: "Cache misses, by store and category.",
		}, []string{"store", "category"}),
		invalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "edgegate_cache_invalidations_total",
			Help: "Entries removed by category invalidation.",
		}, []string{"category"}),
	}

	reg.MustRegister(c.requestsTotal, c.requestDuration, c.cacheHits, c.cacheMisses, c.invalidations)
	return c
}

// Handler returns the Prometheus exposition handler for this registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RecordRequest records a completed request.
func (c *Collector) RecordRequest(route, method string, statusCode int, duration time.Duration) {
	c.requestsTotal.WithLabelValues(route, method, strconv.Itoa(statusCode)).Inc()
	c.requestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordCacheHit records a cache hit. Implements cache.MetricsRecorder.
func (c *Collector) RecordCacheHit(store, category string) {
	c.cacheHits.WithLabelValues(store, category).Inc()
}

// RecordCacheMiss records a cache miss. Implements cache.MetricsRecorder.
func (c *Collector) RecordCacheMiss(store, category string) {
	c.cacheMisses.WithLabelValues(store, category).Inc()
}

// RecordInvalidation records entries removed for a category.
func (c *Collector) RecordInvalidation(category string, removed int) {
	c.invalidations.WithLabelValues(category).Add(float64(removed))
}
