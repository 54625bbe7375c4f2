package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Cache lookup results.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// SearchMetrics tracks outbound shopping-search traffic and its cache.
type SearchMetrics struct {
	requests *prometheus.CounterVec
	latency  prometheus.Histogram
	cache    *prometheus.CounterVec
}

// NewSearchMetrics registers the search metrics on the provided registerer.
func NewSearchMetrics(reg prometheus.Registerer) *SearchMetrics {
	if reg == nil {
		return &SearchMetrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "search_requests_total",
		Help: "Outbound shopping search requests by outcome.",
	}, []string{"outcome"})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "search_request_duration_seconds",
		Help:    "Latency of outbound shopping search requests.",
		Buckets: prometheus.DefBuckets,
	})
	cache := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "search_cache_lookups_total",
		Help: "Search cache lookups by result.",
	}, []string{"result"})
	reg.MustRegister(requests, latency, cache)
	return &SearchMetrics{requests: requests, latency: latency, cache: cache}
}

// ObserveRequest records one outbound request.
func (m *SearchMetrics) ObserveRequest(outcome string, duration time.Duration) {
	if m == nil || m.requests == nil {
		return
	}
	m.requests.WithLabelValues(normalizeLabel(outcome)).Inc()
	m.latency.Observe(duration.Seconds())
}

// IncCache counts one cache lookup.
func (m *SearchMetrics) IncCache(result string) {
	if m == nil || m.cache == nil {
		return
	}
	m.cache.WithLabelValues(normalizeLabel(result)).Inc()
}
