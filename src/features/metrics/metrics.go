package metrics

import (
	"time"

	"github.com/contre95/musevault/src/features/catalog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "musevault"

// Collector records catalog and hosting measurements on its own registry.
type Collector struct {
	registry         *prometheus.Registry
	upstreamRequests *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	cacheLookups     *prometheus.CounterVec
	curationDropped  *prometheus.CounterVec
	curationKept     prometheus.Counter
	rateLimited      prometheus.Counter
}

var _ catalog.Recorder = (*Collector)(nil)

// NewCollector creates a collector with the Go and process collectors attached.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Discogs requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		upstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Discogs request latency, retries included.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Catalog cache lookups by cache and result.",
		}, []string{"cache", "result"}),
		curationDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "curation_dropped_total",
			Help:      "Releases removed by curation.",
		}, []string{"reason"}),
		curationKept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "curation_kept_total",
			Help:      "Releases that survived curation.",
		}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "API requests rejected by the per-client limit.",
		}),
	}
	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.upstreamRequests,
		c.upstreamDuration,
		c.cacheLookups,
		c.curationDropped,
		c.curationKept,
		c.rateLimited,
	)
	return c
}

// Registry exposes the collector's registry for scraping.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CacheLookup counts a cache hit, miss or bypass.
func (c *Collector) CacheLookup(cache, result string) {
	c.cacheLookups.WithLabelValues(cache, result).Inc()
}

// UpstreamRequest counts one upstream call and observes its latency.
func (c *Collector) UpstreamRequest(endpoint, outcome string, elapsed time.Duration) {
	c.upstreamRequests.WithLabelValues(endpoint, outcome).Inc()
	c.upstreamDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// Curated records what one curation pass removed.
func (c *Collector) Curated(stats catalog.CurationStats) {
	c.curationDropped.WithLabelValues("unreleased").Add(float64(stats.Unreleased))
	c.curationDropped.WithLabelValues("duplicate").Add(float64(stats.Duplicates))
	c.curationKept.Add(float64(stats.Output))
}

// RateLimited counts one rejected request.
func (c *Collector) RateLimited() {
	c.rateLimited.Inc()
}
