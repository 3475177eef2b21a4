package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Application counters scraped through the /metrics server.
var (
	URLsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snapurl_urls_created_total",
		Help: "Number of new short URLs persisted.",
	})

	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snapurl_resolve_cache_hits_total",
		Help: "Resolutions served from the cache without a store lookup.",
	})

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snapurl_resolve_cache_misses_total",
		Help: "Resolutions that fell through to the durable store.",
	})

	ClicksFlushed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snapurl_clicks_flushed_total",
		Help: "Click counts folded into the durable store by the aggregator.",
	})

	RequestsThrottled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snapurl_requests_throttled_total",
		Help: "Requests rejected by the fixed-window rate limiter.",
	})
)
