// Package metrics registers the Prometheus instruments for the allocation
// and resolution pipelines.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LinksCreated counts successfully persisted links.
	LinksCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tinylink_links_created_total",
		Help: "Number of short links created.",
	})

	// Collisions counts unique-constraint violations during creation.
	// Each one costs a retry with a fresh counter value.
	Collisions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tinylink_short_code_collisions_total",
		Help: "Number of short-code collisions retried during creation.",
	})

	// CacheHits and CacheMisses track the resolution cache.
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tinylink_resolve_cache_hits_total",
		Help: "Resolutions served from the cache tier.",
	})
	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tinylink_resolve_cache_misses_total",
		Help: "Resolutions that fell through to the durable store.",
	})

	// BloomRejections counts cache-missed lookups answered not-found by
	// the in-process bloom filter without touching the durable store.
	BloomRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tinylink_resolve_bloom_rejections_total",
		Help: "Resolutions short-circuited by the bloom filter.",
	})
)
