package mpt

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics for monitoring service.
var (
	// resolvedNodes prometheus metric.
	resolvedNodes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Help:      "Number of MPT nodes resolved from the store",
			Name:      "resolved_nodes_total",
			Namespace: "neogo",
			Subsystem: "mpt",
		},
	)
	// persistedNodes prometheus metric.
	persistedNodes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Help:      "Number of MPT nodes written to the store",
			Name:      "persisted_nodes_total",
			Namespace: "neogo",
			Subsystem: "mpt",
		},
	)
	// cacheHits prometheus metric.
	cacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Help:      "Number of MPT node lookups served by the node cache",
			Name:      "cache_hits_total",
			Namespace: "neogo",
			Subsystem: "mpt",
		},
	)
)

func init() {
	prometheus.MustRegister(
		resolvedNodes,
		persistedNodes,
		cacheHits,
	)
}
