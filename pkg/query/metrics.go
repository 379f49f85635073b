package query

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ParkgraphQueries tracks queries by resolved direction and outcome
	ParkgraphQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parkgraph_queries_total",
			Help: "Total number of queries processed",
		},
		[]string{"direction", "outcome"},
	)

	// ParkgraphQueryCacheHits tracks result cache hits
	ParkgraphQueryCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "parkgraph_query_cache_hits_total",
			Help: "Total number of query results served from cache",
		},
	)

	// ParkgraphQueryCacheMisses tracks result cache misses
	ParkgraphQueryCacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "parkgraph_query_cache_misses_total",
			Help: "Total number of query results computed fresh",
		},
	)
)

func init() {
	// Register metrics with the default registry
	prometheus.MustRegister(ParkgraphQueries)
	prometheus.MustRegister(ParkgraphQueryCacheHits)
	prometheus.MustRegister(ParkgraphQueryCacheMisses)
}
