package graph

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ParkgraphPasses tracks the number of registered passes
	ParkgraphPasses = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "parkgraph_passes",
			Help: "Number of passes registered in the active graph",
		},
	)

	// ParkgraphLots tracks the number of registered lots
	ParkgraphLots = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "parkgraph_lots",
			Help: "Number of lots registered in the active graph",
		},
	)

	// ParkgraphEdges tracks the number of permission edges
	ParkgraphEdges = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "parkgraph_edges",
			Help: "Number of permission edges in the active graph",
		},
	)

	// ParkgraphDuplicateEdges tracks idempotent re-inserts
	ParkgraphDuplicateEdges = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "parkgraph_duplicate_edges_total",
			Help: "Total number of edge inserts skipped as duplicates",
		},
	)
)

func init() {
	// Register metrics with the default registry
	prometheus.MustRegister(ParkgraphPasses)
	prometheus.MustRegister(ParkgraphLots)
	prometheus.MustRegister(ParkgraphEdges)
	prometheus.MustRegister(ParkgraphDuplicateEdges)
}
