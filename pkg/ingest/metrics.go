package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ParkgraphRecordsLoaded tracks edges applied by load runs
	ParkgraphRecordsLoaded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "parkgraph_records_loaded_total",
			Help: "Total number of permission edges applied from sources",
		},
	)

	// ParkgraphRecordsSkipped tracks invalid records dropped by skip-and-log
	ParkgraphRecordsSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "parkgraph_records_skipped_total",
			Help: "Total number of invalid source records skipped",
		},
	)

	// ParkgraphReloads tracks dataset rebuilds by outcome
	ParkgraphReloads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parkgraph_reloads_total",
			Help: "Total number of dataset reload attempts",
		},
		[]string{"outcome"},
	)
)

func init() {
	// Register metrics with the default registry
	prometheus.MustRegister(ParkgraphRecordsLoaded)
	prometheus.MustRegister(ParkgraphRecordsSkipped)
	prometheus.MustRegister(ParkgraphReloads)
}
