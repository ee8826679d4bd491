package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Store operation counters, labelled by operation and outcome
// (ok, not_found, conflict, error).
var StoreOps = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "bidforge",
	Subsystem: "prompt_store",
	Name:      "operations_total",
	Help:      "Total prompt store operations by operation and outcome.",
}, []string{"op", "outcome"})

// Cache read outcomes: hit, reload, stale_fallback, placeholder.
var CacheReads = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "bidforge",
	Subsystem: "prompt_cache",
	Name:      "reads_total",
	Help:      "Total prompt cache reads by outcome.",
}, []string{"outcome"})

var SnapshotLoadedAt = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "bidforge",
	Subsystem: "prompt_cache",
	Name:      "snapshot_loaded_timestamp_seconds",
	Help:      "Unix time of the last successful snapshot load per tenant.",
}, []string{"tenant"})
