package align

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// calculationsTotal counts reactor calculations by suffix mode
	calculationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "align_calculations_total",
		Help: "Total reactor version calculations by suffix mode",
	}, []string{"mode"})

	// metadataLookupsTotal counts metadata lookups by result (hit, miss, error)
	metadataLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "align_metadata_lookups_total",
		Help: "Total metadata version lookups by result",
	}, []string{"result"})

	// metadataLookupDuration tracks the latency of lookups reaching the wrapped source
	metadataLookupDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "align_metadata_lookup_duration_seconds",
		Help:    "Metadata version lookup duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
	})

	// recoveredErrorsTotal counts coordinate resolution failures treated as "no versions"
	recoveredErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "align_recovered_coordinate_errors_total",
		Help: "Total metadata failures recovered as no known versions",
	})

	// propertyUpdatesTotal counts property update requests by status
	propertyUpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "align_property_updates_total",
		Help: "Total property update requests by status",
	}, []string{"status"})
)

// Lookup results.
const (
	lookupHit   = "hit"
	lookupMiss  = "miss"
	lookupError = "error"
)
