package rfpath

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

/*
 * Ambient Prometheus metrics for the RF path engine (SPEC_FULL §5),
 * following the same per-concern registration convention as the SSTV
 * codec's metrics.go.
 */

// Metrics is a small collector registered once per process.
type Metrics struct {
	PathsAnalyzed    prometheus.Counter
	RelaysAnalyzed   prometheus.Counter
	ViewshedsComputed prometheus.Counter
	ElevationErrors  prometheus.Counter
	HopMarginDB      prometheus.Histogram
}

// NewMetrics constructs and registers the RF path collectors against reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PathsAnalyzed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "rfpath",
			Name:      "paths_analyzed_total",
			Help:      "Single-hop path analyses completed.",
		}),
		RelaysAnalyzed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "rfpath",
			Name:      "relays_analyzed_total",
			Help:      "Multi-hop relay chains analyzed.",
		}),
		ViewshedsComputed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "rfpath",
			Name:      "viewsheds_computed_total",
			Help:      "Viewshed sweeps computed.",
		}),
		ElevationErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "rfpath",
			Name:      "elevation_errors_total",
			Help:      "Elevation provider calls that failed or returned no data.",
		}),
		HopMarginDB: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "rfpath",
			Name:      "hop_margin_db",
			Help:      "Distribution of computed link margins across analyzed hops.",
			Buckets:   prometheus.LinearBuckets(-40, 10, 10),
		}),
	}
}
