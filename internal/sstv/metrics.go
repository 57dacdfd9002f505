package sstv

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

/*
 * Ambient Prometheus metrics, grounded in the teacher's prometheus.go
 * GaugeVec-per-concern convention. Out of scope per spec.md only means
 * the UI panels rendering these are out of scope, not the metrics
 * themselves (SPEC_FULL §5).
 */

// Metrics is a small collector registered once per process; callers
// that don't want metrics can pass a no-op registry or simply not call
// Register.
type Metrics struct {
	ImagesDecoded   *prometheus.CounterVec
	VisTimeouts     prometheus.Counter
	DecodeLineTotal *prometheus.CounterVec
	SlantFactor     prometheus.Gauge
	DriftHz         prometheus.Gauge
}

// NewMetrics constructs and registers the SSTV collectors against reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ImagesDecoded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sstv",
			Name:      "images_decoded_total",
			Help:      "Completed SSTV image decodes by mode.",
		}, []string{"mode"}),
		VisTimeouts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "sstv",
			Name:      "vis_timeouts_total",
			Help:      "VIS_DETECT phases that timed out without a valid code.",
		}),
		DecodeLineTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sstv",
			Name:      "lines_decoded_total",
			Help:      "Scan lines decoded by mode.",
		}, []string{"mode"}),
		SlantFactor: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "sstv",
			Name:      "tracker_slant_factor",
			Help:      "Current tracker slant factor (1.0 is nominal).",
		}),
		DriftHz: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "sstv",
			Name:      "tracker_drift_hz",
			Help:      "Current tracker drift estimate in Hz.",
		}),
	}
}
