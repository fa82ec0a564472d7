// Package metrics registers the Prometheus collectors exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shakehands_decisions_total",
		Help: "Volume decisions taken, by direction",
	}, []string{"direction"})

	TargetVolume = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "shakehands_target_volume",
		Help: "Volume chosen by the last decision (0-100)",
	})

	AppliedVolume = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "shakehands_applied_volume",
		Help: "Volume most recently pushed to the sink (0-100)",
	})

	WindowMovement = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shakehands_window_movement",
		Help:    "Summed hand movement per decision window, in pixels",
		Buckets: []float64{0, 10, 25, 50, 100, 200, 400, 800},
	})

	FramesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shakehands_frames_total",
		Help: "Frames processed by the detection loop, by result",
	}, []string{"result"})

	SinkErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shakehands_sink_errors_total",
		Help: "Failed attempts to apply a volume",
	})
)

// Frame results used as FramesTotal labels.
const (
	FrameHand     = "hand"
	FrameNoHand   = "no_hand"
	FrameNoMotion = "no_motion"
	FrameError    = "error"
)
