package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricCaptures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inferpipe_captures_total",
		Help: "Number of completed frame captures.",
	})
	metricOverflows = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inferpipe_capture_overflows_total",
		Help: "Number of captures aborted by sensor FIFO overflow.",
	})
	metricInference = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "inferpipe_inference_seconds",
		Help:    "Accelerator inference time per capture.",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
	})
	metricExports = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inferpipe_exports_total",
		Help: "Number of exported captures by payload format.",
	}, []string{"format"})
)
