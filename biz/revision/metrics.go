package revision

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stl",
			Subsystem: "revision",
			Name:      "transitions_total",
			Help:      "Revision status transitions by operation.",
		},
		[]string{"operation", "from", "to"},
	)

	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "stl",
			Subsystem: "revision",
			Name:      "operation_duration_seconds",
			Help:      "Latency of revision manager operations.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation", "result"},
	)
)

func recordTransition(op string, from, to Status) {
	if from == "" {
		from = "NONE"
	}
	transitionsTotal.WithLabelValues(op, string(from), string(to)).Inc()
}
