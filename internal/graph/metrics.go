package graph

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// evalDuration tracks time spent computing specific graph node types
	evalDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bowyer_node_eval_duration_seconds",
		Help:    "Time spent computing specific graph node types",
		Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
	}, []string{"layer_type"})
)
