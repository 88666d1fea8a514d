package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReportsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signalflow_reports_started_total",
		Help: "Number of report workflows started.",
	})

	ReportsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signalflow_reports_finished_total",
		Help: "Number of report workflows reaching a terminal state, by status.",
	}, []string{"status"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "signalflow_stage_duration_seconds",
		Help:    "Wall-clock duration of each pipeline stage.",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 14),
	}, []string{"stage"})

	ActiveWorkflows = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "signalflow_active_workflows",
		Help: "Workflows currently executing in this process.",
	})
)
