package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Job runs partitioned by job class and terminal status
	jobRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduled_job_runs_total",
			Help: "Total number of scheduled job executions",
		},
		[]string{"job_class", "status"},
	)

	// Job run duration in seconds partitioned by job class
	jobRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scheduled_job_run_duration_seconds",
			Help:    "Scheduled job execution latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"job_class"},
	)

	// Jobs observed due per dispatch cycle
	dueJobsPerDispatch = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scheduled_jobs_due_per_dispatch",
			Help:    "Number of due jobs selected per dispatch cycle",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50},
		},
	)
)
