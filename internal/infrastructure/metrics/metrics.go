// Package metrics exposes the worker's prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	JobsProcessed *prometheus.CounterVec
	JobDuration   prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		JobsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "framex_jobs_processed_total",
			Help: "Jobs processed by terminal status.",
		}, []string{"status"}),
		JobDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "framex_job_duration_seconds",
			Help:    "Wall-clock time spent executing one job.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
		}),
	}
}
