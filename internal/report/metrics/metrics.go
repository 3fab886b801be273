// Package metrics holds the report feature's Prometheus instruments.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	ReportsCreated   prometheus.Counter
	ReportsSubmitted prometheus.Counter
	ReportsApproved  prometheus.Counter
	ReportsRejected  prometheus.Counter
	DuplicateCreates prometheus.Counter
	RecomputeMs      prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		ReportsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "skillaudit_reports_created_total",
			Help: "Audit reports created",
		}),
		ReportsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "skillaudit_reports_submitted_total",
			Help: "Audit reports submitted to a supervisor",
		}),
		ReportsApproved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "skillaudit_reports_approved_total",
			Help: "Audit reports approved",
		}),
		ReportsRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "skillaudit_reports_rejected_total",
			Help: "Audit reports rejected",
		}),
		DuplicateCreates: promauto.NewCounter(prometheus.CounterOpts{
			Name: "skillaudit_reports_duplicate_creates_total",
			Help: "Report creations redirected to the existing (center, year) report",
		}),
		RecomputeMs: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "skillaudit_report_recompute_duration_ms",
			Help:    "Latency of full report recompute in milliseconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
		}),
	}
}
