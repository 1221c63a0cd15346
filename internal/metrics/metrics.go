// Package metrics exposes prometheus collectors for export and import jobs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dataio"

// Outcome label values.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

var durationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

var (
	Jobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "jobs_total",
		Help:      "number of export and import jobs by outcome",
	}, []string{"direction", "format", "record_type", "outcome"})

	Rows = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rows_total",
		Help:      "number of rows written by exports or created by imports",
	}, []string{"direction", "format", "record_type"})

	Duration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "job_duration_seconds",
		Help:      "export and import job latency",
		Buckets:   durationBuckets,
	}, []string{"direction", "format"})
)

// ObserveExport records one finished export job.
func ObserveExport(format, recordType string, rows int, elapsed time.Duration, err error) {
	observe("export", format, recordType, rows, elapsed, err)
}

// ObserveImport records one finished import job. rows counts the records
// created, including those created before a failure.
func ObserveImport(format, recordType string, rows int, elapsed time.Duration, err error) {
	observe("import", format, recordType, rows, elapsed, err)
}

func observe(direction, format, recordType string, rows int, elapsed time.Duration, err error) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	Jobs.WithLabelValues(direction, format, recordType, outcome).Inc()
	Rows.WithLabelValues(direction, format, recordType).Add(float64(rows))
	Duration.WithLabelValues(direction, format).Observe(elapsed.Seconds())
}
