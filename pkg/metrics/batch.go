package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BatchMetrics records counters and timings for batch job processing.
type BatchMetrics struct {
	jobDuration *prometheus.HistogramVec
	jobsTotal   *prometheus.CounterVec
	taskSuccess *prometheus.CounterVec
	taskFailure *prometheus.CounterVec
}

// NewBatchMetrics registers the batch metrics on the provided registerer.
func NewBatchMetrics(reg prometheus.Registerer) *BatchMetrics {
	if reg == nil {
		return &BatchMetrics{}
	}
	jobDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "batch_job_duration_seconds",
		Help:    "Duration of batch jobs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	jobsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "batch_jobs_total",
		Help: "Batch jobs by operation and terminal status.",
	}, []string{"operation", "status"})
	taskSuccess := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "batch_task_success",
		Help: "Per-asset tasks that completed successfully.",
	}, []string{"operation"})
	taskFailure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "batch_task_failure",
		Help: "Per-asset tasks that failed.",
	}, []string{"operation"})
	reg.MustRegister(jobDuration, jobsTotal, taskSuccess, taskFailure)
	return &BatchMetrics{
		jobDuration: jobDuration,
		jobsTotal:   jobsTotal,
		taskSuccess: taskSuccess,
		taskFailure: taskFailure,
	}
}

// ObserveJobDuration records the wall time for a finished job.
func (b *BatchMetrics) ObserveJobDuration(operation string, duration time.Duration) {
	if b == nil || b.jobDuration == nil {
		return
	}
	b.jobDuration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

// IncJob increments the jobs counter for an operation/terminal-status pair.
func (b *BatchMetrics) IncJob(operation, status string) {
	if b == nil || b.jobsTotal == nil {
		return
	}
	b.jobsTotal.WithLabelValues(normalizeLabel(operation), normalizeLabel(status)).Inc()
}

// IncTaskSuccess increments the per-asset success counter.
func (b *BatchMetrics) IncTaskSuccess(operation string) {
	if b == nil || b.taskSuccess == nil {
		return
	}
	b.taskSuccess.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncTaskFailure increments the per-asset failure counter.
func (b *BatchMetrics) IncTaskFailure(operation string) {
	if b == nil || b.taskFailure == nil {
		return
	}
	b.taskFailure.WithLabelValues(normalizeLabel(operation)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
