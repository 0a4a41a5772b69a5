// Package metrics exposes prometheus instrumentation for the workflow
// service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "contentpilot",
			Subsystem: "workflow_api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration tracks HTTP request latency.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "contentpilot",
			Subsystem: "workflow_api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method", "endpoint"},
	)

	// StageCallsTotal counts generation stage invocations by role.
	StageCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "contentpilot",
			Subsystem: "workflow_api",
			Name:      "stage_calls_total",
			Help:      "Total generation stage invocations",
		},
		[]string{"role", "status"},
	)

	// StageDuration tracks generation stage latency by role.
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "contentpilot",
			Subsystem: "workflow_api",
			Name:      "stage_duration_seconds",
			Help:      "Generation stage duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
		[]string{"role"},
	)

	// StageRetriesTotal counts drafting retries.
	StageRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "contentpilot",
			Subsystem: "workflow_api",
			Name:      "stage_retries_total",
			Help:      "Total drafting retry attempts",
		},
		[]string{"role"},
	)

	// QueueDepth gauges the background job queue.
	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "contentpilot",
			Subsystem: "workflow_api",
			Name:      "queue_depth",
			Help:      "Background job queue depth",
		},
	)

	// BackgroundJobsTotal counts processed background jobs.
	BackgroundJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "contentpilot",
			Subsystem: "workflow_api",
			Name:      "background_jobs_total",
			Help:      "Total background jobs processed",
		},
		[]string{"kind", "status"},
	)

	// WorkflowsTotal counts workflow outcomes.
	WorkflowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "contentpilot",
			Subsystem: "workflow_api",
			Name:      "workflows_total",
			Help:      "Total workflow operations by outcome",
		},
		[]string{"operation", "status"},
	)
)

// RecordRequest records an HTTP request.
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordStageCall records a generation stage invocation.
func RecordStageCall(role, status string, durationSec float64) {
	StageCallsTotal.WithLabelValues(role, status).Inc()
	StageDuration.WithLabelValues(role).Observe(durationSec)
}

// RecordBackgroundJob records a processed background job.
func RecordBackgroundJob(kind, status string) {
	BackgroundJobsTotal.WithLabelValues(kind, status).Inc()
}

// RecordWorkflow records a workflow operation outcome.
func RecordWorkflow(operation, status string) {
	WorkflowsTotal.WithLabelValues(operation, status).Inc()
}
