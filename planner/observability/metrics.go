// Package observability provides Prometheus metrics instrumentation for the
// planning pipeline.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// PIPELINE METRICS
// =============================================================================

var (
	pipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventforge_pipeline_runs_total",
			Help: "Total number of pipeline runs",
		},
		[]string{"status"}, // status: success, failed
	)

	pipelineDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventforge_pipeline_duration_seconds",
			Help:    "Pipeline run duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"status"},
	)
)

// =============================================================================
// STAGE METRICS
// =============================================================================

var (
	stageExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventforge_stage_executions_total",
			Help: "Total number of stage executions including retries",
		},
		[]string{"stage", "status"}, // status: success, error
	)

	stageDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventforge_stage_duration_seconds",
			Help:    "Stage execution duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"stage"},
	)
)

// =============================================================================
// CAPABILITY METRICS
// =============================================================================

var (
	capabilityCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventforge_capability_calls_total",
			Help: "Total inference and embedding capability calls",
		},
		[]string{"capability", "model", "status"}, // status: success, timeout, error
	)

	capabilityDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventforge_capability_duration_seconds",
			Help:    "Capability call duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"capability", "model"},
	)
)

// =============================================================================
// PUBLIC API
// =============================================================================

// RecordPipelineRun records run metrics after a pipeline terminates.
func RecordPipelineRun(status string, durationMS int) {
	pipelineRunsTotal.WithLabelValues(status).Inc()
	pipelineDurationSeconds.WithLabelValues(status).Observe(float64(durationMS) / 1000.0)
}

// RecordStageExecution records one stage attempt.
func RecordStageExecution(stage string, status string, durationMS int) {
	stageExecutionsTotal.WithLabelValues(stage, status).Inc()
	stageDurationSeconds.WithLabelValues(stage).Observe(float64(durationMS) / 1000.0)
}

// RecordCapabilityCall records one inference or embedding call.
func RecordCapabilityCall(capability string, model string, status string, durationMS int) {
	capabilityCallsTotal.WithLabelValues(capability, model, status).Inc()
	capabilityDurationSeconds.WithLabelValues(capability, model).Observe(float64(durationMS) / 1000.0)
}
