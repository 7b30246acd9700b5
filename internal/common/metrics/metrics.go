// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	// LLMRequests counts chat completions. mode is "structured" or "plain".
	LLMRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_llm_requests_total",
			Help: "Chat completion requests by response mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "advisor_llm_request_duration_seconds",
			Help:    "Chat completion latency in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
		},
		[]string{"mode"},
	)

	// LLMRepairAttempts counts plain retries issued after unparseable output.
	LLMRepairAttempts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "advisor_llm_repair_attempts_total",
			Help: "Corrective retries issued after the model returned invalid JSON",
		},
	)

	NormalizationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_normalization_failures_total",
			Help: "LLM payloads rejected by normalization",
		},
		[]string{"target"},
	)

	FeedDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "advisor_feed_duration_seconds",
			Help: "Feed assembly latency in seconds",
		},
		[]string{"ranking"},
	)

	ChatTurns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_chat_turns_total",
			Help: "Advisor turns by result type",
		},
		[]string{"type"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_cache_lookups_total",
			Help: "Repository cache lookups by key kind and result",
		},
		[]string{"kind", "result"},
	)
)
