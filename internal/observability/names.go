// Package observability provides metrics and log context plumbing.
package observability

// Metric names. Kept in one place so dashboards and alerts have a stable contract.
const (
	MetricNameEmbeddingJobsEnqueued   = "shelfwise_embedding_jobs_enqueued_total"
	MetricNameEmbeddingProviderErrors = "shelfwise_embedding_provider_errors_total"
	MetricNameEmbeddingOutcomes       = "shelfwise_embedding_outcomes_total"
	MetricNameEmbeddingWorkerErrors   = "shelfwise_embedding_worker_errors_total"
	MetricNameEmbeddingDuration       = "shelfwise_embedding_duration_seconds"

	MetricNameRecommendationRequests = "shelfwise_recommendation_requests_total"
	MetricNameRecommendationDuration = "shelfwise_recommendation_duration_seconds"

	MetricNameHTTPRequests        = "shelfwise_http_requests_total"
	MetricNameHTTPRequestDuration = "shelfwise_http_request_duration_seconds"
)
