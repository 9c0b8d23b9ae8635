package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// EmbeddingMetrics records embedding pipeline metrics (provider, worker).
type EmbeddingMetrics interface {
	RecordJobsEnqueued(ctx context.Context, count int64)
	RecordProviderError(ctx context.Context, reason string)
	RecordEmbeddingOutcome(ctx context.Context, status string)
	RecordWorkerError(ctx context.Context, reason string)
	RecordEmbeddingDuration(ctx context.Context, duration time.Duration, status string)
}

// RecommendationMetrics records per-request recommendation outcomes
// (personalized vs the fallback tier hit) and latency.
type RecommendationMetrics interface {
	RecordRequest(ctx context.Context, outcome string)
	RecordDuration(ctx context.Context, duration time.Duration, outcome string)
}

// HTTPMetrics records HTTP server request count and duration.
type HTTPMetrics interface {
	RecordRequest(ctx context.Context, method, route, statusClass string, duration time.Duration)
}

// Metrics bundles all metric groups created from one meter.
type Metrics struct {
	Embeddings      EmbeddingMetrics
	Recommendations RecommendationMetrics
	HTTP            HTTPMetrics
}

// NewMetrics creates all metric groups. Returns (nil, nil) when meter is nil
// (metrics disabled); callers guard with "if metrics != nil".
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		//nolint:nilnil // intentional: callers use "if metrics != nil" when metrics disabled
		return nil, nil
	}

	embeddings, err := newEmbeddingMetrics(meter)
	if err != nil {
		return nil, err
	}

	recommendations, err := newRecommendationMetrics(meter)
	if err != nil {
		return nil, err
	}

	httpMetrics, err := newHTTPMetrics(meter)
	if err != nil {
		return nil, err
	}

	return &Metrics{Embeddings: embeddings, Recommendations: recommendations, HTTP: httpMetrics}, nil
}

type embeddingMetrics struct {
	jobsEnqueued   metric.Int64Counter
	providerErrors metric.Int64Counter
	outcomes       metric.Int64Counter
	workerErrors   metric.Int64Counter
	duration       metric.Float64Histogram
}

func newEmbeddingMetrics(meter metric.Meter) (*embeddingMetrics, error) {
	jobsEnqueued, err := meter.Int64Counter(
		MetricNameEmbeddingJobsEnqueued,
		metric.WithDescription("Total embedding jobs enqueued"),
	)
	if err != nil {
		return nil, fmt.Errorf("create embedding jobs enqueued counter: %w", err)
	}

	providerErrors, err := meter.Int64Counter(
		MetricNameEmbeddingProviderErrors,
		metric.WithDescription("Total embedding enqueue failures"),
	)
	if err != nil {
		return nil, fmt.Errorf("create embedding provider errors counter: %w", err)
	}

	outcomes, err := meter.Int64Counter(
		MetricNameEmbeddingOutcomes,
		metric.WithDescription("Total embedding job outcomes by status"),
	)
	if err != nil {
		return nil, fmt.Errorf("create embedding outcomes counter: %w", err)
	}

	workerErrors, err := meter.Int64Counter(
		MetricNameEmbeddingWorkerErrors,
		metric.WithDescription("Total embedding worker errors"),
	)
	if err != nil {
		return nil, fmt.Errorf("create embedding worker errors counter: %w", err)
	}

	duration, err := meter.Float64Histogram(
		MetricNameEmbeddingDuration,
		metric.WithDescription("Embedding job duration (seconds)"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create embedding duration histogram: %w", err)
	}

	return &embeddingMetrics{
		jobsEnqueued:   jobsEnqueued,
		providerErrors: providerErrors,
		outcomes:       outcomes,
		workerErrors:   workerErrors,
		duration:       duration,
	}, nil
}

func (m *embeddingMetrics) RecordJobsEnqueued(ctx context.Context, count int64) {
	m.jobsEnqueued.Add(ctx, count)
}

func (m *embeddingMetrics) RecordProviderError(ctx context.Context, reason string) {
	m.providerErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (m *embeddingMetrics) RecordEmbeddingOutcome(ctx context.Context, status string) {
	m.outcomes.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

func (m *embeddingMetrics) RecordWorkerError(ctx context.Context, reason string) {
	m.workerErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (m *embeddingMetrics) RecordEmbeddingDuration(ctx context.Context, duration time.Duration, status string) {
	m.duration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("status", status)))
}

type recommendationMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

func newRecommendationMetrics(meter metric.Meter) (*recommendationMetrics, error) {
	requests, err := meter.Int64Counter(
		MetricNameRecommendationRequests,
		metric.WithDescription("Total recommendation requests by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("create recommendation requests counter: %w", err)
	}

	duration, err := meter.Float64Histogram(
		MetricNameRecommendationDuration,
		metric.WithDescription("Recommendation request duration (seconds)"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create recommendation duration histogram: %w", err)
	}

	return &recommendationMetrics{requests: requests, duration: duration}, nil
}

func (m *recommendationMetrics) RecordRequest(ctx context.Context, outcome string) {
	m.requests.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *recommendationMetrics) RecordDuration(ctx context.Context, duration time.Duration, outcome string) {
	m.duration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("outcome", outcome)))
}

type httpMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

func newHTTPMetrics(meter metric.Meter) (*httpMetrics, error) {
	requests, err := meter.Int64Counter(
		MetricNameHTTPRequests,
		metric.WithDescription("Total HTTP requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("create http requests counter: %w", err)
	}

	duration, err := meter.Float64Histogram(
		MetricNameHTTPRequestDuration,
		metric.WithDescription("HTTP request duration (seconds)"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create http request duration histogram: %w", err)
	}

	return &httpMetrics{requests: requests, duration: duration}, nil
}

func (m *httpMetrics) RecordRequest(ctx context.Context, method, route, statusClass string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.String("status_class", statusClass),
	)
	m.requests.Add(ctx, 1, attrs)
	m.duration.Record(ctx, duration.Seconds(), attrs)
}
