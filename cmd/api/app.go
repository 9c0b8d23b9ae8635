package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/shelfwise/shelfwise/internal/config"
	"github.com/shelfwise/shelfwise/internal/observability"
	"github.com/shelfwise/shelfwise/internal/service"
	"github.com/shelfwise/shelfwise/internal/workers"
)

// newMetrics creates the metric groups from the provider, or nil when metrics
// are disabled.
func newMetrics(provider *sdkmetric.MeterProvider) (*observability.Metrics, error) {
	if provider == nil {
		return nil, nil
	}

	return observability.NewMetrics(provider.Meter("shelfwise"))
}

// initRiver initializes and starts the River job queue with the book embedding worker.
func initRiver(
	ctx context.Context,
	db *pgxpool.Pool,
	cfg *config.Config,
	embeddingService *service.EmbeddingService,
	metrics observability.EmbeddingMetrics,
) (*river.Client[pgx.Tx], error) {
	riverWorkers := river.NewWorkers()
	river.AddWorker(riverWorkers, workers.NewBookEmbeddingWorker(embeddingService, metrics))

	riverClient, err := river.NewClient(riverpgxv5.New(db), &river.Config{
		Queues: map[string]river.QueueConfig{
			service.EmbeddingsQueueName: {MaxWorkers: cfg.EmbeddingMaxConcurrent},
		},
		Workers:     riverWorkers,
		JobTimeout:  60 * time.Second,
		MaxAttempts: cfg.EmbeddingMaxAttempts,
	})
	if err != nil {
		return nil, fmt.Errorf("create river client: %w", err)
	}

	if err := riverClient.Start(ctx); err != nil {
		return nil, fmt.Errorf("start river client: %w", err)
	}

	return riverClient, nil
}
