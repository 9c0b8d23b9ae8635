package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/riverqueue/river"

	"github.com/shelfwise/shelfwise/internal/models"
	"github.com/shelfwise/shelfwise/internal/observability"
)

// uniqueByPeriodEmbedding collapses repeat enqueues for the same book within
// this window into one job.
const uniqueByPeriodEmbedding = 15 * time.Minute

// EmbeddingProvider enqueues fire-and-forget ensure-embedded jobs when a book
// is shelved or rated. The caller does not wait and is unaffected by failure:
// enqueue errors are logged and counted, never returned, and the next
// recommendation request simply sees the embedding present or absent.
type EmbeddingProvider struct {
	inserter    BookEmbeddingInserter
	queueName   string
	maxAttempts int
	metrics     observability.EmbeddingMetrics
}

// NewEmbeddingProvider creates a provider that enqueues book_embedding jobs.
// metrics may be nil when metrics are disabled.
func NewEmbeddingProvider(
	inserter BookEmbeddingInserter,
	queueName string,
	maxAttempts int,
	metrics observability.EmbeddingMetrics,
) *EmbeddingProvider {
	return &EmbeddingProvider{
		inserter:    inserter,
		queueName:   queueName,
		maxAttempts: maxAttempts,
		metrics:     metrics,
	}
}

// EnqueueEnsureEmbedded submits a background ensure-embedded job for bookID.
func (p *EmbeddingProvider) EnqueueEnsureEmbedded(ctx context.Context, bookID string, meta models.BookMetadata) {
	opts := &river.InsertOpts{
		Queue:       p.queueName,
		MaxAttempts: p.maxAttempts,
		UniqueOpts:  river.UniqueOpts{ByArgs: true, ByPeriod: uniqueByPeriodEmbedding},
	}

	_, err := p.inserter.Insert(ctx, BookEmbeddingArgs{BookID: bookID, Metadata: meta}, opts)
	if err != nil {
		if p.metrics != nil {
			p.metrics.RecordProviderError(ctx, "enqueue_failed")
		}

		slog.Error("embedding: enqueue failed",
			"book_id", bookID,
			"error", err,
		)

		return
	}

	slog.Info("embedding: job enqueued", "book_id", bookID)

	if p.metrics != nil {
		p.metrics.RecordJobsEnqueued(ctx, 1)
	}
}
