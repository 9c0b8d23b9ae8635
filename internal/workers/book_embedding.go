// Package workers provides River job workers (background book embedding).
package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/riverqueue/river"

	"github.com/shelfwise/shelfwise/internal/models"
	"github.com/shelfwise/shelfwise/internal/observability"
	"github.com/shelfwise/shelfwise/internal/service"
)

// ensureEmbedder is the minimal interface needed by the worker.
type ensureEmbedder interface {
	EnsureEmbedded(ctx context.Context, bookID string, meta models.BookMetadata) error
}

// BookEmbeddingWorker generates and stores the embedding for one book. The
// triggering caller never observes the outcome: a final-attempt failure is
// swallowed and the embedding stays absent until the next access that needs it.
type BookEmbeddingWorker struct {
	river.WorkerDefaults[service.BookEmbeddingArgs]

	embedder ensureEmbedder
	metrics  observability.EmbeddingMetrics
}

// NewBookEmbeddingWorker creates the worker. metrics may be nil when metrics are disabled.
func NewBookEmbeddingWorker(embedder ensureEmbedder, metrics observability.EmbeddingMetrics) *BookEmbeddingWorker {
	return &BookEmbeddingWorker{embedder: embedder, metrics: metrics}
}

const bookEmbeddingTimeout = 30 * time.Second

// Timeout limits how long a single embedding job can run.
func (w *BookEmbeddingWorker) Timeout(*river.Job[service.BookEmbeddingArgs]) time.Duration {
	return bookEmbeddingTimeout
}

// Work ensures the book has a stored embedding.
func (w *BookEmbeddingWorker) Work(ctx context.Context, job *river.Job[service.BookEmbeddingArgs]) error {
	args := job.Args
	start := time.Now()

	err := w.embedder.EnsureEmbedded(ctx, args.BookID, args.Metadata)
	if err != nil {
		isLastAttempt := job.Attempt >= job.MaxAttempts

		if w.metrics != nil {
			w.metrics.RecordWorkerError(ctx, "ensure_embedded_failed")

			if isLastAttempt {
				w.metrics.RecordEmbeddingOutcome(ctx, "failed_final")
				w.metrics.RecordEmbeddingDuration(ctx, time.Since(start), "failed_final")
			} else {
				w.metrics.RecordEmbeddingOutcome(ctx, "retry")
				w.metrics.RecordEmbeddingDuration(ctx, time.Since(start), "retry")
			}
		}

		if isLastAttempt {
			slog.Error("embedding: ensure embedded failed (final attempt)",
				"book_id", args.BookID,
				"error", err,
			)

			return nil
		}

		return fmt.Errorf("ensure embedded: %w", err)
	}

	slog.Info("embedding: stored", "book_id", args.BookID)

	if w.metrics != nil {
		w.metrics.RecordEmbeddingOutcome(ctx, "success")
		w.metrics.RecordEmbeddingDuration(ctx, time.Since(start), "success")
	}

	return nil
}
