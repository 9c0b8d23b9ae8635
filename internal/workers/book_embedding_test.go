package workers

import (
	"context"
	"errors"
	"testing"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfwise/shelfwise/internal/models"
	"github.com/shelfwise/shelfwise/internal/service"
)

type mockEnsureEmbedder struct {
	bookIDs []string
	err     error
}

func (m *mockEnsureEmbedder) EnsureEmbedded(_ context.Context, bookID string, _ models.BookMetadata) error {
	m.bookIDs = append(m.bookIDs, bookID)

	return m.err
}

func embeddingJob(attempt, maxAttempts int) *river.Job[service.BookEmbeddingArgs] {
	return &river.Job[service.BookEmbeddingArgs]{
		JobRow: &rivertype.JobRow{
			ID:          1,
			Attempt:     attempt,
			MaxAttempts: maxAttempts,
		},
		Args: service.BookEmbeddingArgs{
			BookID:   "book-1",
			Metadata: models.BookMetadata{Title: "Dune"},
		},
	}
}

func TestBookEmbeddingWorker_Work_success(t *testing.T) {
	embedder := &mockEnsureEmbedder{}
	worker := NewBookEmbeddingWorker(embedder, nil)

	err := worker.Work(context.Background(), embeddingJob(1, 3))
	require.NoError(t, err)
	assert.Equal(t, []string{"book-1"}, embedder.bookIDs)
}

func TestBookEmbeddingWorker_Work_failureBeforeLastAttempt_returnsErrorForRetry(t *testing.T) {
	embedder := &mockEnsureEmbedder{err: errors.New("provider down")}
	worker := NewBookEmbeddingWorker(embedder, nil)

	err := worker.Work(context.Background(), embeddingJob(1, 3))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ensure embedded")
}

func TestBookEmbeddingWorker_Work_finalAttemptFailure_isSwallowed(t *testing.T) {
	embedder := &mockEnsureEmbedder{err: errors.New("provider down")}
	worker := NewBookEmbeddingWorker(embedder, nil)

	// The triggering caller never observes the outcome; the job must not land
	// in the dead-letter state after exhausting attempts.
	err := worker.Work(context.Background(), embeddingJob(3, 3))
	assert.NoError(t, err)
}
