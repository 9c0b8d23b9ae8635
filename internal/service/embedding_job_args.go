package service

import (
	"context"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"

	"github.com/shelfwise/shelfwise/internal/models"
)

const (
	bookEmbeddingKind = "book_embedding"
	// EmbeddingsQueueName is the River queue used for book embedding jobs.
	EmbeddingsQueueName = "embeddings"
)

// BookEmbeddingInserter inserts embedding jobs (e.g. River client).
type BookEmbeddingInserter interface {
	Insert(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) (*rivertype.JobInsertResult, error)
}

// BookEmbeddingArgs is the job payload for ensuring one book has a stored
// embedding. Uniqueness is by BookID so duplicate shelf events for the same
// book collapse into one job instead of racing the provider twice.
type BookEmbeddingArgs struct {
	BookID   string              `json:"book_id" river:"unique"`
	Metadata models.BookMetadata `json:"metadata"`
}

// Kind returns the River job kind.
func (BookEmbeddingArgs) Kind() string { return bookEmbeddingKind }

var _ river.JobArgs = BookEmbeddingArgs{}
