// Package embeddings defines the embedding provider boundary: a narrow contract
// for turning book text into fixed-dimension vectors.
package embeddings

import "context"

// MaxBatchSize is the provider's per-call input-count ceiling. Callers must chunk
// larger batches themselves.
const MaxBatchSize = 100

// Client generates text embeddings.
type Client interface {
	// CreateEmbedding generates an embedding vector for the given text.
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)

	// CreateEmbeddings generates embedding vectors for multiple texts in one
	// provider call. Output order matches input order. len(texts) must not
	// exceed MaxBatchSize.
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}
