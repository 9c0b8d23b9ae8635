package embeddings

import (
	"context"
	"crypto/sha256"
	"fmt"
	"math"
)

// MockClient implements Client for testing. It generates deterministic embeddings
// from the input text hash, so the same text always maps to the same vector.
type MockClient struct {
	dimensions int
}

var _ Client = (*MockClient)(nil)

// NewMockClient creates a mock embedding client with 1536 dimensions, matching
// text-embedding-3-small.
func NewMockClient() *MockClient {
	return &MockClient{dimensions: defaultDimension}
}

// NewMockClientWithDimensions creates a mock client with custom dimensions.
func NewMockClientWithDimensions(dimensions int) *MockClient {
	return &MockClient{dimensions: dimensions}
}

// CreateEmbedding generates a deterministic embedding based on the text hash.
func (c *MockClient) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyInput
	}

	return c.deterministicEmbedding(text), nil
}

// CreateEmbeddings generates deterministic embeddings for multiple texts.
func (c *MockClient) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyInput
	}

	if len(texts) > MaxBatchSize {
		return nil, fmt.Errorf("%w: %d inputs, limit %d", ErrBatchTooLarge, len(texts), MaxBatchSize)
	}

	for i, text := range texts {
		if text == "" {
			return nil, fmt.Errorf("%w (index %d)", ErrEmptyInput, i)
		}
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = c.deterministicEmbedding(text)
	}

	return out, nil
}

// deterministicEmbedding creates a unit-length vector from the text hash.
func (c *MockClient) deterministicEmbedding(text string) []float32 {
	hash := sha256.Sum256([]byte(text))
	embedding := make([]float32, c.dimensions)

	for i := 0; i < c.dimensions; i++ {
		byteIdx := i % len(hash)
		// Map byte to [-1, 1]
		embedding[i] = (float32(hash[byteIdx]) / 127.5) - 1.0
	}

	var sum float64
	for _, v := range embedding {
		sum += float64(v) * float64(v)
	}

	if magnitude := float32(math.Sqrt(sum)); magnitude != 0 {
		for i := range embedding {
			embedding[i] /= magnitude
		}
	}

	return embedding
}
