package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfwise/shelfwise/internal/models"
	"github.com/shelfwise/shelfwise/internal/repository"
)

type mockEmbeddingStore struct {
	getEmbeddingFn func(ctx context.Context, bookID string) ([]float32, error)
	existingIDsFn  func(ctx context.Context, ids []string) (map[string]struct{}, error)
	upsertErr      error
	batchErr       error

	upserted      []models.BookEmbedding
	batchUpserted [][]models.BookEmbedding
}

func (m *mockEmbeddingStore) GetEmbedding(ctx context.Context, bookID string) ([]float32, error) {
	if m.getEmbeddingFn != nil {
		return m.getEmbeddingFn(ctx, bookID)
	}

	return nil, repository.ErrEmbeddingNotFound
}

func (m *mockEmbeddingStore) ExistingIDs(ctx context.Context, ids []string) (map[string]struct{}, error) {
	if m.existingIDsFn != nil {
		return m.existingIDsFn(ctx, ids)
	}

	return map[string]struct{}{}, nil
}

func (m *mockEmbeddingStore) Upsert(_ context.Context, row models.BookEmbedding) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}

	m.upserted = append(m.upserted, row)

	return nil
}

func (m *mockEmbeddingStore) UpsertBatch(_ context.Context, rows []models.BookEmbedding) error {
	if m.batchErr != nil {
		return m.batchErr
	}

	m.batchUpserted = append(m.batchUpserted, rows)

	return nil
}

type mockEmbeddingClient struct {
	singleCalls int
	batchCalls  []int
	err         error
}

func (m *mockEmbeddingClient) CreateEmbedding(_ context.Context, _ string) ([]float32, error) {
	m.singleCalls++
	if m.err != nil {
		return nil, m.err
	}

	return []float32{1, 0, 0}, nil
}

func (m *mockEmbeddingClient) CreateEmbeddings(_ context.Context, texts []string) ([][]float32, error) {
	m.batchCalls = append(m.batchCalls, len(texts))
	if m.err != nil {
		return nil, m.err
	}

	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}

	return out, nil
}

func TestEnsureEmbedded_generatesAndStores(t *testing.T) {
	store := &mockEmbeddingStore{}
	client := &mockEmbeddingClient{}
	svc := NewEmbeddingService(store, client, nil)

	err := svc.EnsureEmbedded(context.Background(), "book-1", models.BookMetadata{Title: "Dune"})
	require.NoError(t, err)

	assert.Equal(t, 1, client.singleCalls)
	require.Len(t, store.upserted, 1)
	assert.Equal(t, "book-1", store.upserted[0].BookID)
	assert.Equal(t, "Dune", store.upserted[0].Title)
	assert.Equal(t, []float32{1, 0, 0}, store.upserted[0].Embedding)
}

func TestEnsureEmbedded_existingRowIsNoOp(t *testing.T) {
	store := &mockEmbeddingStore{
		getEmbeddingFn: func(context.Context, string) ([]float32, error) {
			return []float32{1, 0, 0}, nil
		},
	}
	client := &mockEmbeddingClient{}
	svc := NewEmbeddingService(store, client, nil)

	err := svc.EnsureEmbedded(context.Background(), "book-1", models.BookMetadata{Title: "Dune"})
	require.NoError(t, err)

	assert.Zero(t, client.singleCalls, "no provider call for an already-embedded book")
	assert.Empty(t, store.upserted)
}

func TestEnsureEmbedded_storeReadError_propagates(t *testing.T) {
	store := &mockEmbeddingStore{
		getEmbeddingFn: func(context.Context, string) ([]float32, error) {
			return nil, errors.New("db down")
		},
	}
	client := &mockEmbeddingClient{}
	svc := NewEmbeddingService(store, client, nil)

	err := svc.EnsureEmbedded(context.Background(), "book-1", models.BookMetadata{Title: "Dune"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "check existing embedding")
	assert.Zero(t, client.singleCalls, "a failed existence read must not trigger generation")
}

func TestEnsureEmbedded_providerError_propagates(t *testing.T) {
	store := &mockEmbeddingStore{}
	client := &mockEmbeddingClient{err: errors.New("rate limited")}
	svc := NewEmbeddingService(store, client, nil)

	err := svc.EnsureEmbedded(context.Background(), "book-1", models.BookMetadata{Title: "Dune"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generate embedding")
	assert.Empty(t, store.upserted)
}

func TestEnsureEmbeddedBatch_partitionsExistingAndChunks(t *testing.T) {
	store := &mockEmbeddingStore{
		existingIDsFn: func(_ context.Context, ids []string) (map[string]struct{}, error) {
			// Every fourth book already has a row.
			existing := map[string]struct{}{}
			for i, id := range ids {
				if i%4 == 0 {
					existing[id] = struct{}{}
				}
			}

			return existing, nil
		},
	}
	client := &mockEmbeddingClient{}
	svc := NewEmbeddingService(store, client, nil)

	var books []BookInput
	for i := 0; i < 180; i++ {
		books = append(books, BookInput{
			BookID:       fmt.Sprintf("book-%d", i),
			BookMetadata: models.BookMetadata{Title: "T"},
		})
	}

	result, err := svc.EnsureEmbeddedBatch(context.Background(), books)
	require.NoError(t, err)

	assert.Equal(t, 45, result.Skipped)
	assert.Equal(t, 135, result.Embedded)
	assert.Zero(t, result.Failed)

	// 135 new books split into provider-limit chunks: 100 then 35.
	assert.Equal(t, []int{100, 35}, client.batchCalls)
	require.Len(t, store.batchUpserted, 2)
	assert.Len(t, store.batchUpserted[0], 100)
	assert.Len(t, store.batchUpserted[1], 35)
}

func TestEnsureEmbeddedBatch_chunkFailureDoesNotAbortRemaining(t *testing.T) {
	store := &mockEmbeddingStore{}
	client := &mockEmbeddingClient{}
	failFirst := true
	origErr := errors.New("provider down")

	// Fail only the first chunk.
	wrapped := &chunkFailClient{inner: client, failFirst: &failFirst, err: origErr}
	svc := NewEmbeddingService(store, wrapped, nil)

	var books []BookInput
	for i := 0; i < 150; i++ {
		books = append(books, BookInput{
			BookID:       fmt.Sprintf("book-%d", i),
			BookMetadata: models.BookMetadata{Title: "T"},
		})
	}

	result, err := svc.EnsureEmbeddedBatch(context.Background(), books)
	require.NoError(t, err, "a chunk failure is counted, not returned")

	assert.Equal(t, 100, result.Failed)
	assert.Equal(t, 50, result.Embedded)
	assert.Zero(t, result.Skipped)
	require.Len(t, store.batchUpserted, 1)
	assert.Len(t, store.batchUpserted[0], 50)
}

func TestEnsureEmbeddedBatch_emptyInput(t *testing.T) {
	svc := NewEmbeddingService(&mockEmbeddingStore{}, &mockEmbeddingClient{}, nil)

	result, err := svc.EnsureEmbeddedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, BatchEmbedResult{}, result)
}

type chunkFailClient struct {
	inner     *mockEmbeddingClient
	failFirst *bool
	err       error
}

func (c *chunkFailClient) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return c.inner.CreateEmbedding(ctx, text)
}

func (c *chunkFailClient) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if *c.failFirst {
		*c.failFirst = false

		return nil, c.err
	}

	return c.inner.CreateEmbeddings(ctx, texts)
}

func TestBuildEmbeddingText_omitsAbsentFieldsAndTruncates(t *testing.T) {
	longDesc := strings.Repeat("x", 3000)
	meta := models.BookMetadata{
		Title:       "Dune",
		Author:      strPtr("Frank Herbert"),
		Description: &longDesc,
	}

	text := BuildEmbeddingText(meta)

	lines := strings.Split(text, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Title: Dune", lines[0])
	assert.Equal(t, "Author: Frank Herbert", lines[1])
	assert.Len(t, lines[2], 2000)
	assert.NotContains(t, text, "Genre:")
}

func TestBuildEmbeddingText_titleOnly(t *testing.T) {
	assert.Equal(t, "Title: Dune", BuildEmbeddingText(models.BookMetadata{Title: "Dune"}))
}
