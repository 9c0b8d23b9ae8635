package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shelfwise/shelfwise/internal/embeddings"
	"github.com/shelfwise/shelfwise/internal/models"
	"github.com/shelfwise/shelfwise/internal/repository"
)

// maxDescriptionLen bounds the description text fed to the embedding provider
// and stored for display.
const maxDescriptionLen = 2000

// EmbeddingStore is the persistence needed by the embedding lifecycle.
// GetEmbedding signals absence with repository.ErrEmbeddingNotFound.
type EmbeddingStore interface {
	GetEmbedding(ctx context.Context, bookID string) ([]float32, error)
	ExistingIDs(ctx context.Context, ids []string) (map[string]struct{}, error)
	Upsert(ctx context.Context, row models.BookEmbedding) error
	UpsertBatch(ctx context.Context, rows []models.BookEmbedding) error
}

// BookInput is one book submitted for embedding: its id plus display metadata.
type BookInput struct {
	BookID string `json:"bookId"`
	models.BookMetadata
}

// BatchEmbedResult reports what a batch ensure-embedded call did.
type BatchEmbedResult struct {
	Embedded int `json:"embedded"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// EmbeddingService owns the ensure-embedded write path: it never re-embeds a
// book that already has a row, and its terminal write is an upsert, so
// concurrent callers for the same book converge on one row. A race can cost a
// duplicate provider call but never a duplicate row.
type EmbeddingService struct {
	store  EmbeddingStore
	client embeddings.Client
	logger *slog.Logger
}

// NewEmbeddingService creates an embedding service. logger may be nil.
func NewEmbeddingService(store EmbeddingStore, client embeddings.Client, logger *slog.Logger) *EmbeddingService {
	if logger == nil {
		logger = slog.Default()
	}

	return &EmbeddingService{store: store, client: client, logger: logger}
}

// EnsureEmbedded generates and persists the embedding for bookID unless a row
// already exists. Provider and store errors propagate to the caller; callers on
// the fire-and-forget path log and drop them, leaving the embedding absent until
// the next access that needs it.
func (s *EmbeddingService) EnsureEmbedded(ctx context.Context, bookID string, meta models.BookMetadata) error {
	switch _, err := s.store.GetEmbedding(ctx, bookID); {
	case err == nil:
		return nil
	case !errors.Is(err, repository.ErrEmbeddingNotFound):
		return fmt.Errorf("check existing embedding: %w", err)
	}

	vector, err := s.client.CreateEmbedding(ctx, BuildEmbeddingText(meta))
	if err != nil {
		return fmt.Errorf("generate embedding: %w", err)
	}

	if err := s.store.Upsert(ctx, newEmbeddingRow(bookID, meta, vector)); err != nil {
		return fmt.Errorf("store embedding: %w", err)
	}

	return nil
}

// EnsureEmbeddedBatch embeds every book in books that does not already have a
// row, in chunks bounded by the provider's input ceiling. A chunk failure
// (generation or upsert) counts those books as failed and does not abort the
// remaining chunks, so partial progress is never lost.
func (s *EmbeddingService) EnsureEmbeddedBatch(ctx context.Context, books []BookInput) (BatchEmbedResult, error) {
	result := BatchEmbedResult{}
	if len(books) == 0 {
		return result, nil
	}

	ids := make([]string, len(books))
	for i, b := range books {
		ids[i] = b.BookID
	}

	existing, err := s.store.ExistingIDs(ctx, ids)
	if err != nil {
		return result, fmt.Errorf("check existing embeddings: %w", err)
	}

	toEmbed := make([]BookInput, 0, len(books))

	for _, b := range books {
		if _, ok := existing[b.BookID]; ok {
			continue
		}

		toEmbed = append(toEmbed, b)
	}

	result.Skipped = len(books) - len(toEmbed)

	for start := 0; start < len(toEmbed); start += embeddings.MaxBatchSize {
		end := start + embeddings.MaxBatchSize
		if end > len(toEmbed) {
			end = len(toEmbed)
		}

		chunk := toEmbed[start:end]

		texts := make([]string, len(chunk))
		for i, b := range chunk {
			texts[i] = BuildEmbeddingText(b.BookMetadata)
		}

		vectors, err := s.client.CreateEmbeddings(ctx, texts)
		if err != nil {
			s.logger.Error("batch embedding generation failed", "chunk_start", start, "chunk_size", len(chunk), "error", err)
			result.Failed += len(chunk)

			continue
		}

		rows := make([]models.BookEmbedding, len(chunk))
		for i, b := range chunk {
			rows[i] = newEmbeddingRow(b.BookID, b.BookMetadata, vectors[i])
		}

		if err := s.store.UpsertBatch(ctx, rows); err != nil {
			s.logger.Error("batch embedding upsert failed", "chunk_start", start, "chunk_size", len(chunk), "error", err)
			result.Failed += len(chunk)

			continue
		}

		result.Embedded += len(chunk)
	}

	return result, nil
}

// BuildEmbeddingText concatenates book metadata into the embedding input text.
// Absent fields are omitted entirely; the description is truncated to keep the
// input bounded.
func BuildEmbeddingText(meta models.BookMetadata) string {
	parts := []string{"Title: " + meta.Title}

	if meta.Author != nil && *meta.Author != "" {
		parts = append(parts, "Author: "+*meta.Author)
	}

	if meta.Genre != nil && *meta.Genre != "" {
		parts = append(parts, "Genre: "+*meta.Genre)
	}

	if meta.Description != nil && *meta.Description != "" {
		parts = append(parts, truncate(*meta.Description, maxDescriptionLen))
	}

	return strings.Join(parts, "\n")
}

func newEmbeddingRow(bookID string, meta models.BookMetadata, vector []float32) models.BookEmbedding {
	row := models.BookEmbedding{
		BookID:    bookID,
		Embedding: vector,
		Title:     meta.Title,
		Author:    meta.Author,
		Genre:     meta.Genre,
		CoverURL:  meta.CoverURL,
	}

	if meta.Description != nil {
		desc := truncate(*meta.Description, maxDescriptionLen)
		row.Description = &desc
	}

	return row
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}

	return string(runes[:limit])
}
