// Package repository provides pgx-based data access for the recommendation core.
package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/shelfwise/shelfwise/internal/models"
)

// ErrEmbeddingNotFound is returned when no embedding row exists for the given book.
var ErrEmbeddingNotFound = errors.New("embedding not found for book")

// BookEmbeddingsRepository handles data access for the book_embeddings table.
// Writes are upserts keyed by book_id, so concurrent writers for the same book
// converge on one row without locking.
type BookEmbeddingsRepository struct {
	db         *pgxpool.Pool
	dimensions int
}

// NewBookEmbeddingsRepository creates a book embeddings repository. dimensions is
// the expected vector length; rows whose stored vector does not match are treated
// as absent rather than failing the whole read.
func NewBookEmbeddingsRepository(db *pgxpool.Pool, dimensions int) *BookEmbeddingsRepository {
	return &BookEmbeddingsRepository{db: db, dimensions: dimensions}
}

// ExistingIDs returns the subset of ids that already have an embedding row.
func (r *BookEmbeddingsRepository) ExistingIDs(ctx context.Context, ids []string) (map[string]struct{}, error) {
	if len(ids) == 0 {
		return map[string]struct{}{}, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT book_id FROM book_embeddings WHERE book_id = ANY($1)`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("existing embedding ids: %w", err)
	}
	defer rows.Close()

	existing := make(map[string]struct{})

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan book id: %w", err)
		}

		existing[id] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating existing ids: %w", err)
	}

	return existing, nil
}

// Upsert inserts or updates the embedding row for row.BookID. On conflict the
// vector and metadata are replaced and updated_at refreshed.
func (r *BookEmbeddingsRepository) Upsert(ctx context.Context, row models.BookEmbedding) error {
	now := time.Now()

	_, err := r.db.Exec(ctx, `
		INSERT INTO book_embeddings (book_id, embedding, title, author, genre, description, cover_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (book_id)
		DO UPDATE SET embedding = EXCLUDED.embedding, title = EXCLUDED.title, author = EXCLUDED.author,
			genre = EXCLUDED.genre, description = EXCLUDED.description, cover_url = EXCLUDED.cover_url,
			updated_at = $8`,
		row.BookID, pgvector.NewVector(row.Embedding), row.Title, row.Author, row.Genre, row.Description, row.CoverURL, now,
	)
	if err != nil {
		return fmt.Errorf("book embedding upsert: %w", err)
	}

	return nil
}

// UpsertBatch upserts all rows in one round trip. Used by the chunked batch
// embedding path; a failure applies to the whole chunk.
func (r *BookEmbeddingsRepository) UpsertBatch(ctx context.Context, rowsIn []models.BookEmbedding) error {
	if len(rowsIn) == 0 {
		return nil
	}

	now := time.Now()
	batch := &pgx.Batch{}

	for _, row := range rowsIn {
		batch.Queue(`
			INSERT INTO book_embeddings (book_id, embedding, title, author, genre, description, cover_url, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
			ON CONFLICT (book_id)
			DO UPDATE SET embedding = EXCLUDED.embedding, title = EXCLUDED.title, author = EXCLUDED.author,
				genre = EXCLUDED.genre, description = EXCLUDED.description, cover_url = EXCLUDED.cover_url,
				updated_at = $8`,
			row.BookID, pgvector.NewVector(row.Embedding), row.Title, row.Author, row.Genre, row.Description, row.CoverURL, now,
		)
	}

	results := r.db.SendBatch(ctx, batch)
	defer func() {
		if err := results.Close(); err != nil {
			slog.Error("close upsert batch", "error", err)
		}
	}()

	for range rowsIn {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("book embedding batch upsert: %w", err)
		}
	}

	return nil
}

// GetEmbedding returns the stored vector for bookID.
// Returns ErrEmbeddingNotFound when no row exists.
func (r *BookEmbeddingsRepository) GetEmbedding(ctx context.Context, bookID string) ([]float32, error) {
	var vec pgvector.Vector

	err := r.db.QueryRow(ctx,
		`SELECT embedding FROM book_embeddings WHERE book_id = $1`,
		bookID,
	).Scan(&vec)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEmbeddingNotFound
		}

		return nil, fmt.Errorf("get book embedding: %w", err)
	}

	return vec.Slice(), nil
}

// GetEmbeddingsByBookIDs returns stored vectors keyed by book_id for the given ids.
// Books without a row are simply absent from the map. A row whose vector does not
// decode to the expected dimension is skipped (treated as absent) instead of
// failing the whole batch.
func (r *BookEmbeddingsRepository) GetEmbeddingsByBookIDs(ctx context.Context, ids []string) (map[string][]float32, error) {
	if len(ids) == 0 {
		return map[string][]float32{}, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT book_id, embedding FROM book_embeddings WHERE book_id = ANY($1)`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("get embeddings by book ids: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]float32, len(ids))

	for rows.Next() {
		var (
			id  string
			vec pgvector.Vector
		)

		if err := rows.Scan(&id, &vec); err != nil {
			return nil, fmt.Errorf("scan book embedding: %w", err)
		}

		emb := vec.Slice()
		if len(emb) != r.dimensions {
			slog.Warn("skipping malformed embedding row", "book_id", id, "got_dims", len(emb), "want_dims", r.dimensions)

			continue
		}

		out[id] = emb
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating book embeddings: %w", err)
	}

	return out, nil
}

// Nearest returns up to limit candidate books ranked by descending cosine
// similarity to queryVec, excluding excludeIDs (everything already on the user's
// shelves). Uses pgvector cosine distance (<=>); similarity = 1 - distance.
func (r *BookEmbeddingsRepository) Nearest(
	ctx context.Context, queryVec []float32, excludeIDs []string, limit int,
) ([]models.Candidate, error) {
	if excludeIDs == nil {
		excludeIDs = []string{}
	}

	rows, err := r.db.Query(ctx, `
		SELECT book_id, title, author, genre, description, cover_url, (1 - (embedding <=> $1)) AS similarity
		FROM book_embeddings
		WHERE NOT (book_id = ANY($2))
		ORDER BY embedding <=> $1
		LIMIT $3`,
		pgvector.NewVector(queryVec), excludeIDs, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("nearest books: %w", err)
	}
	defer rows.Close()

	var candidates []models.Candidate

	for rows.Next() {
		var c models.Candidate

		if err := rows.Scan(&c.BookID, &c.Title, &c.Author, &c.Genre, &c.Description, &c.CoverURL, &c.Similarity); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}

		candidates = append(candidates, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating candidates: %w", err)
	}

	return candidates, nil
}
