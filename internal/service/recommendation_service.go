package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/shelfwise/shelfwise/internal/models"
	"github.com/shelfwise/shelfwise/internal/observability"
	"github.com/shelfwise/shelfwise/pkg/googlebooks"
)

// minUsableCandidates is the retrieval sufficiency floor: fewer nearest-neighbor
// results than this and the pipeline degrades to fallback instead of clustering
// a handful of books.
const minUsableCandidates = 6

// fallbackSearchSize is how many books each fallback query requests; rows are
// capped at maxBooksPerRow after shelf filtering and dedup.
const fallbackSearchSize = 8

// Recommendation outcomes, recorded per request.
const (
	OutcomePersonalized      = "personalized"
	OutcomeFallbackNoRatings = "fallback_no_ratings"
	OutcomeFallbackNoTaste   = "fallback_no_taste_vector"
	OutcomeFallbackRetrieval = "fallback_insufficient_candidates"
	OutcomeFallbackClusters  = "fallback_empty_clusters"
	OutcomeFallbackError     = "fallback_pipeline_error"
)

// fallbackQueries are the curated keyword searches for degraded-data tiers.
var fallbackQueries = []struct {
	query  string
	reason string
}{
	{"bestseller fiction 2024", "Popular Fiction"},
	{"classic literature must read", "Classic Literature"},
	{"best science fiction fantasy", "Sci-Fi & Fantasy"},
	{"best mystery thriller", "Mystery & Thriller"},
}

// UserBooksReader reads the user's shelved books.
type UserBooksReader interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.UserBook, error)
}

// CandidateStore is the vector store read surface the pipeline needs: batch
// embedding lookup plus the external nearest-neighbor query boundary.
type CandidateStore interface {
	GetEmbeddingsByBookIDs(ctx context.Context, ids []string) (map[string][]float32, error)
	Nearest(ctx context.Context, queryVec []float32, excludeIDs []string, limit int) ([]models.Candidate, error)
}

// CatalogSearcher is the catalog search boundary, used only by fallback.
type CatalogSearcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]googlebooks.Book, error)
}

// BatchEmbedder fills in missing embeddings for rated books mid-request.
type BatchEmbedder interface {
	EnsureEmbeddedBatch(ctx context.Context, books []BookInput) (BatchEmbedResult, error)
}

// RecommendationService runs the full pipeline: taste vector, nearest-neighbor
// retrieval, anchor clustering, reason generation, and the fallback chain. Each
// request is computed independently and statelessly.
type RecommendationService struct {
	userBooks      UserBooksReader
	store          CandidateStore
	embedder       BatchEmbedder
	searcher       CatalogSearcher
	candidateLimit int
	metrics        observability.RecommendationMetrics
	logger         *slog.Logger
}

// RecommendationServiceParams configures RecommendationService. Embedder and
// Metrics may be nil (no mid-request embedding / metrics disabled).
type RecommendationServiceParams struct {
	UserBooks      UserBooksReader
	Store          CandidateStore
	Embedder       BatchEmbedder
	Searcher       CatalogSearcher
	CandidateLimit int
	Metrics        observability.RecommendationMetrics
	Logger         *slog.Logger
}

// NewRecommendationService creates a RecommendationService.
func NewRecommendationService(p RecommendationServiceParams) *RecommendationService {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	limit := p.CandidateLimit
	if limit <= 0 {
		limit = 40
	}

	return &RecommendationService{
		userBooks:      p.UserBooks,
		store:          p.Store,
		embedder:       p.Embedder,
		searcher:       p.Searcher,
		candidateLimit: limit,
		metrics:        p.Metrics,
		logger:         logger,
	}
}

// Recommend computes recommendation rows for userID. It never fails: every
// error and data-insufficiency condition degrades to curated fallback rows. An
// empty result means every fallback query came back empty, which is a valid
// "no recommendations yet" state, not an error.
func (s *RecommendationService) Recommend(ctx context.Context, userID uuid.UUID) []models.RecommendationRow {
	start := time.Now()

	userBooks, err := s.userBooks.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("recommendations: list user books failed", "user_id", userID, "error", err)

		return s.finish(ctx, start, OutcomeFallbackError, s.fallbackRows(ctx, nil))
	}

	shelvedIDs := make([]string, len(userBooks))
	rated := make([]models.UserBook, 0, len(userBooks))

	for i, b := range userBooks {
		shelvedIDs[i] = b.BookID

		if b.Rated() {
			rated = append(rated, b)
		}
	}

	if len(rated) == 0 {
		return s.finish(ctx, start, OutcomeFallbackNoRatings, s.fallbackRows(ctx, shelvedIDs))
	}

	rows, outcome, err := s.personalized(ctx, rated, shelvedIDs)
	if err != nil {
		s.logger.Error("recommendations: pipeline failed", "user_id", userID, "error", err)

		return s.finish(ctx, start, OutcomeFallbackError, s.fallbackRows(ctx, shelvedIDs))
	}

	if rows == nil {
		s.logger.Info("recommendations: degraded to fallback", "user_id", userID, "tier", outcome)

		return s.finish(ctx, start, outcome, s.fallbackRows(ctx, shelvedIDs))
	}

	return s.finish(ctx, start, OutcomePersonalized, rows)
}

// personalized runs the embedding-based pipeline. A nil row slice with a nil
// error means a data-insufficiency tier was hit; outcome names it.
func (s *RecommendationService) personalized(
	ctx context.Context, rated []models.UserBook, shelvedIDs []string,
) ([]models.RecommendationRow, string, error) {
	ratedIDs := make([]string, len(rated))
	for i, b := range rated {
		ratedIDs[i] = b.BookID
	}

	embByID, err := s.store.GetEmbeddingsByBookIDs(ctx, ratedIDs)
	if err != nil {
		return nil, OutcomeFallbackError, err
	}

	embByID = s.embedMissing(ctx, rated, embByID)

	taste := ComputeTasteVector(rated, embByID)
	if taste == nil {
		return nil, OutcomeFallbackNoTaste, nil
	}

	candidates, err := s.store.Nearest(ctx, taste, shelvedIDs, s.candidateLimit)
	if err != nil {
		s.logger.Error("recommendations: nearest-neighbor query failed", "error", err)

		return nil, OutcomeFallbackRetrieval, nil
	}

	if len(candidates) < minUsableCandidates {
		return nil, OutcomeFallbackRetrieval, nil
	}

	anchors := make([]models.Anchor, 0, len(rated))

	for _, b := range rated {
		if *b.Rating < positiveRatingFloor {
			continue
		}

		emb, ok := embByID[b.BookID]
		if !ok {
			continue
		}

		anchors = append(anchors, models.Anchor{
			BookID:    b.BookID,
			Title:     b.Title,
			Author:    b.Author,
			Rating:    *b.Rating,
			Embedding: emb,
		})
	}

	candidateIDs := make([]string, len(candidates))
	for i, c := range candidates {
		candidateIDs[i] = c.BookID
	}

	candEmb, err := s.store.GetEmbeddingsByBookIDs(ctx, candidateIDs)
	if err != nil {
		return nil, OutcomeFallbackError, err
	}

	clusters := ClusterByAnchor(candidates, anchors, candEmb)
	if len(clusters) == 0 {
		return nil, OutcomeFallbackClusters, nil
	}

	rows := make([]models.RecommendationRow, 0, len(clusters))

	for _, cluster := range clusters {
		members := cluster.Candidates
		if len(members) > maxBooksPerRow {
			members = members[:maxBooksPerRow]
		}

		books := make([]models.Book, len(members))
		for i, c := range members {
			books[i] = c.Book()
		}

		rows = append(rows, models.RecommendationRow{
			Reason: GenerateReason(cluster),
			SourceBook: &models.SourceBook{
				Title:  cluster.Anchor.Title,
				Author: cluster.Anchor.Author,
			},
			Books: books,
		})
	}

	return rows, OutcomePersonalized, nil
}

// embedMissing synchronously embeds rated books with no stored vector, then
// re-reads. The user waits for this, bounded by provider chunking; failures are
// tolerated and those books simply stay absent from the taste computation.
func (s *RecommendationService) embedMissing(
	ctx context.Context, rated []models.UserBook, embByID map[string][]float32,
) map[string][]float32 {
	if s.embedder == nil {
		return embByID
	}

	var missing []BookInput

	for _, b := range rated {
		if _, ok := embByID[b.BookID]; ok {
			continue
		}

		missing = append(missing, BookInput{
			BookID:       b.BookID,
			BookMetadata: models.BookMetadata{Title: b.Title, Author: b.Author},
		})
	}

	if len(missing) == 0 {
		return embByID
	}

	if _, err := s.embedder.EnsureEmbeddedBatch(ctx, missing); err != nil {
		s.logger.Warn("recommendations: embedding missing rated books failed", "count", len(missing), "error", err)

		return embByID
	}

	ids := make([]string, len(rated))
	for i, b := range rated {
		ids[i] = b.BookID
	}

	refreshed, err := s.store.GetEmbeddingsByBookIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("recommendations: re-reading embeddings failed", "error", err)

		return embByID
	}

	return refreshed
}

// fallbackRows runs the curated fallback queries in parallel and assembles rows,
// filtering books already shelved and deduplicating globally in query order. A
// failed query contributes no row; it never fails the response.
func (s *RecommendationService) fallbackRows(ctx context.Context, shelvedIDs []string) []models.RecommendationRow {
	results := make([][]googlebooks.Book, len(fallbackQueries))

	g, gctx := errgroup.WithContext(ctx)

	for i, q := range fallbackQueries {
		g.Go(func() error {
			books, err := s.searcher.Search(gctx, q.query, fallbackSearchSize)
			if err != nil {
				s.logger.Warn("fallback search failed", "query", q.query, "error", err)

				return nil
			}

			results[i] = books

			return nil
		})
	}

	// Errors are handled per-query above.
	_ = g.Wait()

	shelved := make(map[string]struct{}, len(shelvedIDs))
	for _, id := range shelvedIDs {
		shelved[id] = struct{}{}
	}

	seen := make(map[string]struct{})
	rows := make([]models.RecommendationRow, 0, len(fallbackQueries))

	for i, q := range fallbackQueries {
		var books []models.Book

		// Every result that survives filtering is claimed by this row, even past
		// the per-row display cap, so later rows never show a book an earlier
		// row already consumed.
		for _, b := range results[i] {
			if _, ok := shelved[b.BookID]; ok {
				continue
			}

			if _, ok := seen[b.BookID]; ok {
				continue
			}

			seen[b.BookID] = struct{}{}

			if len(books) < maxBooksPerRow {
				books = append(books, catalogBook(b))
			}
		}

		if len(books) > 0 {
			rows = append(rows, models.RecommendationRow{
				Reason:     q.reason,
				SourceBook: nil,
				Books:      books,
			})
		}
	}

	return rows
}

func (s *RecommendationService) finish(
	ctx context.Context, start time.Time, outcome string, rows []models.RecommendationRow,
) []models.RecommendationRow {
	if s.metrics != nil {
		s.metrics.RecordRequest(ctx, outcome)
		s.metrics.RecordDuration(ctx, time.Since(start), outcome)
	}

	return rows
}

func catalogBook(b googlebooks.Book) models.Book {
	return models.Book{
		BookID:        b.BookID,
		Title:         b.Title,
		Author:        b.Author,
		Genre:         b.Genre,
		Description:   b.Description,
		CoverURL:      b.CoverURL,
		PageCount:     b.PageCount,
		PublishedDate: b.PublishedDate,
		ISBN:          b.ISBN,
	}
}
