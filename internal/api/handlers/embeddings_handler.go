package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shelfwise/shelfwise/internal/api/response"
	"github.com/shelfwise/shelfwise/internal/api/validation"
	"github.com/shelfwise/shelfwise/internal/models"
	"github.com/shelfwise/shelfwise/internal/service"
)

// EmbeddingEnqueuer submits background ensure-embedded jobs.
type EmbeddingEnqueuer interface {
	EnqueueEnsureEmbedded(ctx context.Context, bookID string, meta models.BookMetadata)
}

// BatchEmbedService performs the synchronous batch ensure-embedded path.
type BatchEmbedService interface {
	EnsureEmbeddedBatch(ctx context.Context, books []service.BookInput) (service.BatchEmbedResult, error)
}

// EmbeddingsHandler handles HTTP requests for the embedding write path.
type EmbeddingsHandler struct {
	enqueuer EmbeddingEnqueuer
	batch    BatchEmbedService
}

// NewEmbeddingsHandler creates a new embeddings handler.
func NewEmbeddingsHandler(enqueuer EmbeddingEnqueuer, batch BatchEmbedService) *EmbeddingsHandler {
	return &EmbeddingsHandler{enqueuer: enqueuer, batch: batch}
}

// EmbedBookRequest is the request body for the single-book embedding endpoint.
type EmbedBookRequest struct {
	Title       string  `json:"title" validate:"required,max=512"`
	Author      *string `json:"author" validate:"omitempty,max=512"`
	Genre       *string `json:"genre" validate:"omitempty,max=256"`
	Description *string `json:"description"`
	CoverURL    *string `json:"coverUrl" validate:"omitempty,max=2048"`
}

// EmbedBookAccepted is the response body for an accepted embedding job.
type EmbedBookAccepted struct {
	BookID string `json:"bookId"`
	Status string `json:"status"`
}

// Enqueue handles POST /v1/books/{id}/embedding
// @Summary Enqueue an embedding job for a book
// @Description Submits a background job that ensures the book has a stored embedding. Already-embedded books are a no-op.
// @Tags Embeddings
// @Accept json
// @Produce json
// @Param id path string true "Book ID"
// @Param request body EmbedBookRequest true "Book metadata to embed"
// @Success 202 {object} EmbedBookAccepted
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails "Unauthorized - Invalid or missing API key"
// @Security BearerAuth
// @Router /v1/books/{id}/embedding [post]
func (h *EmbeddingsHandler) Enqueue(w http.ResponseWriter, r *http.Request) {
	bookID := r.PathValue("id")
	if bookID == "" {
		response.RespondBadRequest(w, "Book ID is required")
		return
	}

	var req EmbedBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondBadRequest(w, "Invalid request body")
		return
	}

	if err := validation.ValidateStruct(req); err != nil {
		validation.RespondValidationError(w, err)
		return
	}

	h.enqueuer.EnqueueEnsureEmbedded(r.Context(), bookID, models.BookMetadata{
		Title:       req.Title,
		Author:      req.Author,
		Genre:       req.Genre,
		Description: req.Description,
		CoverURL:    req.CoverURL,
	})

	response.RespondJSON(w, http.StatusAccepted, EmbedBookAccepted{BookID: bookID, Status: "queued"})
}

// BatchEmbedRequest is the request body for the batch embedding endpoint.
type BatchEmbedRequest struct {
	Books []BatchEmbedBook `json:"books" validate:"required,min=1,max=1000,dive"`
}

// BatchEmbedBook is one book in a batch embedding request.
type BatchEmbedBook struct {
	BookID      string  `json:"bookId" validate:"required,max=128"`
	Title       string  `json:"title" validate:"required,max=512"`
	Author      *string `json:"author" validate:"omitempty,max=512"`
	Genre       *string `json:"genre" validate:"omitempty,max=256"`
	Description *string `json:"description"`
	CoverURL    *string `json:"coverUrl" validate:"omitempty,max=2048"`
}

// EmbedBatch handles POST /v1/books/embeddings
// @Summary Embed a batch of books synchronously
// @Description Ensures every submitted book has a stored embedding. Already-embedded books are skipped; failed provider chunks are counted, not fatal.
// @Tags Embeddings
// @Accept json
// @Produce json
// @Param request body BatchEmbedRequest true "Books to embed"
// @Success 200 {object} service.BatchEmbedResult
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails "Unauthorized - Invalid or missing API key"
// @Security BearerAuth
// @Router /v1/books/embeddings [post]
func (h *EmbeddingsHandler) EmbedBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchEmbedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondBadRequest(w, "Invalid request body")
		return
	}

	if err := validation.ValidateStruct(req); err != nil {
		validation.RespondValidationError(w, err)
		return
	}

	inputs := make([]service.BookInput, 0, len(req.Books))
	for _, b := range req.Books {
		inputs = append(inputs, service.BookInput{
			BookID: b.BookID,
			BookMetadata: models.BookMetadata{
				Title:       b.Title,
				Author:      b.Author,
				Genre:       b.Genre,
				Description: b.Description,
				CoverURL:    b.CoverURL,
			},
		})
	}

	result, err := h.batch.EnsureEmbeddedBatch(r.Context(), inputs)
	if err != nil {
		response.RespondInternalServerError(w, "An unexpected error occurred")
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}
