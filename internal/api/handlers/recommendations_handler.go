package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/shelfwise/shelfwise/internal/api/response"
	"github.com/shelfwise/shelfwise/internal/models"
)

// Recommender produces recommendation rows for a user. It degrades internally
// and never fails.
type Recommender interface {
	Recommend(ctx context.Context, userID uuid.UUID) []models.RecommendationRow
}

// RecommendationsHandler handles HTTP requests for recommendations.
type RecommendationsHandler struct {
	recommender Recommender
}

// NewRecommendationsHandler creates a new recommendations handler.
func NewRecommendationsHandler(recommender Recommender) *RecommendationsHandler {
	return &RecommendationsHandler{recommender: recommender}
}

// RecommendationsResponse is the response body for the recommendations endpoint.
type RecommendationsResponse struct {
	Rows []models.RecommendationRow `json:"rows"`
}

// Get handles GET /v1/users/{id}/recommendations
// @Summary Get recommendations for a user
// @Description Returns personalized recommendation rows, degrading to curated fallback rows when personalization is not possible
// @Tags Recommendations
// @Produce json
// @Param id path string true "User ID (UUID)"
// @Success 200 {object} RecommendationsResponse
// @Failure 400 {object} ProblemDetails "Invalid UUID format"
// @Failure 401 {object} ProblemDetails "Unauthorized - Invalid or missing API key"
// @Security BearerAuth
// @Router /v1/users/{id}/recommendations [get]
func (h *RecommendationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	idStr := r.PathValue("id")
	if idStr == "" {
		response.RespondBadRequest(w, "User ID is required")
		return
	}

	userID, err := uuid.Parse(idStr)
	if err != nil {
		response.RespondBadRequest(w, "Invalid UUID format")
		return
	}

	rows := h.recommender.Recommend(r.Context(), userID)
	if rows == nil {
		rows = []models.RecommendationRow{}
	}

	response.RespondJSON(w, http.StatusOK, RecommendationsResponse{Rows: rows})
}
