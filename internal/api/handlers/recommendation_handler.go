package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cartlane/sessionrec/internal/domain/entities"
	apperrors "github.com/cartlane/sessionrec/pkg/errors"
)

// Recommender defines the recommendation operations used by the handler.
type Recommender interface {
	Recommend(ctx context.Context, sessionID string, k int, exclude []string) (*entities.Recommendation, error)
}

// RecommendationHandler handles recommendation requests.
type RecommendationHandler struct {
	recommender Recommender
}

// NewRecommendationHandler creates a new recommendation handler.
func NewRecommendationHandler(recommender Recommender) *RecommendationHandler {
	return &RecommendationHandler{
		recommender: recommender,
	}
}

type recommendationRequest struct {
	SessionID    string   `json:"session_id"`
	K            int      `json:"k"`
	ExcludeItems []string `json:"exclude_items"`
}

// GetRecommendations handles POST /api/recommendations
func (h *RecommendationHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	var payload recommendationRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	recommendation, err := h.recommender.Recommend(r.Context(), payload.SessionID, payload.K, payload.ExcludeItems)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, recommendation)
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// respondWithAppError maps the application error taxonomy onto HTTP status
// codes. Anything unrecognized is reported as an internal error without
// leaking its message.
func respondWithAppError(w http.ResponseWriter, err error) {
	message := "internal server error"
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}

	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeValidation:
		respondWithError(w, http.StatusBadRequest, message)
	case apperrors.ErrorTypeNotFound:
		respondWithError(w, http.StatusNotFound, message)
	case apperrors.ErrorTypeStoreUnavailable:
		respondWithError(w, http.StatusServiceUnavailable, message)
	default:
		respondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
