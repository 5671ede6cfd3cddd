package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/cartlane/sessionrec/internal/application/services"
	"github.com/cartlane/sessionrec/internal/domain/entities"
)

// apiVersion identifies the HTTP contract, independent of model versions.
const apiVersion = "1.0.0"

// HealthChecker reports whether the session store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) bool
}

// HealthHandler handles liveness and version requests.
type HealthHandler struct {
	store     HealthChecker
	artifacts *services.ArtifactReloadService
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(store HealthChecker, artifacts *services.ArtifactReloadService) *HealthHandler {
	return &HealthHandler{
		store:     store,
		artifacts: artifacts,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if !h.store.HealthCheck(r.Context()) {
		respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
			"store":  "unreachable",
		})
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

type versionResponse struct {
	APIVersion     string `json:"api_version"`
	ModelVersion   string `json:"model_version"`
	ModelTrainedAt string `json:"model_trained_at,omitempty"`
	FeatureCount   int    `json:"feature_count"`
}

// Version handles GET /version
func (h *HealthHandler) Version(w http.ResponseWriter, r *http.Request) {
	snapshot := h.artifacts.Snapshot()

	response := versionResponse{
		APIVersion:   apiVersion,
		ModelVersion: snapshot.Scorer.Version(),
		FeatureCount: entities.FeatureCount(),
	}
	if manifest := snapshot.Bundle.Manifest; manifest != nil && !manifest.TrainedAt.IsZero() {
		response.ModelTrainedAt = manifest.TrainedAt.UTC().Format(time.RFC3339)
	}

	respondWithJSON(w, http.StatusOK, response)
}
