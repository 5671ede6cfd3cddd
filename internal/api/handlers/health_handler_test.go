package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartlane/sessionrec/internal/api/handlers"
	"github.com/cartlane/sessionrec/internal/application/services"
	"github.com/cartlane/sessionrec/internal/domain/entities"
	apperrors "github.com/cartlane/sessionrec/pkg/errors"
)

type stubHealthChecker struct {
	healthy bool
}

func (s *stubHealthChecker) HealthCheck(ctx context.Context) bool {
	return s.healthy
}

// stubArtifactRepo serves a manifest and model blob; everything else is
// reported missing.
type stubArtifactRepo struct {
	manifest *entities.ModelManifest
	model    []byte
}

func (s *stubArtifactRepo) LoadPopularity(ctx context.Context) (map[string]float64, error) {
	return nil, apperrors.NewArtifactMissingError("no popularity")
}

func (s *stubArtifactRepo) LoadSimilarity(ctx context.Context) ([]entities.SimilarityPair, error) {
	return nil, apperrors.NewArtifactMissingError("no similarity")
}

func (s *stubArtifactRepo) LoadCategories(ctx context.Context) (map[string]string, error) {
	return nil, apperrors.NewArtifactMissingError("no categories")
}

func (s *stubArtifactRepo) LoadManifest(ctx context.Context) (*entities.ModelManifest, error) {
	if s.manifest == nil {
		return nil, apperrors.NewArtifactMissingError("no manifest")
	}
	return s.manifest, nil
}

func (s *stubArtifactRepo) LoadModel(ctx context.Context) ([]byte, error) {
	if s.model == nil {
		return nil, apperrors.NewArtifactMissingError("no model")
	}
	return s.model, nil
}

func loadedArtifacts(repo *stubArtifactRepo) *services.ArtifactReloadService {
	reload := services.NewArtifactReloadService(repo, nil)
	reload.Load(context.Background())
	return reload
}

func TestHealthHandler_Health_OK(t *testing.T) {
	handler := handlers.NewHealthHandler(&stubHealthChecker{healthy: true}, loadedArtifacts(&stubArtifactRepo{}))

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	handler.Health(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "ok", response["status"])
}

func TestHealthHandler_Health_StoreDown(t *testing.T) {
	handler := handlers.NewHealthHandler(&stubHealthChecker{healthy: false}, loadedArtifacts(&stubArtifactRepo{}))

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	handler.Health(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var response map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "degraded", response["status"])
}

func TestHealthHandler_Version_Trained(t *testing.T) {
	trainedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	repo := &stubArtifactRepo{
		manifest: &entities.ModelManifest{
			Version:      "model-1",
			TrainedAt:    trainedAt,
			FeatureCount: entities.FeatureCount(),
		},
		model: []byte(`{
			"version": "model-1",
			"base_score": 0,
			"learning_rate": 1,
			"trees": [{"nodes": [{"leaf": true, "value": 1}]}]
		}`),
	}
	handler := handlers.NewHealthHandler(&stubHealthChecker{healthy: true}, loadedArtifacts(repo))

	req := httptest.NewRequest("GET", "/version", nil)
	w := httptest.NewRecorder()

	handler.Version(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "1.0.0", response["api_version"])
	assert.Equal(t, "model-1", response["model_version"])
	assert.Equal(t, "2026-08-01T12:00:00Z", response["model_trained_at"])
	assert.Equal(t, float64(entities.FeatureCount()), response["feature_count"])
}

func TestHealthHandler_Version_Fallback(t *testing.T) {
	handler := handlers.NewHealthHandler(&stubHealthChecker{healthy: true}, loadedArtifacts(&stubArtifactRepo{}))

	req := httptest.NewRequest("GET", "/version", nil)
	w := httptest.NewRecorder()

	handler.Version(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "fallback", response["model_version"])
	_, present := response["model_trained_at"]
	assert.False(t, present, "no trained_at without a manifest")
}
