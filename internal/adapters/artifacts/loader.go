package artifacts

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/cartlane/sessionrec/internal/domain/entities"
	"github.com/cartlane/sessionrec/internal/domain/repositories"
	"github.com/cartlane/sessionrec/internal/infrastructure/observability"
	apperrors "github.com/cartlane/sessionrec/pkg/errors"
)

// LoadBundle assembles an artifact bundle from the repository. Missing
// artifacts degrade the bundle instead of failing the load: popularity and
// similarity fall back to empty tables, categories to an empty map, and the
// model payload to nil so scoring falls back to popularity. Each absent
// artifact is logged once per load.
func LoadBundle(ctx context.Context, repo repositories.ArtifactRepository) *entities.ArtifactBundle {
	logger := observability.LoggerFromContext(ctx)

	bundle := &entities.ArtifactBundle{
		Categories: make(map[string]string),
		LoadedAt:   time.Now().UTC(),
	}

	counts, err := repo.LoadPopularity(ctx)
	if err != nil {
		logAbsence(logger, "item popularity", err)
		counts = nil
	}
	bundle.Popularity = entities.NewPopularityTable(counts)

	pairs, err := repo.LoadSimilarity(ctx)
	if err != nil {
		logAbsence(logger, "item similarity", err)
		pairs = nil
	}
	bundle.Similarity = entities.NewSimilarityTable(pairs)

	categories, err := repo.LoadCategories(ctx)
	if err != nil {
		logAbsence(logger, "item categories", err)
	} else {
		bundle.Categories = categories
	}

	manifest, err := repo.LoadManifest(ctx)
	if err != nil {
		logAbsence(logger, "model manifest", err)
	} else {
		bundle.Manifest = manifest
	}

	payload, err := repo.LoadModel(ctx)
	if err != nil {
		logAbsence(logger, "model payload", err)
	} else {
		bundle.ModelPayload = payload
	}

	logger.Info().
		Str("model_version", bundle.ModelVersion()).
		Int("popularity_items", bundle.Popularity.Size()).
		Int("similarity_items", bundle.Similarity.Size()).
		Int("category_items", len(bundle.Categories)).
		Msg("Artifact bundle loaded")

	return bundle
}

func logAbsence(logger *zerolog.Logger, artifact string, err error) {
	if apperrors.IsArtifactMissing(err) {
		logger.Warn().Err(err).Str("artifact", artifact).Msg("Artifact unavailable, continuing without it")
		return
	}
	logger.Error().Err(err).Str("artifact", artifact).Msg("Failed to load artifact")
}
