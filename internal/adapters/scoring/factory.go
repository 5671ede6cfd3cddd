package scoring

import (
	"context"

	"github.com/cartlane/sessionrec/internal/domain/entities"
	"github.com/cartlane/sessionrec/internal/domain/providers"
	"github.com/cartlane/sessionrec/internal/infrastructure/observability"
)

// FromBundle selects the scorer for an artifact bundle. A parseable model
// payload yields the trained ensemble; anything else falls back to
// popularity scoring. Selection happens once per bundle load, so a broken
// payload is logged here and never re-examined per request.
func FromBundle(ctx context.Context, bundle *entities.ArtifactBundle) providers.Scorer {
	logger := observability.LoggerFromContext(ctx)

	if bundle == nil || len(bundle.ModelPayload) == 0 {
		logger.Warn().Msg("No trained model published, scoring falls back to popularity")
		return NewPopularityScorer()
	}

	scorer, err := ParseEnsemble(bundle.ModelPayload)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load trained model, scoring falls back to popularity")
		return NewPopularityScorer()
	}

	logger.Info().
		Str("model_version", scorer.Version()).
		Int("trees", len(scorer.payload.Trees)).
		Msg("Trained model loaded")
	return scorer
}
