package scoring

import (
	"github.com/cartlane/sessionrec/internal/domain/entities"
	"github.com/cartlane/sessionrec/internal/domain/providers"
)

// FallbackVersion is the model version reported when scoring runs without a
// trained model.
const FallbackVersion = "fallback"

// PopularityScorer orders candidates by raw popularity count. It is the
// fallback when no trained model is available.
type PopularityScorer struct{}

// NewPopularityScorer creates the popularity fallback scorer
func NewPopularityScorer() providers.Scorer {
	return &PopularityScorer{}
}

// Name returns the scorer family name
func (s *PopularityScorer) Name() string {
	return "popularity"
}

// Version reports the fallback marker instead of a trained model version
func (s *PopularityScorer) Version() string {
	return FallbackVersion
}

// Score returns the candidate's popularity count
func (s *PopularityScorer) Score(features entities.FeatureVector) float64 {
	return features[entities.FeatItemPopularity]
}
