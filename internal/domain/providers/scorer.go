package providers

import (
	"github.com/cartlane/sessionrec/internal/domain/entities"
)

// Scorer defines the interface mapping a feature vector to a relevance
// score. Implementations are immutable after construction; swapping in a
// retrained model means building a new Scorer, never mutating one in place.
type Scorer interface {
	// Name identifies the scoring strategy.
	Name() string

	// Version identifies the model artifact backing the scorer, or
	// "fallback" for the popularity baseline.
	Version() string

	// Score computes the relevance of one candidate's feature vector.
	// Pure and safe for concurrent use.
	Score(features entities.FeatureVector) float64
}
