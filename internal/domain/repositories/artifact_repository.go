package repositories

import (
	"context"

	"github.com/cartlane/sessionrec/internal/domain/entities"
)

// ArtifactRepository defines the interface for reading serving artifacts
// produced by the offline training pipeline. Artifacts are read-only at
// serving time; a missing artifact is reported as an artifact-missing error
// so the caller can fall back rather than fail.
type ArtifactRepository interface {
	// LoadPopularity reads the item popularity counts.
	LoadPopularity(ctx context.Context) (map[string]float64, error)

	// LoadSimilarity reads the mined item similarity pairs.
	LoadSimilarity(ctx context.Context) ([]entities.SimilarityPair, error)

	// LoadCategories reads the item to category mapping.
	LoadCategories(ctx context.Context) (map[string]string, error)

	// LoadManifest reads the trained model metadata.
	LoadManifest(ctx context.Context) (*entities.ModelManifest, error)

	// LoadModel reads the serialized trained scorer payload.
	LoadModel(ctx context.Context) ([]byte, error)
}
