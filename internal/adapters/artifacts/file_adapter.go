package artifacts

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cartlane/sessionrec/internal/domain/entities"
	"github.com/cartlane/sessionrec/internal/domain/repositories"
	apperrors "github.com/cartlane/sessionrec/pkg/errors"
)

// Artifact file names inside the configured directory. This is the on-disk
// contract the offline training pipeline publishes against.
const (
	popularityFile = "item_popularity.json"
	similarityFile = "item_similarity.json"
	categoriesFile = "item_categories.json"
	manifestFile   = "manifest.json"
	modelFile      = "model.json"
)

// FileAdapter implements the ArtifactRepository interface over a directory
// of JSON files.
type FileAdapter struct {
	dir string
}

// NewFileAdapter creates a new file-based artifact adapter
func NewFileAdapter(dir string) repositories.ArtifactRepository {
	return &FileAdapter{dir: dir}
}

func (a *FileAdapter) read(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(a.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperrors.NewArtifactMissingError("artifact " + name + " not found in " + a.dir)
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to read artifact "+name, err)
	}
	return data, nil
}

// LoadPopularity reads the item popularity counts
func (a *FileAdapter) LoadPopularity(ctx context.Context) (map[string]float64, error) {
	data, err := a.read(popularityFile)
	if err != nil {
		return nil, err
	}
	var counts map[string]float64
	if err := json.Unmarshal(data, &counts); err != nil {
		return nil, apperrors.NewInternalError("failed to decode "+popularityFile, err)
	}
	return counts, nil
}

// LoadSimilarity reads the mined item similarity pairs
func (a *FileAdapter) LoadSimilarity(ctx context.Context) ([]entities.SimilarityPair, error) {
	data, err := a.read(similarityFile)
	if err != nil {
		return nil, err
	}
	var pairs []entities.SimilarityPair
	if err := json.Unmarshal(data, &pairs); err != nil {
		return nil, apperrors.NewInternalError("failed to decode "+similarityFile, err)
	}
	return pairs, nil
}

// LoadCategories reads the item to category mapping
func (a *FileAdapter) LoadCategories(ctx context.Context) (map[string]string, error) {
	data, err := a.read(categoriesFile)
	if err != nil {
		return nil, err
	}
	var categories map[string]string
	if err := json.Unmarshal(data, &categories); err != nil {
		return nil, apperrors.NewInternalError("failed to decode "+categoriesFile, err)
	}
	return categories, nil
}

// LoadManifest reads the trained model metadata
func (a *FileAdapter) LoadManifest(ctx context.Context) (*entities.ModelManifest, error) {
	data, err := a.read(manifestFile)
	if err != nil {
		return nil, err
	}
	var manifest entities.ModelManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, apperrors.NewInternalError("failed to decode "+manifestFile, err)
	}
	return &manifest, nil
}

// LoadModel reads the serialized trained scorer payload
func (a *FileAdapter) LoadModel(ctx context.Context) ([]byte, error) {
	return a.read(modelFile)
}
