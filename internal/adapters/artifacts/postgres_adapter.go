package artifacts

import (
	"context"
	"database/sql"
	"errors"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/cartlane/sessionrec/internal/domain/entities"
	"github.com/cartlane/sessionrec/internal/domain/repositories"
	"github.com/cartlane/sessionrec/internal/infrastructure/clients/postgres"
	apperrors "github.com/cartlane/sessionrec/pkg/errors"
)

// PostgresAdapter implements the ArtifactRepository interface against the
// tables the offline training pipeline writes.
type PostgresAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewPostgresAdapter creates a new PostgreSQL artifact adapter
func NewPostgresAdapter(client *postgres.Client) repositories.ArtifactRepository {
	return &PostgresAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// LoadPopularity reads item purchase counts from the item_popularity table
func (a *PostgresAdapter) LoadPopularity(ctx context.Context) (map[string]float64, error) {
	query, args, err := a.db.Select("item_id", "purchase_count").
		From("item_popularity").
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build popularity query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query item popularity", err)
	}
	defer rows.Close()

	counts := make(map[string]float64)
	for rows.Next() {
		var itemID string
		var count float64
		if err := rows.Scan(&itemID, &count); err != nil {
			return nil, apperrors.NewInternalError("failed to scan popularity row", err)
		}
		counts[itemID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate popularity rows", err)
	}
	if len(counts) == 0 {
		return nil, apperrors.NewArtifactMissingError("item_popularity table is empty")
	}
	return counts, nil
}

// LoadSimilarity reads mined co-occurrence pairs from the item_similarity table
func (a *PostgresAdapter) LoadSimilarity(ctx context.Context) ([]entities.SimilarityPair, error) {
	query, args, err := a.db.Select("item_id_1", "item_id_2", "similarity").
		From("item_similarity").
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build similarity query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query item similarity", err)
	}
	defer rows.Close()

	var pairs []entities.SimilarityPair
	for rows.Next() {
		var pair entities.SimilarityPair
		if err := rows.Scan(&pair.ItemID1, &pair.ItemID2, &pair.Score); err != nil {
			return nil, apperrors.NewInternalError("failed to scan similarity row", err)
		}
		pairs = append(pairs, pair)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate similarity rows", err)
	}
	if len(pairs) == 0 {
		return nil, apperrors.NewArtifactMissingError("item_similarity table is empty")
	}
	return pairs, nil
}

// LoadCategories reads the item catalog categories from the item_categories table
func (a *PostgresAdapter) LoadCategories(ctx context.Context) (map[string]string, error) {
	query, args, err := a.db.Select("item_id", "category").
		From("item_categories").
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build categories query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query item categories", err)
	}
	defer rows.Close()

	categories := make(map[string]string)
	for rows.Next() {
		var itemID, category string
		if err := rows.Scan(&itemID, &category); err != nil {
			return nil, apperrors.NewInternalError("failed to scan category row", err)
		}
		categories[itemID] = category
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate category rows", err)
	}
	if len(categories) == 0 {
		return nil, apperrors.NewArtifactMissingError("item_categories table is empty")
	}
	return categories, nil
}

// LoadManifest reads metadata for the newest published model
func (a *PostgresAdapter) LoadManifest(ctx context.Context) (*entities.ModelManifest, error) {
	query, args, err := a.db.Select("version", "trained_at", "features_count").
		From("model_artifacts").
		Order(goqu.I("created_at").Desc()).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build manifest query", err)
	}

	var manifest entities.ModelManifest
	err = a.client.DB().QueryRowContext(ctx, query, args...).
		Scan(&manifest.Version, &manifest.TrainedAt, &manifest.FeatureCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewArtifactMissingError("no model manifest published")
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query model manifest", err)
	}
	return &manifest, nil
}

// LoadModel reads the serialized scorer payload of the newest published model
func (a *PostgresAdapter) LoadModel(ctx context.Context) ([]byte, error) {
	query, args, err := a.db.Select("payload").
		From("model_artifacts").
		Order(goqu.I("created_at").Desc()).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build model query", err)
	}

	var payload []byte
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewArtifactMissingError("no model payload published")
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query model payload", err)
	}
	if len(payload) == 0 {
		return nil, apperrors.NewArtifactMissingError("published model payload is empty")
	}
	return payload, nil
}
