package services

import (
	"context"
	"sync/atomic"

	"github.com/cartlane/sessionrec/internal/adapters/artifacts"
	"github.com/cartlane/sessionrec/internal/adapters/scoring"
	"github.com/cartlane/sessionrec/internal/domain/entities"
	"github.com/cartlane/sessionrec/internal/domain/providers"
	"github.com/cartlane/sessionrec/internal/domain/repositories"
	"github.com/cartlane/sessionrec/internal/infrastructure/observability"
)

// ArtifactSnapshot pairs an artifact bundle with the scorer selected for it.
// Requests read one snapshot for their whole lifetime, so a reload mid-flight
// never mixes artifact generations.
type ArtifactSnapshot struct {
	Bundle *entities.ArtifactBundle
	Scorer providers.Scorer
}

// ArtifactReloadService owns the current artifact snapshot. It loads once at
// startup and swaps in fresh snapshots atomically when the offline pipeline
// announces a publication on the event bus.
type ArtifactReloadService struct {
	repo    repositories.ArtifactRepository
	bus     providers.EventBus
	current atomic.Pointer[ArtifactSnapshot]
}

// NewArtifactReloadService creates a new artifact reload service. The bus
// may be nil when no reload channel is configured; Start then does nothing.
func NewArtifactReloadService(repo repositories.ArtifactRepository, bus providers.EventBus) *ArtifactReloadService {
	s := &ArtifactReloadService{
		repo: repo,
		bus:  bus,
	}
	s.current.Store(&ArtifactSnapshot{
		Bundle: &entities.ArtifactBundle{
			Popularity: entities.NewPopularityTable(nil),
			Similarity: entities.NewSimilarityTable(nil),
			Categories: map[string]string{},
		},
		Scorer: scoring.NewPopularityScorer(),
	})
	return s
}

// Load assembles a fresh snapshot from the repository and swaps it in.
func (s *ArtifactReloadService) Load(ctx context.Context) {
	bundle := artifacts.LoadBundle(ctx, s.repo)
	scorer := scoring.FromBundle(ctx, bundle)
	s.current.Store(&ArtifactSnapshot{Bundle: bundle, Scorer: scorer})

	observability.LoggerFromContext(ctx).Info().
		Str("model_version", bundle.ModelVersion()).
		Str("scorer", scorer.Name()).
		Msg("Artifact snapshot swapped")
}

// Snapshot returns the current snapshot. Never nil.
func (s *ArtifactReloadService) Snapshot() *ArtifactSnapshot {
	return s.current.Load()
}

// Start subscribes to artifact publication announcements and reloads on
// each one. Returns after spawning the listener; the subscription ends with
// the context.
func (s *ArtifactReloadService) Start(ctx context.Context) error {
	if s.bus == nil {
		return nil
	}

	events, err := s.bus.Subscribe(ctx, providers.EventChannelArtifactsPublished)
	if err != nil {
		return err
	}

	go func() {
		for event := range events {
			observability.LoggerFromContext(ctx).Info().
				Str("version", event.Version).
				Str("source", event.Source).
				Msg("Artifact publication announced, reloading")
			s.Load(ctx)
		}
	}()
	return nil
}
