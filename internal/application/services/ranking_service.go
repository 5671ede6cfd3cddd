package services

import (
	"sort"
	"time"

	"github.com/cartlane/sessionrec/internal/domain/entities"
	"github.com/cartlane/sessionrec/internal/domain/providers"
)

// RankingService scores candidates and orders them into a reproducible
// ranked list.
type RankingService struct {
	features *FeatureService
}

// NewRankingService creates a new ranking service
func NewRankingService(features *FeatureService) *RankingService {
	return &RankingService{features: features}
}

// Rank builds features for every candidate, scores them, and returns the
// list ordered by score descending with ties broken by item id ascending.
// Ranks are assigned 1..n in that order.
func (s *RankingService) Rank(candidateIDs []string, session *entities.SessionContext, bundle *entities.ArtifactBundle, scorer providers.Scorer, now time.Time) []entities.RankedItem {
	if len(candidateIDs) == 0 {
		return nil
	}

	ranked := make([]entities.RankedItem, 0, len(candidateIDs))
	for _, candidateID := range candidateIDs {
		fv := s.features.Build(candidateID, session, bundle, now)
		ranked = append(ranked, entities.RankedItem{
			ItemID: candidateID,
			Score:  scorer.Score(fv),
			Reason: reasonFor(fv),
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].ItemID < ranked[j].ItemID
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// reasonFor explains a recommendation from its own features. An item the
// session already touched is always "viewed_recently", whatever its
// popularity.
func reasonFor(fv entities.FeatureVector) entities.Reason {
	switch {
	case fv[entities.FeatInSession] == 1:
		return entities.ReasonViewedRecently
	case fv[entities.FeatItemPopularity] > entities.PopularReasonThreshold:
		return entities.ReasonPopular
	default:
		return entities.ReasonRecommended
	}
}
