package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartlane/sessionrec/internal/adapters/scoring"
	"github.com/cartlane/sessionrec/internal/application/services"
	"github.com/cartlane/sessionrec/internal/domain/entities"
)

func newRankingService() *services.RankingService {
	return services.NewRankingService(services.NewFeatureService())
}

func TestRankingService_OrdersByScoreDescending(t *testing.T) {
	svc := newRankingService()
	bundle := bundleWith(map[string]float64{"A": 5, "B": 3, "C": 10, "D": 1}, nil, nil)
	session := sessionWithItems("A", "B")

	ranked := svc.Rank([]string{"D", "C"}, session, bundle, scoring.NewPopularityScorer(), time.Time{})

	require.Len(t, ranked, 2)
	assert.Equal(t, "C", ranked[0].ItemID)
	assert.InDelta(t, 10, ranked[0].Score, floatTolerance)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, "D", ranked[1].ItemID)
	assert.InDelta(t, 1, ranked[1].Score, floatTolerance)
	assert.Equal(t, 2, ranked[1].Rank)
}

func TestRankingService_TiesBrokenByItemID(t *testing.T) {
	svc := newRankingService()
	bundle := bundleWith(map[string]float64{"item-b": 7, "item-a": 7, "item-c": 7}, nil, nil)

	ranked := svc.Rank([]string{"item-c", "item-a", "item-b"}, sessionWithItems(), bundle, scoring.NewPopularityScorer(), time.Time{})

	require.Len(t, ranked, 3)
	assert.Equal(t, "item-a", ranked[0].ItemID)
	assert.Equal(t, "item-b", ranked[1].ItemID)
	assert.Equal(t, "item-c", ranked[2].ItemID)
}

func TestRankingService_Reasons(t *testing.T) {
	svc := newRankingService()
	bundle := bundleWith(map[string]float64{"hot": 1500, "warm": 900, "seen": 2000}, nil, nil)
	session := &entities.SessionContext{
		RecentItems:  []string{"seen"},
		RecentEvents: []entities.Event{evt("seen", entities.EventTypeView)},
	}

	ranked := svc.Rank([]string{"hot", "warm", "seen"}, session, bundle, scoring.NewPopularityScorer(), time.Time{})

	reasons := make(map[string]entities.Reason, len(ranked))
	for _, item := range ranked {
		reasons[item.ItemID] = item.Reason
	}
	// An in-session item is "viewed_recently" even above the popular
	// threshold.
	assert.Equal(t, entities.ReasonViewedRecently, reasons["seen"])
	assert.Equal(t, entities.ReasonPopular, reasons["hot"])
	assert.Equal(t, entities.ReasonRecommended, reasons["warm"])
}

func TestRankingService_PopularThresholdIsExclusive(t *testing.T) {
	svc := newRankingService()
	bundle := bundleWith(map[string]float64{"edge": 1000}, nil, nil)

	ranked := svc.Rank([]string{"edge"}, sessionWithItems(), bundle, scoring.NewPopularityScorer(), time.Time{})

	require.Len(t, ranked, 1)
	assert.Equal(t, entities.ReasonRecommended, ranked[0].Reason)
}

func TestRankingService_EmptyCandidates(t *testing.T) {
	svc := newRankingService()

	ranked := svc.Rank(nil, sessionWithItems(), bundleWith(nil, nil, nil), scoring.NewPopularityScorer(), time.Time{})

	assert.Empty(t, ranked)
}

func TestRankingService_RanksContiguous(t *testing.T) {
	svc := newRankingService()
	bundle := bundleWith(map[string]float64{"A": 4, "B": 3, "C": 2, "D": 1}, nil, nil)

	ranked := svc.Rank([]string{"A", "B", "C", "D"}, sessionWithItems(), bundle, scoring.NewPopularityScorer(), time.Time{})

	require.Len(t, ranked, 4)
	for i, item := range ranked {
		assert.Equal(t, i+1, item.Rank)
	}
}
