package services_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cartlane/sessionrec/internal/application/services"
	"github.com/cartlane/sessionrec/internal/domain/entities"
)

const floatTolerance = 1e-9

func evt(itemID string, eventType entities.EventType) entities.Event {
	return entities.Event{ItemID: itemID, Type: eventType}
}

func TestFeatureService_FullSchemaAlways(t *testing.T) {
	svc := services.NewFeatureService()

	fv := svc.Build("anything", &entities.SessionContext{}, bundleWith(nil, nil, nil), time.Time{})

	assert.Len(t, fv, entities.FeatureCount())
	for _, name := range entities.FeatureNames() {
		_, present := fv[name]
		assert.True(t, present, "feature %s missing", name)
	}
	assert.InDelta(t, -1, fv[entities.FeatLastSeenPosition], floatTolerance)
}

func TestFeatureService_SessionFeatures(t *testing.T) {
	svc := services.NewFeatureService()
	session := &entities.SessionContext{
		RecentEvents: []entities.Event{
			evt("C", entities.EventTypePurchase),
			evt("B", entities.EventTypeClick),
			evt("B", entities.EventTypeView),
			evt("A", entities.EventTypeView),
			evt("A", entities.EventTypeView),
		},
	}

	fv := svc.Build("Z", session, bundleWith(nil, nil, nil), time.Time{})

	assert.InDelta(t, 5, fv[entities.FeatSessionLength], floatTolerance)
	assert.InDelta(t, math.Log1p(5), fv[entities.FeatSessionLengthLog], floatTolerance)
	assert.InDelta(t, 3, fv[entities.FeatUniqueItems], floatTolerance)
	assert.InDelta(t, 0.4, fv[entities.FeatItemRepetitionRate], floatTolerance)

	assert.InDelta(t, 3, fv[entities.FeatViewCount], floatTolerance)
	assert.InDelta(t, 1, fv[entities.FeatClickCount], floatTolerance)
	assert.InDelta(t, 0, fv[entities.FeatAddToCartCount], floatTolerance)
	assert.InDelta(t, 1, fv[entities.FeatPurchaseCount], floatTolerance)

	assert.InDelta(t, 0.6, fv[entities.FeatViewRate], floatTolerance)
	assert.InDelta(t, 0.2, fv[entities.FeatClickThroughRate], floatTolerance)
	assert.InDelta(t, 0, fv[entities.FeatAddToCartRate], floatTolerance)
	assert.InDelta(t, 0.2, fv[entities.FeatConversionRate], floatTolerance)

	// 3 views + 1 click*2 + 1 purchase*10.
	assert.InDelta(t, 15, fv[entities.FeatEngagementScore], floatTolerance)
}

func TestFeatureService_ItemFeatures(t *testing.T) {
	svc := services.NewFeatureService()
	bundle := bundleWith(map[string]float64{"A": 5, "B": 3, "C": 10, "D": 1}, nil, nil)
	session := &entities.SessionContext{}

	top := svc.Build("C", session, bundle, time.Time{})
	assert.InDelta(t, 10, top[entities.FeatItemPopularity], floatTolerance)
	assert.InDelta(t, math.Log1p(10), top[entities.FeatItemPopularityLog], floatTolerance)
	assert.InDelta(t, 1, top[entities.FeatItemPopularityRank], floatTolerance)
	assert.InDelta(t, 100, top[entities.FeatItemPopularityPercentile], floatTolerance)

	bottom := svc.Build("D", session, bundle, time.Time{})
	assert.InDelta(t, 4, bottom[entities.FeatItemPopularityRank], floatTolerance)
	assert.InDelta(t, 25, bottom[entities.FeatItemPopularityPercentile], floatTolerance)

	unknown := svc.Build("Z", session, bundle, time.Time{})
	assert.InDelta(t, 0, unknown[entities.FeatItemPopularity], floatTolerance)
	assert.InDelta(t, 5, unknown[entities.FeatItemPopularityRank], floatTolerance)
	assert.InDelta(t, 0, unknown[entities.FeatItemPopularityPercentile], floatTolerance)
}

func TestFeatureService_InteractionPositions(t *testing.T) {
	svc := services.NewFeatureService()
	bundle := bundleWith(nil, nil, nil)
	// Most recent first: C is the newest event, A the oldest.
	session := &entities.SessionContext{
		RecentItems: []string{"C", "B", "A"},
		RecentEvents: []entities.Event{
			evt("C", entities.EventTypeView),
			evt("B", entities.EventTypeView),
			evt("A", entities.EventTypeView),
		},
	}

	newest := svc.Build("C", session, bundle, time.Time{})
	assert.InDelta(t, 1, newest[entities.FeatInSession], floatTolerance)
	assert.InDelta(t, 2, newest[entities.FeatLastSeenPosition], floatTolerance)
	assert.InDelta(t, 1, newest[entities.FeatRecencyScore], floatTolerance)

	oldest := svc.Build("A", session, bundle, time.Time{})
	assert.InDelta(t, 0, oldest[entities.FeatLastSeenPosition], floatTolerance)
	assert.InDelta(t, 1.0/3.0, oldest[entities.FeatRecencyScore], floatTolerance)

	absent := svc.Build("Z", session, bundle, time.Time{})
	assert.InDelta(t, 0, absent[entities.FeatInSession], floatTolerance)
	assert.InDelta(t, -1, absent[entities.FeatLastSeenPosition], floatTolerance)
	assert.InDelta(t, 0, absent[entities.FeatRecencyScore], floatTolerance)
}

func TestFeatureService_InteractionFrequency(t *testing.T) {
	svc := services.NewFeatureService()
	session := &entities.SessionContext{
		RecentItems: []string{"A", "B", "A"},
		RecentEvents: []entities.Event{
			evt("A", entities.EventTypeView),
			evt("B", entities.EventTypeView),
			evt("A", entities.EventTypeView),
		},
	}

	fv := svc.Build("A", session, bundleWith(nil, nil, nil), time.Time{})

	assert.InDelta(t, 2, fv[entities.FeatItemFrequencyInSession], floatTolerance)
	// The newest occurrence drives position and recency.
	assert.InDelta(t, 2, fv[entities.FeatLastSeenPosition], floatTolerance)
	assert.InDelta(t, 1, fv[entities.FeatRecencyScore], floatTolerance)
}

func TestFeatureService_SimilarityAggregates(t *testing.T) {
	svc := services.NewFeatureService()
	bundle := bundleWith(nil, []entities.SimilarityPair{
		{ItemID1: "X", ItemID2: "A", Score: 0.8},
		{ItemID1: "X", ItemID2: "B", Score: 0.4},
	}, nil)
	session := &entities.SessionContext{
		RecentItems: []string{"A", "B"},
		RecentEvents: []entities.Event{
			evt("A", entities.EventTypeView),
			evt("B", entities.EventTypeView),
		},
	}

	fv := svc.Build("X", session, bundle, time.Time{})

	assert.InDelta(t, 0.8, fv[entities.FeatMaxSimilarityToSession], floatTolerance)
	assert.InDelta(t, 0.6, fv[entities.FeatMeanSimilarityToSession], floatTolerance)
	assert.InDelta(t, 1.2, fv[entities.FeatSumSimilarityToSession], floatTolerance)
	assert.InDelta(t, 0.8, fv[entities.FeatSimilarityToLastItem], floatTolerance)
}

func TestFeatureService_SimilarityExcludesCandidateItself(t *testing.T) {
	svc := services.NewFeatureService()
	bundle := bundleWith(nil, []entities.SimilarityPair{
		{ItemID1: "A", ItemID2: "B", Score: 0.5},
	}, nil)
	session := &entities.SessionContext{
		RecentItems: []string{"B", "A"},
		RecentEvents: []entities.Event{
			evt("B", entities.EventTypeView),
			evt("A", entities.EventTypeView),
		},
	}

	fv := svc.Build("A", session, bundle, time.Time{})

	// Only B counts; A never contributes similarity to itself.
	assert.InDelta(t, 0.5, fv[entities.FeatMaxSimilarityToSession], floatTolerance)
	assert.InDelta(t, 0.5, fv[entities.FeatMeanSimilarityToSession], floatTolerance)
	assert.InDelta(t, 0.5, fv[entities.FeatSumSimilarityToSession], floatTolerance)
}

func TestFeatureService_TemporalFeatures(t *testing.T) {
	svc := services.NewFeatureService()
	startedAt := time.Date(2026, 8, 5, 14, 0, 0, 0, time.UTC)
	session := &entities.SessionContext{StartedAt: &startedAt}
	now := time.Date(2026, 8, 5, 14, 30, 0, 0, time.UTC) // Wednesday

	fv := svc.Build("A", session, bundleWith(nil, nil, nil), now)

	assert.InDelta(t, 14, fv[entities.FeatHourOfDay], floatTolerance)
	assert.InDelta(t, 3, fv[entities.FeatDayOfWeek], floatTolerance)
	assert.InDelta(t, 0, fv[entities.FeatIsWeekend], floatTolerance)
	assert.InDelta(t, 1, fv[entities.FeatIsBusinessHours], floatTolerance)
	assert.InDelta(t, math.Sin(2*math.Pi*14/24), fv[entities.FeatHourSin], floatTolerance)
	assert.InDelta(t, math.Cos(2*math.Pi*14/24), fv[entities.FeatHourCos], floatTolerance)
	assert.InDelta(t, math.Sin(2*math.Pi*3/7), fv[entities.FeatDaySin], floatTolerance)
	assert.InDelta(t, math.Cos(2*math.Pi*3/7), fv[entities.FeatDayCos], floatTolerance)
	assert.InDelta(t, 30, fv[entities.FeatSessionAgeMinutes], floatTolerance)
	assert.InDelta(t, math.Log1p(30), fv[entities.FeatSessionAgeLog], floatTolerance)
}

func TestFeatureService_TemporalWeekend(t *testing.T) {
	svc := services.NewFeatureService()
	startedAt := time.Date(2026, 8, 8, 7, 0, 0, 0, time.UTC)
	session := &entities.SessionContext{StartedAt: &startedAt}
	now := time.Date(2026, 8, 8, 7, 30, 0, 0, time.UTC) // Saturday, before business hours

	fv := svc.Build("A", session, bundleWith(nil, nil, nil), now)

	assert.InDelta(t, 1, fv[entities.FeatIsWeekend], floatTolerance)
	assert.InDelta(t, 0, fv[entities.FeatIsBusinessHours], floatTolerance)
}

func TestFeatureService_TemporalZeroWithoutStart(t *testing.T) {
	svc := services.NewFeatureService()
	now := time.Date(2026, 8, 5, 14, 30, 0, 0, time.UTC)

	fv := svc.Build("A", &entities.SessionContext{}, bundleWith(nil, nil, nil), now)

	for _, name := range []string{
		entities.FeatHourOfDay, entities.FeatDayOfWeek, entities.FeatIsWeekend,
		entities.FeatIsBusinessHours, entities.FeatHourSin, entities.FeatHourCos,
		entities.FeatDaySin, entities.FeatDayCos, entities.FeatSessionAgeMinutes,
		entities.FeatSessionAgeLog,
	} {
		assert.InDelta(t, 0, fv[name], floatTolerance, "feature %s", name)
	}
}
