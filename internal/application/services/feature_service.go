package services

import (
	"math"
	"time"

	"github.com/cartlane/sessionrec/internal/domain/entities"
)

// FeatureService derives the fixed-shape feature vector consumed by scorers.
// Every build emits the complete schema; absent inputs contribute zeros, so
// a scorer never sees an undefined feature.
type FeatureService struct{}

// NewFeatureService creates a new feature service
func NewFeatureService() *FeatureService {
	return &FeatureService{}
}

// Build computes all features for one candidate against a session snapshot.
// Purely computational: no store access happens here.
func (s *FeatureService) Build(candidateID string, session *entities.SessionContext, bundle *entities.ArtifactBundle, now time.Time) entities.FeatureVector {
	fv := entities.NewFeatureVector()
	s.addSessionFeatures(fv, session)
	s.addItemFeatures(fv, candidateID, bundle)
	s.addInteractionFeatures(fv, candidateID, session, bundle)
	s.addTemporalFeatures(fv, session, now)
	return fv
}

func (s *FeatureService) addSessionFeatures(fv entities.FeatureVector, session *entities.SessionContext) {
	events := session.RecentEvents
	length := float64(len(events))
	fv[entities.FeatSessionLength] = length
	fv[entities.FeatSessionLengthLog] = math.Log1p(length)

	unique := make(map[string]struct{}, len(events))
	counts := make(map[entities.EventType]float64, 4)
	for _, e := range events {
		unique[e.ItemID] = struct{}{}
		counts[e.Type]++
	}
	fv[entities.FeatUniqueItems] = float64(len(unique))
	if length > 0 {
		fv[entities.FeatItemRepetitionRate] = 1 - float64(len(unique))/length
	}

	fv[entities.FeatViewCount] = counts[entities.EventTypeView]
	fv[entities.FeatClickCount] = counts[entities.EventTypeClick]
	fv[entities.FeatAddToCartCount] = counts[entities.EventTypeAddToCart]
	fv[entities.FeatPurchaseCount] = counts[entities.EventTypePurchase]
	if length > 0 {
		fv[entities.FeatViewRate] = counts[entities.EventTypeView] / length
		fv[entities.FeatClickThroughRate] = counts[entities.EventTypeClick] / length
		fv[entities.FeatAddToCartRate] = counts[entities.EventTypeAddToCart] / length
		fv[entities.FeatConversionRate] = counts[entities.EventTypePurchase] / length
	}

	engagement := 0.0
	for _, t := range entities.ValidEventTypes() {
		engagement += counts[t] * t.EngagementWeight()
	}
	fv[entities.FeatEngagementScore] = engagement
}

func (s *FeatureService) addItemFeatures(fv entities.FeatureVector, candidateID string, bundle *entities.ArtifactBundle) {
	pop := bundle.Popularity
	if pop == nil || pop.Size() == 0 {
		return
	}
	count := pop.Count(candidateID)
	fv[entities.FeatItemPopularity] = count
	fv[entities.FeatItemPopularityLog] = math.Log1p(count)
	fv[entities.FeatItemPopularityRank] = float64(pop.Rank(candidateID))
	fv[entities.FeatItemPopularityPercentile] = pop.Percentile(candidateID)
}

func (s *FeatureService) addInteractionFeatures(fv entities.FeatureVector, candidateID string, session *entities.SessionContext, bundle *entities.ArtifactBundle) {
	events := session.RecentEvents // most recent first

	mostRecentIdx := -1
	frequency := 0.0
	for i, e := range events {
		if e.ItemID != candidateID {
			continue
		}
		if mostRecentIdx < 0 {
			mostRecentIdx = i
		}
		frequency++
	}

	fv[entities.FeatLastSeenPosition] = -1
	if mostRecentIdx >= 0 {
		fv[entities.FeatInSession] = 1
		// Position counts from the chronological start of the window; the
		// recency score is 1 for the newest event and decays from there.
		fv[entities.FeatLastSeenPosition] = float64(len(events) - 1 - mostRecentIdx)
		fv[entities.FeatRecencyScore] = 1 / float64(mostRecentIdx+1)
	}
	fv[entities.FeatItemFrequencyInSession] = frequency

	sim := bundle.Similarity
	if sim == nil {
		return
	}

	seen := make(map[string]struct{}, len(events))
	var maxSim, sumSim float64
	others := 0
	for _, e := range events {
		if e.ItemID == candidateID {
			continue
		}
		if _, dup := seen[e.ItemID]; dup {
			continue
		}
		seen[e.ItemID] = struct{}{}
		score := sim.Between(candidateID, e.ItemID)
		sumSim += score
		if score > maxSim {
			maxSim = score
		}
		others++
	}
	fv[entities.FeatMaxSimilarityToSession] = maxSim
	fv[entities.FeatSumSimilarityToSession] = sumSim
	if others > 0 {
		fv[entities.FeatMeanSimilarityToSession] = sumSim / float64(others)
	}

	if last := session.MostRecentItem(); last != "" {
		fv[entities.FeatSimilarityToLastItem] = sim.Between(candidateID, last)
	}
}

func (s *FeatureService) addTemporalFeatures(fv entities.FeatureVector, session *entities.SessionContext, now time.Time) {
	if now.IsZero() || session.StartedAt == nil {
		return
	}

	hour := float64(now.Hour())
	day := float64(now.Weekday())
	fv[entities.FeatHourOfDay] = hour
	fv[entities.FeatDayOfWeek] = day
	if now.Weekday() == time.Saturday || now.Weekday() == time.Sunday {
		fv[entities.FeatIsWeekend] = 1
	}
	if now.Hour() >= 9 && now.Hour() <= 17 {
		fv[entities.FeatIsBusinessHours] = 1
	}
	fv[entities.FeatHourSin] = math.Sin(2 * math.Pi * hour / 24)
	fv[entities.FeatHourCos] = math.Cos(2 * math.Pi * hour / 24)
	fv[entities.FeatDaySin] = math.Sin(2 * math.Pi * day / 7)
	fv[entities.FeatDayCos] = math.Cos(2 * math.Pi * day / 7)

	age := now.Sub(*session.StartedAt).Minutes()
	if age < 0 {
		age = 0
	}
	fv[entities.FeatSessionAgeMinutes] = age
	fv[entities.FeatSessionAgeLog] = math.Log1p(age)
}
