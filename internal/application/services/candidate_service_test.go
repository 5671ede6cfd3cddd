package services_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cartlane/sessionrec/internal/application/services"
	"github.com/cartlane/sessionrec/internal/domain/entities"
)

func bundleWith(popularity map[string]float64, pairs []entities.SimilarityPair, categories map[string]string) *entities.ArtifactBundle {
	return &entities.ArtifactBundle{
		Popularity: entities.NewPopularityTable(popularity),
		Similarity: entities.NewSimilarityTable(pairs),
		Categories: categories,
	}
}

func sessionWithItems(items ...string) *entities.SessionContext {
	return &entities.SessionContext{SessionID: "session-1", RecentItems: items}
}

func TestCandidateService_PopularityOnly(t *testing.T) {
	svc := services.NewCandidateService()
	bundle := bundleWith(map[string]float64{"A": 5, "B": 3, "C": 10, "D": 1}, nil, nil)

	got := svc.Generate(sessionWithItems("A", "B"), bundle, 100, nil)

	assert.Equal(t, []string{"C", "D"}, got)
}

func TestCandidateService_ExcludeItems(t *testing.T) {
	svc := services.NewCandidateService()
	bundle := bundleWith(map[string]float64{"A": 5, "B": 3, "C": 10, "D": 1}, nil, nil)

	got := svc.Generate(sessionWithItems("A", "B"), bundle, 100, []string{"C"})

	assert.Equal(t, []string{"D"}, got)
}

func TestCandidateService_FallbackWhenEverythingExcluded(t *testing.T) {
	svc := services.NewCandidateService()
	bundle := bundleWith(map[string]float64{"A": 5, "B": 3, "C": 10, "D": 1}, nil, nil)

	got := svc.Generate(sessionWithItems("A", "B"), bundle, 100, []string{"C", "D"})

	// The guard returns the popularity head even though every item was
	// either recently seen or excluded.
	assert.Equal(t, []string{"C", "A", "B", "D"}, got)
}

func TestCandidateService_FallbackRespectsPoolSize(t *testing.T) {
	svc := services.NewCandidateService()
	bundle := bundleWith(map[string]float64{"A": 5, "B": 3, "C": 10, "D": 1}, nil, nil)

	got := svc.Generate(sessionWithItems("A", "B"), bundle, 2, []string{"C", "D"})

	assert.Equal(t, []string{"C", "A"}, got)
}

func TestCandidateService_SimilarityBeforePopularity(t *testing.T) {
	svc := services.NewCandidateService()
	bundle := bundleWith(
		map[string]float64{"B": 100, "X": 50, "Y": 10, "A": 5},
		[]entities.SimilarityPair{
			{ItemID1: "A", ItemID2: "X", Score: 0.9},
			{ItemID1: "A", ItemID2: "Y", Score: 0.5},
		},
		nil,
	)

	got := svc.Generate(sessionWithItems("A"), bundle, 100, nil)

	// X and Y come from similarity (score order) ahead of the more popular B.
	assert.Equal(t, []string{"X", "Y", "B"}, got)
}

func TestCandidateService_FirstOccurrenceWinsAcrossSeeds(t *testing.T) {
	svc := services.NewCandidateService()
	bundle := bundleWith(
		nil,
		[]entities.SimilarityPair{
			{ItemID1: "A", ItemID2: "X", Score: 0.3},
			{ItemID1: "B", ItemID2: "X", Score: 0.9},
			{ItemID1: "B", ItemID2: "Y", Score: 0.5},
		},
		nil,
	)

	got := svc.Generate(sessionWithItems("A", "B"), bundle, 100, nil)

	// X keeps the 0.3 score from the first seed, so Y outranks it.
	assert.Equal(t, []string{"Y", "X"}, got)
}

func TestCandidateService_OnlyNewestSeedsContribute(t *testing.T) {
	svc := services.NewCandidateService()

	var pairs []entities.SimilarityPair
	var recents []string
	for i := 1; i <= 7; i++ {
		seed := fmt.Sprintf("seed-%d", i)
		recents = append(recents, seed)
		pairs = append(pairs, entities.SimilarityPair{
			ItemID1: seed,
			ItemID2: fmt.Sprintf("neighbor-%d", i),
			Score:   0.5,
		})
	}
	bundle := bundleWith(nil, pairs, nil)

	got := svc.Generate(sessionWithItems(recents...), bundle, 100, nil)

	assert.Len(t, got, 5)
	assert.NotContains(t, got, "neighbor-6")
	assert.NotContains(t, got, "neighbor-7")
}

func TestCandidateService_NeighborsPerSeedCapped(t *testing.T) {
	svc := services.NewCandidateService()

	var pairs []entities.SimilarityPair
	for i := 1; i <= 25; i++ {
		pairs = append(pairs, entities.SimilarityPair{
			ItemID1: "seed",
			ItemID2: fmt.Sprintf("neighbor-%02d", i),
			Score:   1 - float64(i)/100,
		})
	}
	bundle := bundleWith(nil, pairs, nil)

	got := svc.Generate(sessionWithItems("seed"), bundle, 100, nil)

	assert.Len(t, got, 20)
	assert.Equal(t, "neighbor-01", got[0])
	assert.NotContains(t, got, "neighbor-21")
}

func TestCandidateService_TruncatesToPoolSize(t *testing.T) {
	svc := services.NewCandidateService()
	bundle := bundleWith(map[string]float64{"A": 5, "B": 4, "C": 3, "D": 2, "E": 1}, nil, nil)

	got := svc.Generate(sessionWithItems(), bundle, 3, nil)

	assert.Equal(t, []string{"A", "B", "C"}, got)
}

func TestCandidateService_PopularityTiesBrokenByID(t *testing.T) {
	svc := services.NewCandidateService()
	bundle := bundleWith(map[string]float64{"item-c": 5, "item-a": 5, "item-b": 3}, nil, nil)

	got := svc.Generate(sessionWithItems(), bundle, 100, nil)

	assert.Equal(t, []string{"item-a", "item-c", "item-b"}, got)
}

func TestCandidateService_EmptyInputs(t *testing.T) {
	svc := services.NewCandidateService()

	got := svc.Generate(sessionWithItems(), bundleWith(nil, nil, nil), 100, nil)

	assert.Empty(t, got)
}

func TestCandidateService_Deterministic(t *testing.T) {
	svc := services.NewCandidateService()
	bundle := bundleWith(
		map[string]float64{"A": 5, "B": 5, "C": 5, "D": 5, "E": 5},
		[]entities.SimilarityPair{
			{ItemID1: "A", ItemID2: "B", Score: 0.5},
			{ItemID1: "A", ItemID2: "C", Score: 0.5},
		},
		nil,
	)
	session := sessionWithItems("A")

	first := svc.Generate(session, bundle, 100, nil)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, svc.Generate(session, bundle, 100, nil))
	}
}

func TestCandidateService_NeverContainsRecentOrExcluded(t *testing.T) {
	svc := services.NewCandidateService()
	bundle := bundleWith(
		map[string]float64{"A": 9, "B": 8, "C": 7, "D": 6, "E": 5},
		[]entities.SimilarityPair{
			{ItemID1: "A", ItemID2: "B", Score: 0.9},
			{ItemID1: "A", ItemID2: "D", Score: 0.8},
		},
		nil,
	)

	got := svc.Generate(sessionWithItems("A", "B"), bundle, 100, []string{"C"})

	assert.NotContains(t, got, "A")
	assert.NotContains(t, got, "B")
	assert.NotContains(t, got, "C")
	assert.Contains(t, got, "D")
	assert.Contains(t, got, "E")
}
