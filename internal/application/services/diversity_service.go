package services

import (
	"github.com/cartlane/sessionrec/internal/domain/entities"
)

// DiversityService spreads ranked results across categories. Selection is
// greedy: each round picks the remaining item with the highest penalized
// score, where an item whose category was already selected is discounted by
// the diversity weight. O(n^2) in list length, fine for bounded pools.
type DiversityService struct{}

// NewDiversityService creates a new diversity service
func NewDiversityService() *DiversityService {
	return &DiversityService{}
}

// Rerank reorders items by score x (1 - penalty). A non-positive weight or
// missing category lookup returns the input order untouched. Ties keep the
// original rank order. Items without a known category share one "unknown"
// bucket.
func (s *DiversityService) Rerank(items []entities.RankedItem, weight float64, categoryOf func(string) string) []entities.RankedItem {
	if weight <= 0 || categoryOf == nil || len(items) <= 1 {
		return items
	}

	remaining := make([]entities.RankedItem, len(items))
	copy(remaining, items)

	result := make([]entities.RankedItem, 0, len(items))
	seenCategories := make(map[string]struct{})

	for len(remaining) > 0 {
		bestIdx := 0
		bestScore := penalizedScore(remaining[0], weight, seenCategories, categoryOf)
		for i := 1; i < len(remaining); i++ {
			score := penalizedScore(remaining[i], weight, seenCategories, categoryOf)
			// Strict comparison keeps the earlier (better-ranked) item on
			// ties.
			if score > bestScore {
				bestIdx = i
				bestScore = score
			}
		}

		picked := remaining[bestIdx]
		result = append(result, picked)
		seenCategories[categoryBucket(picked.ItemID, categoryOf)] = struct{}{}
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	return result
}

func penalizedScore(item entities.RankedItem, weight float64, seen map[string]struct{}, categoryOf func(string) string) float64 {
	if _, taken := seen[categoryBucket(item.ItemID, categoryOf)]; taken {
		return item.Score * (1 - weight)
	}
	return item.Score
}

func categoryBucket(itemID string, categoryOf func(string) string) string {
	if category := categoryOf(itemID); category != "" {
		return category
	}
	return "unknown"
}
