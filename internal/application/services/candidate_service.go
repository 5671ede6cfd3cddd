package services

import (
	"sort"

	"github.com/cartlane/sessionrec/internal/domain/entities"
)

// Candidate sourcing breadth: each of the newest session items contributes
// its nearest neighbors, and the head of the global popularity ranking is
// always included.
const (
	candidateSeedItems   = 5
	neighborsPerSeedItem = 20
	popularityHeadSize   = 50
)

type candidateSource int

const (
	sourceSimilarity candidateSource = iota
	sourcePopularity
)

// candidate carries an item through pool construction with the score of the
// source that contributed it.
type candidate struct {
	itemID string
	source candidateSource
	score  float64
}

// CandidateService proposes a bounded, deterministically ordered candidate
// pool from session recency, mined similarity and global popularity.
type CandidateService struct{}

// NewCandidateService creates a new candidate service
func NewCandidateService() *CandidateService {
	return &CandidateService{}
}

// Generate builds the candidate pool for one session. Similarity-sourced
// items come first (score descending, ties by item id), then popularity
// items (count descending, ties by item id). Items already in the session
// recency list or in exclude never appear, except through the fallback:
// when filtering empties the pool, the head of the popularity ranking is
// returned so a live session never gets nothing.
func (s *CandidateService) Generate(session *entities.SessionContext, bundle *entities.ArtifactBundle, poolSize int, exclude []string) []string {
	if poolSize <= 0 || bundle == nil {
		return nil
	}

	var pool []candidate
	seen := make(map[string]struct{})

	// Similarity candidates are added before popularity ones, so
	// first-occurrence dedup keeps the similarity source on overlap.
	add := func(c candidate) {
		if _, dup := seen[c.itemID]; dup {
			return
		}
		seen[c.itemID] = struct{}{}
		pool = append(pool, c)
	}

	if bundle.Similarity != nil {
		seeds := session.RecentItems
		if len(seeds) > candidateSeedItems {
			seeds = seeds[:candidateSeedItems]
		}
		for _, seed := range seeds {
			for _, neighbor := range bundle.Similarity.TopK(seed, neighborsPerSeedItem) {
				add(candidate{itemID: neighbor.ItemID, source: sourceSimilarity, score: neighbor.Score})
			}
		}
	}

	if bundle.Popularity != nil {
		for _, itemID := range bundle.Popularity.TopK(popularityHeadSize) {
			add(candidate{itemID: itemID, source: sourcePopularity, score: bundle.Popularity.Count(itemID)})
		}
	}

	blocked := make(map[string]struct{}, len(session.RecentItems)+len(exclude))
	for _, itemID := range session.RecentItems {
		blocked[itemID] = struct{}{}
	}
	for _, itemID := range exclude {
		blocked[itemID] = struct{}{}
	}

	kept := make([]candidate, 0, len(pool))
	for _, c := range pool {
		if _, skip := blocked[c.itemID]; !skip {
			kept = append(kept, c)
		}
	}

	if len(kept) == 0 {
		if bundle.Popularity == nil {
			return nil
		}
		return bundle.Popularity.TopK(poolSize)
	}

	sort.Slice(kept, func(i, j int) bool {
		a, b := kept[i], kept[j]
		if a.source != b.source {
			return a.source < b.source
		}
		if a.score != b.score {
			return a.score > b.score
		}
		return a.itemID < b.itemID
	})

	if len(kept) > poolSize {
		kept = kept[:poolSize]
	}
	itemIDs := make([]string, len(kept))
	for i, c := range kept {
		itemIDs[i] = c.itemID
	}
	return itemIDs
}
