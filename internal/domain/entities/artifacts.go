package entities

import (
	"sort"
	"time"
)

// SimilarityPair is one row of the externally mined similarity artifact.
type SimilarityPair struct {
	ItemID1 string  `json:"item_id_1" db:"item_id_1"`
	ItemID2 string  `json:"item_id_2" db:"item_id_2"`
	Score   float64 `json:"score" db:"similarity"`
}

// SimilarityEntry pairs a neighbor item with its similarity score.
type SimilarityEntry struct {
	ItemID string  `json:"item_id"`
	Score  float64 `json:"score"`
}

// PopularityTable holds global purchase counts with the descending order,
// ranks and percentile support precomputed at load time. Read-only after
// construction.
type PopularityTable struct {
	counts       map[string]float64
	ordered      []string
	ranks        map[string]int
	sortedCounts []float64
}

// NewPopularityTable builds a table from raw item counts. Items are ordered
// by count descending with ties broken by item id ascending.
func NewPopularityTable(counts map[string]float64) *PopularityTable {
	t := &PopularityTable{
		counts:       make(map[string]float64, len(counts)),
		ordered:      make([]string, 0, len(counts)),
		ranks:        make(map[string]int, len(counts)),
		sortedCounts: make([]float64, 0, len(counts)),
	}
	for id, count := range counts {
		t.counts[id] = count
		t.ordered = append(t.ordered, id)
		t.sortedCounts = append(t.sortedCounts, count)
	}
	sort.Slice(t.ordered, func(i, j int) bool {
		a, b := t.ordered[i], t.ordered[j]
		if t.counts[a] != t.counts[b] {
			return t.counts[a] > t.counts[b]
		}
		return a < b
	})
	for i, id := range t.ordered {
		t.ranks[id] = i + 1
	}
	sort.Float64s(t.sortedCounts)
	return t
}

// Size returns the number of items in the table.
func (t *PopularityTable) Size() int {
	return len(t.ordered)
}

// Count returns the popularity count for an item, 0 when unknown.
func (t *PopularityTable) Count(itemID string) float64 {
	return t.counts[itemID]
}

// Rank returns the 1-based popularity rank. Unknown items rank after every
// known item.
func (t *PopularityTable) Rank(itemID string) int {
	if r, ok := t.ranks[itemID]; ok {
		return r
	}
	return len(t.ordered) + 1
}

// Percentile returns the fraction of items whose count is at most the given
// item's count, scaled to 0-100. An empty table yields 0.
func (t *PopularityTable) Percentile(itemID string) float64 {
	n := len(t.sortedCounts)
	if n == 0 {
		return 0
	}
	c := t.counts[itemID]
	atMost := sort.Search(n, func(i int) bool { return t.sortedCounts[i] > c })
	return float64(atMost) / float64(n) * 100
}

// TopK returns the k most popular item ids in rank order. The caller owns
// the returned slice.
func (t *PopularityTable) TopK(k int) []string {
	if k > len(t.ordered) {
		k = len(t.ordered)
	}
	if k <= 0 {
		return nil
	}
	out := make([]string, k)
	copy(out, t.ordered[:k])
	return out
}

// SimilarityTable holds per-item neighbor lists sorted by score descending
// with ties broken by item id ascending. Pairs are indexed symmetrically.
// Read-only after construction.
type SimilarityTable struct {
	neighbors map[string][]SimilarityEntry
	pairs     map[string]map[string]float64
}

// NewSimilarityTable builds a table from mined pairs. Self-pairs are ignored
// and a repeated pair keeps the last score seen.
func NewSimilarityTable(pairs []SimilarityPair) *SimilarityTable {
	scores := make(map[string]map[string]float64)
	put := func(a, b string, s float64) {
		m, ok := scores[a]
		if !ok {
			m = make(map[string]float64)
			scores[a] = m
		}
		m[b] = s
	}
	for _, p := range pairs {
		if p.ItemID1 == p.ItemID2 {
			continue
		}
		put(p.ItemID1, p.ItemID2, p.Score)
		put(p.ItemID2, p.ItemID1, p.Score)
	}

	t := &SimilarityTable{
		neighbors: make(map[string][]SimilarityEntry, len(scores)),
		pairs:     scores,
	}
	for id, m := range scores {
		list := make([]SimilarityEntry, 0, len(m))
		for other, s := range m {
			list = append(list, SimilarityEntry{ItemID: other, Score: s})
		}
		sort.Slice(list, func(i, j int) bool {
			if list[i].Score != list[j].Score {
				return list[i].Score > list[j].Score
			}
			return list[i].ItemID < list[j].ItemID
		})
		t.neighbors[id] = list
	}
	return t
}

// Size returns the number of items with at least one neighbor.
func (t *SimilarityTable) Size() int {
	return len(t.neighbors)
}

// Neighbors returns the full neighbor list for an item, nil when unknown.
// The returned slice must not be mutated.
func (t *SimilarityTable) Neighbors(itemID string) []SimilarityEntry {
	return t.neighbors[itemID]
}

// TopK returns up to k neighbors of an item in score order.
func (t *SimilarityTable) TopK(itemID string, k int) []SimilarityEntry {
	list := t.neighbors[itemID]
	if k < len(list) {
		list = list[:k]
	}
	return list
}

// Between returns the similarity between two items, 0 when no pair exists.
func (t *SimilarityTable) Between(a, b string) float64 {
	return t.pairs[a][b]
}

// ArtifactEvent announces that the offline pipeline published a new
// artifact bundle and replicas should reload.
type ArtifactEvent struct {
	Version     string    `json:"version"`
	Source      string    `json:"source,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// ModelManifest describes the trained scorer artifact that accompanies it.
type ModelManifest struct {
	Version      string    `json:"version"`
	TrainedAt    time.Time `json:"trained_at"`
	FeatureCount int       `json:"features_count"`
}

// ArtifactBundle is one coherent snapshot of every serving artifact. Bundles
// are immutable; reloading artifacts swaps in a whole new bundle.
type ArtifactBundle struct {
	Popularity   *PopularityTable
	Similarity   *SimilarityTable
	Categories   map[string]string
	Manifest     *ModelManifest
	ModelPayload []byte
	LoadedAt     time.Time
}

// ModelVersion returns the manifest version, "none" when no manifest loaded.
func (b *ArtifactBundle) ModelVersion() string {
	if b.Manifest == nil || b.Manifest.Version == "" {
		return "none"
	}
	return b.Manifest.Version
}

// CategoryOf returns an item's category, "" when no category is known.
func (b *ArtifactBundle) CategoryOf(itemID string) string {
	return b.Categories[itemID]
}
