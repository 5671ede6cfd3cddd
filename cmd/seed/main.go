package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/cartlane/sessionrec/internal/adapters/events"
	"github.com/cartlane/sessionrec/internal/adapters/session"
	"github.com/cartlane/sessionrec/internal/domain/entities"
	"github.com/cartlane/sessionrec/internal/domain/providers"
	"github.com/cartlane/sessionrec/internal/evaluation"
	"github.com/cartlane/sessionrec/internal/infrastructure/clients/redis"
	"github.com/cartlane/sessionrec/pkg/config"
)

// Model payload in the shape the training pipeline publishes.
type modelNode struct {
	Feature   string  `json:"feature,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
	Left      int     `json:"left,omitempty"`
	Right     int     `json:"right,omitempty"`
	Leaf      bool    `json:"leaf,omitempty"`
	Value     float64 `json:"value,omitempty"`
}

type modelTree struct {
	Nodes []modelNode `json:"nodes"`
}

type modelPayload struct {
	Version      string      `json:"version"`
	BaseScore    float64     `json:"base_score"`
	LearningRate float64     `json:"learning_rate"`
	Trees        []modelTree `json:"trees"`
}

type step struct {
	itemID    string
	eventType entities.EventType
}

var demoCategories = []string{"Electronics", "Home & Kitchen", "Sports", "Beauty", "Office"}

func main() {
	var outDir string
	var itemCount int
	var sessionCount int
	var goldenPath string
	var goldenCount int
	var announce bool
	var randSeed int64

	flag.StringVar(&outDir, "out", "./artifacts", "Directory to write artifact files into")
	flag.IntVar(&itemCount, "items", 200, "Number of catalog items to generate")
	flag.IntVar(&sessionCount, "sessions", 0, "Number of demo sessions to record in Redis (0 skips)")
	flag.StringVar(&goldenPath, "golden", "", "Write a golden session file to this path (empty skips)")
	flag.IntVar(&goldenCount, "golden-sessions", 50, "Number of golden sessions to generate")
	flag.BoolVar(&announce, "announce", false, "Publish an artifact event so running replicas reload")
	flag.Int64Var(&randSeed, "rand-seed", 42, "Generator seed, the same seed reproduces the same artifacts")
	flag.Parse()

	if itemCount < len(demoCategories) {
		log.Fatalf("Need at least %d items, got %d", len(demoCategories), itemCount)
	}

	rng := rand.New(rand.NewSource(randSeed))

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		log.Fatalf("Failed to create artifact directory: %v", err)
	}

	// 1. Catalog: fixed ids with one category each
	itemIDs := make([]string, itemCount)
	categories := make(map[string]string, itemCount)
	for i := range itemIDs {
		id := fmt.Sprintf("prod_%03d", i+1)
		itemIDs[i] = id
		categories[id] = demoCategories[i%len(demoCategories)]
	}

	// 2. Popularity: a power law over catalog position, so a small head
	// dominates the way real purchase counts do
	popularity := make(map[string]float64, itemCount)
	for i, id := range itemIDs {
		popularity[id] = math.Round(5000/math.Pow(float64(i+1), 0.8)) + float64(rng.Intn(25))
	}

	// 3. Similarity: a co-browse graph with stronger same-category links
	neighbors := make(map[string][]string, itemCount)
	pairScores := make(map[[2]string]float64)
	for i, a := range itemIDs {
		degree := 6 + rng.Intn(7)
		for n := 0; n < degree; n++ {
			j := rng.Intn(itemCount)
			if j == i {
				continue
			}
			b := itemIDs[j]
			key := [2]string{a, b}
			if a > b {
				key = [2]string{b, a}
			}
			if _, dup := pairScores[key]; dup {
				continue
			}
			score := 0.05 + 0.4*rng.Float64()
			if categories[a] == categories[b] {
				score += 0.35
			}
			pairScores[key] = score
			neighbors[a] = append(neighbors[a], b)
			neighbors[b] = append(neighbors[b], a)
		}
	}
	pairs := make([]entities.SimilarityPair, 0, len(pairScores))
	for key, score := range pairScores {
		pairs = append(pairs, entities.SimilarityPair{ItemID1: key[0], ItemID2: key[1], Score: score})
	}
	// Deterministic file content for a given seed.
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].ItemID1 != pairs[j].ItemID1 {
			return pairs[i].ItemID1 < pairs[j].ItemID1
		}
		return pairs[i].ItemID2 < pairs[j].ItemID2
	})

	// 4. A small hand-built ensemble that prefers items similar to the
	// session and popular enough to matter
	model := modelPayload{
		Version:      "demo-1",
		BaseScore:    0,
		LearningRate: 0.1,
		Trees: []modelTree{
			{Nodes: []modelNode{
				{Feature: entities.FeatMaxSimilarityToSession, Threshold: 0.3, Left: 1, Right: 2},
				{Leaf: true, Value: -1},
				{Leaf: true, Value: 2.5},
			}},
			{Nodes: []modelNode{
				{Feature: entities.FeatItemPopularityPercentile, Threshold: 60, Left: 1, Right: 2},
				{Leaf: true, Value: -0.5},
				{Leaf: true, Value: 1.2},
			}},
			{Nodes: []modelNode{
				{Feature: entities.FeatSimilarityToLastItem, Threshold: 0.5, Left: 1, Right: 2},
				{Leaf: true, Value: 0},
				{Leaf: true, Value: 1.8},
			}},
		},
	}
	manifest := entities.ModelManifest{
		Version:      "demo-1",
		TrainedAt:    time.Now().UTC(),
		FeatureCount: entities.FeatureCount(),
	}

	// 5. Publish the bundle as files
	files := []struct {
		name string
		data any
	}{
		{"item_popularity.json", popularity},
		{"item_similarity.json", pairs},
		{"item_categories.json", categories},
		{"manifest.json", manifest},
		{"model.json", model},
	}
	for _, f := range files {
		path := filepath.Join(outDir, f.name)
		if err := writeJSON(path, f.data); err != nil {
			log.Fatalf("Failed to write %s: %v", f.name, err)
		}
		log.Printf("Wrote %s", path)
	}

	// 6. Golden sessions for offline evaluation
	if goldenPath != "" {
		golden := make([]evaluation.GoldenSession, 0, goldenCount)
		for i := 0; i < goldenCount; i++ {
			steps, holdout := simulateSession(rng, itemIDs, neighbors, 3+rng.Intn(20))
			goldenEvents := make([]evaluation.GoldenEvent, len(steps))
			for j, st := range steps {
				goldenEvents[j] = evaluation.GoldenEvent{ItemID: st.itemID, EventType: string(st.eventType)}
			}
			golden = append(golden, evaluation.GoldenSession{
				ID:      fmt.Sprintf("golden_%03d", i+1),
				Events:  goldenEvents,
				Holdout: holdout,
			})
		}
		if err := writeJSON(goldenPath, golden); err != nil {
			log.Fatalf("Failed to write golden sessions: %v", err)
		}
		log.Printf("Wrote %s (%d sessions)", goldenPath, len(golden))
	}

	// 7. Live state: demo sessions and the reload announcement need Redis
	if sessionCount > 0 || announce {
		cfg, err := config.Load()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		redisClient, err := redis.NewClient(&cfg.Redis)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		ctx := context.Background()

		if sessionCount > 0 {
			store := session.NewRedisAdapter(redisClient, cfg.Session)
			for i := 0; i < sessionCount; i++ {
				sessionID := fmt.Sprintf("demo_session_%03d", i+1)
				steps, _ := simulateSession(rng, itemIDs, neighbors, 3+rng.Intn(12))
				for _, st := range steps {
					event := entities.Event{ItemID: st.itemID, Type: st.eventType}
					if _, err := store.RecordEvent(ctx, sessionID, event); err != nil {
						log.Printf("Failed to record event for %s: %v", sessionID, err)
					}
				}
			}
			log.Printf("Recorded %d demo sessions", sessionCount)
		}

		if announce {
			bus := events.NewRedisEventBus(redisClient)
			defer bus.Close()
			event := &entities.ArtifactEvent{
				Version:     manifest.Version,
				Source:      "seed",
				PublishedAt: time.Now().UTC(),
			}
			if err := bus.Publish(ctx, providers.EventChannelArtifactsPublished, event); err != nil {
				log.Printf("Failed to announce artifact publication: %v", err)
			} else {
				log.Printf("Announced artifact publication %s", manifest.Version)
			}
		}
	}
}

// simulateSession walks the co-browse graph from a popularity-biased start.
// The holdout holds upcoming items that never appeared in the session itself,
// since recommendations exclude items the session already touched.
func simulateSession(rng *rand.Rand, itemIDs []string, neighbors map[string][]string, length int) ([]step, []string) {
	seen := make(map[string]struct{})
	steps := make([]step, 0, length)

	// Squaring the draw biases the start toward the popular head.
	f := rng.Float64()
	current := itemIDs[int(f*f*float64(len(itemIDs)))]
	for len(steps) < length {
		steps = append(steps, step{itemID: current, eventType: sampleEventType(rng)})
		seen[current] = struct{}{}
		current = nextItem(rng, itemIDs, neighbors, current)
	}

	var holdout []string
	for hops := 0; hops < 12 && len(holdout) < 4; hops++ {
		if _, dup := seen[current]; !dup {
			seen[current] = struct{}{}
			holdout = append(holdout, current)
		}
		current = nextItem(rng, itemIDs, neighbors, current)
	}
	if len(holdout) == 0 {
		for _, id := range itemIDs {
			if _, dup := seen[id]; !dup {
				holdout = append(holdout, id)
				break
			}
		}
	}
	return steps, holdout
}

func nextItem(rng *rand.Rand, itemIDs []string, neighbors map[string][]string, current string) string {
	if ns := neighbors[current]; len(ns) > 0 && rng.Float64() < 0.75 {
		return ns[rng.Intn(len(ns))]
	}
	return itemIDs[rng.Intn(len(itemIDs))]
}

func sampleEventType(rng *rand.Rand) entities.EventType {
	roll := rng.Float64()
	switch {
	case roll < 0.70:
		return entities.EventTypeView
	case roll < 0.88:
		return entities.EventTypeClick
	case roll < 0.96:
		return entities.EventTypeAddToCart
	default:
		return entities.EventTypePurchase
	}
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
