package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/cartlane/sessionrec/internal/adapters/artifacts"
	"github.com/cartlane/sessionrec/internal/adapters/session"
	"github.com/cartlane/sessionrec/internal/application/services"
	"github.com/cartlane/sessionrec/internal/evaluation"
	"github.com/cartlane/sessionrec/pkg/config"
)

func main() {
	var artifactsDir string
	var goldenPath string
	var k int
	var minRecall float64
	var minMRR float64
	var maxLatency time.Duration

	flag.StringVar(&artifactsDir, "artifacts", "./artifacts", "Directory holding published artifact files")
	flag.StringVar(&goldenPath, "golden", "config/golden_sessions.json", "Path to the golden session file")
	flag.IntVar(&k, "k", 20, "Ranking cutoff for all metrics")
	flag.Float64Var(&minRecall, "min-recall", 0, "Fail the run when average recall drops below this floor (0 disables)")
	flag.Float64Var(&minMRR, "min-mrr", 0, "Fail the run when average MRR drops below this floor (0 disables)")
	flag.DurationVar(&maxLatency, "max-latency", 0, "Fail the run when average latency exceeds this ceiling (0 disables)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	goldenSessions, err := evaluation.LoadGoldenSessions(goldenPath)
	if err != nil {
		log.Fatalf("Failed to load golden sessions: %v", err)
	}
	if err := evaluation.ValidateGoldenSessions(goldenSessions); err != nil {
		log.Fatalf("Invalid golden sessions: %v", err)
	}

	ctx := context.Background()

	// Replays go into a private in-memory store so a shared session store is
	// never touched. The response cache stays off: every session must be
	// scored fresh, and cached latencies would not mean anything.
	store := session.NewMemoryAdapter(cfg.Session)
	artifactRepo := artifacts.NewFileAdapter(artifactsDir)

	artifactService := services.NewArtifactReloadService(artifactRepo, nil)
	artifactService.Load(ctx)

	sessionService := services.NewSessionService(store, nil)
	recommendationService := services.NewRecommendationService(
		sessionService,
		artifactService,
		services.NewCandidateService(),
		services.NewRankingService(services.NewFeatureService()),
		services.NewDiversityService(),
		nil,
		nil,
		cfg.Recommend,
	)

	runner := evaluation.NewRunner(sessionService, recommendationService)
	summary, err := runner.Run(ctx, goldenSessions, k)
	if err != nil {
		log.Fatalf("Evaluation failed: %v", err)
	}

	// Output results as JSON
	out, _ := json.MarshalIndent(summary, "", "  ")
	fmt.Println(string(out))

	guardrails := evaluation.NewGuardrails(evaluation.GuardrailConfig{
		MinRecall:  minRecall,
		MinMRR:     minMRR,
		MaxLatency: maxLatency,
	})
	if violations := guardrails.Check(summary); len(violations) > 0 {
		for _, v := range violations {
			fmt.Fprintf(os.Stderr, "guardrail violation: %s\n", v)
		}
		os.Exit(1)
	}
}
