package evaluation

import (
	"fmt"
	"time"
)

// GuardrailConfig sets the quality floors an evaluation run must clear.
// Zero-valued floors are not enforced.
type GuardrailConfig struct {
	MinRecall  float64
	MinMRR     float64
	MaxLatency time.Duration
}

// Guardrails checks evaluation summaries against regression floors.
type Guardrails struct {
	config GuardrailConfig
}

func NewGuardrails(config GuardrailConfig) *Guardrails {
	return &Guardrails{config: config}
}

// Check returns one violation message per floor the summary fails to clear.
// An empty result means the run passes.
func (g *Guardrails) Check(summary *EvalSummary) []string {
	var violations []string

	if g.config.MinRecall > 0 && summary.AvgRecall < g.config.MinRecall {
		violations = append(violations, fmt.Sprintf(
			"recall@%d %.4f is below the floor %.4f", summary.K, summary.AvgRecall, g.config.MinRecall))
	}
	if g.config.MinMRR > 0 && summary.AvgMRR < g.config.MinMRR {
		violations = append(violations, fmt.Sprintf(
			"mrr@%d %.4f is below the floor %.4f", summary.K, summary.AvgMRR, g.config.MinMRR))
	}
	if g.config.MaxLatency > 0 && summary.AvgLatency > g.config.MaxLatency {
		violations = append(violations, fmt.Sprintf(
			"average latency %s is above the ceiling %s", summary.AvgLatency, g.config.MaxLatency))
	}

	return violations
}
