package evaluation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGuardrails_PassingRun(t *testing.T) {
	g := NewGuardrails(GuardrailConfig{
		MinRecall:  0.2,
		MinMRR:     0.1,
		MaxLatency: 50 * time.Millisecond,
	})

	summary := &EvalSummary{
		K:          20,
		AvgRecall:  0.35,
		AvgMRR:     0.18,
		AvgLatency: 12 * time.Millisecond,
	}

	assert.Empty(t, g.Check(summary))
}

func TestGuardrails_RecallBelowFloor(t *testing.T) {
	g := NewGuardrails(GuardrailConfig{MinRecall: 0.2})

	summary := &EvalSummary{K: 20, AvgRecall: 0.1}

	violations := g.Check(summary)
	assert.Len(t, violations, 1)
	assert.Contains(t, violations[0], "recall@20")
}

func TestGuardrails_MultipleViolations(t *testing.T) {
	g := NewGuardrails(GuardrailConfig{
		MinRecall:  0.2,
		MinMRR:     0.1,
		MaxLatency: 10 * time.Millisecond,
	})

	summary := &EvalSummary{
		K:          10,
		AvgRecall:  0.05,
		AvgMRR:     0.01,
		AvgLatency: time.Second,
	}

	assert.Len(t, g.Check(summary), 3)
}

func TestGuardrails_ZeroFloorsNotEnforced(t *testing.T) {
	g := NewGuardrails(GuardrailConfig{})

	summary := &EvalSummary{K: 5}

	assert.Empty(t, g.Check(summary))
}
