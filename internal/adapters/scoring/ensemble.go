package scoring

import (
	"encoding/json"
	"fmt"

	"github.com/cartlane/sessionrec/internal/domain/entities"
)

// treeNode is one node of a serialized decision tree. Leaf nodes carry a
// value; internal nodes route on feature < threshold, left on true. Children
// always point forward in the node list.
type treeNode struct {
	Feature   string  `json:"feature,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
	Left      int     `json:"left,omitempty"`
	Right     int     `json:"right,omitempty"`
	Leaf      bool    `json:"leaf,omitempty"`
	Value     float64 `json:"value,omitempty"`
}

type tree struct {
	Nodes []treeNode `json:"nodes"`
}

type ensemblePayload struct {
	Version      string  `json:"version"`
	BaseScore    float64 `json:"base_score"`
	LearningRate float64 `json:"learning_rate"`
	Trees        []tree  `json:"trees"`
}

// EnsembleScorer scores feature vectors with the gradient boosted tree
// ensemble published by the offline training pipeline.
type EnsembleScorer struct {
	payload ensemblePayload
}

// ParseEnsemble decodes and validates a serialized tree ensemble.
func ParseEnsemble(data []byte) (*EnsembleScorer, error) {
	var payload ensemblePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode model payload: %w", err)
	}
	if payload.Version == "" {
		return nil, fmt.Errorf("model payload has no version")
	}
	for ti, tr := range payload.Trees {
		if len(tr.Nodes) == 0 {
			return nil, fmt.Errorf("tree %d has no nodes", ti)
		}
		for ni, node := range tr.Nodes {
			if node.Leaf {
				continue
			}
			if node.Feature == "" {
				return nil, fmt.Errorf("tree %d node %d has no split feature", ti, ni)
			}
			if node.Left <= ni || node.Left >= len(tr.Nodes) ||
				node.Right <= ni || node.Right >= len(tr.Nodes) {
				return nil, fmt.Errorf("tree %d node %d has out-of-range children", ti, ni)
			}
		}
	}
	return &EnsembleScorer{payload: payload}, nil
}

// Name returns the scorer family name
func (s *EnsembleScorer) Name() string {
	return "ensemble"
}

// Version returns the trained model version embedded in the payload
func (s *EnsembleScorer) Version() string {
	return s.payload.Version
}

// Score walks every tree from its root and combines the reached leaf values
// as base_score + learning_rate * sum. Features absent from the vector score
// as zero at splits.
func (s *EnsembleScorer) Score(features entities.FeatureVector) float64 {
	sum := 0.0
	for _, tr := range s.payload.Trees {
		i := 0
		for {
			node := tr.Nodes[i]
			if node.Leaf {
				sum += node.Value
				break
			}
			if features[node.Feature] < node.Threshold {
				i = node.Left
			} else {
				i = node.Right
			}
		}
	}
	return s.payload.BaseScore + s.payload.LearningRate*sum
}
