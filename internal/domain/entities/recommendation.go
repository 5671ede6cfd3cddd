package entities

import "time"

// Reason is the coarse explanation attached to a ranked item.
type Reason string

const (
	ReasonViewedRecently Reason = "viewed_recently"
	ReasonPopular        Reason = "popular"
	ReasonRecommended    Reason = "recommended"
)

// PopularReasonThreshold is the popularity count above which an item earns
// the "popular" reason.
const PopularReasonThreshold = 1000

// RankedItem is one scored, ranked recommendation.
type RankedItem struct {
	ItemID string  `json:"item_id"`
	Score  float64 `json:"score"`
	Reason Reason  `json:"reason"`
	Rank   int     `json:"rank"`
}

// Recommendation is the full result of one recommend call.
type Recommendation struct {
	SessionID    string       `json:"session_id"`
	Items        []RankedItem `json:"recommendations"`
	ModelVersion string       `json:"model_version"`
	LatencyMs    float64      `json:"latency_ms"`
	GeneratedAt  time.Time    `json:"generated_at"`
}
