package evaluation

import "time"

// Bucket groups sessions by how much history they carry.
type Bucket string

const (
	BucketShort  Bucket = "short"  // fewer than 5 events
	BucketMedium Bucket = "medium" // 5 to 15 events
	BucketLong   Bucket = "long"   // more than 15 events
)

// ValidBuckets returns all bucket values.
func ValidBuckets() []Bucket {
	return []Bucket{BucketShort, BucketMedium, BucketLong}
}

// BucketFor assigns a session-length bucket from an event count.
func BucketFor(eventCount int) Bucket {
	switch {
	case eventCount < 5:
		return BucketShort
	case eventCount <= 15:
		return BucketMedium
	default:
		return BucketLong
	}
}

// GoldenEvent is one replayed interaction in a golden session.
type GoldenEvent struct {
	ItemID    string `json:"item_id"`
	EventType string `json:"event_type"`
}

// GoldenSession represents a labeled session: the events to replay and the
// held-out items the recommender should surface afterwards.
type GoldenSession struct {
	ID      string        `json:"id"`
	Events  []GoldenEvent `json:"events"`
	Holdout []string      `json:"holdout"`
}

// Bucket returns the session-length bucket for this session.
func (s *GoldenSession) Bucket() Bucket {
	return BucketFor(len(s.Events))
}

// EvalResult holds the evaluation outcome for a single session.
type EvalResult struct {
	SessionID   string
	Bucket      Bucket
	Recall      float64
	Precision   float64
	MRR         float64
	NDCG        float64
	ResultCount int
	Latency     time.Duration
}

// EvalSummary holds aggregate metrics across all golden sessions.
type EvalSummary struct {
	K                   int                       `json:"k"`
	TotalSessions       int                       `json:"total_sessions"`
	Skipped             int                       `json:"skipped"`
	AvgRecall           float64                   `json:"avg_recall"`
	AvgPrecision        float64                   `json:"avg_precision"`
	AvgMRR              float64                   `json:"avg_mrr"`
	AvgNDCG             float64                   `json:"avg_ndcg"`
	AvgLatency          time.Duration             `json:"avg_latency_ns"`
	SessionsWithResults int                       `json:"sessions_with_results"`
	ByBucket            map[Bucket]*BucketSummary `json:"by_bucket"`
}

// BucketSummary holds metrics grouped by session length.
type BucketSummary struct {
	Count        int     `json:"count"`
	AvgRecall    float64 `json:"avg_recall"`
	AvgPrecision float64 `json:"avg_precision"`
	AvgMRR       float64 `json:"avg_mrr"`
	AvgNDCG      float64 `json:"avg_ndcg"`
}
