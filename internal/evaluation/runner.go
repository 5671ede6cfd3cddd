package evaluation

import (
	"context"
	"time"

	"github.com/cartlane/sessionrec/internal/domain/entities"
)

// EventSink records replayed interaction events.
type EventSink interface {
	RecordEvent(ctx context.Context, sessionID string, event *entities.Event) (int64, error)
}

// Recommender serves ranked recommendations for a session.
type Recommender interface {
	Recommend(ctx context.Context, sessionID string, k int, exclude []string) (*entities.Recommendation, error)
}

// Runner replays golden sessions through the serving pipeline and scores
// the output against each session's holdout.
type Runner struct {
	sink        EventSink
	recommender Recommender
}

func NewRunner(sink EventSink, recommender Recommender) *Runner {
	return &Runner{sink: sink, recommender: recommender}
}

// Run evaluates every golden session at the given cutoff. Sessions whose
// replay or recommendation fails are skipped and counted, not fatal.
func (r *Runner) Run(ctx context.Context, sessions []GoldenSession, k int) (*EvalSummary, error) {
	summary := &EvalSummary{
		K:             k,
		TotalSessions: len(sessions),
		ByBucket:      make(map[Bucket]*BucketSummary),
	}

	for _, gs := range sessions {
		result, err := r.evaluateSession(ctx, gs, k)
		if err != nil {
			summary.Skipped++
			continue
		}
		r.updateSummary(summary, result)
	}

	r.finalizeSummary(summary)
	return summary, nil
}

func (r *Runner) evaluateSession(ctx context.Context, gs GoldenSession, k int) (EvalResult, error) {
	// Namespaced so golden replays never collide with live sessions when
	// pointed at a shared store.
	sessionID := "eval:" + gs.ID

	for _, ge := range gs.Events {
		event := &entities.Event{
			ItemID: ge.ItemID,
			Type:   entities.EventType(ge.EventType),
		}
		if _, err := r.sink.RecordEvent(ctx, sessionID, event); err != nil {
			return EvalResult{}, err
		}
	}

	start := time.Now()
	rec, err := r.recommender.Recommend(ctx, sessionID, k, nil)
	latency := time.Since(start)
	if err != nil {
		return EvalResult{}, err
	}

	retrieved := make([]string, len(rec.Items))
	for i, item := range rec.Items {
		retrieved[i] = item.ItemID
	}

	return EvalResult{
		SessionID:   gs.ID,
		Bucket:      gs.Bucket(),
		Recall:      RecallAtK(gs.Holdout, retrieved, k),
		Precision:   PrecisionAtK(gs.Holdout, retrieved, k),
		MRR:         MRRAtK(gs.Holdout, retrieved, k),
		NDCG:        NDCGAtK(gs.Holdout, retrieved, k),
		ResultCount: len(retrieved),
		Latency:     latency,
	}, nil
}

func (r *Runner) updateSummary(s *EvalSummary, res EvalResult) {
	s.AvgRecall += res.Recall
	s.AvgPrecision += res.Precision
	s.AvgMRR += res.MRR
	s.AvgNDCG += res.NDCG
	s.AvgLatency += res.Latency
	if res.ResultCount > 0 {
		s.SessionsWithResults++
	}

	if _, ok := s.ByBucket[res.Bucket]; !ok {
		s.ByBucket[res.Bucket] = &BucketSummary{}
	}
	bs := s.ByBucket[res.Bucket]
	bs.Count++
	bs.AvgRecall += res.Recall
	bs.AvgPrecision += res.Precision
	bs.AvgMRR += res.MRR
	bs.AvgNDCG += res.NDCG
}

func (r *Runner) finalizeSummary(s *EvalSummary) {
	evaluated := s.TotalSessions - s.Skipped
	if evaluated > 0 {
		n := float64(evaluated)
		s.AvgRecall /= n
		s.AvgPrecision /= n
		s.AvgMRR /= n
		s.AvgNDCG /= n
		s.AvgLatency /= time.Duration(evaluated)
	}

	for _, bs := range s.ByBucket {
		if bs.Count > 0 {
			n := float64(bs.Count)
			bs.AvgRecall /= n
			bs.AvgPrecision /= n
			bs.AvgMRR /= n
			bs.AvgNDCG /= n
		}
	}
}
