package evaluation

import (
	"context"
	"errors"
	"testing"

	"github.com/cartlane/sessionrec/internal/domain/entities"
)

type recordingSink struct {
	events map[string][]*entities.Event
}

func (s *recordingSink) RecordEvent(ctx context.Context, sessionID string, event *entities.Event) (int64, error) {
	if s.events == nil {
		s.events = map[string][]*entities.Event{}
	}
	s.events[sessionID] = append(s.events[sessionID], event)
	return int64(len(s.events[sessionID])), nil
}

type cannedRecommender struct {
	results map[string][]string
	failOn  string
}

func (c *cannedRecommender) Recommend(ctx context.Context, sessionID string, k int, exclude []string) (*entities.Recommendation, error) {
	if c.failOn != "" && sessionID == c.failOn {
		return nil, errors.New("recommend failed")
	}

	ids := c.results[sessionID]
	items := make([]entities.RankedItem, len(ids))
	for i, id := range ids {
		items[i] = entities.RankedItem{ItemID: id, Rank: i + 1}
	}
	return &entities.Recommendation{SessionID: sessionID, Items: items}, nil
}

func repeatedEvents(itemID string, n int) []GoldenEvent {
	events := make([]GoldenEvent, n)
	for i := range events {
		events[i] = GoldenEvent{ItemID: itemID, EventType: "view"}
	}
	return events
}

func TestRunner_ScoresSessionsAgainstHoldout(t *testing.T) {
	sessions := []GoldenSession{
		{ID: "s1", Events: repeatedEvents("item-a", 2), Holdout: []string{"item-c"}},
		{ID: "s2", Events: repeatedEvents("item-b", 6), Holdout: []string{"item-x"}},
	}
	sink := &recordingSink{}
	recommender := &cannedRecommender{results: map[string][]string{
		"eval:s1": {"item-c", "item-d"},
		"eval:s2": {"item-y", "item-z"},
	}}

	summary, err := NewRunner(sink, recommender).Run(context.Background(), sessions, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.TotalSessions != 2 {
		t.Errorf("expected 2 total sessions, got %d", summary.TotalSessions)
	}
	if summary.Skipped != 0 {
		t.Errorf("expected 0 skipped, got %d", summary.Skipped)
	}
	// s1 found its holdout at rank 1, s2 found nothing.
	if !almostEqual(summary.AvgRecall, 0.5) {
		t.Errorf("expected avg recall 0.5, got %f", summary.AvgRecall)
	}
	if !almostEqual(summary.AvgPrecision, 0.25) {
		t.Errorf("expected avg precision 0.25, got %f", summary.AvgPrecision)
	}
	if !almostEqual(summary.AvgMRR, 0.5) {
		t.Errorf("expected avg MRR 0.5, got %f", summary.AvgMRR)
	}
	if summary.SessionsWithResults != 2 {
		t.Errorf("expected 2 sessions with results, got %d", summary.SessionsWithResults)
	}
}

func TestRunner_BucketsBySessionLength(t *testing.T) {
	sessions := []GoldenSession{
		{ID: "short", Events: repeatedEvents("item-a", 2), Holdout: []string{"item-c"}},
		{ID: "medium", Events: repeatedEvents("item-a", 8), Holdout: []string{"item-c"}},
		{ID: "long", Events: repeatedEvents("item-a", 20), Holdout: []string{"item-c"}},
	}
	sink := &recordingSink{}
	recommender := &cannedRecommender{results: map[string][]string{
		"eval:short":  {"item-c"},
		"eval:medium": {"item-z"},
		"eval:long":   {"item-z"},
	}}

	summary, err := NewRunner(sink, recommender).Run(context.Background(), sessions, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(summary.ByBucket) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(summary.ByBucket))
	}
	if summary.ByBucket[BucketShort].Count != 1 {
		t.Errorf("expected 1 short session, got %d", summary.ByBucket[BucketShort].Count)
	}
	if !almostEqual(summary.ByBucket[BucketShort].AvgRecall, 1.0) {
		t.Errorf("expected short bucket recall 1.0, got %f", summary.ByBucket[BucketShort].AvgRecall)
	}
	if !almostEqual(summary.ByBucket[BucketLong].AvgRecall, 0.0) {
		t.Errorf("expected long bucket recall 0.0, got %f", summary.ByBucket[BucketLong].AvgRecall)
	}
}

func TestRunner_ReplaysEventsIntoNamespacedSessions(t *testing.T) {
	sessions := []GoldenSession{
		{ID: "s1", Events: repeatedEvents("item-a", 3), Holdout: []string{"item-c"}},
	}
	sink := &recordingSink{}
	recommender := &cannedRecommender{results: map[string][]string{}}

	if _, err := NewRunner(sink, recommender).Run(context.Background(), sessions, 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sink.events["eval:s1"]) != 3 {
		t.Errorf("expected 3 replayed events under eval:s1, got %d", len(sink.events["eval:s1"]))
	}
	if len(sink.events["s1"]) != 0 {
		t.Errorf("expected no events under the raw id")
	}
}

func TestRunner_SkipsFailingSessions(t *testing.T) {
	sessions := []GoldenSession{
		{ID: "good", Events: repeatedEvents("item-a", 2), Holdout: []string{"item-c"}},
		{ID: "bad", Events: repeatedEvents("item-b", 2), Holdout: []string{"item-x"}},
	}
	sink := &recordingSink{}
	recommender := &cannedRecommender{
		results: map[string][]string{"eval:good": {"item-c"}},
		failOn:  "eval:bad",
	}

	summary, err := NewRunner(sink, recommender).Run(context.Background(), sessions, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.Skipped != 1 {
		t.Errorf("expected 1 skipped, got %d", summary.Skipped)
	}
	// Averages cover only the evaluated session.
	if !almostEqual(summary.AvgRecall, 1.0) {
		t.Errorf("expected avg recall 1.0, got %f", summary.AvgRecall)
	}
}

func TestRunner_NoSessions(t *testing.T) {
	summary, err := NewRunner(&recordingSink{}, &cannedRecommender{}).Run(context.Background(), nil, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.TotalSessions != 0 {
		t.Errorf("expected 0 sessions, got %d", summary.TotalSessions)
	}
	if !almostEqual(summary.AvgRecall, 0.0) {
		t.Errorf("expected 0 recall, got %f", summary.AvgRecall)
	}
}
