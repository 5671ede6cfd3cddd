package entities

import "time"

// SessionContext is the point-in-time view of one session, assembled from the
// store for a single recommendation request and never cached across requests.
type SessionContext struct {
	SessionID    string              `json:"session_id"`
	RecentItems  []string            `json:"recent_items"`  // most recent first
	RecentEvents []Event             `json:"recent_events"` // most recent first
	EventCounts  map[EventType]int64 `json:"event_counts"`
	StartedAt    *time.Time          `json:"started_at,omitempty"`
}

// TotalEvents sums the per-type counters.
func (c *SessionContext) TotalEvents() int64 {
	var total int64
	for _, n := range c.EventCounts {
		total += n
	}
	return total
}

// CountFor returns the counter for one event type, 0 when absent.
func (c *SessionContext) CountFor(t EventType) int64 {
	return c.EventCounts[t]
}

// UniqueItems counts distinct item ids in the recency list.
func (c *SessionContext) UniqueItems() int {
	seen := make(map[string]struct{}, len(c.RecentItems))
	for _, id := range c.RecentItems {
		seen[id] = struct{}{}
	}
	return len(seen)
}

// MostRecentItem returns the head of the recency list, "" when empty.
func (c *SessionContext) MostRecentItem() string {
	if len(c.RecentItems) == 0 {
		return ""
	}
	return c.RecentItems[0]
}
