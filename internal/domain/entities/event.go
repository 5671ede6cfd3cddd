package entities

import "time"

// EventType classifies a single user interaction within a session.
type EventType string

const (
	EventTypeView      EventType = "view"
	EventTypeClick     EventType = "click"
	EventTypeAddToCart EventType = "add_to_cart"
	EventTypePurchase  EventType = "purchase"
)

// ValidEventTypes lists every accepted event type, lightest engagement first.
func ValidEventTypes() []EventType {
	return []EventType{EventTypeView, EventTypeClick, EventTypeAddToCart, EventTypePurchase}
}

// IsValid reports whether t is one of the accepted event types.
func (t EventType) IsValid() bool {
	switch t {
	case EventTypeView, EventTypeClick, EventTypeAddToCart, EventTypePurchase:
		return true
	}
	return false
}

// EngagementWeight is the contribution of one event of this type to the
// session engagement score. Unknown types contribute nothing.
func (t EventType) EngagementWeight() float64 {
	switch t {
	case EventTypeView:
		return 1
	case EventTypeClick:
		return 2
	case EventTypeAddToCart:
		return 5
	case EventTypePurchase:
		return 10
	}
	return 0
}

// Event is one timestamped interaction with an item. Immutable once recorded.
type Event struct {
	ItemID    string            `json:"item_id"`
	Type      EventType         `json:"event_type"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}
