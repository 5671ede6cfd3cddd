package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/cartlane/sessionrec/internal/domain/entities"
)

// EventRecorder defines the session write operations used by the handler.
type EventRecorder interface {
	RecordEvent(ctx context.Context, sessionID string, event *entities.Event) (int64, error)
}

// EventHandler handles interaction event ingestion.
type EventHandler struct {
	sessions EventRecorder
}

// NewEventHandler creates a new event handler.
func NewEventHandler(sessions EventRecorder) *EventHandler {
	return &EventHandler{
		sessions: sessions,
	}
}

type eventRequest struct {
	SessionID string            `json:"session_id"`
	ItemID    string            `json:"item_id"`
	EventType string            `json:"event_type"`
	Timestamp string            `json:"timestamp,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// RecordEvent handles POST /api/events
func (h *EventHandler) RecordEvent(w http.ResponseWriter, r *http.Request) {
	var payload eventRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	event := &entities.Event{
		ItemID:   payload.ItemID,
		Type:     entities.EventType(payload.EventType),
		Metadata: payload.Metadata,
	}

	// Timestamp is optional; the store stamps the current time when absent.
	if payload.Timestamp != "" {
		ts, err := time.Parse(time.RFC3339, payload.Timestamp)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "timestamp must be RFC 3339")
			return
		}
		event.Timestamp = ts
	}

	count, err := h.sessions.RecordEvent(r.Context(), payload.SessionID, event)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"status":      "recorded",
		"session_id":  payload.SessionID,
		"event_count": count,
	})
}
