package handlers

import (
	"context"
	"net/http"

	"github.com/cartlane/sessionrec/internal/domain/entities"
)

// SessionReader defines the session inspection operations used by the handler.
type SessionReader interface {
	GetContext(ctx context.Context, sessionID string) (*entities.SessionContext, error)
	Clear(ctx context.Context, sessionID string) error
}

// SessionHandler handles session debugging and lifecycle requests.
type SessionHandler struct {
	sessions SessionReader
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(sessions SessionReader) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
	}
}

// GetSession handles GET /api/sessions/{id}
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		respondWithError(w, http.StatusBadRequest, "session ID is required")
		return
	}

	sessionContext, err := h.sessions.GetContext(r.Context(), sessionID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, sessionContext)
}

// ClearSession handles DELETE /api/sessions/{id}
func (h *SessionHandler) ClearSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		respondWithError(w, http.StatusBadRequest, "session ID is required")
		return
	}

	if err := h.sessions.Clear(r.Context(), sessionID); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"status":     "cleared",
		"session_id": sessionID,
	})
}
