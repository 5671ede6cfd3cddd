package services

import (
	"context"
	"time"

	"github.com/cartlane/sessionrec/internal/domain/entities"
	"github.com/cartlane/sessionrec/internal/domain/repositories"
	"github.com/cartlane/sessionrec/internal/infrastructure/observability"
	apperrors "github.com/cartlane/sessionrec/pkg/errors"
)

// SessionService validates and records interaction events and exposes
// session state for debugging.
type SessionService struct {
	repo    repositories.SessionRepository
	metrics *observability.Metrics
}

// NewSessionService creates a new session service
func NewSessionService(repo repositories.SessionRepository, metrics *observability.Metrics) *SessionService {
	return &SessionService{
		repo:    repo,
		metrics: metrics,
	}
}

// RecordEvent validates and persists one interaction event, returning the
// session's updated event count.
func (s *SessionService) RecordEvent(ctx context.Context, sessionID string, event *entities.Event) (int64, error) {
	if sessionID == "" {
		return 0, apperrors.NewValidationError("session_id is required")
	}
	if event == nil || event.ItemID == "" {
		return 0, apperrors.NewValidationError("item_id is required")
	}
	if !event.Type.IsValid() {
		return 0, apperrors.NewValidationError("event_type must be one of view, click, add_to_cart, purchase")
	}

	start := time.Now()
	count, err := s.repo.RecordEvent(ctx, sessionID, *event)
	observability.RecordStoreMetric(ctx, s.metrics, "record_event", time.Since(start))
	if err != nil {
		return 0, err
	}

	observability.LoggerFromContext(ctx).Debug().
		Str("session_id", sessionID).
		Str("item_id", event.ItemID).
		Str("event_type", string(event.Type)).
		Int64("event_count", count).
		Msg("Event recorded")
	return count, nil
}

// GetContext fetches the session's current state.
func (s *SessionService) GetContext(ctx context.Context, sessionID string) (*entities.SessionContext, error) {
	if sessionID == "" {
		return nil, apperrors.NewValidationError("session_id is required")
	}

	start := time.Now()
	sessionCtx, err := s.repo.GetContext(ctx, sessionID)
	observability.RecordStoreMetric(ctx, s.metrics, "get_context", time.Since(start))
	return sessionCtx, err
}

// Clear removes all state for a session.
func (s *SessionService) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return apperrors.NewValidationError("session_id is required")
	}

	start := time.Now()
	err := s.repo.Clear(ctx, sessionID)
	observability.RecordStoreMetric(ctx, s.metrics, "clear", time.Since(start))
	if err == nil {
		observability.LoggerFromContext(ctx).Info().
			Str("session_id", sessionID).
			Msg("Session cleared")
	}
	return err
}

// HealthCheck reports whether the session store is reachable.
func (s *SessionService) HealthCheck(ctx context.Context) bool {
	return s.repo.HealthCheck(ctx)
}
