package repositories

import (
	"context"

	"github.com/cartlane/sessionrec/internal/domain/entities"
)

// SessionRepository defines the interface for per-session state operations.
// Session state is bounded and expiring: every write refreshes the session's
// time-to-live, reads tolerate partially expired sub-records.
type SessionRepository interface {
	// RecordEvent appends an event to the session's log, pushes the item onto
	// the bounded recency list and increments the per-type counter, refreshing
	// the TTL of all three sub-records. Returns the event-log size after the
	// write. Store I/O failures surface as a store-unavailable error and are
	// never retried here.
	RecordEvent(ctx context.Context, sessionID string, event entities.Event) (int64, error)

	// GetContext assembles the point-in-time view of one session: the recency
	// list head, the most recent events and the counters. Malformed stored
	// records are skipped with a warning.
	GetContext(ctx context.Context, sessionID string) (*entities.SessionContext, error)

	// Clear deletes all sub-records of a session. Not atomic across them.
	Clear(ctx context.Context, sessionID string) error

	// HealthCheck reports whether the backing store is reachable.
	HealthCheck(ctx context.Context) bool
}
