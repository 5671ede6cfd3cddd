package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cartlane/sessionrec/internal/domain/entities"
	"github.com/cartlane/sessionrec/internal/domain/repositories"
	"github.com/cartlane/sessionrec/pkg/config"
)

// MemoryAdapter implements the SessionRepository interface in process
// memory with the same bounded-and-expiring semantics as the Redis adapter.
// Used by unit tests and the offline evaluation runner; not meant to back a
// long-running multi-replica deployment.
type MemoryAdapter struct {
	mu       sync.RWMutex
	sessions map[string]*memorySession

	ttl           time.Duration
	recentItems   int
	eventLogLimit int
	recencyCap    int
	now           func() time.Time
}

type memorySession struct {
	events    []entities.Event // timestamp ascending
	items     []string         // most recent first, capped
	counters  map[entities.EventType]int64
	expiresAt time.Time
}

// NewMemoryAdapter creates a new in-memory session adapter
func NewMemoryAdapter(cfg config.SessionConfig) repositories.SessionRepository {
	return newMemoryAdapter(cfg, time.Now)
}

// newMemoryAdapter allows tests to inject a clock.
func newMemoryAdapter(cfg config.SessionConfig, now func() time.Time) *MemoryAdapter {
	return &MemoryAdapter{
		sessions:      make(map[string]*memorySession),
		ttl:           defaultTTL(cfg.TTL),
		recentItems:   defaultInt(cfg.RecentItems, 20),
		eventLogLimit: defaultInt(cfg.EventLogLimit, 50),
		recencyCap:    defaultInt(cfg.RecencyCap, 100),
		now:           now,
	}
}

// RecordEvent appends the event, pushes the item onto the recency list and
// bumps the counter, refreshing the session's expiry.
func (a *MemoryAdapter) RecordEvent(ctx context.Context, sessionID string, event entities.Event) (int64, error) {
	now := a.now()
	if event.Timestamp.IsZero() {
		event.Timestamp = now.UTC()
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	sess := a.sessions[sessionID]
	if sess == nil || now.After(sess.expiresAt) {
		sess = &memorySession{counters: make(map[entities.EventType]int64)}
		a.sessions[sessionID] = sess
	}

	sess.events = append(sess.events, event)
	sort.SliceStable(sess.events, func(i, j int) bool {
		return sess.events[i].Timestamp.Before(sess.events[j].Timestamp)
	})

	sess.items = append([]string{event.ItemID}, sess.items...)
	if len(sess.items) > a.recencyCap {
		sess.items = sess.items[:a.recencyCap]
	}

	sess.counters[event.Type]++
	sess.expiresAt = now.Add(a.ttl)

	return int64(len(sess.events)), nil
}

// GetContext assembles the point-in-time session view. An expired or
// unknown session yields an empty context, mirroring expired store keys.
func (a *MemoryAdapter) GetContext(ctx context.Context, sessionID string) (*entities.SessionContext, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	sctx := &entities.SessionContext{
		SessionID:    sessionID,
		RecentItems:  []string{},
		RecentEvents: []entities.Event{},
		EventCounts:  map[entities.EventType]int64{},
	}

	sess := a.sessions[sessionID]
	if sess == nil || a.now().After(sess.expiresAt) {
		return sctx, nil
	}

	n := a.recentItems
	if n > len(sess.items) {
		n = len(sess.items)
	}
	sctx.RecentItems = append([]string{}, sess.items[:n]...)

	limit := a.eventLogLimit
	if limit > len(sess.events) {
		limit = len(sess.events)
	}
	// events are stored oldest first; return most recent first
	for i := 0; i < limit; i++ {
		sctx.RecentEvents = append(sctx.RecentEvents, sess.events[len(sess.events)-1-i])
	}

	for t, c := range sess.counters {
		sctx.EventCounts[t] = c
	}

	if len(sess.events) > 0 {
		startedAt := sess.events[0].Timestamp
		sctx.StartedAt = &startedAt
	}
	return sctx, nil
}

// Clear removes all state for a session
func (a *MemoryAdapter) Clear(ctx context.Context, sessionID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.sessions, sessionID)
	return nil
}

// HealthCheck always succeeds for the in-memory store
func (a *MemoryAdapter) HealthCheck(ctx context.Context) bool {
	return true
}
