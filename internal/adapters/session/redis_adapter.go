package session

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cartlane/sessionrec/internal/domain/entities"
	"github.com/cartlane/sessionrec/internal/domain/repositories"
	redisclient "github.com/cartlane/sessionrec/internal/infrastructure/clients/redis"
	"github.com/cartlane/sessionrec/internal/infrastructure/observability"
	"github.com/cartlane/sessionrec/pkg/config"
	apperrors "github.com/cartlane/sessionrec/pkg/errors"
)

// RedisAdapter implements the SessionRepository interface on Redis. Each
// session is three independently expiring sub-records: a timestamp-scored
// event log (sorted set), a capped recency list, and a per-type counter
// hash. Every write refreshes all three TTLs; sub-records may still expire
// at slightly different instants, which readers tolerate.
type RedisAdapter struct {
	client        *redisclient.Client
	ttl           time.Duration
	recentItems   int
	eventLogLimit int
	recencyCap    int
}

// NewRedisAdapter creates a new Redis session adapter
func NewRedisAdapter(client *redisclient.Client, cfg config.SessionConfig) repositories.SessionRepository {
	return &RedisAdapter{
		client:        client,
		ttl:           defaultTTL(cfg.TTL),
		recentItems:   defaultInt(cfg.RecentItems, 20),
		eventLogLimit: defaultInt(cfg.EventLogLimit, 50),
		recencyCap:    defaultInt(cfg.RecencyCap, 100),
	}
}

func defaultTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return 24 * time.Hour
	}
	return d
}

func defaultInt(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

func eventsKey(sessionID string) string {
	return "session:" + sessionID + ":events"
}

func itemsKey(sessionID string) string {
	return "session:" + sessionID + ":items"
}

func countersKey(sessionID string) string {
	return "session:" + sessionID + ":counters"
}

// RecordEvent appends the event to the session's log, pushes the item onto
// the recency list and bumps the counter, all in one pipeline round trip.
// Returns the event-log size after the write.
func (a *RedisAdapter) RecordEvent(ctx context.Context, sessionID string, event entities.Event) (int64, error) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return 0, apperrors.NewInternalError("failed to encode event", err)
	}

	score := float64(event.Timestamp.UnixNano()) / float64(time.Second)

	pipe := a.client.Client().Pipeline()
	pipe.ZAdd(ctx, eventsKey(sessionID), redis.Z{Score: score, Member: payload})
	pipe.Expire(ctx, eventsKey(sessionID), a.ttl)
	pipe.LPush(ctx, itemsKey(sessionID), event.ItemID)
	pipe.LTrim(ctx, itemsKey(sessionID), 0, int64(a.recencyCap-1))
	pipe.Expire(ctx, itemsKey(sessionID), a.ttl)
	pipe.HIncrBy(ctx, countersKey(sessionID), string(event.Type), 1)
	pipe.Expire(ctx, countersKey(sessionID), a.ttl)
	countCmd := pipe.ZCard(ctx, eventsKey(sessionID))

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, apperrors.NewStoreUnavailableError("failed to record event", err)
	}
	return countCmd.Val(), nil
}

// GetContext reads the recency list head, the most recent events and the
// counters in one pipeline round trip. Malformed stored records are skipped
// with a warning.
func (a *RedisAdapter) GetContext(ctx context.Context, sessionID string) (*entities.SessionContext, error) {
	pipe := a.client.Client().Pipeline()
	itemsCmd := pipe.LRange(ctx, itemsKey(sessionID), 0, int64(a.recentItems-1))
	eventsCmd := pipe.ZRevRange(ctx, eventsKey(sessionID), 0, int64(a.eventLogLimit-1))
	countersCmd := pipe.HGetAll(ctx, countersKey(sessionID))
	oldestCmd := pipe.ZRangeWithScores(ctx, eventsKey(sessionID), 0, 0)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, apperrors.NewStoreUnavailableError("failed to read session context", err)
	}

	logger := observability.LoggerFromContext(ctx)

	events := make([]entities.Event, 0, len(eventsCmd.Val()))
	for _, raw := range eventsCmd.Val() {
		var event entities.Event
		if err := json.Unmarshal([]byte(raw), &event); err != nil {
			logger.Warn().
				Str("session_id", sessionID).
				Str("record", raw).
				Err(err).
				Msg("skipping malformed stored event")
			continue
		}
		events = append(events, event)
	}

	counts := make(map[entities.EventType]int64, len(countersCmd.Val()))
	for field, raw := range countersCmd.Val() {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			logger.Warn().
				Str("session_id", sessionID).
				Str("counter", field).
				Str("value", raw).
				Msg("skipping malformed counter value")
			continue
		}
		counts[entities.EventType(field)] = n
	}

	sctx := &entities.SessionContext{
		SessionID:    sessionID,
		RecentItems:  itemsCmd.Val(),
		RecentEvents: events,
		EventCounts:  counts,
	}
	if oldest := oldestCmd.Val(); len(oldest) > 0 {
		sec := int64(oldest[0].Score)
		nsec := int64((oldest[0].Score - float64(sec)) * float64(time.Second))
		startedAt := time.Unix(sec, nsec).UTC()
		sctx.StartedAt = &startedAt
	}
	return sctx, nil
}

// Clear deletes all three sub-records of a session
func (a *RedisAdapter) Clear(ctx context.Context, sessionID string) error {
	err := a.client.Client().Del(ctx,
		eventsKey(sessionID),
		itemsKey(sessionID),
		countersKey(sessionID),
	).Err()
	if err != nil {
		return apperrors.NewStoreUnavailableError("failed to clear session", err)
	}
	return nil
}

// HealthCheck reports whether Redis answers a ping
func (a *RedisAdapter) HealthCheck(ctx context.Context) bool {
	if err := a.client.Ping(ctx); err != nil {
		observability.LoggerFromContext(ctx).Error().Err(err).Msg("redis health check failed")
		return false
	}
	return true
}
