package services

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/cartlane/sessionrec/internal/cache"
	"github.com/cartlane/sessionrec/internal/domain/entities"
	"github.com/cartlane/sessionrec/internal/domain/providers"
	"github.com/cartlane/sessionrec/internal/infrastructure/observability"
	"github.com/cartlane/sessionrec/pkg/config"
	apperrors "github.com/cartlane/sessionrec/pkg/errors"
)

// candidatePoolMultiplier widens the candidate pool relative to the
// requested k so ranking has room to work; the configured pool size is the
// floor.
const candidatePoolMultiplier = 5

// RecommendationService orchestrates one recommendation request end to end:
// session context, candidate generation, feature scoring, diversity, and
// final truncation. All computation after the context fetch is pure and
// never re-enters the store.
type RecommendationService struct {
	sessions   *SessionService
	artifacts  *ArtifactReloadService
	candidates *CandidateService
	ranking    *RankingService
	diversity  *DiversityService
	cache      providers.CacheProvider
	metrics    *observability.Metrics
	cfg        config.RecommendConfig
	now        func() time.Time
}

// NewRecommendationService creates a new recommendation service. The
// response cache may be nil when caching is disabled.
func NewRecommendationService(
	sessions *SessionService,
	artifacts *ArtifactReloadService,
	candidates *CandidateService,
	ranking *RankingService,
	diversity *DiversityService,
	responseCache providers.CacheProvider,
	metrics *observability.Metrics,
	cfg config.RecommendConfig,
) *RecommendationService {
	return &RecommendationService{
		sessions:   sessions,
		artifacts:  artifacts,
		candidates: candidates,
		ranking:    ranking,
		diversity:  diversity,
		cache:      responseCache,
		metrics:    metrics,
		cfg:        cfg,
		now:        time.Now,
	}
}

// Recommend returns the ranked top-k list for a session. A k of zero takes
// the configured default; an empty result is a valid response, not an
// error.
func (s *RecommendationService) Recommend(ctx context.Context, sessionID string, k int, exclude []string) (*entities.Recommendation, error) {
	if sessionID == "" {
		return nil, apperrors.NewValidationError("session_id is required")
	}
	if k == 0 {
		k = s.cfg.DefaultK
	}
	if k < 1 || k > s.cfg.MaxK {
		return nil, apperrors.NewValidationError("k must be between 1 and " + strconv.Itoa(s.cfg.MaxK))
	}

	start := s.now()
	ctx, span := observability.StartSpan(ctx, "RecommendationService.Recommend")
	defer span.End()

	snapshot := s.artifacts.Snapshot()

	stageStart := s.now()
	sessionCtx, err := s.sessions.GetContext(ctx, sessionID)
	observability.RecordStageMetric(ctx, s.metrics, "fetch_context", s.now().Sub(stageStart))
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	var cacheKey string
	if s.cache != nil {
		cacheKey = s.responseKey(sessionID, k, exclude, sessionCtx, snapshot)
		if cached := s.cachedRecommendation(ctx, cacheKey, start); cached != nil {
			return cached, nil
		}
	}

	poolSize := k * candidatePoolMultiplier
	if poolSize < s.cfg.PoolSize {
		poolSize = s.cfg.PoolSize
	}

	stageStart = s.now()
	candidateIDs := s.candidates.Generate(sessionCtx, snapshot.Bundle, poolSize, exclude)
	observability.RecordStageMetric(ctx, s.metrics, "generate_candidates", s.now().Sub(stageStart))

	requestTime := s.now().UTC()
	stageStart = s.now()
	ranked := s.ranking.Rank(candidateIDs, sessionCtx, snapshot.Bundle, snapshot.Scorer, requestTime)
	observability.RecordStageMetric(ctx, s.metrics, "rank", s.now().Sub(stageStart))

	if s.cfg.DiversityWeight > 0 {
		stageStart = s.now()
		ranked = s.diversity.Rerank(ranked, s.cfg.DiversityWeight, snapshot.Bundle.CategoryOf)
		observability.RecordStageMetric(ctx, s.metrics, "diversify", s.now().Sub(stageStart))
	}

	if len(ranked) > k {
		ranked = ranked[:k]
	}
	if ranked == nil {
		ranked = []entities.RankedItem{}
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	recommendation := &entities.Recommendation{
		SessionID:    sessionID,
		Items:        ranked,
		ModelVersion: snapshot.Scorer.Version(),
		LatencyMs:    durationMs(s.now().Sub(start)),
		GeneratedAt:  requestTime,
	}

	observability.SetSpanAttributes(span,
		attribute.String("session.id", sessionID),
		attribute.Int("recommend.k", k),
		attribute.Int("recommend.pool", len(candidateIDs)),
		attribute.Int("recommend.returned", len(ranked)),
	)

	if s.cache != nil {
		if data, err := json.Marshal(recommendation); err == nil {
			if err := s.cache.Set(ctx, cacheKey, data, s.cfg.CacheTTL); err != nil {
				observability.LoggerFromContext(ctx).Warn().Err(err).Msg("Failed to cache recommendation")
			}
		}
	}

	return recommendation, nil
}

// cachedRecommendation returns the cached response for a key, nil on miss.
// The latency field is refreshed to this request's elapsed time.
func (s *RecommendationService) cachedRecommendation(ctx context.Context, key string, start time.Time) *entities.Recommendation {
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		observability.RecordCacheMiss(ctx, s.metrics)
		return nil
	}

	var recommendation entities.Recommendation
	if err := json.Unmarshal(data, &recommendation); err != nil {
		observability.RecordCacheMiss(ctx, s.metrics)
		return nil
	}

	observability.RecordCacheHit(ctx, s.metrics)
	recommendation.LatencyMs = durationMs(s.now().Sub(start))
	return &recommendation
}

// responseKey hashes everything a response depends on. The event count in
// the key turns any newly recorded event into a miss, so a changed session
// is always recomputed.
func (s *RecommendationService) responseKey(sessionID string, k int, exclude []string, sessionCtx *entities.SessionContext, snapshot *ArtifactSnapshot) string {
	sorted := append([]string(nil), exclude...)
	sort.Strings(sorted)
	return cache.Key(
		sessionID,
		strconv.FormatInt(sessionCtx.TotalEvents(), 10),
		strconv.Itoa(k),
		strings.Join(sorted, ","),
		strconv.FormatFloat(s.cfg.DiversityWeight, 'f', -1, 64),
		snapshot.Scorer.Version(),
	)
}

func durationMs(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}
