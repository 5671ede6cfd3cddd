package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cartlane/sessionrec/internal/adapters/artifacts"
	"github.com/cartlane/sessionrec/internal/adapters/cache"
	"github.com/cartlane/sessionrec/internal/adapters/events"
	"github.com/cartlane/sessionrec/internal/adapters/session"
	"github.com/cartlane/sessionrec/internal/api/handlers"
	"github.com/cartlane/sessionrec/internal/api/routes"
	"github.com/cartlane/sessionrec/internal/application/services"
	memcache "github.com/cartlane/sessionrec/internal/cache"
	"github.com/cartlane/sessionrec/internal/domain/providers"
	"github.com/cartlane/sessionrec/internal/domain/repositories"
	"github.com/cartlane/sessionrec/internal/infrastructure/clients/postgres"
	"github.com/cartlane/sessionrec/internal/infrastructure/clients/redis"
	"github.com/cartlane/sessionrec/internal/infrastructure/observability"
	"github.com/cartlane/sessionrec/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize structured logging
	env := os.Getenv("ENV")
	if env == "" {
		env = "production"
	}
	observability.InitLogger(cfg.OTEL.ServiceName, env)

	log.Info().
		Str("service", cfg.OTEL.ServiceName).
		Str("version", cfg.OTEL.ServiceVersion).
		Str("env", env).
		Msg("Starting recommendation server")

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	var shutdown func(context.Context) error
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err = observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer shutdownCancel()
				if err := shutdown(shutdownCtx); err != nil {
					log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized successfully")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize metrics")
	}

	// Initialize Redis client. The server keeps working without it: session
	// state falls back to process memory and artifact reloads are disabled.
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Redis client")
	} else {
		defer redisClient.Close()
		log.Info().Msg("Redis client initialized successfully")
	}

	// Initialize session store
	var sessionStore repositories.SessionRepository
	if redisClient != nil {
		sessionStore = session.NewRedisAdapter(redisClient, cfg.Session)
	} else {
		sessionStore = session.NewMemoryAdapter(cfg.Session)
		log.Warn().Msg("Session store running in memory, state will not survive a restart")
	}

	// Initialize artifact source
	var artifactRepo repositories.ArtifactRepository
	switch cfg.Artifacts.Source {
	case "postgres":
		pgClient, err := postgres.NewClient(&cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize PostgreSQL client")
		}
		defer pgClient.Close()
		log.Info().Msg("PostgreSQL client initialized successfully")
		artifactRepo = artifacts.NewPostgresAdapter(pgClient)
	default:
		artifactRepo = artifacts.NewFileAdapter(cfg.Artifacts.Path)
		log.Info().Str("path", cfg.Artifacts.Path).Msg("Reading artifacts from directory")
	}

	// Initialize event bus for artifact publication announcements
	var eventBus providers.EventBus
	if redisClient != nil {
		eventBus = events.NewRedisEventBus(redisClient)
		log.Info().Msg("Event bus initialized successfully")
	} else {
		log.Info().Msg("Event bus disabled, artifact reloads require a restart")
	}

	// Load the initial artifact snapshot and watch for new publications.
	// Missing artifacts are not fatal; the service starts in fallback mode.
	artifactService := services.NewArtifactReloadService(artifactRepo, eventBus)
	artifactService.Load(ctx)
	if err := artifactService.Start(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to subscribe to artifact publications")
	}

	// Initialize response cache
	var responseCache providers.CacheProvider
	if cfg.Recommend.CacheEnabled {
		if cfg.Recommend.CacheBackend == "redis" && redisClient != nil {
			responseCache = cache.NewRedisAdapter(redisClient)
			log.Info().Msg("Response cache backed by Redis")
		} else {
			ttlCache := memcache.NewTTLCache(cfg.Recommend.CacheMaxEntries)
			ttlCache.StartJanitor(time.Minute)
			defer ttlCache.Stop()
			responseCache = ttlCache
			log.Info().
				Int("max_entries", cfg.Recommend.CacheMaxEntries).
				Msg("Response cache backed by process memory")
		}
	}

	// Initialize services
	sessionService := services.NewSessionService(sessionStore, metrics)
	candidateService := services.NewCandidateService()
	featureService := services.NewFeatureService()
	rankingService := services.NewRankingService(featureService)
	diversityService := services.NewDiversityService()
	recommendationService := services.NewRecommendationService(
		sessionService,
		artifactService,
		candidateService,
		rankingService,
		diversityService,
		responseCache,
		metrics,
		cfg.Recommend,
	)

	// Initialize handlers
	eventHandler := handlers.NewEventHandler(sessionService)
	recommendationHandler := handlers.NewRecommendationHandler(recommendationService)
	sessionHandler := handlers.NewSessionHandler(sessionService)
	healthHandler := handlers.NewHealthHandler(sessionService, artifactService)

	// Set up router
	router := routes.NewRouter(
		eventHandler,
		recommendationHandler,
		sessionHandler,
		healthHandler,
		cfg.Server.AllowedOrigins,
		metrics,
	)
	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("address", serverAddr).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}

	// Close event bus
	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing event bus")
		}
	}

	log.Info().Msg("Server stopped")
}
