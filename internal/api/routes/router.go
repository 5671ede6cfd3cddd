package routes

import (
	"net/http"

	"github.com/cartlane/sessionrec/internal/api/handlers"
	"github.com/cartlane/sessionrec/internal/api/middleware"
	"github.com/cartlane/sessionrec/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	eventHandler          *handlers.EventHandler
	recommendationHandler *handlers.RecommendationHandler
	sessionHandler        *handlers.SessionHandler
	healthHandler         *handlers.HealthHandler

	allowedOrigins []string
	metrics        *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	eventHandler *handlers.EventHandler,
	recommendationHandler *handlers.RecommendationHandler,
	sessionHandler *handlers.SessionHandler,
	healthHandler *handlers.HealthHandler,
	allowedOrigins []string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:                   http.NewServeMux(),
		eventHandler:          eventHandler,
		recommendationHandler: recommendationHandler,
		sessionHandler:        sessionHandler,
		healthHandler:         healthHandler,
		allowedOrigins:        allowedOrigins,
		metrics:               metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health and version endpoints
	r.mux.HandleFunc("GET /health", r.healthHandler.Health)
	r.mux.HandleFunc("GET /version", r.healthHandler.Version)

	// Event ingestion
	r.mux.HandleFunc("POST /api/events", r.eventHandler.RecordEvent)

	// Recommendations
	r.mux.HandleFunc("POST /api/recommendations", r.recommendationHandler.GetRecommendations)

	// Session inspection and lifecycle
	r.mux.HandleFunc("GET /api/sessions/{id}", r.sessionHandler.GetSession)
	r.mux.HandleFunc("DELETE /api/sessions/{id}", r.sessionHandler.ClearSession)

	// Apply middleware in reverse order (last middleware wraps first).
	// CORS is outermost so every response carries its headers; the request
	// id is assigned before tracing so spans and logs can both carry it.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.RequestIDMiddleware(handler)
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
