package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/dblumenau/djforge-go/internal/database"
	mw "github.com/dblumenau/djforge-go/internal/middleware"
	inats "github.com/dblumenau/djforge-go/internal/nats"
)

// HandlerSet holds handler functions injected from main.go to avoid import cycles.
type HandlerSet struct {
	// Command handlers
	ProcessCommand http.HandlerFunc
	RecordOutcome  http.HandlerFunc
	GetHistory     http.HandlerFunc
	ClearHistory   http.HandlerFunc
	GetDialogState http.HandlerFunc

	// Audit handlers (nil when the audit pipeline is disabled)
	ListAuditLogs http.HandlerFunc

	// Auth middleware
	AuthMiddleware func(http.Handler) http.Handler
}

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	CORSAllowedOrigins []string
	CommandRateLimiter func(http.Handler) http.Handler
}

func NewRouter(redisClient *redis.Client, pool *pgxpool.Pool, natsClient *inats.Client, cfg RouterConfig, h HandlerSet) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.SecurityHeaders)
	r.Use(mw.Logging)
	r.Use(mw.Recovery)
	r.Use(mw.Metrics)
	r.Use(cors.Handler(mw.CORS(cfg.CORSAllowedOrigins)))

	// Liveness probe — always 200, no dependency checks
	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		JSON(w, http.StatusOK, map[string]string{"status": "alive"})
	})

	// Readiness probe — checks Redis and, when configured, Postgres and NATS
	readinessHandler := func(w http.ResponseWriter, r *http.Request) {
		health := map[string]string{
			"status":   "healthy",
			"redis":    "healthy",
			"database": "healthy",
			"nats":     "healthy",
		}

		status := http.StatusOK

		if err := redisClient.Ping(r.Context()).Err(); err != nil {
			// Redis going down degrades context but the engine still answers,
			// so report degraded rather than unavailable.
			health["redis"] = "unhealthy"
			health["status"] = "degraded"
		}

		if pool != nil {
			if err := database.HealthCheck(r.Context(), pool); err != nil {
				health["database"] = "unhealthy"
				health["status"] = "degraded"
				status = http.StatusServiceUnavailable
			}
		} else {
			health["database"] = "not configured"
		}

		if natsClient != nil {
			if !natsClient.Healthy() {
				health["nats"] = "unhealthy"
				health["status"] = "degraded"
				status = http.StatusServiceUnavailable
			}
		} else {
			health["nats"] = "not configured"
		}

		JSON(w, status, health)
	}

	r.Get("/health/ready", readinessHandler)
	r.Get("/health", readinessHandler)

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(h.AuthMiddleware)

			r.Route("/command", func(r chi.Router) {
				if cfg.CommandRateLimiter != nil {
					r.With(cfg.CommandRateLimiter).Post("/", h.ProcessCommand)
				} else {
					r.Post("/", h.ProcessCommand)
				}
				r.Post("/outcome", h.RecordOutcome)
				r.Get("/history", h.GetHistory)
				r.Delete("/history", h.ClearHistory)
				r.Get("/dialog-state", h.GetDialogState)
			})

			if h.ListAuditLogs != nil {
				r.Get("/audit", h.ListAuditLogs)
			}
		})
	})

	return r
}
