package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/motorlane/pipeline-api/internal/auth"
	"github.com/motorlane/pipeline-api/internal/config"
	"github.com/motorlane/pipeline-api/internal/database"
	"github.com/motorlane/pipeline-api/internal/http/handler"
	"github.com/motorlane/pipeline-api/internal/http/middleware"
)

type Router struct {
	cfg             *config.Config
	logger          *zap.Logger
	db              *gorm.DB
	authMiddleware  *auth.Middleware
	rateLimiter     *middleware.RateLimiter
	itemHandler     *handler.PipelineItemHandler
	lookupHandler   *handler.LookupHandler
	activityHandler *handler.TransferActivityHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	itemHandler *handler.PipelineItemHandler,
	lookupHandler *handler.LookupHandler,
	activityHandler *handler.TransferActivityHandler,
) *Router {
	return &Router{
		cfg:             cfg,
		logger:          logger,
		db:              db,
		authMiddleware:  authMiddleware,
		rateLimiter:     rateLimiter,
		itemHandler:     itemHandler,
		lookupHandler:   lookupHandler,
		activityHandler: activityHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.Limit)

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with pool stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(r.Context(), rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
			},
		})
	})

	// Combined readiness check
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		if err := database.HealthCheck(r.Context(), rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		status := http.StatusOK
		overall := "healthy"
		if !allHealthy {
			status = http.StatusServiceUnavailable
			overall = "unhealthy"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": overall,
			"checks": checks,
		})
	})

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.authMiddleware.Authenticate)

		// Lookups
		r.Get("/pipeline-statuses", rt.lookupHandler.ListStatuses)
		r.Get("/market-colors", rt.lookupHandler.ListMarketColors)

		// Pipeline items
		r.Route("/pipeline-items", func(r chi.Router) {
			r.Get("/", rt.itemHandler.List)
			r.Post("/", rt.itemHandler.Create)
			r.Get("/appointments", rt.itemHandler.Appointments)
			r.Get("/{id}", rt.itemHandler.Get)
			r.Put("/{id}", rt.itemHandler.Update)
			r.Patch("/{id}", rt.itemHandler.Update)
			r.Delete("/{id}", rt.itemHandler.Delete)
			r.Post("/{id}/transfer", rt.itemHandler.Transfer)
			r.Post("/{id}/notes", rt.itemHandler.AddNote)

			// Audit log per item, admins only
			r.With(rt.authMiddleware.RequireAdmin).
				Get("/{id}/transfer-activities", rt.activityHandler.ListByItem)
		})

		// Transfer audit log, admins only
		r.With(rt.authMiddleware.RequireAdmin).
			Get("/transfer-activities", rt.activityHandler.List)
	})

	return r
}
