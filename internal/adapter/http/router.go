package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/motorlot/financing/internal/adapter/http/handler"
	"github.com/motorlot/financing/internal/adapter/http/middleware"
	"github.com/motorlot/financing/internal/infrastructure/auth"
	"github.com/motorlot/financing/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	UnitHandler      *handler.UnitHandler
	FinancingHandler *handler.FinancingHandler
	PaymentHandler   *handler.PaymentHandler
	HealthHandler    *handler.HealthHandler
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	JWTManager       *auth.JWTManager
	RateLimiter      *middleware.RateLimiter
	Logger           zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Metrics)
	r.Use(middleware.Recovery)
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.JWTManager != nil {
			r.Use(middleware.OptionalAuth(cfg.JWTManager))
		}

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Stock units and their financing ledger
		r.Route("/units", func(r chi.Router) {
			r.Post("/", cfg.UnitHandler.Create)
			r.Get("/", cfg.UnitHandler.List)
			r.Get("/{id}", cfg.UnitHandler.Get)
			r.Patch("/{id}/costs", cfg.UnitHandler.UpdateCosts)

			r.Route("/{id}/financing", func(r chi.Router) {
				r.Post("/", cfg.FinancingHandler.Initialize)
				r.Post("/rate-changes", cfg.FinancingHandler.ChangeRate)
				r.Post("/stop", cfg.FinancingHandler.Stop)
				r.Post("/resume", cfg.FinancingHandler.Resume)
				r.Get("/periods", cfg.FinancingHandler.ListPeriods)
			})

			r.Post("/{id}/payments", cfg.PaymentHandler.Apply)
			r.Get("/{id}/payments", cfg.PaymentHandler.List)
			r.Get("/{id}/debt-summary", cfg.PaymentHandler.Summary)
			r.Get("/{id}/payoff-quote", cfg.PaymentHandler.PayoffQuote)
		})

		r.Get("/financing/consistency", cfg.FinancingHandler.Consistency)
	})

	return r
}
