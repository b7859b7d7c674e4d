package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/lendwise/loanrisk/pkg/auth"
)

// RouterConfig configures the HTTP surface.
type RouterConfig struct {
	// Validator protects the outcome, history and metrics routes when set.
	Validator      auth.TokenValidator
	MetricsHandler http.Handler
	AllowedOrigins []string
	RateLimitRPS   int
	RequestTimeout time.Duration
}

// NewRouter assembles the REST API, the HTML front-end and the health probes.
func NewRouter(
	api *AssessmentHandler,
	web *WebHandler,
	health *HealthHandler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	// Probes and scraping bypass the rate limiter.
	r.Get("/health", health.Health)
	r.Get("/healthz", health.liveness)
	r.Get("/readyz", health.readiness)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(cfg.RequestTimeout))

		// Only the public assessment routes are rate limited.
		r.Group(func(r chi.Router) {
			if cfg.RateLimitRPS > 0 {
				r.Use(RateLimitMiddleware(NewRateLimiter(cfg.RateLimitRPS)))
			}
			r.Get("/", web.Form)
			r.Post("/assess", web.Assess)
			r.Post("/predict", api.Predict)
		})

		r.Group(func(r chi.Router) {
			if cfg.Validator != nil {
				r.Use(auth.HTTPMiddleware(cfg.Validator, auth.RoleAdmin, auth.RoleServicing))
			}
			r.Post("/log_actual_outcome", api.LogOutcome)
		})

		r.Group(func(r chi.Router) {
			if cfg.Validator != nil {
				r.Use(auth.HTTPMiddleware(cfg.Validator, auth.RoleAdmin, auth.RoleAnalyst, auth.RoleUnderwriter, auth.RoleServicing))
			}
			r.Get("/predictions/{customer_id}", api.ListPredictions)
		})

		r.Group(func(r chi.Router) {
			if cfg.Validator != nil {
				r.Use(auth.HTTPMiddleware(cfg.Validator, auth.RoleAdmin, auth.RoleAnalyst))
			}
			r.Get("/model/metrics", api.ModelMetrics)
			r.Post("/model/metrics", api.ModelMetrics)
		})
	})

	return r
}
