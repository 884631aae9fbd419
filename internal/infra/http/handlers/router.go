package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/healingsoulutions/intake-api/internal/infra/http/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	CORSOrigins        []string
	RateLimitPerMinute int
}

func NewRouter(cfg RouterConfig, intake *IntakeHandler, card *CardHandler, health *HealthHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.MethodNotAllowed(MethodNotAllowed)
	r.NotFound(NotFound)

	limited := r.With(rateLimiter(cfg.RateLimitPerMinute))

	r.Get("/health", health.Handle)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Get("/api/submit-intake", intake.HandleDebug)
	limited.Post("/api/submit-intake", intake.Handle)

	limited.Get("/api/charge-verification", card.HandleSetup)
	limited.Post("/api/charge-verification", card.HandleConfirm)

	return r
}

// rateLimiter limits the routes that reach vendors per client IP. A
// non-positive limit turns it off.
func rateLimiter(perMinute int) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(perMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			writeError(w, http.StatusTooManyRequests, "Too many requests. Please try again shortly.")
		}),
	)
}
