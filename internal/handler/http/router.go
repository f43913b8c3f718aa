package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dakshrana205/StudyNotionnew/internal/domain"
	"github.com/dakshrana205/StudyNotionnew/pkg/health"
	"github.com/dakshrana205/StudyNotionnew/pkg/middleware"
)

// RouterConfig carries the handlers' dependencies and edge settings.
type RouterConfig struct {
	Payments       PaymentService
	Ratings        RatingService
	Health         *health.Handler
	Tokens         middleware.TokenValidator
	CORS           middleware.CORSConfig
	RateLimitRPS   float64
	RateLimitBurst int
	// ExposeStack adds failure stacks to verification errors.
	ExposeStack bool
}

// NewRouter creates a chi router with all StudyNotion routes registered.
// ctx bounds the rate limiter's background eviction.
func NewRouter(ctx context.Context, cfg RouterConfig, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics("studynotion"))
	r.Use(middleware.CORS(cfg.CORS))

	// Health check endpoints
	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	paymentHandler := NewPaymentHandler(cfg.Payments, cfg.ExposeStack, logger)
	ratingHandler := NewRatingHandler(cfg.Ratings, logger)

	student := func(r chi.Router) {
		r.Use(middleware.Auth(cfg.Tokens))
		r.Use(middleware.RequireRole(domain.AccountTypeStudent))
		r.Use(middleware.RequestLogger(logger))
	}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimitRPS > 0 {
			r.Use(middleware.RateLimit(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst, logger))
		}

		r.Route("/payments", func(r chi.Router) {
			student(r)
			// The gateway callback reports bad bodies in its own response shape.
			r.Post("/verify", paymentHandler.VerifyPayment)
			r.With(ContentTypeJSON).Post("/capture", paymentHandler.CapturePayment)
			r.With(ContentTypeJSON).Post("/success-email", paymentHandler.SendPaymentSuccessEmail)
		})

		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)

			r.Route("/courses/{courseId}/ratings", func(r chi.Router) {
				r.Get("/average", ratingHandler.GetAverageRating)
				r.Group(func(r chi.Router) {
					student(r)
					r.Post("/", ratingHandler.CreateRating)
				})
			})

			r.Get("/ratings", ratingHandler.ListRatings)
		})
	})

	return r
}
