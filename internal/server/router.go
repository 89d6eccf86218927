package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/socialvote/socialvote/api"
	"github.com/socialvote/socialvote/internal/cache"
	"github.com/socialvote/socialvote/internal/config"
	"github.com/socialvote/socialvote/internal/handler"
	"github.com/socialvote/socialvote/internal/metrics"
	"github.com/socialvote/socialvote/internal/middleware"
	"github.com/socialvote/socialvote/internal/service"
)

// Rate limit scopes.
const (
	ScopeLogin = "login"
	ScopeWrite = "write"
)

// RouterConfig carries everything the route table is built from.
type RouterConfig struct {
	Config   *config.Config
	Logger   *slog.Logger
	Recorder metrics.Recorder
	Limiter  cache.Limiter

	Users *service.UserService
	Auth  *service.AuthService
	Posts *service.PostService
	Votes *service.VoteService

	// DB and Cache back the readiness probe. Cache is nil without Redis.
	DB    handler.HealthChecker
	Cache handler.HealthChecker

	// MetricsHandler serves /metrics; nil leaves the route unregistered.
	MetricsHandler http.Handler
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(rc RouterConfig) http.Handler {
	cfg := rc.Config
	logger := rc.Logger

	r := chi.NewRouter()

	// Global middleware
	if cfg.TrustProxyHeaders {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger, rc.Recorder))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()}))
	if origins := cfg.GetCORSAllowedOrigins(); len(origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
			ExposedHeaders:   []string{middleware.RequestIDHeader, "Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	healthHandler := handler.NewHealthHandler(rc.DB, rc.Cache)
	userHandler := handler.NewUserHandler(rc.Users, logger)
	authHandler := handler.NewAuthHandler(rc.Auth, logger)
	postHandler := handler.NewPostHandler(rc.Posts, logger)
	voteHandler := handler.NewVoteHandler(rc.Votes, logger)

	// Health endpoints (no auth required)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)
	r.Method(http.MethodGet, "/openapi.yaml", api.Handler())
	if rc.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", rc.MetricsHandler)
	}

	rateLimitCfg := middleware.RateLimitConfig{
		Logger:   logger,
		Limiter:  rc.Limiter,
		Recorder: rc.Recorder,
		Enabled:  cfg.RateLimitEnabled,
	}
	credentialLimit := middleware.RateLimitIP(rateLimitCfg, ScopeLogin,
		cache.Limit{Rate: cfg.RateLimitLoginRPS, Burst: cfg.RateLimitLoginBurst})
	writeLimit := middleware.RateLimitUser(rateLimitCfg, ScopeWrite,
		cache.PerMinute(cfg.RateLimitWriteRPM, cfg.RateLimitWriteBurst))

	requireAuth := middleware.Auth(middleware.AuthConfig{
		Logger:        logger,
		Authenticator: rc.Auth,
		Recorder:      rc.Recorder,
	})

	// Credential endpoints share one per-IP bucket.
	r.With(credentialLimit).Post("/login", authHandler.Login)

	r.Route("/users", func(r chi.Router) {
		r.With(credentialLimit).Post("/", userHandler.Create)
		r.Get("/{id}", userHandler.Get)
	})

	r.Route("/posts", func(r chi.Router) {
		r.Get("/", postHandler.List)
		r.Get("/{id}", postHandler.Get)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth, writeLimit)
			r.Post("/", postHandler.Create)
			r.Put("/{id}", postHandler.Update)
			r.Delete("/{id}", postHandler.Delete)
		})
	})

	r.Route("/votes", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/{post_id}", voteHandler.Get)
		r.With(writeLimit).Post("/", voteHandler.Cast)
		r.With(writeLimit).Delete("/", voteHandler.Retract)
	})

	// 404 and 405 handlers
	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	return r
}
