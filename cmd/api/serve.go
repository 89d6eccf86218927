package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/urfave/cli/v2"

	"github.com/socialvote/socialvote/internal/auth"
	"github.com/socialvote/socialvote/internal/cache"
	"github.com/socialvote/socialvote/internal/config"
	"github.com/socialvote/socialvote/internal/handler"
	"github.com/socialvote/socialvote/internal/metrics"
	"github.com/socialvote/socialvote/internal/repository"
	"github.com/socialvote/socialvote/internal/server"
	"github.com/socialvote/socialvote/internal/service"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "run the HTTP API until SIGINT or SIGTERM",
		Action: serve,
	}
}

func serve(c *cli.Context) error {
	ctx := c.Context

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := newLogger(cfg.LogLevel, cfg.LogFormat)

	if cfg.AutoMigrate {
		result, err := repository.RunMigrations(cfg.DatabaseURL, repository.MigrateUp)
		if err != nil {
			return fmt.Errorf("auto migrate: %s", sanitizeError(err, cfg.DatabaseURL))
		}
		logger.Info("schema migrated", "version", result.Version, "changed", result.Changed)
	}

	repo, err := repository.New(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		return errors.New("database unavailable")
	}
	logger.Info("connected to database")

	deps, err := buildDependencies(ctx, cfg, repo, logger)
	if err != nil {
		repo.Close()
		return err
	}

	srv := server.New(server.NewRouter(deps.router), server.Config{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	srv.OnShutdown("postgres", func(context.Context) error {
		repo.Close()
		return nil
	})
	if deps.redis != nil {
		srv.OnShutdown("redis", func(context.Context) error {
			return deps.redis.Close()
		})
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"rate_limiter", deps.limiterKind,
		"metrics", cfg.MetricsEnabled,
	)

	return srv.Run(ctx)
}

type dependencies struct {
	router      server.RouterConfig
	redis       *cache.Cache
	limiterKind string
}

// buildDependencies wires stores, services and the limiter for the router.
// The Redis client, when configured, is returned so the caller can close it.
func buildDependencies(ctx context.Context, cfg *config.Config, repo *repository.Repository, logger *slog.Logger) (*dependencies, error) {
	deps := &dependencies{}

	var recorder metrics.Recorder = metrics.NewNoop()
	var metricsHandler http.Handler
	if cfg.MetricsEnabled {
		prom := metrics.NewPrometheus()
		recorder = prom
		metricsHandler = prom.Handler()
	}

	var limiter cache.Limiter
	var cacheCheck handler.HealthChecker
	if cfg.RedisURL != "" {
		redisClient, err := cache.New(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			return nil, errors.New("redis unavailable")
		}
		logger.Info("connected to Redis")
		deps.redis = redisClient
		limiter = redisClient
		cacheCheck = redisClient
		deps.limiterKind = "redis"
	} else {
		limiter = cache.NewLocalLimiter()
		deps.limiterKind = "local"
	}

	hasher, err := auth.NewHasher(auth.HasherConfig{
		Algorithm:  cfg.PasswordHashAlgorithm,
		BcryptCost: cfg.BcryptCost,
		Argon2Time: cfg.Argon2Time,
	})
	if err != nil {
		return nil, deps.closeOnError(err)
	}

	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Secret:    []byte(cfg.JWTSecret),
		Algorithm: cfg.JWTAlgorithm,
		TTL:       cfg.AccessTokenTTL(),
		Leeway:    cfg.TokenLeeway,
	})
	if err != nil {
		return nil, deps.closeOnError(err)
	}

	authSvc, err := service.NewAuthService(repo, hasher, tokens, recorder, logger)
	if err != nil {
		return nil, deps.closeOnError(err)
	}

	deps.router = server.RouterConfig{
		Config:         cfg,
		Logger:         logger,
		Recorder:       recorder,
		Limiter:        limiter,
		Users:          service.NewUserService(repo, hasher, recorder, logger),
		Auth:           authSvc,
		Posts:          service.NewPostService(repo, recorder, logger),
		Votes:          service.NewVoteService(repo, recorder, logger),
		DB:             repo,
		Cache:          cacheCheck,
		MetricsHandler: metricsHandler,
	}

	return deps, nil
}

func (d *dependencies) closeOnError(err error) error {
	if d.redis != nil {
		_ = d.redis.Close()
	}
	return err
}
