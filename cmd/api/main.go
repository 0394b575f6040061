package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logger"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/server"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/telemetry"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		zap.NewExample().Fatal("failed to load config", zap.Error(err))
	}

	log := logger.Must(cfg.Env)
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
	log.Info("server stopped")
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	flush, err := telemetry.InitSentry(cfg, log)
	if err != nil {
		return err
	}
	defer flush()

	shutdownTracer, err := telemetry.InitTracer(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		tctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(tctx); err != nil {
			log.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	db, err := database.New(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()

	if cfg.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			return err
		}
		log.Info("database migrated")
	}

	var cache *redis.Client
	if cfg.RedisEnabled() {
		if cache, err = database.NewRedisClient(cfg, log); err != nil {
			// Tag caching and shared rate limits are optional.
			log.Warn("redis unavailable, continuing without it", zap.Error(err))
			cache = nil
		} else {
			defer func() { _ = cache.Close() }()
		}
	}

	s3cfg, err := config.NewS3Config(ctx, cfg)
	if err != nil {
		return err
	}

	tags := service.NewTagService(db, cache, log)
	ingredients := service.NewIngredientService(db, log)
	recipes := service.NewRecipeService(db, tags, ingredients, log)

	srv := server.New(cfg, api.Dependencies{
		DB:          db,
		Auth:        service.NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL),
		Recipes:     recipes,
		Tags:        tags,
		Ingredients: ingredients,
		Favourites:  service.NewFavouriteService(db, log),
		Follows:     service.NewFollowService(db, recipes, log),
		Cart:        service.NewCartService(db, log),
		Images:      service.NewImageService(s3cfg, log),
		Limiter: middleware.NewLimiter(cache, middleware.RateLimitConfig{
			Window:    cfg.RateLimitWindow,
			Limit:     cfg.RateLimit,
			KeyPrefix: "rate_limit:writes",
		}),
		Logger: log,
	})

	return srv.Run(ctx)
}
