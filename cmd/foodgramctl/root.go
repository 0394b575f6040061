package main

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logger"
)

// app carries the configuration, logger, migrated database and optional
// cache of a subcommand. cache is nil when Redis is not configured.
type app struct {
	cfg   *config.Config
	log   *zap.Logger
	db    *gorm.DB
	cache *redis.Client
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "foodgramctl",
		Short:         "Administrative tasks for the Foodgram backend",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(
		newLoadIngredientsCmd(),
		newSeedTagsCmd(),
		newCreateUserCmd(),
		newTokenCmd(),
		newFillDBCmd(),
	)
	return root
}

// withApp opens the database, and Redis when configured, for the duration of fn.
func withApp(fn func(a *app) error) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Env)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	db, err := database.New(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()

	if err := database.AutoMigrate(db); err != nil {
		return err
	}

	var cache *redis.Client
	if cfg.RedisEnabled() {
		cache, err = database.NewRedisClient(cfg, log)
		if err != nil {
			log.Warn("redis unavailable, cached data will not be invalidated", zap.Error(err))
		} else {
			defer func() { _ = cache.Close() }()
		}
	}

	return fn(&app{cfg: cfg, log: log, db: db, cache: cache})
}
