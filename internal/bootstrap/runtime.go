// Package bootstrap wires the process-wide runtime shared by the server and
// the operator commands.
package bootstrap

import (
	"context"
	"fmt"
	"log"
	"strings"

	"capstone/internal/cache"
	"capstone/internal/config"
	"capstone/internal/database"
	"capstone/internal/observability"
	"capstone/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// ApplySchema runs migrations according to DB_SCHEMA_MODE.
	ApplySchema bool
	// SkipRedis leaves the Redis client nil, for commands that only touch the database.
	SkipRedis bool
}

// Runtime holds the initialized process dependencies.
type Runtime struct {
	DB    *gorm.DB
	Redis *redis.Client
	// ShutdownTracing flushes spans; it is never nil.
	ShutdownTracing func(context.Context) error
}

// InitRuntime connects to the database and Redis, sets up tracing, and in
// development applies SEED_ROSTER_PATH if one is configured.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	shutdown, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "capstone-api",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSamplerRatio,
	})
	if err != nil {
		return nil, fmt.Errorf("tracing init failed: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	if opts.ApplySchema {
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			return nil, fmt.Errorf("schema setup failed: %w", err)
		}
	}

	var r *redis.Client
	if !opts.SkipRedis {
		// Init Redis (may result in nil client if unreachable)
		cache.InitRedis(cfg.RedisURL)
		r = cache.GetClient()
	}

	if err := applyDevRoster(cfg, db); err != nil {
		return nil, fmt.Errorf("failed to apply development roster: %w", err)
	}

	return &Runtime{DB: db, Redis: r, ShutdownTracing: shutdown}, nil
}

func applyDevRoster(cfg *config.Config, db *gorm.DB) error {
	path := strings.TrimSpace(cfg.SeedRosterPath)
	if path == "" || !strings.EqualFold(cfg.Env, "development") {
		return nil
	}
	roster, err := seed.LoadRoster(path)
	if err != nil {
		return err
	}
	if err := seed.ApplyRoster(db, roster); err != nil {
		return err
	}
	log.Printf("development roster applied from %s", path)
	return nil
}
