// Package app assembles the configured infrastructure into a runnable
// strategy engine.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/precedex/precedex/internal/application/strategy"
	"github.com/precedex/precedex/internal/config"
	"github.com/precedex/precedex/internal/infrastructure/database/postgres"
	"github.com/precedex/precedex/internal/infrastructure/database/redis"
	"github.com/precedex/precedex/internal/infrastructure/monitoring/logging"
	"github.com/precedex/precedex/internal/infrastructure/monitoring/prometheus"
	"github.com/precedex/precedex/internal/infrastructure/search/milvus"
	"github.com/precedex/precedex/internal/infrastructure/storage/minio"
	"github.com/precedex/precedex/internal/infrastructure/storage/snapshotfile"
)

// App owns the engine and the connections behind it.
type App struct {
	Config  *config.Config
	Log     logging.Logger
	Engine  *strategy.Engine
	Metrics *prometheus.Metrics

	pool  *pgxpool.Pool
	cache *redis.Cache
	index *milvus.Index
}

// Options toggles optional pieces of the assembly.
type Options struct {
	// SkipDatabase leaves the case store unwired; the engine can then only
	// load from a snapshot.
	SkipDatabase bool
}

// New connects every enabled backend and returns an unloaded engine.
// On error all connections opened so far are closed.
func New(ctx context.Context, cfg *config.Config, log logging.Logger, opts Options) (*App, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}

	a := &App{
		Config:  cfg,
		Log:     log,
		Metrics: prometheus.NewMetrics(),
	}

	engineOpts := []strategy.Option{strategy.WithMetrics(a.Metrics)}

	if !opts.SkipDatabase {
		pool, err := postgres.Connect(ctx, cfg.Database, log)
		if err != nil {
			return nil, fmt.Errorf("app: case store: %w", err)
		}
		a.pool = pool
		engineOpts = append(engineOpts,
			strategy.WithCaseStore(postgres.NewCaseStore(pool, cfg.Database.CaseTable, log)))
	}

	switch cfg.Snapshot.Backend {
	case "minio":
		store, err := minio.NewStore(ctx, cfg.MinIO, cfg.Snapshot.Object, log)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("app: snapshot store: %w", err)
		}
		engineOpts = append(engineOpts, strategy.WithSnapshotStore(store))
	default:
		engineOpts = append(engineOpts,
			strategy.WithSnapshotStore(snapshotfile.NewStore(cfg.Snapshot.Path, log)))
	}

	if cfg.Redis.Enabled {
		cache, err := redis.NewCache(ctx, cfg.Redis, log)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("app: cache: %w", err)
		}
		a.cache = cache
		engineOpts = append(engineOpts, strategy.WithCache(cache))
	}

	if cfg.Milvus.Enabled {
		index, err := milvus.NewIndex(ctx, cfg.Milvus, log)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("app: vector index: %w", err)
		}
		a.index = index
		engineOpts = append(engineOpts,
			strategy.WithNeighborIndex(index),
			strategy.WithPairFinder(index))
	}

	a.Engine = strategy.NewEngine(log, cfg.Engine, engineOpts...)
	return a, nil
}

// Close releases every connection the assembly opened.
func (a *App) Close() {
	if a.index != nil {
		if err := a.index.Close(); err != nil {
			a.Log.Warn("failed to close vector index", logging.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.Log.Warn("failed to close cache", logging.Err(err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
