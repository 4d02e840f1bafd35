// Package app assembles the replenishment service from configuration.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/supplyflow/internal/cache"
	"github.com/andresuchdata/supplyflow/internal/config"
	"github.com/andresuchdata/supplyflow/internal/notify"
	"github.com/andresuchdata/supplyflow/internal/repository"
	"github.com/andresuchdata/supplyflow/internal/repository/memory"
	"github.com/andresuchdata/supplyflow/internal/repository/postgres"
	"github.com/andresuchdata/supplyflow/internal/seed"
	"github.com/andresuchdata/supplyflow/internal/service"
	"github.com/andresuchdata/supplyflow/internal/storage"
)

// ExportPrefix is the object key prefix for exported plans.
const ExportPrefix = "plans"

type App struct {
	Config   *config.Config
	Store    repository.Store
	Service  *service.ReplenishmentService
	Exporter *service.PlanExporter
	// DB is nil for the memory driver.
	DB *postgres.DB

	closers []func() error
}

// New connects every configured backend and builds the service. Optional
// backends (Redis, Kafka, export storage) are only touched when enabled.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	if err := a.openStore(ctx); err != nil {
		a.Close()
		return nil, err
	}

	var redisClient *redis.Client
	if cfg.Cache.Enabled || cfg.Notify.RedisPubSubEnabled {
		client, err := cache.NewRedisClient(cfg.Cache)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		redisClient = client
		a.closers = append(a.closers, client.Close)
	}

	analyticsCache := cache.NewNoopAnalyticsCache()
	if cfg.Cache.Enabled {
		analyticsCache = cache.NewAnalyticsCache(cfg.Cache, redisClient)
	}

	sink, err := a.buildSink(redisClient)
	if err != nil {
		a.Close()
		return nil, err
	}

	if cfg.Export.Enabled {
		objects, err := storage.New(cfg.Export)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to init export storage: %w", err)
		}
		a.Exporter = service.NewPlanExporter(objects, ExportPrefix)
	}

	a.Service = service.NewReplenishmentService(a.Store, cfg.Replenishment, sink, analyticsCache, a.Exporter)
	return a, nil
}

func (a *App) openStore(ctx context.Context) error {
	defaults := repository.ItemDefaultsFrom(a.Config.Replenishment)

	switch a.Config.App.StoreDriver {
	case config.StoreDriverMemory:
		store := memory.NewStore(defaults)
		if dir := a.Config.App.SeedDir; dir != "" {
			catalog, err := seed.LoadDir(dir)
			if err != nil {
				return fmt.Errorf("failed to seed memory store: %w", err)
			}
			catalog.IntoMemory(store)
			log.Info().
				Str("dir", dir).
				Int("suppliers", len(catalog.Suppliers)).
				Int("products", len(catalog.Products)).
				Msg("Memory store seeded")
		}
		a.Store = store
		return nil

	case config.StoreDriverPostgres, "":
		db, err := postgres.NewDB(&a.Config.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		a.DB = db
		a.closers = append(a.closers, db.Close)

		if a.Config.Database.AutoMigrate {
			if err := db.InitSchema(ctx); err != nil {
				return err
			}
		}
		a.Store = postgres.NewStore(db, defaults)
		return nil

	default:
		return fmt.Errorf("unknown store driver %q", a.Config.App.StoreDriver)
	}
}

func (a *App) buildSink(redisClient *redis.Client) (notify.Sink, error) {
	sinks := []notify.Sink{notify.LogSink{}}

	if a.Config.Notify.KafkaEnabled {
		kafka, err := notify.NewKafkaPublisher(a.Config.Notify.KafkaBrokers, a.Config.Notify.KafkaTopicPrefix)
		if err != nil {
			return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
		}
		sinks = append(sinks, kafka)
	}
	if a.Config.Notify.RedisPubSubEnabled {
		sinks = append(sinks, notify.NewRedisPublisher(redisClient, a.Config.Notify.RedisPubSubChannel))
	}

	multi := notify.NewMulti(sinks...)
	a.closers = append(a.closers, multi.Close)
	return multi, nil
}

// Close releases backends in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
