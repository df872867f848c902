package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"
	"github.com/rohmanhakim/product-aggregator/internal/adapter"
	"github.com/rohmanhakim/product-aggregator/internal/cache"
	"github.com/rohmanhakim/product-aggregator/internal/catalog"
	"github.com/rohmanhakim/product-aggregator/internal/config"
	"github.com/rohmanhakim/product-aggregator/internal/fetcher"
	"github.com/rohmanhakim/product-aggregator/internal/logger"
	"github.com/rohmanhakim/product-aggregator/internal/metadata"
	"github.com/rohmanhakim/product-aggregator/internal/metrics"
	"github.com/rohmanhakim/product-aggregator/internal/orchestrator"
	"github.com/rohmanhakim/product-aggregator/internal/pricing"
	"github.com/rohmanhakim/product-aggregator/pkg/limiter"
	"github.com/rohmanhakim/product-aggregator/pkg/retry"
	"github.com/rohmanhakim/product-aggregator/pkg/timeutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// App is the fully wired object graph shared by every command.
type App struct {
	Config       config.Config
	Logger       *zap.Logger
	Metrics      *metrics.Metrics
	Registry     *adapter.Registry
	Cache        cache.ResultCache
	Orchestrator *orchestrator.Orchestrator
	Catalog      *catalog.Service

	closers []io.Closer
}

// NewApp wires configuration into components. Logs go to logWriter.
func NewApp(cfg config.Config, logWriter io.Writer) (*App, error) {
	log := logger.NewWithWriter(logger.Config{
		Level:  cfg.LogLevel(),
		Format: cfg.LogFormat(),
	}, logWriter)

	m := metrics.New()
	sink := metadata.Fanout{metadata.NewRecorder(log), m}

	rateLimiter := limiter.NewConcurrentRateLimiter()
	rateLimiter.SetBaseDelay(cfg.BaseDelay())
	rateLimiter.SetJitter(cfg.Jitter())
	rateLimiter.SetRandomSeed(cfg.RandomSeed())

	backoffParam := timeutil.NewBackoffParam(
		cfg.BackoffInitialDuration(),
		cfg.BackoffMultiplier(),
		cfg.BackoffMaxDuration(),
	)
	deps := adapter.Deps{
		Fetcher:      fetcher.NewJSONFetcher(sink, rateLimiter),
		RetryParam:   retry.NewRetryParam(cfg.Jitter(), cfg.RandomSeed(), cfg.MaxAttempt(), backoffParam),
		UserAgent:    cfg.UserAgent(),
		Timeout:      cfg.Timeout(),
		Normalizer:   pricing.NewNormalizer(decimal.NewFromFloat(cfg.ConversionRate()), cfg.SourceCurrency(), cfg.DisplayCurrency()),
		MetadataSink: sink,
	}
	registry := adapter.NewDefaultRegistry(deps, adapter.Endpoints{
		FakeStoreURL: cfg.FakeStoreURL(),
		DummyJSONURL: cfg.DummyJSONURL(),
		FakeShopURL:  cfg.FakeShopURL(),
		SerpAPIURL:   cfg.SerpAPIURL(),
		SerpAPIKey:   cfg.SerpAPIKey(),
	})

	app := &App{
		Config:   cfg,
		Logger:   log,
		Metrics:  m,
		Registry: registry,
	}

	resultCache, err := app.newCache(sink)
	if err != nil {
		return nil, err
	}
	app.Cache = resultCache

	app.Orchestrator = orchestrator.New(resultCache, sink).
		WithConcurrency(cfg.Concurrency()).
		WithCallTimeout(cfg.Timeout()).
		WithAggregateTimeout(cfg.AggregateTimeout())

	svc, err := catalog.NewService(registry, app.Orchestrator, cfg.Stores())
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("%w: %s", config.ErrInvalidConfig, err.Error())
	}
	app.Catalog = svc

	log.Debug("application wired",
		zap.String("cache_backend", cfg.CacheBackend()),
		zap.Int("concurrency", cfg.Concurrency()),
		zap.Strings("sources", registry.IDs()),
		zap.Bool("serpapi_enabled", cfg.SerpAPIKey() != ""),
	)
	return app, nil
}

func (a *App) newCache(sink metadata.MetadataSink) (cache.ResultCache, error) {
	cfg := a.Config
	switch cfg.CacheBackend() {
	case config.CacheBackendMemory:
		return cache.NewMemoryCache(cfg.CacheTTL()), nil
	case config.CacheBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr(),
			Password: cfg.RedisPassword(),
			DB:       cfg.RedisDB(),
		})
		a.closers = append(a.closers, client)
		if err := client.Ping(context.Background()).Err(); err != nil {
			a.Logger.Warn("redis not reachable, cache lookups will miss",
				zap.String("addr", cfg.RedisAddr()),
				zap.Error(err),
			)
		}
		return cache.NewRedisCache(client, cfg.RedisPrefix(), cfg.CacheTTL(), sink), nil
	case config.CacheBackendFile:
		return cache.NewFileCache(cfg.CacheDir(), cfg.CacheTTL(), sink), nil
	default:
		return nil, fmt.Errorf("%w: unknown cache backend %q", config.ErrInvalidConfig, cfg.CacheBackend())
	}
}

// Close releases backend connections and flushes the logger.
func (a *App) Close() {
	for _, c := range a.closers {
		_ = c.Close()
	}
	_ = a.Logger.Sync()
}
