package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/rohmanhakim/product-aggregator/internal/config"
)

func TestWithDefault(t *testing.T) {
	cfg := config.WithDefault()

	if cfg == nil {
		t.Fatal("WithDefault() returned nil")
	}

	builtCfg, err := cfg.Build()
	if err != nil {
		t.Fatalf("should not have any error, got %v", err)
	}

	// Fan-out
	if builtCfg.Concurrency() != 8 {
		t.Errorf("expected Concurrency 8, got %d", builtCfg.Concurrency())
	}
	if builtCfg.Timeout() != 10*time.Second {
		t.Errorf("expected Timeout 10s, got %v", builtCfg.Timeout())
	}
	if builtCfg.AggregateTimeout() != 0 {
		t.Errorf("expected AggregateTimeout 0, got %v", builtCfg.AggregateTimeout())
	}

	// Fetch
	if builtCfg.UserAgent() != config.DefaultUserAgent {
		t.Errorf("expected browser UserAgent, got '%s'", builtCfg.UserAgent())
	}
	if builtCfg.MaxAttempt() != 1 {
		t.Errorf("expected MaxAttempt 1, got %d", builtCfg.MaxAttempt())
	}
	if builtCfg.BackoffMultiplier() != 2.0 {
		t.Errorf("expected BackoffMultiplier 2.0, got %f", builtCfg.BackoffMultiplier())
	}
	if builtCfg.BaseDelay() != 0 {
		t.Errorf("expected BaseDelay 0, got %v", builtCfg.BaseDelay())
	}
	if builtCfg.RandomSeed() == 0 {
		t.Error("expected RandomSeed to be set, got 0")
	}

	// Cache
	if builtCfg.CacheBackend() != config.CacheBackendFile {
		t.Errorf("expected CacheBackend file, got %s", builtCfg.CacheBackend())
	}
	if builtCfg.CacheDir() != ".cache/products" {
		t.Errorf("expected CacheDir .cache/products, got %s", builtCfg.CacheDir())
	}
	if builtCfg.CacheTTL() != 24*time.Hour {
		t.Errorf("expected CacheTTL 24h, got %v", builtCfg.CacheTTL())
	}
	if builtCfg.RedisPrefix() != "aggregator:results:" {
		t.Errorf("expected default RedisPrefix, got %s", builtCfg.RedisPrefix())
	}

	// Providers
	if builtCfg.SerpAPIURL() != "https://serpapi.com/search" {
		t.Errorf("unexpected SerpAPIURL %s", builtCfg.SerpAPIURL())
	}
	if builtCfg.DummyJSONURL() != "https://dummyjson.com/products" {
		t.Errorf("unexpected DummyJSONURL %s", builtCfg.DummyJSONURL())
	}
	if builtCfg.SerpAPIKey() != "" {
		t.Errorf("expected empty SerpAPIKey, got %s", builtCfg.SerpAPIKey())
	}
	if len(builtCfg.Stores()) != 0 {
		t.Errorf("expected no stores enabled, got %v", builtCfg.Stores())
	}

	// Pricing
	if builtCfg.ConversionRate() != 83.0 {
		t.Errorf("expected ConversionRate 83, got %v", builtCfg.ConversionRate())
	}
	if builtCfg.SourceCurrency() != "USD" || builtCfg.DisplayCurrency() != "INR" {
		t.Errorf("expected USD -> INR, got %s -> %s", builtCfg.SourceCurrency(), builtCfg.DisplayCurrency())
	}

	// Runtime
	if builtCfg.ListenAddr() != ":5000" {
		t.Errorf("expected ListenAddr :5000, got %s", builtCfg.ListenAddr())
	}
	if builtCfg.LogLevel() != "info" || builtCfg.LogFormat() != "console" {
		t.Errorf("expected info/console logging, got %s/%s", builtCfg.LogLevel(), builtCfg.LogFormat())
	}
}

func TestSetters(t *testing.T) {
	cfg, err := config.WithDefault().
		WithConcurrency(3).
		WithTimeout(2 * time.Second).
		WithAggregateTimeout(5 * time.Second).
		WithUserAgent("test-agent/1.0").
		WithMaxAttempt(4).
		WithBackoffInitialDuration(50 * time.Millisecond).
		WithBackoffMultiplier(1.5).
		WithBackoffMaxDuration(time.Second).
		WithBaseDelay(100 * time.Millisecond).
		WithJitter(10 * time.Millisecond).
		WithRandomSeed(42).
		WithCacheBackend(config.CacheBackendRedis).
		WithCacheDir("/tmp/cache").
		WithCacheTTL(time.Hour).
		WithRedisAddr("redis:6379").
		WithRedisPassword("secret").
		WithRedisDB(2).
		WithRedisPrefix("p:").
		WithSerpAPIKey("key").
		WithSerpAPIURL("http://serp.local/search").
		WithFakeStoreURL("http://fakestore.local/products").
		WithDummyJSONURL("http://dummyjson.local/products").
		WithFakeShopURL("http://fakeshop.local/products").
		WithStores([]string{"amazon"}).
		WithConversionRate(1).
		WithSourceCurrency("USD").
		WithDisplayCurrency("USD").
		WithListenAddr("127.0.0.1:8080").
		WithLogLevel("debug").
		WithLogFormat("json").
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Concurrency() != 3 || cfg.Timeout() != 2*time.Second || cfg.AggregateTimeout() != 5*time.Second {
		t.Errorf("fan-out setters not applied: %d %v %v", cfg.Concurrency(), cfg.Timeout(), cfg.AggregateTimeout())
	}
	if cfg.UserAgent() != "test-agent/1.0" || cfg.MaxAttempt() != 4 {
		t.Errorf("fetch setters not applied")
	}
	if cfg.BackoffInitialDuration() != 50*time.Millisecond || cfg.BackoffMultiplier() != 1.5 || cfg.BackoffMaxDuration() != time.Second {
		t.Errorf("backoff setters not applied")
	}
	if cfg.BaseDelay() != 100*time.Millisecond || cfg.Jitter() != 10*time.Millisecond || cfg.RandomSeed() != 42 {
		t.Errorf("politeness setters not applied")
	}
	if cfg.CacheBackend() != "redis" || cfg.CacheDir() != "/tmp/cache" || cfg.CacheTTL() != time.Hour {
		t.Errorf("cache setters not applied")
	}
	if cfg.RedisAddr() != "redis:6379" || cfg.RedisPassword() != "secret" || cfg.RedisDB() != 2 || cfg.RedisPrefix() != "p:" {
		t.Errorf("redis setters not applied")
	}
	if cfg.SerpAPIKey() != "key" || cfg.SerpAPIURL() != "http://serp.local/search" {
		t.Errorf("serpapi setters not applied")
	}
	if cfg.FakeStoreURL() != "http://fakestore.local/products" ||
		cfg.DummyJSONURL() != "http://dummyjson.local/products" ||
		cfg.FakeShopURL() != "http://fakeshop.local/products" {
		t.Errorf("endpoint setters not applied")
	}
	if len(cfg.Stores()) != 1 || cfg.Stores()[0] != "amazon" {
		t.Errorf("expected stores [amazon], got %v", cfg.Stores())
	}
	if cfg.ConversionRate() != 1 || cfg.DisplayCurrency() != "USD" {
		t.Errorf("pricing setters not applied")
	}
	if cfg.ListenAddr() != "127.0.0.1:8080" || cfg.LogLevel() != "debug" || cfg.LogFormat() != "json" {
		t.Errorf("runtime setters not applied")
	}
}

func TestStores_ReturnsCopy(t *testing.T) {
	cfg, err := config.WithDefault().WithStores([]string{"amazon", "ebay"}).Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stores := cfg.Stores()
	stores[0] = "mutated"

	if cfg.Stores()[0] != "amazon" {
		t.Errorf("Stores() should return a copy, got %v", cfg.Stores())
	}
}

func TestBuild_Invalid(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.Config
	}{
		{"zero concurrency", config.WithDefault().WithConcurrency(0)},
		{"zero timeout", config.WithDefault().WithTimeout(0)},
		{"negative aggregate timeout", config.WithDefault().WithAggregateTimeout(-time.Second)},
		{"zero max attempt", config.WithDefault().WithMaxAttempt(0)},
		{"shrinking backoff", config.WithDefault().WithBackoffMultiplier(0.5)},
		{"negative base delay", config.WithDefault().WithBaseDelay(-time.Second)},
		{"negative jitter", config.WithDefault().WithJitter(-time.Second)},
		{"zero ttl", config.WithDefault().WithCacheTTL(0)},
		{"unknown backend", config.WithDefault().WithCacheBackend("memcached")},
		{"file backend without dir", config.WithDefault().WithCacheDir("")},
		{"redis backend without addr", config.WithDefault().WithCacheBackend(config.CacheBackendRedis).WithRedisAddr("")},
		{"zero conversion rate", config.WithDefault().WithConversionRate(0)},
		{"unknown log format", config.WithDefault().WithLogFormat("xml")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.cfg.Build()
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, config.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestBuild_MemoryBackendNeedsNothing(t *testing.T) {
	_, err := config.WithDefault().
		WithCacheBackend(config.CacheBackendMemory).
		WithCacheDir("").
		WithRedisAddr("").
		Build()
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
