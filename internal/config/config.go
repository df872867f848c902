package config

import (
	"fmt"
	"time"
)

const (
	CacheBackendFile   = "file"
	CacheBackendRedis  = "redis"
	CacheBackendMemory = "memory"
)

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

type Config struct {
	//===============
	// Fan-out
	//===============
	// Maximum number of provider calls in flight for one request
	concurrency int
	// Upper bound of a single provider call
	timeout time.Duration
	// Upper bound of a whole aggregation; zero waits for every provider
	aggregateTimeout time.Duration

	//===============
	// Fetch
	//===============
	// User agent sent to every provider. In raw string
	userAgent string
	// maximum attempt during retry; one means no retry
	maxAttempt int
	// initial delay for backoff
	backoffInitialDuration time.Duration
	// multiplier during exponential backoff
	backoffMultiplier float64
	// capped maximum delay for backoff to stop exponential multiplication
	backoffMaxDuration time.Duration
	// Minimum, fixed waiting time between two requests to the same host
	baseDelay time.Duration
	// Randomized variation added on top of the base delay
	jitter time.Duration
	// Controls the random number generator
	randomSeed int64

	//===============
	// Cache
	//===============
	// One of file, redis, memory
	cacheBackend string
	// Directory holding one file per cache entry
	cacheDir string
	// How long an entry stays fresh
	cacheTTL      time.Duration
	redisAddr     string
	redisPassword string
	redisDB       int
	redisPrefix   string

	//===============
	// Providers
	//===============
	serpAPIKey   string
	serpAPIURL   string
	fakeStoreURL string
	dummyJSONURL string
	fakeShopURL  string
	// Store ids searched through SerpAPI in addition to the default search sources
	stores []string

	//===============
	// Pricing
	//===============
	// Multiplier from the providers' currency to the display currency
	conversionRate  float64
	sourceCurrency  string
	displayCurrency string

	//===============
	// Runtime
	//===============
	listenAddr string
	logLevel   string
	logFormat  string
}

// WithDefault creates a new Config with default values for all fields.
func WithDefault() *Config {
	defaultConfig := Config{
		concurrency:            8,
		timeout:                10 * time.Second,
		aggregateTimeout:       0,
		userAgent:              DefaultUserAgent,
		maxAttempt:             1,
		backoffInitialDuration: 200 * time.Millisecond,
		backoffMultiplier:      2.0,
		backoffMaxDuration:     2 * time.Second,
		baseDelay:              0,
		jitter:                 0,
		randomSeed:             time.Now().UnixNano(),
		cacheBackend:           CacheBackendFile,
		cacheDir:               ".cache/products",
		cacheTTL:               24 * time.Hour,
		redisAddr:              "localhost:6379",
		redisDB:                0,
		redisPrefix:            "aggregator:results:",
		serpAPIURL:             "https://serpapi.com/search",
		fakeStoreURL:           "https://fakestoreapi.com/products",
		dummyJSONURL:           "https://dummyjson.com/products",
		fakeShopURL:            "https://api.escuelajs.co/api/v1/products",
		stores:                 []string{},
		conversionRate:         83.0,
		sourceCurrency:         "USD",
		displayCurrency:        "INR",
		listenAddr:             ":5000",
		logLevel:               "info",
		logFormat:              "console",
	}
	return &defaultConfig
}

func (c *Config) WithConcurrency(concurrency int) *Config {
	c.concurrency = concurrency
	return c
}

func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.timeout = timeout
	return c
}

func (c *Config) WithAggregateTimeout(timeout time.Duration) *Config {
	c.aggregateTimeout = timeout
	return c
}

func (c *Config) WithUserAgent(agent string) *Config {
	c.userAgent = agent
	return c
}

func (c *Config) WithMaxAttempt(attempts int) *Config {
	c.maxAttempt = attempts
	return c
}

func (c *Config) WithBackoffInitialDuration(duration time.Duration) *Config {
	c.backoffInitialDuration = duration
	return c
}

func (c *Config) WithBackoffMultiplier(multiplier float64) *Config {
	c.backoffMultiplier = multiplier
	return c
}

func (c *Config) WithBackoffMaxDuration(duration time.Duration) *Config {
	c.backoffMaxDuration = duration
	return c
}

func (c *Config) WithBaseDelay(delay time.Duration) *Config {
	c.baseDelay = delay
	return c
}

func (c *Config) WithJitter(jitter time.Duration) *Config {
	c.jitter = jitter
	return c
}

func (c *Config) WithRandomSeed(seed int64) *Config {
	c.randomSeed = seed
	return c
}

func (c *Config) WithCacheBackend(backend string) *Config {
	c.cacheBackend = backend
	return c
}

func (c *Config) WithCacheDir(dir string) *Config {
	c.cacheDir = dir
	return c
}

func (c *Config) WithCacheTTL(ttl time.Duration) *Config {
	c.cacheTTL = ttl
	return c
}

func (c *Config) WithRedisAddr(addr string) *Config {
	c.redisAddr = addr
	return c
}

func (c *Config) WithRedisPassword(password string) *Config {
	c.redisPassword = password
	return c
}

func (c *Config) WithRedisDB(db int) *Config {
	c.redisDB = db
	return c
}

func (c *Config) WithRedisPrefix(prefix string) *Config {
	c.redisPrefix = prefix
	return c
}

func (c *Config) WithSerpAPIKey(key string) *Config {
	c.serpAPIKey = key
	return c
}

func (c *Config) WithSerpAPIURL(rawURL string) *Config {
	c.serpAPIURL = rawURL
	return c
}

func (c *Config) WithFakeStoreURL(rawURL string) *Config {
	c.fakeStoreURL = rawURL
	return c
}

func (c *Config) WithDummyJSONURL(rawURL string) *Config {
	c.dummyJSONURL = rawURL
	return c
}

func (c *Config) WithFakeShopURL(rawURL string) *Config {
	c.fakeShopURL = rawURL
	return c
}

func (c *Config) WithStores(stores []string) *Config {
	c.stores = stores
	return c
}

func (c *Config) WithConversionRate(rate float64) *Config {
	c.conversionRate = rate
	return c
}

func (c *Config) WithSourceCurrency(currency string) *Config {
	c.sourceCurrency = currency
	return c
}

func (c *Config) WithDisplayCurrency(currency string) *Config {
	c.displayCurrency = currency
	return c
}

func (c *Config) WithListenAddr(addr string) *Config {
	c.listenAddr = addr
	return c
}

func (c *Config) WithLogLevel(level string) *Config {
	c.logLevel = level
	return c
}

func (c *Config) WithLogFormat(format string) *Config {
	c.logFormat = format
	return c
}

func (c *Config) Build() (Config, error) {
	if c.concurrency < 1 {
		return Config{}, fmt.Errorf("%w: concurrency must be at least 1, got %d", ErrInvalidConfig, c.concurrency)
	}
	if c.timeout <= 0 {
		return Config{}, fmt.Errorf("%w: timeout must be positive, got %v", ErrInvalidConfig, c.timeout)
	}
	if c.aggregateTimeout < 0 {
		return Config{}, fmt.Errorf("%w: aggregateTimeout cannot be negative, got %v", ErrInvalidConfig, c.aggregateTimeout)
	}
	if c.maxAttempt < 1 {
		return Config{}, fmt.Errorf("%w: maxAttempt must be at least 1, got %d", ErrInvalidConfig, c.maxAttempt)
	}
	if c.backoffMultiplier < 1 {
		return Config{}, fmt.Errorf("%w: backoffMultiplier must be at least 1, got %v", ErrInvalidConfig, c.backoffMultiplier)
	}
	if c.baseDelay < 0 || c.jitter < 0 {
		return Config{}, fmt.Errorf("%w: baseDelay and jitter cannot be negative", ErrInvalidConfig)
	}
	if c.cacheTTL <= 0 {
		return Config{}, fmt.Errorf("%w: cacheTTL must be positive, got %v", ErrInvalidConfig, c.cacheTTL)
	}

	switch c.cacheBackend {
	case CacheBackendFile:
		if c.cacheDir == "" {
			return Config{}, fmt.Errorf("%w: cacheDir cannot be empty for the file backend", ErrInvalidConfig)
		}
	case CacheBackendRedis:
		if c.redisAddr == "" {
			return Config{}, fmt.Errorf("%w: redisAddr cannot be empty for the redis backend", ErrInvalidConfig)
		}
	case CacheBackendMemory:
	default:
		return Config{}, fmt.Errorf("%w: unknown cacheBackend %q", ErrInvalidConfig, c.cacheBackend)
	}

	if c.conversionRate <= 0 {
		return Config{}, fmt.Errorf("%w: conversionRate must be positive, got %v", ErrInvalidConfig, c.conversionRate)
	}
	if c.logFormat != "console" && c.logFormat != "json" {
		return Config{}, fmt.Errorf("%w: logFormat must be console or json, got %q", ErrInvalidConfig, c.logFormat)
	}
	if c.stores == nil {
		c.stores = []string{}
	}

	return *c, nil
}

func (c Config) Concurrency() int {
	return c.concurrency
}

func (c Config) Timeout() time.Duration {
	return c.timeout
}

func (c Config) AggregateTimeout() time.Duration {
	return c.aggregateTimeout
}

func (c Config) UserAgent() string {
	return c.userAgent
}

func (c Config) MaxAttempt() int {
	return c.maxAttempt
}

func (c Config) BackoffInitialDuration() time.Duration {
	return c.backoffInitialDuration
}

func (c Config) BackoffMultiplier() float64 {
	return c.backoffMultiplier
}

func (c Config) BackoffMaxDuration() time.Duration {
	return c.backoffMaxDuration
}

func (c Config) BaseDelay() time.Duration {
	return c.baseDelay
}

func (c Config) Jitter() time.Duration {
	return c.jitter
}

func (c Config) RandomSeed() int64 {
	return c.randomSeed
}

func (c Config) CacheBackend() string {
	return c.cacheBackend
}

func (c Config) CacheDir() string {
	return c.cacheDir
}

func (c Config) CacheTTL() time.Duration {
	return c.cacheTTL
}

func (c Config) RedisAddr() string {
	return c.redisAddr
}

func (c Config) RedisPassword() string {
	return c.redisPassword
}

func (c Config) RedisDB() int {
	return c.redisDB
}

func (c Config) RedisPrefix() string {
	return c.redisPrefix
}

func (c Config) SerpAPIKey() string {
	return c.serpAPIKey
}

func (c Config) SerpAPIURL() string {
	return c.serpAPIURL
}

func (c Config) FakeStoreURL() string {
	return c.fakeStoreURL
}

func (c Config) DummyJSONURL() string {
	return c.dummyJSONURL
}

func (c Config) FakeShopURL() string {
	return c.fakeShopURL
}

func (c Config) Stores() []string {
	stores := make([]string, len(c.stores))
	copy(stores, c.stores)
	return stores
}

func (c Config) ConversionRate() float64 {
	return c.conversionRate
}

func (c Config) SourceCurrency() string {
	return c.sourceCurrency
}

func (c Config) DisplayCurrency() string {
	return c.displayCurrency
}

func (c Config) ListenAddr() string {
	return c.listenAddr
}

func (c Config) LogLevel() string {
	return c.logLevel
}

func (c Config) LogFormat() string {
	return c.logFormat
}
