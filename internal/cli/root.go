package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/rohmanhakim/product-aggregator/internal/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile          string
	envFile          string
	concurrency      int
	timeout          time.Duration
	aggregateTimeout time.Duration
	userAgent        string
	maxAttempt       int
	baseDelay        time.Duration
	jitter           time.Duration
	randomSeed       int64
	cacheBackend     string
	cacheDir         string
	cacheTTL         time.Duration
	redisAddr        string
	redisPassword    string
	redisDB          int
	redisPrefix      string
	serpAPIKey       string
	serpAPIURL       string
	fakeStoreURL     string
	dummyJSONURL     string
	fakeShopURL      string
	stores           []string
	conversionRate   float64
	listenAddr       string
	logLevel         string
	logFormat        string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "product-aggregator",
	Short: "Aggregates product listings from several public catalog APIs.",
	Long: `product-aggregator fetches product listings from several public
catalog and shopping-search APIs, normalizes them into one record shape with
prices in a single display currency, and returns one deduplicated list sorted
by price.

Provider responses are cached per (provider, query) for a fixed TTL so repeat
requests do not hit the upstream APIs again.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// RootCommand exposes the command tree, mainly for tests.
func RootCommand() *cobra.Command {
	return rootCmd
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config-file", "", "config file path, json, yaml or toml (e.g., /home/myuser/config.yaml)")
	flags.StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading environment variables")
	flags.IntVar(&concurrency, "concurrency", 0, "maximum number of provider calls in flight")
	flags.DurationVar(&timeout, "timeout", 0, "timeout of a single provider call")
	flags.DurationVar(&aggregateTimeout, "aggregate-timeout", 0, "upper bound of a whole aggregation (0 waits for every provider)")
	flags.StringVar(&userAgent, "user-agent", "", "user agent string for provider requests")
	flags.IntVar(&maxAttempt, "max-attempt", 0, "attempts per provider call, including the first")
	flags.DurationVar(&baseDelay, "base-delay", 0, "minimum delay between requests to the same host")
	flags.DurationVar(&jitter, "jitter", 0, "random jitter added to delays and retry backoff")
	flags.Int64Var(&randomSeed, "random-seed", 0, "seed for random number generation (0 for current time)")
	flags.StringVar(&cacheBackend, "cache-backend", "", "result cache backend: file, redis or memory")
	flags.StringVar(&cacheDir, "cache-dir", "", "directory of the file cache backend")
	flags.DurationVar(&cacheTTL, "cache-ttl", 0, "how long a cached provider result stays fresh")
	flags.StringVar(&redisAddr, "redis-addr", "", "redis address for the redis cache backend")
	flags.StringVar(&redisPassword, "redis-password", "", "redis password")
	flags.IntVar(&redisDB, "redis-db", 0, "redis database number")
	flags.StringVar(&redisPrefix, "redis-prefix", "", "key prefix for cache entries in redis")
	flags.StringVar(&serpAPIKey, "serpapi-key", "", "SerpAPI key; search-engine sources are skipped without one")
	flags.StringVar(&serpAPIURL, "serpapi-url", "", "SerpAPI search endpoint")
	flags.StringVar(&fakeStoreURL, "fakestore-url", "", "FakeStore product list URL")
	flags.StringVar(&dummyJSONURL, "dummyjson-url", "", "DummyJSON product list URL")
	flags.StringVar(&fakeShopURL, "fakeshop-url", "", "FakeShop product list URL")
	flags.StringArrayVar(&stores, "store", []string{}, "store id searched through SerpAPI (can be repeated)")
	flags.Float64Var(&conversionRate, "conversion-rate", 0, "multiplier from provider currency to display currency")
	flags.StringVar(&listenAddr, "listen-addr", "", "HTTP listen address for serve")
	flags.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&logFormat, "log-format", "", "log format: console or json")

	rootCmd.AddCommand(serveCmd, productsCmd, searchCmd, versionCmd)
}

// InitConfigWithError resolves the configuration: defaults, then the config
// file, then environment variables (after loading the dotenv file), then
// command line flags.
func InitConfigWithError() (config.Config, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return config.Config{}, fmt.Errorf("error loading env file: %w", err)
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, fmt.Errorf("error initializing config: %w", err)
	}

	// Override with CLI flag values where provided
	configBuilder := &cfg

	if concurrency > 0 {
		configBuilder = configBuilder.WithConcurrency(concurrency)
	}
	if timeout > 0 {
		configBuilder = configBuilder.WithTimeout(timeout)
	}
	if aggregateTimeout > 0 {
		configBuilder = configBuilder.WithAggregateTimeout(aggregateTimeout)
	}
	if userAgent != "" {
		configBuilder = configBuilder.WithUserAgent(userAgent)
	}
	if maxAttempt > 0 {
		configBuilder = configBuilder.WithMaxAttempt(maxAttempt)
	}
	if baseDelay > 0 {
		configBuilder = configBuilder.WithBaseDelay(baseDelay)
	}
	if jitter > 0 {
		configBuilder = configBuilder.WithJitter(jitter)
	}
	if randomSeed != 0 {
		configBuilder = configBuilder.WithRandomSeed(randomSeed)
	}
	if cacheBackend != "" {
		configBuilder = configBuilder.WithCacheBackend(cacheBackend)
	}
	if cacheDir != "" {
		configBuilder = configBuilder.WithCacheDir(cacheDir)
	}
	if cacheTTL > 0 {
		configBuilder = configBuilder.WithCacheTTL(cacheTTL)
	}
	if redisAddr != "" {
		configBuilder = configBuilder.WithRedisAddr(redisAddr)
	}
	if redisPassword != "" {
		configBuilder = configBuilder.WithRedisPassword(redisPassword)
	}
	if redisDB > 0 {
		configBuilder = configBuilder.WithRedisDB(redisDB)
	}
	if redisPrefix != "" {
		configBuilder = configBuilder.WithRedisPrefix(redisPrefix)
	}
	if serpAPIKey != "" {
		configBuilder = configBuilder.WithSerpAPIKey(serpAPIKey)
	}
	if serpAPIURL != "" {
		configBuilder = configBuilder.WithSerpAPIURL(serpAPIURL)
	}
	if fakeStoreURL != "" {
		configBuilder = configBuilder.WithFakeStoreURL(fakeStoreURL)
	}
	if dummyJSONURL != "" {
		configBuilder = configBuilder.WithDummyJSONURL(dummyJSONURL)
	}
	if fakeShopURL != "" {
		configBuilder = configBuilder.WithFakeShopURL(fakeShopURL)
	}
	if len(stores) > 0 {
		configBuilder = configBuilder.WithStores(stores)
	}
	if conversionRate > 0 {
		configBuilder = configBuilder.WithConversionRate(conversionRate)
	}
	if listenAddr != "" {
		configBuilder = configBuilder.WithListenAddr(listenAddr)
	}
	if logLevel != "" {
		configBuilder = configBuilder.WithLogLevel(logLevel)
	}
	if logFormat != "" {
		configBuilder = configBuilder.WithLogFormat(logFormat)
	}

	return configBuilder.Build()
}

func ResetFlags() {
	cfgFile = ""
	envFile = ""
	concurrency = 0
	timeout = 0
	aggregateTimeout = 0
	userAgent = ""
	maxAttempt = 0
	baseDelay = 0
	jitter = 0
	randomSeed = 0
	cacheBackend = ""
	cacheDir = ""
	cacheTTL = 0
	redisAddr = ""
	redisPassword = ""
	redisDB = 0
	redisPrefix = ""
	serpAPIKey = ""
	serpAPIURL = ""
	fakeStoreURL = ""
	dummyJSONURL = ""
	fakeShopURL = ""
	stores = []string{}
	conversionRate = 0
	listenAddr = ""
	logLevel = ""
	logFormat = ""
}

// Test helper functions to set flag values from tests
func SetConfigFileForTest(path string) {
	cfgFile = path
}

func SetEnvFileForTest(path string) {
	envFile = path
}

func SetConcurrencyForTest(conc int) {
	concurrency = conc
}

func SetTimeoutForTest(t time.Duration) {
	timeout = t
}

func SetCacheBackendForTest(backend string) {
	cacheBackend = backend
}

func SetCacheDirForTest(dir string) {
	cacheDir = dir
}

func SetStoresForTest(ids []string) {
	stores = ids
}

func SetSerpAPIKeyForTest(key string) {
	serpAPIKey = key
}

func SetLogFormatForTest(format string) {
	logFormat = format
}
