package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. AGGREGATOR_CACHE_DIR.
const EnvPrefix = "AGGREGATOR_"

// setting binds one config file key, and the environment variables that
// override it, to a Config field.
type setting struct {
	key   string
	env   []string
	apply func(c *Config, value any) error
}

var settings = []setting{
	{"concurrency", []string{EnvPrefix + "CONCURRENCY"}, intSetting((*Config).WithConcurrency)},
	{"timeout", []string{EnvPrefix + "TIMEOUT"}, durationSetting((*Config).WithTimeout)},
	{"aggregateTimeout", []string{EnvPrefix + "AGGREGATE_TIMEOUT"}, durationSetting((*Config).WithAggregateTimeout)},
	{"userAgent", []string{EnvPrefix + "USER_AGENT"}, stringSetting((*Config).WithUserAgent)},
	{"maxAttempt", []string{EnvPrefix + "MAX_ATTEMPT"}, intSetting((*Config).WithMaxAttempt)},
	{"backoffInitialDuration", []string{EnvPrefix + "BACKOFF_INITIAL_DURATION"}, durationSetting((*Config).WithBackoffInitialDuration)},
	{"backoffMultiplier", []string{EnvPrefix + "BACKOFF_MULTIPLIER"}, floatSetting((*Config).WithBackoffMultiplier)},
	{"backoffMaxDuration", []string{EnvPrefix + "BACKOFF_MAX_DURATION"}, durationSetting((*Config).WithBackoffMaxDuration)},
	{"baseDelay", []string{EnvPrefix + "BASE_DELAY"}, durationSetting((*Config).WithBaseDelay)},
	{"jitter", []string{EnvPrefix + "JITTER"}, durationSetting((*Config).WithJitter)},
	{"randomSeed", []string{EnvPrefix + "RANDOM_SEED"}, int64Setting((*Config).WithRandomSeed)},
	{"cacheBackend", []string{EnvPrefix + "CACHE_BACKEND"}, stringSetting((*Config).WithCacheBackend)},
	{"cacheDir", []string{EnvPrefix + "CACHE_DIR"}, stringSetting((*Config).WithCacheDir)},
	{"cacheTTL", []string{EnvPrefix + "CACHE_TTL"}, durationSetting((*Config).WithCacheTTL)},
	{"redisAddr", []string{EnvPrefix + "REDIS_ADDR"}, stringSetting((*Config).WithRedisAddr)},
	{"redisPassword", []string{EnvPrefix + "REDIS_PASSWORD"}, stringSetting((*Config).WithRedisPassword)},
	{"redisDB", []string{EnvPrefix + "REDIS_DB"}, intSetting((*Config).WithRedisDB)},
	{"redisPrefix", []string{EnvPrefix + "REDIS_PREFIX"}, stringSetting((*Config).WithRedisPrefix)},
	{"serpAPIKey", []string{EnvPrefix + "SERPAPI_KEY", "SERPAPI_KEY"}, stringSetting((*Config).WithSerpAPIKey)},
	{"serpAPIURL", []string{EnvPrefix + "SERPAPI_URL"}, stringSetting((*Config).WithSerpAPIURL)},
	{"fakeStoreURL", []string{EnvPrefix + "FAKESTORE_URL"}, stringSetting((*Config).WithFakeStoreURL)},
	{"dummyJSONURL", []string{EnvPrefix + "DUMMYJSON_URL"}, stringSetting((*Config).WithDummyJSONURL)},
	{"fakeShopURL", []string{EnvPrefix + "FAKESHOP_URL"}, stringSetting((*Config).WithFakeShopURL)},
	{"stores", []string{EnvPrefix + "STORES"}, listSetting((*Config).WithStores)},
	{"conversionRate", []string{EnvPrefix + "CONVERSION_RATE"}, floatSetting((*Config).WithConversionRate)},
	{"sourceCurrency", []string{EnvPrefix + "SOURCE_CURRENCY"}, stringSetting((*Config).WithSourceCurrency)},
	{"displayCurrency", []string{EnvPrefix + "DISPLAY_CURRENCY"}, stringSetting((*Config).WithDisplayCurrency)},
	{"listenAddr", []string{EnvPrefix + "LISTEN_ADDR"}, stringSetting((*Config).WithListenAddr)},
	{"logLevel", []string{EnvPrefix + "LOG_LEVEL"}, stringSetting((*Config).WithLogLevel)},
	{"logFormat", []string{EnvPrefix + "LOG_FORMAT"}, stringSetting((*Config).WithLogFormat)},
}

// WithConfigFile builds a Config from defaults overlaid with the file at
// path. The format (json, yaml, toml) follows the file extension.
func WithConfigFile(path string) (Config, error) {
	v := viper.New()
	if err := readConfigFile(v, path); err != nil {
		return Config{}, err
	}
	return fromViper(v)
}

// Load builds a Config from defaults, then the optional file at path, then
// environment variables. Later sources win.
func Load(path string) (Config, error) {
	v := viper.New()
	if path != "" {
		if err := readConfigFile(v, path); err != nil {
			return Config{}, err
		}
	}
	for _, s := range settings {
		if err := v.BindEnv(append([]string{s.key}, s.env...)...); err != nil {
			return Config{}, fmt.Errorf("%w: %s", ErrInvalidConfig, err.Error())
		}
	}
	return fromViper(v)
}

// LoadDotEnv exports the variables of each .env file into the process
// environment without overriding variables that are already set. Missing
// files are skipped. With no paths, ".env" is tried.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
		}
	}
	return nil
}

func readConfigFile(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var parseErr viper.ConfigParseError
		if errors.As(err, &parseErr) {
			return fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
		}
		return fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}
	return nil
}

func fromViper(v *viper.Viper) (Config, error) {
	cfg := WithDefault()
	for _, s := range settings {
		if !v.IsSet(s.key) {
			continue
		}
		if err := s.apply(cfg, v.Get(s.key)); err != nil {
			return Config{}, fmt.Errorf("%w: %s: %s", ErrConfigParsingFail, s.key, err.Error())
		}
	}
	return cfg.Build()
}

func stringSetting(set func(*Config, string) *Config) func(*Config, any) error {
	return func(c *Config, value any) error {
		s, err := cast.ToStringE(value)
		if err != nil {
			return err
		}
		set(c, s)
		return nil
	}
}

func intSetting(set func(*Config, int) *Config) func(*Config, any) error {
	return func(c *Config, value any) error {
		n, err := cast.ToIntE(value)
		if err != nil {
			return err
		}
		set(c, n)
		return nil
	}
}

func int64Setting(set func(*Config, int64) *Config) func(*Config, any) error {
	return func(c *Config, value any) error {
		n, err := cast.ToInt64E(value)
		if err != nil {
			return err
		}
		set(c, n)
		return nil
	}
}

func floatSetting(set func(*Config, float64) *Config) func(*Config, any) error {
	return func(c *Config, value any) error {
		f, err := cast.ToFloat64E(value)
		if err != nil {
			return err
		}
		set(c, f)
		return nil
	}
}

// durationSetting accepts Go duration strings ("10s") and integer
// nanoseconds.
func durationSetting(set func(*Config, time.Duration) *Config) func(*Config, any) error {
	return func(c *Config, value any) error {
		d, err := cast.ToDurationE(value)
		if err != nil {
			return err
		}
		set(c, d)
		return nil
	}
}

// listSetting accepts a list or a comma separated string.
func listSetting(set func(*Config, []string) *Config) func(*Config, any) error {
	return func(c *Config, value any) error {
		var items []string
		if s, ok := value.(string); ok {
			items = strings.Split(s, ",")
		} else {
			list, err := cast.ToStringSliceE(value)
			if err != nil {
				return err
			}
			items = list
		}

		out := make([]string, 0, len(items))
		for _, item := range items {
			item = strings.ToLower(strings.TrimSpace(item))
			if item != "" {
				out = append(out, item)
			}
		}
		set(c, out)
		return nil
	}
}
