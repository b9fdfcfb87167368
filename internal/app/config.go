package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/joho/godotenv"
)

// Order store backends.
const (
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

const defaultAddr = "0.0.0.0:8080"

// Config holds the complete application configuration, loadable from
// environment variables (JUSTCOFFEE_ prefix), flags, a .env file or YAML
// config files.
type Config struct {
	Addr        string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL string `usage:"PostgreSQL URL for the catalog; the embedded menu is used when empty" flag:"database-url"`
	Store       string `default:"redis" usage:"Order store backend: redis or memory"`
	Redis       RedisConfig
	Kafka       KafkaConfig
	Catalog     CatalogConfig
	Graceful    GracefulConfig
}

// RedisConfig selects the Redis server and the hash holding the orders.
type RedisConfig struct {
	URL       string        `usage:"redis:// URL, overrides addr/password/db"`
	Addr      string        `default:"localhost:6379" usage:"Redis address"`
	Password  string        `usage:"Redis password"`
	DB        int           `default:"0" usage:"Redis database"`
	Namespace string        `default:"COFFEE_ORDER" usage:"Hash key holding all orders"`
	Timeout   time.Duration `default:"3s" usage:"Dial, read and write timeout"`
}

// KafkaConfig controls order event publishing. Events are disabled when no
// brokers are set.
type KafkaConfig struct {
	Brokers      []string      `usage:"Kafka bootstrap brokers"`
	Topic        string        `default:"coffee-orders" usage:"Order events topic"`
	WriteTimeout time.Duration `default:"10s" usage:"Per event write timeout"`
}

// CatalogConfig tunes catalog lookups.
type CatalogConfig struct {
	FilterFPR float64 `default:"0.001" usage:"False positive rate of the known-id filter" flag:"catalog-filter-fpr"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig reads .env (if present), then environment variables, flags and
// YAML config files, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "load .env")
	}
	return loadConfig(aconfig.Config{
		EnvPrefix: "JUSTCOFFEE",
		Files:     []string{"config.yaml", "/etc/justcoffee/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
}

func loadConfig(acfg aconfig.Config) (*Config, error) {
	var cfg Config
	if err := aconfig.LoaderFor(&cfg, acfg).Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyPlatformDefaults maps the standard PORT, DATABASE_URL and REDIS_URL
// variables set by hosting platforms onto the prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if c.Redis.URL == "" {
		c.Redis.URL = os.Getenv("REDIS_URL")
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}

func (c *Config) validate() error {
	switch c.Store {
	case StoreRedis, StoreMemory:
	default:
		return errors.Errorf("unknown store %q: want %q or %q", c.Store, StoreRedis, StoreMemory)
	}
	if c.Catalog.FilterFPR <= 0 || c.Catalog.FilterFPR >= 1 {
		return errors.Errorf("catalog filter false positive rate %v out of (0, 1)", c.Catalog.FilterFPR)
	}
	return nil
}
