package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLoaderConfig(files ...string) aconfig.Config {
	return aconfig.Config{
		EnvPrefix: "JUSTCOFFEE",
		SkipFlags: true,
		SkipFiles: len(files) == 0,
		Files:     files,
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	}
}

func clearPlatformEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"PORT", "DATABASE_URL", "REDIS_URL"} {
		t.Setenv(k, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearPlatformEnv(t)

	cfg, err := loadConfig(testLoaderConfig())
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Addr)
	assert.Equal(t, StoreRedis, cfg.Store)
	assert.Equal(t, "COFFEE_ORDER", cfg.Redis.Namespace)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 3*time.Second, cfg.Redis.Timeout)
	assert.Equal(t, "coffee-orders", cfg.Kafka.Topic)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.InDelta(t, 0.001, cfg.Catalog.FilterFPR, 1e-9)
	assert.Equal(t, 15*time.Second, cfg.Graceful.ShutdownTimeout)
	assert.Empty(t, cfg.DatabaseURL)
}

func TestLoadConfig_Env(t *testing.T) {
	clearPlatformEnv(t)
	t.Setenv("JUSTCOFFEE_STORE", "memory")
	t.Setenv("JUSTCOFFEE_REDIS_NAMESPACE", "ORDERS_TEST")

	cfg, err := loadConfig(testLoaderConfig())
	require.NoError(t, err)

	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, "ORDERS_TEST", cfg.Redis.Namespace)
}

func TestLoadConfig_PlatformDefaults(t *testing.T) {
	clearPlatformEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "postgres://localhost/coffee")
	t.Setenv("REDIS_URL", "redis://cache:6379/1")

	cfg, err := loadConfig(testLoaderConfig())
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.Addr)
	assert.Equal(t, "postgres://localhost/coffee", cfg.DatabaseURL)
	assert.Equal(t, "redis://cache:6379/1", cfg.Redis.URL)
}

func TestLoadConfig_YAML(t *testing.T) {
	clearPlatformEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
addr: 127.0.0.1:8181
store: memory
kafka:
  topic: orders-audit
`), 0o600))

	cfg, err := loadConfig(testLoaderConfig(path))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8181", cfg.Addr)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, "orders-audit", cfg.Kafka.Topic)
}

func TestLoadConfig_Invalid(t *testing.T) {
	clearPlatformEnv(t)

	t.Setenv("JUSTCOFFEE_STORE", "etcd")
	_, err := loadConfig(testLoaderConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store")

	cfg := &Config{Store: StoreMemory, Catalog: CatalogConfig{FilterFPR: 1.5}}
	require.Error(t, cfg.validate())
	cfg.Catalog.FilterFPR = 0.01
	require.NoError(t, cfg.validate())
}
