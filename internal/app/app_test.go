package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

type noopTelemetry struct{}

func (noopTelemetry) TracerProvider() trace.TracerProvider { return tracenoop.NewTracerProvider() }
func (noopTelemetry) MeterProvider() metric.MeterProvider  { return metricnoop.NewMeterProvider() }

func testConfig() *Config {
	return &Config{
		Store:   StoreMemory,
		Redis:   RedisConfig{Namespace: "COFFEE_ORDER"},
		Catalog: CatalogConfig{FilterFPR: 0.001},
	}
}

func serveBuilt(t *testing.T, cfg *Config) *httptest.Server {
	t.Helper()
	svcs, err := build(context.Background(), zap.NewNop(), noopTelemetry{}, cfg)
	require.NoError(t, err)
	t.Cleanup(svcs.close)
	svcs.health.SetReady(true)

	srv := httptest.NewServer(svcs.handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestBuild_MemoryStoreWithEmbeddedMenu(t *testing.T) {
	srv := serveBuilt(t, testConfig())

	resp, err := http.Post(srv.URL+"/api/orders", "application/json",
		strings.NewReader(`{"coffeeId":1,"toppingIds":[10,11]}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp, err = http.Get(srv.URL + "/api/orders")
	require.NoError(t, err)
	defer resp.Body.Close()

	var orders []struct {
		Description string `json:"description"`
		Price       string `json:"price"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&orders))
	require.Len(t, orders, 1)
	assert.Equal(t, "Latte with Vanilla, Caramel", orders[0].Description)
	assert.Equal(t, "4.00", orders[0].Price)
}

func TestBuild_UnknownCatalogIDs(t *testing.T) {
	srv := serveBuilt(t, testConfig())

	resp, err := http.Post(srv.URL+"/api/orders", "application/json",
		strings.NewReader(`{"coffeeId":4242}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestBuild_HealthEndpoints(t *testing.T) {
	srv := serveBuilt(t, testConfig())

	for _, path := range []string{"/livez", "/readyz"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestBuild_RedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.Store = StoreRedis
	cfg.Redis.Addr = mr.Addr()

	srv := serveBuilt(t, cfg)

	resp, err := http.Post(srv.URL+"/api/orders", "application/json",
		strings.NewReader(`{"coffeeId":1}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	assert.NotEmpty(t, mr.HGet("COFFEE_ORDER", "1"))
	seq, err := mr.Get("COFFEE_ORDER:seq")
	require.NoError(t, err)
	assert.Equal(t, "1", seq)
}

func TestBuild_RedisUnavailable(t *testing.T) {
	cfg := testConfig()
	cfg.Store = StoreRedis
	cfg.Redis.Addr = "127.0.0.1:1"

	_, err := build(context.Background(), zap.NewNop(), noopTelemetry{}, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect redis")
}
