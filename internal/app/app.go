package app

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"slices"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/justcoffee/db"
	"github.com/xenking/justcoffee/internal/domain/catalog"
	"github.com/xenking/justcoffee/internal/domain/order"
	"github.com/xenking/justcoffee/internal/events"
	"github.com/xenking/justcoffee/internal/handler"
	"github.com/xenking/justcoffee/internal/storage/memory"
	"github.com/xenking/justcoffee/internal/storage/postgres"
	redisstore "github.com/xenking/justcoffee/internal/storage/redis"
	"github.com/xenking/justcoffee/pkg/health"
	"github.com/xenking/justcoffee/pkg/httpmiddleware"
)

const serviceName = "justcoffee"

// services is the wired application without its listener.
type services struct {
	handler http.Handler
	health  *health.Health
	closers []func()
}

// close releases resources in reverse order of acquisition.
func (s *services) close() {
	for _, c := range slices.Backward(s.closers) {
		c()
	}
}

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("store", cfg.Store),
		zap.Bool("postgres_catalog", cfg.DatabaseURL != ""),
		zap.Int("kafka_brokers", len(cfg.Kafka.Brokers)),
	)

	svcs, err := build(ctx, lg, m, cfg)
	if err != nil {
		return err
	}
	defer svcs.close()

	svcs.health.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	svcs.health.Start(ctx, 10*time.Second)
	svcs.health.SetReady(true)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler:           svcs.handler,
		BaseContext:       func(net.Listener) context.Context { return zctx.Base(context.Background(), lg) },
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		svcs.health.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		svcs.health.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

// build connects the stores, the catalog and the event publisher and returns
// the fully wrapped HTTP handler. On error everything opened so far is closed.
func build(ctx context.Context, lg *zap.Logger, tel httpmiddleware.Telemetry, cfg *Config) (_ *services, rerr error) {
	s := &services{health: health.New()}
	defer func() {
		if rerr != nil {
			s.close()
		}
	}()

	coffees, toppings, err := s.openCatalog(ctx, cfg)
	if err != nil {
		return nil, err
	}
	filtered, err := catalog.NewFilter(ctx, coffees, toppings, cfg.Catalog.FilterFPR)
	if err != nil {
		return nil, errors.Wrap(err, "build catalog filter")
	}

	orders, ids, err := s.openOrderStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	opts := []order.Option{
		order.WithTracerProvider(tel.TracerProvider()),
		order.WithMeterProvider(tel.MeterProvider()),
	}
	if len(cfg.Kafka.Brokers) > 0 {
		pub, err := events.NewPublisher(events.Config{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.Topic,
			WriteTimeout: cfg.Kafka.WriteTimeout,
		})
		if err != nil {
			return nil, errors.Wrap(err, "create event publisher")
		}
		s.closers = append(s.closers, func() {
			if err := pub.Close(); err != nil {
				lg.Warn("Close event publisher", zap.Error(err))
			}
		})
		opts = append(opts, order.WithPublisher(pub))
	}

	orderService := order.NewService(filtered, filtered, orders, ids, opts...)
	h := handler.NewHandler(orderService, filtered, filtered)

	router := h.Router()
	router.Get("/livez", s.health.LiveEndpoint)
	router.Get("/readyz", s.health.ReadyEndpoint)

	s.handler = httpmiddleware.Wrap(router,
		httpmiddleware.Recovery(),
		httpmiddleware.RequestID(),
		httpmiddleware.Routes(),
		httpmiddleware.InjectLogger(lg),
		httpmiddleware.Instrument(serviceName, tel),
		httpmiddleware.LogRequests(),
	)
	return s, nil
}

// openCatalog serves the catalog from PostgreSQL when a database URL is set
// and from the embedded menu otherwise.
func (s *services) openCatalog(ctx context.Context, cfg *Config) (catalog.CoffeeRepository, catalog.ToppingRepository, error) {
	if cfg.DatabaseURL == "" {
		menu, err := catalog.DecodeMenu(bytes.NewReader(db.Catalog))
		if err != nil {
			return nil, nil, errors.Wrap(err, "decode embedded menu")
		}
		c := memory.NewCatalog(menu)
		return c, c, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, errors.Wrap(err, "create db pool")
	}
	s.closers = append(s.closers, pool.Close)

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return nil, nil, errors.Wrap(err, "run migrations")
	}
	s.health.AddReadinessCheck("postgres", 5*time.Second, pool.Ping)

	repo := postgres.NewCatalogRepository(pool)
	return repo, repo, nil
}

func (s *services) openOrderStore(ctx context.Context, cfg *Config) (order.Repository, order.IDGenerator, error) {
	if cfg.Store == StoreMemory {
		return memory.NewOrderStore(), &memory.Sequence{}, nil
	}

	rdb, err := redisstore.NewClient(ctx, redisstore.Options{
		URL:      cfg.Redis.URL,
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Timeout:  cfg.Redis.Timeout,
	})
	if err != nil {
		return nil, nil, errors.Wrap(err, "connect redis")
	}
	s.closers = append(s.closers, func() { _ = rdb.Close() })
	s.health.AddReadinessCheck("redis", 5*time.Second, redisstore.PingCheck(rdb))

	return redisstore.NewOrderStore(rdb, cfg.Redis.Namespace), redisstore.NewSequence(rdb, cfg.Redis.Namespace), nil
}
