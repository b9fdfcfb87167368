// Command seed-db loads a coffee and topping menu into PostgreSQL.
//
// The menu is a JSON document ({"coffees": [...], "toppings": [...]}),
// optionally gzip-compressed. Without --menu-file the embedded default menu
// is used.
package main

import (
	"bytes"
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/justcoffee/db"
	"github.com/xenking/justcoffee/internal/domain/catalog"
	"github.com/xenking/justcoffee/internal/storage/postgres"
)

func main() {
	var (
		databaseURL string
		menuFile    string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&menuFile, "menu-file", "", "path to a menu JSON file, .gz accepted (default: embedded menu)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, menuFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, menuFile string) error {
	menu, err := readMenu(menuFile)
	if err != nil {
		return errors.Wrap(err, "read menu")
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	return seed(ctx, postgres.NewCatalogRepository(pool), menu)
}

type catalogWriter interface {
	UpsertCoffees(ctx context.Context, coffees []catalog.Coffee) error
	UpsertToppings(ctx context.Context, toppings []catalog.Topping) error
}

// seed writes coffees and toppings concurrently; the tables are independent.
func seed(ctx context.Context, w catalogWriter, menu *catalog.Menu) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("upserting coffees", slog.Int("count", len(menu.Coffees)))
		if err := w.UpsertCoffees(ctx, menu.Coffees); err != nil {
			return errors.Wrap(err, "seed coffees")
		}
		return nil
	})
	g.Go(func() error {
		slog.Info("upserting toppings", slog.Int("count", len(menu.Toppings)))
		if err := w.UpsertToppings(ctx, menu.Toppings); err != nil {
			return errors.Wrap(err, "seed toppings")
		}
		return nil
	})
	return g.Wait()
}

// readMenu decodes the menu at path, transparently gunzipping .gz files. An
// empty path selects the embedded menu.
func readMenu(path string) (*catalog.Menu, error) {
	if path == "" {
		slog.Info("using embedded menu")
		return catalog.DecodeMenu(bytes.NewReader(db.Catalog))
	}

	slog.Info("reading menu file", slog.String("path", path))

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}
	return catalog.DecodeMenu(r)
}
