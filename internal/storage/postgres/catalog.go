package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/justcoffee/internal/domain/catalog"
)

const (
	getCoffeeSQL    = `SELECT id, type, price FROM coffees WHERE id = $1`
	listCoffeesSQL  = `SELECT id, type, price FROM coffees ORDER BY id`
	upsertCoffeeSQL = `INSERT INTO coffees (id, type, price) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET type = EXCLUDED.type, price = EXCLUDED.price`

	getToppingSQL    = `SELECT id, type, price FROM toppings WHERE id = $1`
	listToppingsSQL  = `SELECT id, type, price FROM toppings ORDER BY id`
	upsertToppingSQL = `INSERT INTO toppings (id, type, price) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET type = EXCLUDED.type, price = EXCLUDED.price`
)

var (
	_ catalog.CoffeeRepository  = (*CatalogRepository)(nil)
	_ catalog.ToppingRepository = (*CatalogRepository)(nil)
)

// CatalogRepository implements the catalog lookups backed by PostgreSQL.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository returns a CatalogRepository that uses the given pool.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// FindCoffee returns a single coffee by id.
func (r *CatalogRepository) FindCoffee(ctx context.Context, id int64) (*catalog.Coffee, error) {
	rows, err := r.pool.Query(ctx, getCoffeeSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get coffee %d", id)
	}
	c, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByPos[catalog.Coffee])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get coffee %d", id)
	}
	return &c, nil
}

// ListCoffees returns all coffees ordered by id.
func (r *CatalogRepository) ListCoffees(ctx context.Context) ([]catalog.Coffee, error) {
	rows, err := r.pool.Query(ctx, listCoffeesSQL)
	if err != nil {
		return nil, errors.Wrap(err, "list coffees")
	}
	items, err := pgx.CollectRows(rows, pgx.RowToStructByPos[catalog.Coffee])
	if err != nil {
		return nil, errors.Wrap(err, "list coffees")
	}
	return items, nil
}

// FindTopping returns a single topping by id.
func (r *CatalogRepository) FindTopping(ctx context.Context, id int64) (*catalog.Topping, error) {
	rows, err := r.pool.Query(ctx, getToppingSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get topping %d", id)
	}
	t, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByPos[catalog.Topping])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get topping %d", id)
	}
	return &t, nil
}

// ListToppings returns all toppings ordered by id.
func (r *CatalogRepository) ListToppings(ctx context.Context) ([]catalog.Topping, error) {
	rows, err := r.pool.Query(ctx, listToppingsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "list toppings")
	}
	items, err := pgx.CollectRows(rows, pgx.RowToStructByPos[catalog.Topping])
	if err != nil {
		return nil, errors.Wrap(err, "list toppings")
	}
	return items, nil
}

// UpsertCoffees writes the coffees in one batch, replacing existing rows.
func (r *CatalogRepository) UpsertCoffees(ctx context.Context, coffees []catalog.Coffee) error {
	b := &pgx.Batch{}
	for _, c := range coffees {
		b.Queue(upsertCoffeeSQL, c.ID, c.Type, c.Price)
	}
	if err := r.pool.SendBatch(ctx, b).Close(); err != nil {
		return errors.Wrap(err, "upsert coffees")
	}
	return nil
}

// UpsertToppings writes the toppings in one batch, replacing existing rows.
func (r *CatalogRepository) UpsertToppings(ctx context.Context, toppings []catalog.Topping) error {
	b := &pgx.Batch{}
	for _, t := range toppings {
		b.Queue(upsertToppingSQL, t.ID, t.Type, t.Price)
	}
	if err := r.pool.SendBatch(ctx, b).Close(); err != nil {
		return errors.Wrap(err, "upsert toppings")
	}
	return nil
}
