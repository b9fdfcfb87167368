package memory

import (
	"cmp"
	"context"
	"maps"
	"slices"

	"github.com/xenking/justcoffee/internal/domain/catalog"
)

var (
	_ catalog.CoffeeRepository  = (*Catalog)(nil)
	_ catalog.ToppingRepository = (*Catalog)(nil)
)

// Catalog serves a fixed menu. It is read-only after construction.
type Catalog struct {
	coffees  map[int64]catalog.Coffee
	toppings map[int64]catalog.Topping
}

// NewCatalog indexes the menu by id. Later entries win on duplicate ids.
func NewCatalog(m *catalog.Menu) *Catalog {
	c := &Catalog{
		coffees:  make(map[int64]catalog.Coffee, len(m.Coffees)),
		toppings: make(map[int64]catalog.Topping, len(m.Toppings)),
	}
	for _, cf := range m.Coffees {
		c.coffees[cf.ID] = cf
	}
	for _, t := range m.Toppings {
		c.toppings[t.ID] = t
	}
	return c
}

// FindCoffee implements catalog.CoffeeRepository.
func (c *Catalog) FindCoffee(_ context.Context, id int64) (*catalog.Coffee, error) {
	cf, ok := c.coffees[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return &cf, nil
}

// ListCoffees returns the coffees ordered by id.
func (c *Catalog) ListCoffees(_ context.Context) ([]catalog.Coffee, error) {
	return slices.SortedFunc(maps.Values(c.coffees), func(a, b catalog.Coffee) int {
		return cmp.Compare(a.ID, b.ID)
	}), nil
}

// FindTopping implements catalog.ToppingRepository.
func (c *Catalog) FindTopping(_ context.Context, id int64) (*catalog.Topping, error) {
	t, ok := c.toppings[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return &t, nil
}

// ListToppings returns the toppings ordered by id.
func (c *Catalog) ListToppings(_ context.Context) ([]catalog.Topping, error) {
	return slices.SortedFunc(maps.Values(c.toppings), func(a, b catalog.Topping) int {
		return cmp.Compare(a.ID, b.ID)
	}), nil
}
