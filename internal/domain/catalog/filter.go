package catalog

import (
	"context"
	"encoding/binary"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
)

var (
	_ CoffeeRepository  = (*Filter)(nil)
	_ ToppingRepository = (*Filter)(nil)
)

// Filter wraps catalog repositories with bloom filters built from the ids
// present at construction time. Lookups of ids the filter has never seen
// return ErrNotFound without reaching the underlying repository. False
// positives fall through to the repository, so results stay exact.
//
// The catalog is read-only for this service; call NewFilter again after
// reseeding.
type Filter struct {
	coffees  CoffeeRepository
	toppings ToppingRepository

	knownCoffees  *bloom.BloomFilter
	knownToppings *bloom.BloomFilter
}

// NewFilter lists both catalogs once and indexes their ids with the given
// false positive rate.
func NewFilter(ctx context.Context, coffees CoffeeRepository, toppings ToppingRepository, fpr float64) (*Filter, error) {
	cs, err := coffees.ListCoffees(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list coffees")
	}
	ts, err := toppings.ListToppings(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list toppings")
	}

	f := &Filter{
		coffees:       coffees,
		toppings:      toppings,
		knownCoffees:  bloom.NewWithEstimates(uint(max(len(cs), minCapacity)), fpr),
		knownToppings: bloom.NewWithEstimates(uint(max(len(ts), minCapacity)), fpr),
	}
	for _, c := range cs {
		f.knownCoffees.Add(idKey(c.ID))
	}
	for _, t := range ts {
		f.knownToppings.Add(idKey(t.ID))
	}
	return f, nil
}

// FindCoffee implements CoffeeRepository.
func (f *Filter) FindCoffee(ctx context.Context, id int64) (*Coffee, error) {
	if !f.knownCoffees.Test(idKey(id)) {
		return nil, ErrNotFound
	}
	return f.coffees.FindCoffee(ctx, id)
}

// ListCoffees implements CoffeeRepository.
func (f *Filter) ListCoffees(ctx context.Context) ([]Coffee, error) {
	return f.coffees.ListCoffees(ctx)
}

// FindTopping implements ToppingRepository.
func (f *Filter) FindTopping(ctx context.Context, id int64) (*Topping, error) {
	if !f.knownToppings.Test(idKey(id)) {
		return nil, ErrNotFound
	}
	return f.toppings.FindTopping(ctx, id)
}

// ListToppings implements ToppingRepository.
func (f *Filter) ListToppings(ctx context.Context) ([]Topping, error) {
	return f.toppings.ListToppings(ctx)
}

// minCapacity keeps tiny catalogs from producing undersized filters.
const minCapacity = 1024

func idKey(id int64) []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(id))
}
