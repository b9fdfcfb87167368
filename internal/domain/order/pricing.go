package order

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/justcoffee/internal/domain/catalog"
)

// CoffeeNotFoundError indicates the order references a coffee missing from
// the catalog.
type CoffeeNotFoundError struct {
	CoffeeID int64
}

func (e *CoffeeNotFoundError) Error() string {
	return fmt.Sprintf("coffee %d not found", e.CoffeeID)
}

func (e *CoffeeNotFoundError) Unwrap() error { return catalog.ErrNotFound }

// ToppingNotFoundError indicates the order references a topping missing from
// the catalog.
type ToppingNotFoundError struct {
	ToppingID int64
}

func (e *ToppingNotFoundError) Error() string {
	return fmt.Sprintf("topping %d not found", e.ToppingID)
}

func (e *ToppingNotFoundError) Unwrap() error { return catalog.ErrNotFound }

// pricePrecision is the number of decimal places kept on order prices.
const pricePrecision = 2

// selection is a coffee with its toppings resolved from the catalog, in the
// order the caller listed them.
type selection struct {
	coffee   *catalog.Coffee
	toppings []*catalog.Topping
}

// resolve looks every referenced id up exactly once. Any miss fails the whole
// selection.
func (s *Service) resolve(ctx context.Context, coffeeID int64, toppingIDs []int64) (*selection, error) {
	c, err := s.coffees.FindCoffee(ctx, coffeeID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, &CoffeeNotFoundError{CoffeeID: coffeeID}
		}
		return nil, errors.Wrapf(err, "get coffee %d", coffeeID)
	}

	toppings := make([]*catalog.Topping, len(toppingIDs))
	for i, id := range toppingIDs {
		t, err := s.toppings.FindTopping(ctx, id)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				return nil, &ToppingNotFoundError{ToppingID: id}
			}
			return nil, errors.Wrapf(err, "get topping %d", id)
		}
		toppings[i] = t
	}

	return &selection{coffee: c, toppings: toppings}, nil
}

func (sel *selection) description() string {
	if len(sel.toppings) == 0 {
		return sel.coffee.Type
	}
	types := make([]string, len(sel.toppings))
	for i, t := range sel.toppings {
		types[i] = t.Type
	}
	return sel.coffee.Type + " with " + strings.Join(types, ", ")
}

// price sums the coffee and topping prices and rounds half away from zero to
// two places.
func (sel *selection) price() decimal.Decimal {
	total := sel.coffee.Price
	for _, t := range sel.toppings {
		total = total.Add(t.Price)
	}
	return total.Round(pricePrecision)
}

// BuildDescription returns the human-readable description of a coffee with
// toppings, e.g. "Latte with Vanilla, Caramel". Toppings keep the given order.
func (s *Service) BuildDescription(ctx context.Context, coffeeID int64, toppingIDs []int64) (string, error) {
	sel, err := s.resolve(ctx, coffeeID, toppingIDs)
	if err != nil {
		return "", err
	}
	return sel.description(), nil
}

// CalculatePrice returns the coffee price plus all topping prices, rounded to
// two decimal places.
func (s *Service) CalculatePrice(ctx context.Context, coffeeID int64, toppingIDs []int64) (decimal.Decimal, error) {
	sel, err := s.resolve(ctx, coffeeID, toppingIDs)
	if err != nil {
		return decimal.Zero, err
	}
	return sel.price(), nil
}
