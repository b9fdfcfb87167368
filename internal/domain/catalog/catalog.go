package catalog

import (
	"context"
	"encoding/json"
	"io"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested coffee or topping does not exist.
var ErrNotFound = errors.New("catalog item not found")

// Coffee is a base drink from the menu.
type Coffee struct {
	ID    int64           `json:"id"`
	Type  string          `json:"type"`
	Price decimal.Decimal `json:"price"`
}

// Topping is an add-on that can be combined with any coffee.
type Topping struct {
	ID    int64           `json:"id"`
	Type  string          `json:"type"`
	Price decimal.Decimal `json:"price"`
}

// CoffeeRepository resolves coffees by id.
type CoffeeRepository interface {
	FindCoffee(ctx context.Context, id int64) (*Coffee, error)
	ListCoffees(ctx context.Context) ([]Coffee, error)
}

// ToppingRepository resolves toppings by id.
type ToppingRepository interface {
	FindTopping(ctx context.Context, id int64) (*Topping, error)
	ListToppings(ctx context.Context) ([]Topping, error)
}

// Menu is the seed document describing the whole catalog.
type Menu struct {
	Coffees  []Coffee  `json:"coffees"`
	Toppings []Topping `json:"toppings"`
}

// DecodeMenu reads a JSON menu document.
func DecodeMenu(r io.Reader) (*Menu, error) {
	var m Menu
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, errors.Wrap(err, "decode menu")
	}
	for _, c := range m.Coffees {
		if c.Type == "" {
			return nil, errors.Errorf("coffee %d: empty type", c.ID)
		}
	}
	for _, t := range m.Toppings {
		if t.Type == "" {
			return nil, errors.Errorf("topping %d: empty type", t.ID)
		}
	}
	return &m, nil
}
