package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// CoffeeOrder is a single drink order: one coffee plus any number of toppings.
//
// Description and Price are derived from CoffeeID and ToppingIDs when the
// order is created. Update stores the record as given and never re-derives
// them, so a caller that edits CoffeeID or ToppingIDs before updating is
// responsible for keeping the derived fields consistent.
type CoffeeOrder struct {
	ID          int64           `json:"id"`
	CoffeeID    int64           `json:"coffeeId"`
	ToppingIDs  []int64         `json:"toppingIds"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
}

// Repository persists coffee orders keyed by order id under a single
// namespace.
type Repository interface {
	// List returns every stored order in no particular order.
	List(ctx context.Context) ([]CoffeeOrder, error)
	// Get returns the order with the given id. A missing order is reported
	// with ok == false and a nil error.
	Get(ctx context.Context, id int64) (o *CoffeeOrder, ok bool, err error)
	// GetMany returns orders aligned with ids; missing entries are nil.
	GetMany(ctx context.Context, ids []int64) ([]*CoffeeOrder, error)
	// Put inserts or replaces the order stored under o.ID in one step.
	Put(ctx context.Context, o *CoffeeOrder) error
	// Delete removes the order if present.
	Delete(ctx context.Context, id int64) error
	// DeleteAll removes every order in the namespace.
	DeleteAll(ctx context.Context) error
}

// IDGenerator hands out order ids. Ids must never repeat for the lifetime of
// the stored data.
type IDGenerator interface {
	NextID(ctx context.Context) (int64, error)
}

// EventType names an order lifecycle event.
type EventType string

const (
	EventOrderCreated  EventType = "OrderCreated"
	EventOrderUpdated  EventType = "OrderUpdated"
	EventOrderDeleted  EventType = "OrderDeleted"
	EventOrdersCleared EventType = "OrdersCleared"
)

// Event describes a change applied to the order store.
type Event struct {
	Type       EventType
	OrderID    int64
	Order      *CoffeeOrder
	OccurredAt time.Time
}

// Publisher delivers order events to interested parties.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}
