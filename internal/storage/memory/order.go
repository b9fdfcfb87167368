// Package memory holds in-process implementations of the order store, the id
// sequence and the catalog. They back the memory store mode and tests.
package memory

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/xenking/justcoffee/internal/domain/order"
)

var (
	_ order.Repository  = (*OrderStore)(nil)
	_ order.IDGenerator = (*Sequence)(nil)
)

// OrderStore keeps orders in a map keyed by id. Records are copied on the way
// in and out so callers never share slices with the store.
type OrderStore struct {
	mu     sync.RWMutex
	orders map[int64]order.CoffeeOrder
}

// NewOrderStore returns an empty store.
func NewOrderStore() *OrderStore {
	return &OrderStore{orders: make(map[int64]order.CoffeeOrder)}
}

func (s *OrderStore) List(_ context.Context) ([]order.CoffeeOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]order.CoffeeOrder, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, clone(o))
	}
	return out, nil
}

func (s *OrderStore) Get(_ context.Context, id int64) (*order.CoffeeOrder, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, false, nil
	}
	c := clone(o)
	return &c, true, nil
}

func (s *OrderStore) GetMany(_ context.Context, ids []int64) ([]*order.CoffeeOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*order.CoffeeOrder, len(ids))
	for i, id := range ids {
		if o, ok := s.orders[id]; ok {
			c := clone(o)
			out[i] = &c
		}
	}
	return out, nil
}

func (s *OrderStore) Put(_ context.Context, o *order.CoffeeOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders[o.ID] = clone(*o)
	return nil
}

func (s *OrderStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.orders, id)
	return nil
}

func (s *OrderStore) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.orders)
	return nil
}

func clone(o order.CoffeeOrder) order.CoffeeOrder {
	o.ToppingIDs = slices.Clone(o.ToppingIDs)
	if o.ToppingIDs == nil {
		o.ToppingIDs = []int64{}
	}
	return o
}

// Sequence is an in-process order id counter starting at 1.
type Sequence struct {
	last atomic.Int64
}

// NextID implements order.IDGenerator.
func (s *Sequence) NextID(_ context.Context) (int64, error) {
	return s.last.Add(1), nil
}
