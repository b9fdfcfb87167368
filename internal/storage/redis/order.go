package redis

import (
	"context"
	"strconv"

	"github.com/go-faster/errors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/xenking/justcoffee/internal/domain/order"
)

var _ order.Repository = (*OrderStore)(nil)

// OrderStore implements order.Repository on one Redis hash.
type OrderStore struct {
	rdb goredis.UniversalClient
	key string
}

// NewOrderStore returns an OrderStore keeping orders under namespace. An empty
// namespace selects DefaultNamespace.
func NewOrderStore(rdb goredis.UniversalClient, namespace string) *OrderStore {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &OrderStore{rdb: rdb, key: namespace}
}

// List returns every order in the hash.
func (s *OrderStore) List(ctx context.Context) ([]order.CoffeeOrder, error) {
	fields, err := s.rdb.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, errors.Wrap(err, "hgetall")
	}
	orders := make([]order.CoffeeOrder, 0, len(fields))
	for field, value := range fields {
		o, err := decodeOrder([]byte(value))
		if err != nil {
			return nil, errors.Wrapf(err, "field %s", field)
		}
		orders = append(orders, *o)
	}
	return orders, nil
}

// Get returns the order stored under id.
func (s *OrderStore) Get(ctx context.Context, id int64) (*order.CoffeeOrder, bool, error) {
	value, err := s.rdb.HGet(ctx, s.key, field(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "hget")
	}
	o, err := decodeOrder(value)
	if err != nil {
		return nil, false, err
	}
	return o, true, nil
}

// GetMany fetches all ids with a single HMGET.
func (s *OrderStore) GetMany(ctx context.Context, ids []int64) ([]*order.CoffeeOrder, error) {
	if len(ids) == 0 {
		return []*order.CoffeeOrder{}, nil
	}
	fields := make([]string, len(ids))
	for i, id := range ids {
		fields[i] = field(id)
	}
	values, err := s.rdb.HMGet(ctx, s.key, fields...).Result()
	if err != nil {
		return nil, errors.Wrap(err, "hmget")
	}

	orders := make([]*order.CoffeeOrder, len(ids))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		o, err := decodeOrder([]byte(raw))
		if err != nil {
			return nil, errors.Wrapf(err, "field %s", fields[i])
		}
		orders[i] = o
	}
	return orders, nil
}

// Put writes the record with one HSET, replacing any previous value.
func (s *OrderStore) Put(ctx context.Context, o *order.CoffeeOrder) error {
	if err := s.rdb.HSet(ctx, s.key, field(o.ID), encodeOrder(o)).Err(); err != nil {
		return errors.Wrap(err, "hset")
	}
	return nil
}

// Delete removes the order field. Missing fields are ignored.
func (s *OrderStore) Delete(ctx context.Context, id int64) error {
	if err := s.rdb.HDel(ctx, s.key, field(id)).Err(); err != nil {
		return errors.Wrap(err, "hdel")
	}
	return nil
}

// DeleteAll lists the hash fields and removes them with one HDEL. Writes that
// land between the two commands survive.
func (s *OrderStore) DeleteAll(ctx context.Context) error {
	fields, err := s.rdb.HKeys(ctx, s.key).Result()
	if err != nil {
		return errors.Wrap(err, "hkeys")
	}
	if len(fields) == 0 {
		return nil
	}
	if err := s.rdb.HDel(ctx, s.key, fields...).Err(); err != nil {
		return errors.Wrap(err, "hdel")
	}
	return nil
}

func field(id int64) string {
	return strconv.FormatInt(id, 10)
}
