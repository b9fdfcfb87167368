package redis

import (
	"context"

	"github.com/go-faster/errors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/xenking/justcoffee/internal/domain/order"
)

var _ order.IDGenerator = (*Sequence)(nil)

// Sequence hands out order ids with INCR on "<namespace>:seq". The counter is
// not touched by DeleteAll, so ids stay unique for as long as the key lives.
type Sequence struct {
	rdb goredis.UniversalClient
	key string
}

// NewSequence returns the id sequence paired with the given namespace.
func NewSequence(rdb goredis.UniversalClient, namespace string) *Sequence {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &Sequence{rdb: rdb, key: seqKey(namespace)}
}

// NextID implements order.IDGenerator.
func (s *Sequence) NextID(ctx context.Context) (int64, error) {
	id, err := s.rdb.Incr(ctx, s.key).Result()
	if err != nil {
		return 0, errors.Wrap(err, "incr")
	}
	return id, nil
}
