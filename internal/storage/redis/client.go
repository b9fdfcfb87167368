// Package redis stores coffee orders in a single Redis hash.
//
// Every order lives under one namespace key (COFFEE_ORDER by default): the
// hash field is the decimal order id and the value is the whole record
// encoded as JSON. Order ids come from INCR on "<namespace>:seq".
package redis

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	goredis "github.com/redis/go-redis/v9"
)

// DefaultNamespace is the hash key holding all orders.
const DefaultNamespace = "COFFEE_ORDER"

// Options configures the Redis client.
type Options struct {
	// URL is a redis:// connection URL. It takes precedence over Addr.
	URL      string
	Addr     string
	Password string
	DB       int
	Timeout  time.Duration
}

// NewClient connects to Redis and verifies the connection with PING.
func NewClient(ctx context.Context, opts Options) (*goredis.Client, error) {
	var ro *goredis.Options
	if opts.URL != "" {
		parsed, err := goredis.ParseURL(opts.URL)
		if err != nil {
			return nil, errors.Wrap(err, "parse redis url")
		}
		ro = parsed
	} else {
		ro = &goredis.Options{
			Addr:     opts.Addr,
			Password: opts.Password,
			DB:       opts.DB,
		}
	}
	if opts.Timeout > 0 {
		ro.DialTimeout = opts.Timeout
		ro.ReadTimeout = opts.Timeout
		ro.WriteTimeout = opts.Timeout
	}

	rdb := goredis.NewClient(ro)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrapf(err, "ping redis %s", ro.Addr)
	}
	return rdb, nil
}

// PingCheck returns a readiness check for the given client.
func PingCheck(rdb goredis.UniversalClient) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}
}

func seqKey(namespace string) string {
	return namespace + ":seq"
}
