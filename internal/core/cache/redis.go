package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// DefaultLoadTimeout bounds a shared load once it is detached from the
// caller that started it.
const DefaultLoadTimeout = 5 * time.Second

type Cache struct {
	RDB         *redis.Client
	LoadTimeout time.Duration
	sf          singleflight.Group
}

func New(addr, pass string, db int) *Cache {
	return NewFromClient(redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}))
}

func NewFromClient(rdb *redis.Client) *Cache {
	return &Cache{RDB: rdb, LoadTimeout: DefaultLoadTimeout}
}

func (c *Cache) Ping(ctx context.Context) error { return c.RDB.Ping(ctx).Err() }

func (c *Cache) Close() error { return c.RDB.Close() }

// GetOrLoad reads key, falling back to load on a miss or a redis error.
// Concurrent misses on the same key share one load. The load keeps the
// values of the first caller's ctx but not its cancellation, so one caller
// giving up does not fail the others; each caller still stops waiting when
// its own ctx ends.
func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	if b, err := c.RDB.Get(ctx, key).Bytes(); err == nil {
		return b, nil
	}
	ch := c.sf.DoChan(key, func() (any, error) {
		timeout := c.LoadTimeout
		if timeout <= 0 {
			timeout = DefaultLoadTimeout
		}
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		b, err := load(lctx)
		if err != nil {
			return nil, err
		}
		_ = c.RDB.Set(lctx, key, b, ttl).Err()
		return b, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Generation returns the current value of a counter key; 0 when unset.
func (c *Cache) Generation(ctx context.Context, key string) (int64, error) {
	n, err := c.RDB.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// Bump increments a counter key, orphaning every entry keyed on the old value.
func (c *Cache) Bump(ctx context.Context, key string) (int64, error) {
	return c.RDB.Incr(ctx, key).Result()
}
