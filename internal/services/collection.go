package services

import (
	"context"
	"slices"
	"time"

	"mywallet/internal/cache"
	"mywallet/internal/gateway"
)

const allKey = "all"

// collection is a read-through cache in front of one gateway resource. The
// whole collection is the unit of caching: any write drops it and the next
// read fetches everything again.
type collection[R any] struct {
	kind  string
	res   gateway.Resource[R]
	cache cache.Cache[[]R]
}

func newCollection[R any](kind string, res gateway.Resource[R], ttl time.Duration, mgr *cache.Manager) *collection[R] {
	c := &collection[R]{kind: kind, res: res}
	if ttl > 0 {
		lru := cache.NewLRUCache[[]R](1, ttl)
		c.cache = lru
		if mgr != nil {
			mgr.Register(kind, lru)
		}
	}
	return c
}

func (c *collection[R]) all(ctx context.Context) ([]R, error) {
	if c.cache != nil {
		if rows, ok := c.cache.Get(allKey); ok {
			return slices.Clone(rows), nil
		}
	}
	rows, err := c.res.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if c.cache != nil {
		c.cache.Set(allKey, slices.Clone(rows))
	}
	return rows, nil
}

func (c *collection[R]) invalidate() {
	if c.cache != nil {
		c.cache.Delete(allKey)
	}
}

// write runs one gateway write and drops the cached collection when it
// succeeded.
func (c *collection[R]) write(ctx context.Context, op func(context.Context) (gateway.ActionResult, error)) (gateway.ActionResult, error) {
	res, err := op(ctx)
	if err != nil {
		return res, err
	}
	if !res.Success {
		return res, gateway.Rejected(c.kind+".write", res)
	}
	c.invalidate()
	return res, nil
}
