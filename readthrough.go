package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/infodht/nightapi/types"
)

// ErrTypeMismatch is returned by GetOrLoad when a concurrent load for the same
// key produced a value of a different type.
var ErrTypeMismatch = errors.New("cached value has unexpected type")

// ErrLoaderPanic is returned when a read-through loader panics.
var ErrLoaderPanic = errors.New("cache loader panicked")

// LoadFunc queries the authoritative store for one key.
type LoadFunc func(ctx context.Context) (any, error)

/*
Fetch implements the read-through protocol:

 1. Get the key. A hit is returned without touching the authoritative store.
 2. On a miss, call load.
 3. Set the result with ttl, then return it.

Concurrent misses on the same key share one call to load. The shared load
runs with the first caller's values but not its cancellation, and each caller
stops waiting only when its own ctx is done. A load error is returned and
nothing is cached. A failure of the cache itself never surfaces here: it just
looks like a miss.
*/
func (c *Store) Fetch(ctx context.Context, key string, ttl time.Duration, load LoadFunc) (any, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	if load == nil {
		return nil, types.ErrNilLoader
	}
	return c.load(ctx, key, ttl, load)
}

// FetchWith is Fetch using a types.Loader.
func (c *Store) FetchWith(ctx context.Context, key string, ttl time.Duration, loader types.Loader) (any, error) {
	if loader == nil {
		return nil, types.ErrNilLoader
	}
	return c.Fetch(ctx, key, ttl, func(ctx context.Context) (any, error) {
		return loader.Load(ctx, key)
	})
}

// GetOrLoad is the typed form of Fetch. A cached value of another type is
// treated as a miss and replaced.
func GetOrLoad[T any](ctx context.Context, c *Store, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var zero T

	if v, ok := c.Get(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
		if v != nil {
			c.engine.Logger.Warn("cached value has unexpected type",
				zap.String("key", key),
				zap.String("type", fmt.Sprintf("%T", v)),
				zap.String("want", fmt.Sprintf("%T", zero)),
			)
			c.Del(key)
		}
	}
	if load == nil {
		return zero, types.ErrNilLoader
	}

	v, err := c.load(ctx, key, ttl, func(ctx context.Context) (any, error) {
		return load(ctx)
	})
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: key %q holds %T", ErrTypeMismatch, key, v)
	}
	return typed, nil
}

func (c *Store) load(ctx context.Context, key string, ttl time.Duration, load LoadFunc) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// The flight outlives any single caller.
	shared := context.WithoutCancel(ctx)
	ch := c.sf.DoChan(key, func() (v any, err error) {
		// A panicking loader fails every waiter instead of the process.
		defer func() {
			if r := recover(); r != nil {
				v, err = nil, fmt.Errorf("%w: %v", ErrLoaderPanic, r)
			}
		}()

		// A flight that finished between our miss and this call has already filled the key.
		if v, ok := c.get(key, false); ok {
			return v, nil
		}
		v, err = load(shared)
		if err != nil {
			return nil, err
		}
		c.Set(key, v, ttl)
		return v, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("load %q: %w", key, res.Err)
		}
		return res.Val, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
