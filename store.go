package cache

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/infodht/nightapi/api"
	"github.com/infodht/nightapi/engine"
	"github.com/infodht/nightapi/eviction"
	"github.com/infodht/nightapi/expiration"
	"github.com/infodht/nightapi/pattern"
	"github.com/infodht/nightapi/shard"
	"github.com/infodht/nightapi/types"
)

const (
	// DefaultTTL applies when Set is called with ttl 0.
	DefaultTTL = expiration.DefaultTTL

	// NoExpiration stores an entry that never expires.
	NoExpiration = expiration.NoExpiration
)

var _ api.Cache = (*Store)(nil)

/*
Store is the process-wide cache. Build one at startup and hand it to every
consumer; there is no package-level instance.

This struct is the orchestrator that connects:
- shards (storage + locking)
- eviction (only when a capacity is configured)
- the engine (expiry, clock, metrics, logging)
- singleflight for read-through loads

Every public operation fails open: a fault inside a shard store is logged and
reported as a miss or a false return, never as a panic or error.
*/
type Store struct {
	// shards are the actual storage units. Each shard is an independent mini-cache.
	shards []*shard.Shard

	// engine contains the "rules" of the cache.
	engine *engine.CacheEngine

	// selector decides which shard a key should go to.
	selector shard.Selector

	// sf collapses concurrent read-through loads of the same key into one.
	sf singleflight.Group
}

// New builds a Store.
func New(opts ...Option) *Store {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	perShard := 0
	if cfg.capacity > 0 && cfg.policy != eviction.None {
		perShard = (cfg.capacity + cfg.shards - 1) / cfg.shards
	}

	s := make([]*shard.Shard, cfg.shards)
	for i := range s {
		var ev eviction.Policy
		if perShard > 0 {
			ev = eviction.NewEvictionPolicy(cfg.policy)
		}
		s[i] = shard.NewShard(cfg.newStore(), ev, perShard)
	}

	return &Store{
		shards: s,
		engine: engine.NewCacheEngine(
			&expiration.ExpireAfterWrite{TTL: cfg.defaultTTL},
			cfg.clock,
			cfg.metrics,
			cfg.logger,
		),
		selector: shard.HashSelector{},
	}
}

/*
Get returns the live value for key.

The boolean is false on a miss, on an expired entry (which is purged here) and
on any internal failure. A cached nil or empty value is a hit.
The value is returned as stored; callers must not mutate it.
*/
func (c *Store) Get(key string) (val any, ok bool) {
	return c.get(key, true)
}

// get is Get with hit/miss accounting optional. Expired entries are purged either way.
func (c *Store) get(key string, observe bool) (val any, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			c.engine.OnFailure("get", key, recovered(r))
			val, ok = nil, false
		}
	}()

	sh := c.selector.Select(key, c.shards)
	sh.Mu.Lock()
	defer sh.Mu.Unlock()

	ent, found, err := sh.Store.Get(key)
	if err != nil {
		c.engine.OnFailure("get", key, err)
		return nil, false
	}
	if !found {
		if observe {
			c.engine.OnMiss(key)
		}
		return nil, false
	}

	if c.engine.IsExpired(ent) {
		if err := c.removeLocked(sh, key); err != nil {
			c.engine.OnFailure("get", key, err)
			return nil, false
		}
		if observe {
			c.engine.OnExpire(key)
		}
		return nil, false
	}

	if sh.Eviction != nil {
		sh.Eviction.OnGet(key)
	}
	if observe {
		c.engine.OnHit(key)
	}
	return ent.Value, true
}

/*
Set stores value under key, replacing any previous entry.

ttl 0 uses the default TTL, NoExpiration keeps the entry until it is deleted.
Set returns false if the write failed; the failure is logged, never raised.
*/
func (c *Store) Set(key string, value any, ttl time.Duration) bool {
	return c.guard("set", key, func() error {
		sh := c.selector.Select(key, c.shards)
		sh.Mu.Lock()
		defer sh.Mu.Unlock()

		if err := c.makeRoomLocked(sh, key); err != nil {
			return err
		}

		ent := c.engine.NewEntry(key, value, ttl)
		if err := sh.Store.Put(key, ent); err != nil {
			return err
		}
		if sh.Eviction != nil {
			sh.Eviction.OnPut(key)
		}
		c.engine.OnSet(ent)
		return nil
	})
}

// Del removes key. Removing an absent key succeeds.
func (c *Store) Del(key string) bool {
	return c.guard("del", key, func() error {
		sh := c.selector.Select(key, c.shards)
		sh.Mu.Lock()
		defer sh.Mu.Unlock()

		_, found, err := sh.Store.Get(key)
		if err != nil {
			return err
		}
		if !found {
			c.engine.OnDelete(key, 0)
			return nil
		}
		if err := c.removeLocked(sh, key); err != nil {
			return err
		}
		c.engine.OnDelete(key, 1)
		return nil
	})
}

// DelPattern removes every key matching glob. See package pattern for the syntax.
func (c *Store) DelPattern(glob string) bool {
	_, ok := c.DelPatternCount(glob)
	return ok
}

/*
DelPatternCount is DelPattern that also reports how many entries were removed.

All shards are locked for the duration of the scan, so no Set can slip in
between matching a key and deleting it. A failing shard does not stop the
others from being cleaned; ok is false if any shard failed.
*/
func (c *Store) DelPatternCount(glob string) (removed int, ok bool) {
	p := pattern.Compile(glob)
	ok = c.guard("delPattern", glob, func() error {
		c.lockAll()
		defer c.unlockAll()

		var errs []error
		for _, sh := range c.shards {
			keys, err := sh.Store.Keys()
			if err != nil {
				errs = append(errs, err)
				continue
			}
			for _, k := range keys {
				if !p.Match(k) {
					continue
				}
				if err := c.removeLocked(sh, k); err != nil {
					errs = append(errs, err)
					continue
				}
				removed++
			}
		}
		c.engine.OnDeletePattern(glob, removed)
		return errors.Join(errs...)
	})
	return removed, ok
}

// Flush removes every entry.
func (c *Store) Flush() bool {
	return c.guard("flush", "", func() error {
		c.lockAll()
		defer c.unlockAll()

		n := 0
		var errs []error
		for _, sh := range c.shards {
			size := sh.Store.Size()
			if err := sh.Store.Clear(); err != nil {
				errs = append(errs, err)
				continue
			}
			if sh.Eviction != nil {
				sh.Eviction.Reset()
			}
			n += size
		}
		c.engine.OnFlush(n)
		return errors.Join(errs...)
	})
}

// Size counts held entries, including expired ones not yet purged by a read.
func (c *Store) Size() (n int) {
	defer func() {
		if r := recover(); r != nil {
			c.engine.OnFailure("size", "", recovered(r))
			n = 0
		}
	}()

	c.lockAll()
	defer c.unlockAll()

	for _, sh := range c.shards {
		n += sh.Store.Size()
	}
	return n
}

// Keys returns the held keys in sorted order, expired ones included.
// It returns nil if any shard failed.
func (c *Store) Keys() (out []string) {
	ok := c.guard("keys", "", func() error {
		c.lockAll()
		defer c.unlockAll()

		for _, sh := range c.shards {
			keys, err := sh.Store.Keys()
			if err != nil {
				return err
			}
			out = append(out, keys...)
		}
		return nil
	})
	if !ok {
		return nil
	}
	sort.Strings(out)
	return out
}

/*
TTL returns the remaining time-to-live of a key.

RETURN VALUES (Redis-compatible semantics):
-------------------------------------------
> 0   : Duration remaining before expiration
-1    : Key exists but never expires
-2    : Key does not exist, is already expired, or the lookup failed

TTL never purges; only Get does.
*/
func (c *Store) TTL(key string) (d time.Duration) {
	d = -2
	c.guard("ttl", key, func() error {
		sh := c.selector.Select(key, c.shards)
		sh.Mu.Lock()
		defer sh.Mu.Unlock()

		ent, found, err := sh.Store.Get(key)
		if err != nil {
			return err
		}
		if found && !c.engine.IsExpired(ent) {
			d = c.engine.Remaining(ent)
		}
		return nil
	})
	return d
}

// makeRoomLocked evicts until key fits in sh. Overwrites never evict.
func (c *Store) makeRoomLocked(sh *shard.Shard, key string) error {
	if sh.Eviction == nil || sh.Capacity <= 0 {
		return nil
	}
	_, exists, err := sh.Store.Get(key)
	if err != nil || exists {
		return err
	}
	for sh.Store.Size() >= sh.Capacity {
		victim := sh.Eviction.Evict()
		if victim == "" {
			return nil
		}
		if err := sh.Store.Delete(victim); err != nil {
			return err
		}
		c.engine.OnEvict(victim)
	}
	return nil
}

// removeLocked deletes key from sh and its eviction bookkeeping.
func (c *Store) removeLocked(sh *shard.Shard, key string) error {
	if err := sh.Store.Delete(key); err != nil {
		return err
	}
	if sh.Eviction != nil {
		sh.Eviction.Remove(key)
	}
	return nil
}

// lockAll takes every shard lock in index order; unlockAll releases them in reverse.
func (c *Store) lockAll() {
	for _, sh := range c.shards {
		sh.Mu.Lock()
	}
}

func (c *Store) unlockAll() {
	for i := len(c.shards) - 1; i >= 0; i-- {
		c.shards[i].Mu.Unlock()
	}
}

// guard runs fn and converts an error or panic into a logged false.
func (c *Store) guard(op, key string, fn func() error) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			c.engine.OnFailure(op, key, recovered(r))
			ok = false
		}
	}()

	if err := fn(); err != nil {
		c.engine.OnFailure(op, key, err)
		return false
	}
	return true
}

func recovered(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("%w: panic: %w", types.ErrStoreFault, err)
	}
	return fmt.Errorf("%w: panic: %v", types.ErrStoreFault, r)
}
