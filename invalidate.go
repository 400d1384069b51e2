package cache

import (
	"context"

	"github.com/infodht/nightapi/keys"
)

// Invalidate removes every listed region: single keys with Del, families
// with DelPattern. Call it after the write that staled them has committed.
// It returns false if any removal failed; the rest are still attempted.
func (c *Store) Invalidate(regions ...keys.Region) bool {
	ok := true
	for _, r := range regions {
		if r.IsFamily() {
			ok = c.DelPattern(r.Key()) && ok
		} else {
			ok = c.Del(r.Key()) && ok
		}
	}
	return ok
}

// FetchRegion is Fetch keyed and timed by a region.
func (c *Store) FetchRegion(ctx context.Context, r keys.Region, load LoadFunc) (any, error) {
	return c.Fetch(ctx, r.Key(), r.TTL(), load)
}
