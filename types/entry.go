package types

import "time"

// CacheEntry is one cached value. Entries are never mutated after they are
// stored; a Set always installs a fresh entry.
type CacheEntry struct {
	Key       string
	Value     any
	CreatedAt time.Time
	ExpireAt  time.Time // zero => never expires
}

// Live reports whether the entry is still visible at now.
// An entry stops being visible at the exact instant it expires.
func (e *CacheEntry) Live(now time.Time) bool {
	return e.ExpireAt.IsZero() || now.Before(e.ExpireAt)
}

// Clock returns the current time. Tests swap it for a virtual clock.
type Clock func() time.Time
