// This file defines how cache entries expire over time.

package expiration

import (
	"time"

	"github.com/infodht/nightapi/types"
)

const (
	// DefaultTTL is used when a caller does not pass a TTL.
	DefaultTTL = 3600 * time.Second

	// NoExpiration stores an entry that only leaves the cache through
	// Del, DelPattern, Flush or eviction.
	NoExpiration time.Duration = -1
)

/*
Strategy is the interface that all expiration rules must follow. Instead of hard-coding
expiration logic into the cache, we define a strategy so expiration behavior can be swapped easily.
*/
type Strategy interface {

	// ExpireAt computes the absolute expiry of an entry written at now with the caller's ttl.
	// A zero time means the entry never expires.
	ExpireAt(now time.Time, ttl time.Duration) time.Time

	// IsExpired checks if the entry is expired at now.
	IsExpired(*types.CacheEntry, time.Time) bool
}
