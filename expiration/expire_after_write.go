package expiration

import (
	"time"

	"github.com/infodht/nightapi/types"
)

/*
ExpireAfterWrite fixes an entry's lifetime when it is written. Reads never extend it:
an entry is visible while now < CreatedAt + ttl and absent from that instant on.
There is no grace period in which a stale value is still served.
*/
type ExpireAfterWrite struct {

	// TTL is applied when the caller passes 0 (or any negative value other than NoExpiration).
	TTL time.Duration
}

// ExpireAt resolves the caller's ttl against the default.
func (e *ExpireAfterWrite) ExpireAt(now time.Time, ttl time.Duration) time.Time {
	if ttl == NoExpiration {
		return time.Time{}
	}
	if ttl <= 0 {
		ttl = e.TTL
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return now.Add(ttl)
}

// IsExpired checks whether the entry is expired at this moment.
func (e *ExpireAfterWrite) IsExpired(ent *types.CacheEntry, now time.Time) bool {
	return !ent.Live(now)
}
