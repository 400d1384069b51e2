package api

import "time"

/*
Cache defines the PUBLIC API of the cache.
This is a contract that guarantees certain behaviors, without exposing internals.
Sharding, locking, expiry and eviction are hidden behind this interface.

FAILURE MODEL:
--------------
The cache is never the reason a request fails. No method panics or returns an
error; an internal failure shows up as a miss (Get) or a false return.
*/
type Cache interface {

	/*
		Get retrieves the value associated with the given key.

		BEHAVIOR:
		-------------------
		1. If the key exists and is NOT expired:
		   - Return the value and true (cache hit)

		2. If the key exists but IS expired:
		   - Remove it
		   - Return nil and false (cache miss)

		3. If the key does NOT exist:
		   - Return nil and false (cache miss)

		A cached nil or empty value is a hit: the boolean, not the value, tells a
		hit from a miss. The value is not copied; treat it as read-only.
	*/
	Get(key string) (any, bool)

	/*
		Set stores a key-value pair with a time-to-live.

		TTL (Time-To-Live):
		-------------------
		- 0 means "use the default TTL" (one hour unless configured)
		- NoExpiration (-1) means the entry never expires
		- The entry is visible while now < set time + ttl
		- Expired keys are lazily removed on access, not swept

		Set overwrites any previous entry for the key unconditionally.
		It returns false if the write could not be stored.
	*/
	Set(key string, value any, ttl time.Duration) bool

	/*
		Del deletes a key immediately.

		This operation is idempotent:
		- Removing a non-existing key is safe and returns true
	*/
	Del(key string) bool

	/*
		DelPattern deletes every key matching a glob pattern.

		PATTERN SYNTAX:
		---------------
		- '*' matches any run of characters, including none
		- Everything else is literal
		- The pattern must match the whole key

		Example: "access:sidebar:*" removes the sidebar of every role.
		This is a linear scan over all held keys.
	*/
	DelPattern(pattern string) bool

	/*
		Flush removes every entry.
		Intended for administration and tests, not the normal read/write cycle.
	*/
	Flush() bool

	/*
		Size returns how many entries are held, including expired entries
		that no Get has purged yet. For observability only.
	*/
	Size() int
}
