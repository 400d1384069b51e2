package eviction

/*
This file defines how the cache decides what to remove when a capacity bound is configured.
Without a bound the cache never evicts and entries leave only through expiry or invalidation.
*/

/*
Policy is the interface that all eviction strategies must follow.

The cache does NOT care how eviction works internally.
It only calls these methods, always while holding the owning shard's lock,
so implementations need no locking of their own.
*/
type Policy interface {

	// OnGet is called whenever a key is read from the cache.
	// LRU moves the key to the front; FIFO ignores reads.
	OnGet(string)

	// OnPut is called whenever a key is written, new or overwritten.
	OnPut(string)

	// Remove is called when a key leaves the cache for any reason other than Evict.
	Remove(string)

	// Evict picks the key that should make room and forgets it.
	// It returns "" when nothing is tracked.
	Evict() string

	// Reset forgets every key.
	Reset()
}

// PolicyType is a simple identifier for supported eviction strategies.
type PolicyType string

const (
	// None disables eviction. The cache grows without bound.
	None PolicyType = ""

	// LRU (Least Recently Used): Evicts the key that has NOT been accessed for the longest time.
	LRU PolicyType = "LRU"

	// FIFO (First In First Out): Evicts the oldest inserted key, regardless of access.
	FIFO PolicyType = "FIFO"
)

// NewEvictionPolicy is a small factory function.
// It returns nil for None.
func NewEvictionPolicy(t PolicyType) Policy {
	switch t {
	case None:
		return nil
	case LRU:
		return newLRU()
	case FIFO:
		return newFIFO()
	default:
		panic("unknown eviction policy: " + string(t))
	}
}

// Valid reports whether t names a supported policy.
func Valid(t PolicyType) bool {
	switch t {
	case None, LRU, FIFO:
		return true
	}
	return false
}
