// This file implements LRU eviction.

package eviction

// lru evicts the key that has gone longest without a read or write.
type lru struct {
	keys order
}

func newLRU() *lru {
	return &lru{keys: newOrder()}
}

// OnGet marks k as most recently used.
func (l *lru) OnGet(k string) { l.keys.touch(k) }

// OnPut tracks a new key, or marks an overwritten one as most recently used.
func (l *lru) OnPut(k string) {
	if !l.keys.push(k) {
		l.keys.touch(k)
	}
}

func (l *lru) Remove(k string) { l.keys.remove(k) }

func (l *lru) Evict() string { return l.keys.pop() }

func (l *lru) Reset() { l.keys.reset() }
