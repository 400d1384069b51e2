package shard

import (
	"github.com/infodht/nightapi/types"
)

/*
This file defines how data is actually stored inside a shard.

The store itself is not safe for concurrent use; the owning shard's mutex guards it.
Methods return errors so alternative stores (and fault-injecting test stores)
can report failure; the cache turns any error into a miss or a false return.
*/

// ShardStore is the interface used by a shard to store and retrieve cache entries.
type ShardStore interface {

	// Get retrieves an entry by key.
	Get(string) (*types.CacheEntry, bool, error)

	// Put inserts or replaces an entry.
	Put(string, *types.CacheEntry) error

	// Delete removes an entry. Deleting an absent key is not an error.
	Delete(string) error

	// Keys returns a snapshot of every held key, expired or not.
	Keys() ([]string, error)

	// Clear removes every entry.
	Clear() error

	// Size returns how many entries are stored, expired or not.
	Size() int
}

// Factory builds the store for one shard.
type Factory func() ShardStore

// mapStore is the default ShardStore: a plain map.
type mapStore struct {
	data map[string]*types.CacheEntry
}

func NewMapStore() ShardStore {
	return &mapStore{data: make(map[string]*types.CacheEntry)}
}

func (s *mapStore) Get(key string) (*types.CacheEntry, bool, error) {
	ent, ok := s.data[key]
	return ent, ok, nil
}

func (s *mapStore) Put(key string, ent *types.CacheEntry) error {
	s.data[key] = ent
	return nil
}

func (s *mapStore) Delete(key string) error {
	delete(s.data, key)
	return nil
}

func (s *mapStore) Keys() ([]string, error) {
	out := make([]string, 0, len(s.data))
	for k := range s.data {
		out = append(out, k)
	}
	return out, nil
}

func (s *mapStore) Clear() error {
	clear(s.data)
	return nil
}

func (s *mapStore) Size() int {
	return len(s.data)
}
