package shard

import (
	"sync"

	"github.com/infodht/nightapi/eviction"
)

/*
This file defines what a "Shard" is. A shard is a small, independent piece of the cache.
Instead of having: One big map and one big lock
We split the key space into shards. Each shard:
- Holds some portion of the data
- Has its own eviction bookkeeping (when a capacity is configured)
- Has its own lock

Every operation on a shard, reads included, runs under Mu: a read may purge an
expired entry and may update eviction order, so it is a read-then-write.
*/
type Shard struct {

	// Store holds the key → entry data for this shard.
	Store ShardStore

	// Eviction is nil when the cache is unbounded.
	Eviction eviction.Policy

	// Capacity is this shard's share of the total bound. 0 means unbounded.
	Capacity int

	Mu sync.Mutex
}

func NewShard(store ShardStore, ev eviction.Policy, capacity int) *Shard {
	return &Shard{
		Store:    store,
		Eviction: ev,
		Capacity: capacity,
	}
}
