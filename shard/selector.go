package shard

import "hash/fnv"

/*
Selector is the interface that decides which shard should handle a given key.
The cache does not care HOW this decision is made, only that the same key
always lands on the same shard.
*/
type Selector interface {
	Select(string, []*Shard) *Shard
}

// HashSelector picks a shard by FNV-1a hash of the key.
type HashSelector struct{}

func hash(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}

// Select chooses the shard for a given key.
func (HashSelector) Select(key string, shards []*Shard) *Shard {
	return shards[hash(key)%uint32(len(shards))]
}
