package shard

import (
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infodht/nightapi/types"
)

func TestMapStore(t *testing.T) {
	s := NewMapStore()

	require.NoError(t, s.Put("a", &types.CacheEntry{Key: "a", Value: 1}))
	require.NoError(t, s.Put("b", &types.CacheEntry{Key: "b", Value: 2}))
	assert.Equal(t, 2, s.Size())

	ent, ok, err := s.Get("a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, ent.Value)

	keys, err := s.Keys()
	require.NoError(t, err)
	sort.Strings(keys)
	assert.Equal(t, []string{"a", "b"}, keys)

	require.NoError(t, s.Delete("a"))
	require.NoError(t, s.Delete("a"))
	_, ok, _ = s.Get("a")
	assert.False(t, ok)

	require.NoError(t, s.Clear())
	assert.Equal(t, 0, s.Size())
}

func TestHashSelectorIsStable(t *testing.T) {
	shards := make([]*Shard, 8)
	for i := range shards {
		shards[i] = NewShard(NewMapStore(), nil, 0)
	}

	sel := HashSelector{}
	used := map[*Shard]bool{}
	for i := 0; i < 200; i++ {
		key := fmt.Sprintf("access:permissions:%d", i)
		first := sel.Select(key, shards)
		assert.Same(t, first, sel.Select(key, shards))
		used[first] = true
	}
	assert.Greater(t, len(used), 1)
}
