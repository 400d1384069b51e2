package cache_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	cache "github.com/infodht/nightapi"
	"github.com/infodht/nightapi/keys"
)

func newBenchmarkCache() *cache.Store {
	return cache.New(cache.WithShards(16))
}

//
// ================= SINGLE THREAD BENCH =================
//

func BenchmarkCacheGetHit(b *testing.B) {
	c := newBenchmarkCache()
	c.Set("master:skills:all", []string{"Nursing"}, 0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get("master:skills:all")
	}
}

func BenchmarkCacheGetMiss(b *testing.B) {
	c := newBenchmarkCache()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get(fmt.Sprintf("miss-%d", i))
	}
}

func BenchmarkCacheSet(b *testing.B) {
	c := newBenchmarkCache()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Set(fmt.Sprintf("key-%d", i), i, 0)
	}
}

// DelPattern over a realistically small key space: a few hundred roles.
func BenchmarkCacheDelPattern(b *testing.B) {
	c := newBenchmarkCache()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		for r := 0; r < 200; r++ {
			c.Set(keys.AccessSidebar(fmt.Sprint(r)).Key(), r, 0)
			c.Set(keys.AccessPermissions(fmt.Sprint(r)).Key(), r, 0)
		}
		b.StartTimer()
		c.DelPattern(keys.AllAccessSidebars.Key())
	}
}

//
// ================= PARALLEL BENCH =================
//

func BenchmarkCacheParallelGet(b *testing.B) {
	c := newBenchmarkCache()
	for i := 0; i < 1000; i++ {
		c.Set(fmt.Sprintf("key-%d", i), i, 0)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			c.Get(fmt.Sprintf("key-%d", i%1000))
			i++
		}
	})
}

func BenchmarkCacheParallelFetch(b *testing.B) {
	c := newBenchmarkCache()
	ctx := context.Background()
	load := func(context.Context) (any, error) { return "v", nil }

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			c.Fetch(ctx, fmt.Sprintf("key-%d", i%256), 0, load)
			i++
		}
	})
}

//
// ================= HIGH CONCURRENCY TEST =================
//

func BenchmarkCacheHighConcurrency(b *testing.B) {
	c := newBenchmarkCache()

	ks := make([]string, 10000)
	for i := range ks {
		ks[i] = fmt.Sprintf("key-%d", i)
		c.Set(ks[i], i, 0)
	}

	b.ResetTimer()

	wg := sync.WaitGroup{}
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < b.N/100; j++ {
				c.Get(ks[j%len(ks)])
			}
		}()
	}
	wg.Wait()
}
