package main

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	cache "github.com/infodht/nightapi"
	"github.com/infodht/nightapi/keys"
)

// ================= AUTHORITATIVE STORE =================

// slowStore stands in for the database: every query costs latency.
type slowStore struct {
	latency time.Duration
	queries atomic.Int64
}

func (s *slowStore) load(ctx context.Context) (any, error) {
	s.queries.Add(1)
	select {
	case <-time.After(s.latency):
		return []string{"row"}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ================= BENCHMARK =================

func main() {
	ctx := context.Background()

	const (
		shards     = 16
		roles      = 200
		goroutines = 200
		opsPerG    = 5000
		writeEvery = 500 // one permission write per N operations
	)

	fmt.Println("\n================ READ-THROUGH LOAD BENCHMARK =================")
	fmt.Println("CONFIG")
	fmt.Println("---------------------------------")
	fmt.Println("Shards       :", shards)
	fmt.Println("Roles        :", roles)
	fmt.Println("Goroutines   :", goroutines)
	fmt.Println("Ops/Goroutine:", opsPerG)
	fmt.Println("Write ratio  :", fmt.Sprintf("1/%d", writeEvery))
	fmt.Println("---------------------------------")

	db := &slowStore{latency: 2 * time.Millisecond}
	c := cache.New(cache.WithShards(shards))

	var writes atomic.Int64
	start := time.Now()

	wg := sync.WaitGroup{}
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < opsPerG; j++ {
				roleID := fmt.Sprint(rand.Intn(roles))
				if j%writeEvery == 0 {
					c.Invalidate(keys.OnPermissionWrite(roleID)...)
					writes.Add(1)
					continue
				}
				if j%2 == 0 {
					c.FetchRegion(ctx, keys.AccessPermissions(roleID), db.load)
				} else {
					c.FetchRegion(ctx, keys.AccessSidebar(roleID), db.load)
				}
			}
		}()
	}
	wg.Wait()

	duration := time.Since(start)
	totalOps := goroutines * opsPerG
	reads := int64(totalOps) - writes.Load()

	fmt.Println("\n================ RESULTS =================")
	fmt.Printf("Total Operations : %d\n", totalOps)
	fmt.Printf("Invalidations    : %d\n", writes.Load())
	fmt.Printf("DB Queries       : %d\n", db.queries.Load())
	fmt.Printf("Hit Ratio        : %.2f%%\n", 100*(1-float64(db.queries.Load())/float64(reads)))
	fmt.Printf("Total Time       : %v\n", duration)
	fmt.Printf("Throughput       : %.2f ops/sec\n", float64(totalOps)/duration.Seconds())
	fmt.Printf("Cache Entries    : %d\n", c.Size())
	fmt.Println("=========================================")
}
