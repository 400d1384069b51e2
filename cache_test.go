package cache_test

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	cache "github.com/infodht/nightapi"
	"github.com/infodht/nightapi/eviction"
	"github.com/infodht/nightapi/shard"
	"github.com/infodht/nightapi/types"
)

//
// ================= TEST CLOCK =================
//

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

//
// ================= FAULTY SHARD STORE =================
//

const (
	faultNone int32 = iota
	faultError
	faultPanic
)

var errInjected = errors.New("injected fault")

// faultyStore wraps the default map store and fails on demand.
type faultyStore struct {
	inner shard.ShardStore
	mode  *atomic.Int32
}

func (s *faultyStore) fail() error {
	switch s.mode.Load() {
	case faultError:
		return errInjected
	case faultPanic:
		panic("injected panic")
	}
	return nil
}

func (s *faultyStore) Get(k string) (*types.CacheEntry, bool, error) {
	if err := s.fail(); err != nil {
		return nil, false, err
	}
	return s.inner.Get(k)
}

func (s *faultyStore) Put(k string, e *types.CacheEntry) error {
	if err := s.fail(); err != nil {
		return err
	}
	return s.inner.Put(k, e)
}

func (s *faultyStore) Delete(k string) error {
	if err := s.fail(); err != nil {
		return err
	}
	return s.inner.Delete(k)
}

func (s *faultyStore) Keys() ([]string, error) {
	if err := s.fail(); err != nil {
		return nil, err
	}
	return s.inner.Keys()
}

func (s *faultyStore) Clear() error {
	if err := s.fail(); err != nil {
		return err
	}
	return s.inner.Clear()
}

func (s *faultyStore) Size() int {
	if s.mode.Load() == faultPanic {
		panic("injected panic")
	}
	return s.inner.Size()
}

//
// ================= HELPER: CREATE CACHE =================
//

func newTestCache(opts ...cache.Option) (*cache.Store, *fakeClock) {
	clock := newFakeClock()
	opts = append([]cache.Option{cache.WithShards(4), cache.WithClock(clock.Now)}, opts...)
	return cache.New(opts...), clock
}

func newFaultyCache(logger *zap.Logger) (*cache.Store, *atomic.Int32) {
	mode := &atomic.Int32{}
	c := cache.New(
		cache.WithShards(2),
		cache.WithLogger(logger),
		cache.WithStoreFactory(func() shard.ShardStore {
			return &faultyStore{inner: shard.NewMapStore(), mode: mode}
		}),
	)
	return c, mode
}

func mustGet(t *testing.T, c *cache.Store, key string, want any) {
	t.Helper()
	v, ok := c.Get(key)
	if !ok {
		t.Fatalf("expected hit for %q, got miss", key)
	}
	if v != want {
		t.Fatalf("expected %v for %q, got %v", want, key, v)
	}
}

func mustMiss(t *testing.T, c *cache.Store, key string) {
	t.Helper()
	if v, ok := c.Get(key); ok {
		t.Fatalf("expected miss for %q, got %v", key, v)
	}
}

//
// ================= BASIC OPERATIONS =================
//

func TestAddAndRetrieve(t *testing.T) {
	c, _ := newTestCache()

	if !c.Set("key1", "value1", time.Minute) {
		t.Fatal("set failed")
	}
	mustGet(t, c, "key1", "value1")
}

func TestMissIsIdempotent(t *testing.T) {
	c, _ := newTestCache()
	c.Set("other", 1, 0)

	for i := 0; i < 3; i++ {
		mustMiss(t, c, "never-set")
		if c.Size() != 1 {
			t.Fatalf("expected size 1, got %d", c.Size())
		}
	}
}

func TestUpdateExistingKey(t *testing.T) {
	c, clock := newTestCache()

	c.Set("key1", "value1", time.Hour)
	c.Set("key1", "value2", time.Second)
	mustGet(t, c, "key1", "value2")

	if c.Size() != 1 {
		t.Fatalf("expected size 1 after overwrite, got %d", c.Size())
	}

	// the overwrite's TTL wins, not the longer original one
	clock.Advance(time.Second)
	mustMiss(t, c, "key1")
}

func TestRemoveKey(t *testing.T) {
	c, _ := newTestCache()

	c.Set("key1", "value1", 0)
	if !c.Del("key1") {
		t.Fatal("del failed")
	}
	mustMiss(t, c, "key1")

	if !c.Del("key1") {
		t.Fatal("del of absent key should succeed")
	}
}

func TestEmptyKeyIsOrdinary(t *testing.T) {
	c, _ := newTestCache()

	c.Set("", "blank", 0)
	mustGet(t, c, "", "blank")
}

func TestEmptyResultIsAHit(t *testing.T) {
	c, _ := newTestCache()

	c.Set("access:permissions:9", []string{}, 0)
	c.Set("drafts:email:1", nil, 0)

	v, ok := c.Get("access:permissions:9")
	if !ok {
		t.Fatal("expected cached empty slice to be a hit")
	}
	if perms, _ := v.([]string); len(perms) != 0 {
		t.Fatalf("expected empty slice, got %v", v)
	}
	if _, ok := c.Get("drafts:email:1"); !ok {
		t.Fatal("expected cached nil to be a hit")
	}
}

//
// ================= TTL =================
//

func TestTTLExpiration(t *testing.T) {
	c, clock := newTestCache()

	c.Set("ttlKey", "temp", 10*time.Second)

	clock.Advance(9 * time.Second)
	mustGet(t, c, "ttlKey", "temp")

	clock.Advance(time.Second)
	if c.Size() != 1 {
		t.Fatalf("expired entry should still be counted before a read, got %d", c.Size())
	}
	mustMiss(t, c, "ttlKey")
	if c.Size() != 0 {
		t.Fatalf("expired entry should be purged by the read, got size %d", c.Size())
	}
}

func TestDefaultTTL(t *testing.T) {
	c, clock := newTestCache()

	c.Set("k", "v", 0)
	if got := c.TTL("k"); got != cache.DefaultTTL {
		t.Fatalf("expected ttl %v, got %v", cache.DefaultTTL, got)
	}

	clock.Advance(cache.DefaultTTL - time.Millisecond)
	mustGet(t, c, "k", "v")

	clock.Advance(time.Millisecond)
	mustMiss(t, c, "k")
}

func TestConfiguredDefaultTTL(t *testing.T) {
	c, clock := newTestCache(cache.WithDefaultTTL(time.Minute))

	c.Set("k", "v", 0)
	clock.Advance(time.Minute)
	mustMiss(t, c, "k")
}

func TestNoExpiration(t *testing.T) {
	c, clock := newTestCache()

	c.Set("k", "v", cache.NoExpiration)
	clock.Advance(365 * 24 * time.Hour)
	mustGet(t, c, "k", "v")

	if got := c.TTL("k"); got != -1 {
		t.Fatalf("expected ttl -1, got %v", got)
	}
	if got := c.TTL("missing"); got != -2 {
		t.Fatalf("expected ttl -2, got %v", got)
	}
}

//
// ================= INVALIDATION =================
//

func TestDelPattern(t *testing.T) {
	c, _ := newTestCache()

	for _, k := range []string{"a:x:1", "a:x:2", "a:y:1", "b:z:1"} {
		c.Set(k, k, 0)
	}

	n, ok := c.DelPatternCount("a:x:*")
	if !ok {
		t.Fatal("delPattern failed")
	}
	if n != 2 {
		t.Fatalf("expected 2 keys removed, got %d", n)
	}

	mustMiss(t, c, "a:x:1")
	mustMiss(t, c, "a:x:2")
	mustGet(t, c, "a:y:1", "a:y:1")
	mustGet(t, c, "b:z:1", "b:z:1")
}

func TestDelPatternTreatsMetacharactersLiterally(t *testing.T) {
	c, _ := newTestCache()

	c.Set("access:permissions:role.1", 1, 0)
	c.Set("access:permissions:roleX1", 2, 0)

	if !c.DelPattern("access:permissions:role.*") {
		t.Fatal("delPattern failed")
	}
	mustMiss(t, c, "access:permissions:role.1")
	mustGet(t, c, "access:permissions:roleX1", 2)
}

func TestDelPatternMatchesWholeKey(t *testing.T) {
	c, _ := newTestCache()

	c.Set("x:access:sidebar:1", 1, 0)
	c.Set("access:sidebar:1", 2, 0)

	c.DelPattern("access:sidebar:*")
	mustGet(t, c, "x:access:sidebar:1", 1)
	mustMiss(t, c, "access:sidebar:1")
}

func TestFlush(t *testing.T) {
	c, _ := newTestCache()

	for i := 0; i < 20; i++ {
		c.Set(fmt.Sprintf("k%d", i), i, 0)
	}
	if !c.Flush() {
		t.Fatal("flush failed")
	}
	if c.Size() != 0 {
		t.Fatalf("expected size 0 after flush, got %d", c.Size())
	}
	for i := 0; i < 20; i++ {
		mustMiss(t, c, fmt.Sprintf("k%d", i))
	}
}

func TestKeys(t *testing.T) {
	c, _ := newTestCache()

	c.Set("b", 1, 0)
	c.Set("a", 1, 0)
	c.Set("c", 1, 0)

	got := c.Keys()
	want := []string{"a", "b", "c"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

//
// ================= SCENARIO =================
//

type skill struct {
	ID   int
	Name string
}

func TestMasterSkillsScenario(t *testing.T) {
	c, _ := newTestCache()

	first := []skill{{ID: 1, Name: "Nursing"}}
	c.Set("master:skills:all", first, 86400*time.Second)

	v, ok := c.Get("master:skills:all")
	if !ok {
		t.Fatal("expected hit")
	}
	if got := v.([]skill); len(got) != 1 || got[0] != first[0] {
		t.Fatalf("expected %v, got %v", first, got)
	}

	c.Del("master:skills:all")
	mustMiss(t, c, "master:skills:all")

	second := []skill{{ID: 1, Name: "Nursing"}, {ID: 2, Name: "Phlebotomy"}}
	c.Set("master:skills:all", second, 86400*time.Second)
	v, _ = c.Get("master:skills:all")
	if got := v.([]skill); len(got) != 2 || got[1].Name != "Phlebotomy" {
		t.Fatalf("expected %v, got %v", second, got)
	}
}

//
// ================= FAIL-OPEN =================
//

func TestFailOpen(t *testing.T) {
	for _, tc := range []struct {
		name string
		mode int32
	}{
		{"error", faultError},
		{"panic", faultPanic},
	} {
		t.Run(tc.name, func(t *testing.T) {
			core, logs := observer.New(zap.ErrorLevel)
			c, mode := newFaultyCache(zap.New(core))

			c.Set("a:x:1", 1, 0)
			mode.Store(tc.mode)

			if _, ok := c.Get("a:x:1"); ok {
				t.Fatal("expected miss while the store is failing")
			}
			if c.Set("a:x:2", 2, 0) {
				t.Fatal("expected set to fail")
			}
			if c.Del("a:x:1") {
				t.Fatal("expected del to fail")
			}
			if c.DelPattern("a:*") {
				t.Fatal("expected delPattern to fail")
			}
			if c.Flush() {
				t.Fatal("expected flush to fail")
			}
			_ = c.Size()
			if c.Keys() != nil {
				t.Fatal("expected no keys while the store is failing")
			}

			if logs.FilterMessage("cache operation failed").Len() == 0 {
				t.Fatal("expected failures to be logged")
			}

			// the cache recovers once the store does
			mode.Store(faultNone)
			mustGet(t, c, "a:x:1", 1)
			if !c.Set("a:x:2", 2, 0) {
				t.Fatal("expected set to succeed after recovery")
			}
		})
	}
}

//
// ================= CAPACITY & EVICTION =================
//

func TestEvictionOnCapacity(t *testing.T) {
	c, _ := newTestCache(cache.WithShards(1), cache.WithCapacity(2, eviction.LRU))

	c.Set("key1", "value1", 0)
	c.Set("key2", "value2", 0)
	c.Get("key1")
	c.Set("key3", "value3", 0) // evicts key2 (LRU)

	mustGet(t, c, "key1", "value1")
	mustMiss(t, c, "key2")
	mustGet(t, c, "key3", "value3")

	// overwriting a held key never evicts
	c.Set("key3", "value3b", 0)
	mustGet(t, c, "key1", "value1")
	if c.Size() != 2 {
		t.Fatalf("expected size 2, got %d", c.Size())
	}
}

func TestUnboundedByDefault(t *testing.T) {
	c, _ := newTestCache(cache.WithShards(1))

	for i := 0; i < 1000; i++ {
		c.Set(fmt.Sprintf("k%d", i), i, 0)
	}
	if c.Size() != 1000 {
		t.Fatalf("expected 1000 entries, got %d", c.Size())
	}
}

//
// ================= CONCURRENCY TEST =================
//

func TestConcurrentAccess(t *testing.T) {
	c, _ := newTestCache()

	wg := sync.WaitGroup{}
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				key := fmt.Sprintf("access:sidebar:%d", j%10)
				switch j % 4 {
				case 0:
					c.Set(key, id, 0)
				case 1:
					c.Get(key)
				case 2:
					c.Del(key)
				case 3:
					c.DelPattern("access:sidebar:*")
				}
			}
		}(i)
	}
	wg.Wait()

	c.Set("final", 1, 0)
	mustGet(t, c, "final", 1)
}
