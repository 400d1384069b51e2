package cache

import (
	"time"

	"go.uber.org/zap"

	"github.com/infodht/nightapi/eviction"
	"github.com/infodht/nightapi/shard"
	"github.com/infodht/nightapi/types"
)

// DefaultShards is the shard count used when WithShards is not given.
const DefaultShards = 16

type config struct {
	shards     int
	defaultTTL time.Duration
	capacity   int
	policy     eviction.PolicyType
	clock      types.Clock
	logger     *zap.Logger
	metrics    types.Metrics
	newStore   shard.Factory
}

func defaultConfig() config {
	return config{
		shards:     DefaultShards,
		defaultTTL: DefaultTTL,
		newStore:   shard.NewMapStore,
	}
}

// Option configures a Store.
type Option func(*config)

// WithShards sets how many independently locked shards the key space is split into.
func WithShards(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.shards = n
		}
	}
}

// WithDefaultTTL sets the TTL applied when Set is called with ttl 0.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(c *config) {
		if ttl > 0 {
			c.defaultTTL = ttl
		}
	}
}

// WithCapacity bounds the number of entries. When a shard is full the policy
// picks a victim. A capacity of 0 or eviction.None leaves the cache unbounded.
func WithCapacity(n int, policy eviction.PolicyType) Option {
	return func(c *config) {
		c.capacity = n
		c.policy = policy
	}
}

// WithClock replaces time.Now.
func WithClock(clock types.Clock) Option {
	return func(c *config) { c.clock = clock }
}

// WithLogger sets the logger for cache events. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithMetrics sets where cache events are counted. The default is types.NoopMetrics.
func WithMetrics(m types.Metrics) Option {
	return func(c *config) { c.metrics = m }
}

// WithStoreFactory replaces the per-shard map store.
func WithStoreFactory(f shard.Factory) Option {
	return func(c *config) {
		if f != nil {
			c.newStore = f
		}
	}
}
