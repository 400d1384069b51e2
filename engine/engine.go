package engine

import (
	"time"

	"go.uber.org/zap"

	"github.com/infodht/nightapi/expiration"
	"github.com/infodht/nightapi/types"
)

/*
CacheEngine is the "brain" of the cache system.
It is responsible for the "behavior" of the cache, NOT storage.
This acts as the policy layer.

It decides:
- When an entry expires
- What time it is
- How events are recorded (metrics and logs)

It does NOT:
- Store data
- Handle sharding
- Handle locking
- Decide eviction order
*/
type CacheEngine struct {

	// Expiration turns a caller's TTL into an absolute expiry and judges entries against it.
	Expiration expiration.Strategy

	// Clock is the source of "now". Tests replace it to move time forward.
	Clock types.Clock

	// Metrics is how we keep track of what the cache is doing.
	Metrics types.Metrics

	// Logger receives one debug line per operation and an error line per failure.
	Logger *zap.Logger
}

/*
NewCacheEngine creates a CacheEngine. Any nil argument gets a working default
so the rest of the code never checks for nil.
*/
func NewCacheEngine(
	exp expiration.Strategy,
	clock types.Clock,
	metrics types.Metrics,
	logger *zap.Logger,
) *CacheEngine {
	if exp == nil {
		exp = &expiration.ExpireAfterWrite{TTL: expiration.DefaultTTL}
	}
	if clock == nil {
		clock = time.Now
	}
	if metrics == nil {
		metrics = types.NoopMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &CacheEngine{
		Expiration: exp,
		Clock:      clock,
		Metrics:    metrics,
		Logger:     logger,
	}
}

// Now returns the engine's current time.
func (e *CacheEngine) Now() time.Time {
	return e.Clock()
}

// NewEntry builds the entry a Set installs.
func (e *CacheEngine) NewEntry(key string, value any, ttl time.Duration) *types.CacheEntry {
	now := e.Now()
	return &types.CacheEntry{
		Key:       key,
		Value:     value,
		CreatedAt: now,
		ExpireAt:  e.Expiration.ExpireAt(now, ttl),
	}
}

// IsExpired checks whether a cache entry is expired right now.
func (e *CacheEngine) IsExpired(ent *types.CacheEntry) bool {
	return e.Expiration.IsExpired(ent, e.Now())
}

// Remaining returns how long ent stays live, or -1 if it never expires.
func (e *CacheEngine) Remaining(ent *types.CacheEntry) time.Duration {
	if ent.ExpireAt.IsZero() {
		return -1
	}
	return ent.ExpireAt.Sub(e.Now())
}

func (e *CacheEngine) OnHit(key string) {
	e.Metrics.Hit()
	e.Logger.Debug("cache hit", zap.String("key", key))
}

func (e *CacheEngine) OnMiss(key string) {
	e.Metrics.Miss()
	e.Logger.Debug("cache miss", zap.String("key", key))
}

// OnExpire records an expired entry found on read. The read also counts as a miss.
func (e *CacheEngine) OnExpire(key string) {
	e.Metrics.Expire()
	e.Metrics.Miss()
	e.Logger.Debug("cache expired", zap.String("key", key))
}

func (e *CacheEngine) OnSet(ent *types.CacheEntry) {
	e.Metrics.Set()
	if ce := e.Logger.Check(zap.DebugLevel, "cache set"); ce != nil {
		ttl := time.Duration(-1)
		if !ent.ExpireAt.IsZero() {
			ttl = ent.ExpireAt.Sub(ent.CreatedAt)
		}
		ce.Write(zap.String("key", ent.Key), zap.Duration("ttl", ttl))
	}
}

func (e *CacheEngine) OnEvict(key string) {
	e.Metrics.Eviction()
	e.Logger.Debug("cache evicted", zap.String("key", key))
}

func (e *CacheEngine) OnDelete(key string, n int) {
	e.Metrics.Delete(n)
	e.Logger.Debug("cache deleted", zap.String("key", key), zap.Int("removed", n))
}

func (e *CacheEngine) OnDeletePattern(pattern string, n int) {
	e.Metrics.Delete(n)
	if n > 0 {
		e.Logger.Debug("cache deleted pattern", zap.String("pattern", pattern), zap.Int("removed", n))
	}
}

func (e *CacheEngine) OnFlush(n int) {
	e.Metrics.Delete(n)
	e.Logger.Info("cache flushed", zap.Int("removed", n))
}

// OnFailure records an operation that failed open.
func (e *CacheEngine) OnFailure(op, key string, err error) {
	e.Metrics.Failure(op)
	e.Logger.Error("cache operation failed",
		zap.String("op", op),
		zap.String("key", key),
		zap.Error(err),
	)
}
