package types

// This file defines how the cache reports what it is doing.

/*
Metrics is an interface that defines what the cache wants to measure.
Each method represents an event in the cache lifecycle. The cache will call these methods whenever something happens.
*/
type Metrics interface {

	// Hit is called when the cache successfully returns a value.
	Hit()

	// Miss is called when the cache does NOT find a live entry for a key.
	Miss()

	// Expire is called when an expired entry is found on read and purged.
	Expire()

	// Eviction is called when a key is removed because the cache is at capacity.
	Eviction()

	// Set is called for every successful write.
	Set()

	// Delete is called with the number of entries removed by Del, DelPattern or Flush.
	Delete(n int)

	// Failure is called when an operation failed open. op names the operation ("get", "set", ...).
	Failure(op string)
}

/*
NoopMetrics is a "do nothing" implementation of Metrics.

If someone does not care about metrics,
we still want the cache to work without:
- nil pointer checks everywhere
- if metrics != nil conditions
*/
type NoopMetrics struct{}

func (NoopMetrics) Hit()           {}
func (NoopMetrics) Miss()          {}
func (NoopMetrics) Expire()        {}
func (NoopMetrics) Eviction()      {}
func (NoopMetrics) Set()           {}
func (NoopMetrics) Delete(int)     {}
func (NoopMetrics) Failure(string) {}
