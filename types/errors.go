package types

import "errors"

var (
	// ErrStoreFault wraps anything that went wrong inside a shard store,
	// including recovered panics.
	ErrStoreFault = errors.New("cache store fault")

	// ErrNilLoader is returned by read-through calls made without a loader.
	ErrNilLoader = errors.New("cache loader is nil")
)
