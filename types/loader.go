package types

import "context"

// Loader is the contract between the cache and the authoritative store.
type Loader interface {

	/*
		Load is called when the cache misses. The key was not found in memory,
		so the cache asks the Loader to fetch it.
		1. Cache checks memory → key not found or expired
		2. Cache calls Load(key)
		3. Loader queries the database
		4. Cache stores the result in memory with the caller's TTL
		5. Cache returns the value

		A returned error is passed back to the caller and nothing is cached.
	*/
	Load(ctx context.Context, key string) (any, error)
}

// LoaderFunc adapts a plain function to the Loader interface.
type LoaderFunc func(ctx context.Context, key string) (any, error)

func (f LoaderFunc) Load(ctx context.Context, key string) (any, error) {
	return f(ctx, key)
}
