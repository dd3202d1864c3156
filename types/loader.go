package types

import (
	"context"
	"fmt"
)

// Loader is the contract between the cache and the backing store.
type Loader[K comparable, V any] interface {

	/*
		Load is called when the cache needs a value it does not have, or one it has
		but considers too old.
		1. Cache checks memory → key missing, stale or expired
		2. Cache calls Load(key)
		3. Loader fetches from DB/API
		4. Cache stores the result in memory (only if err == nil)

		Load may be called concurrently for different keys.
		The cache never calls it concurrently for the same key.
	*/
	Load(ctx context.Context, key K) (V, error)
}

// LoaderFunc adapts an ordinary function to the Loader interface.
type LoaderFunc[K comparable, V any] func(ctx context.Context, key K) (V, error)

// Load calls f(ctx, key).
func (f LoaderFunc[K, V]) Load(ctx context.Context, key K) (V, error) {
	return f(ctx, key)
}

/*
LoadError is returned by the cache when the Loader failed on a path where the
caller was waiting for the result (missing or expired entry).

The original loader error is kept, so errors.Is and errors.As see through it.
*/
type LoadError struct {
	Key any
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("cannot load key %v: %v", e.Key, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
