package cache

import "context"

/*
Cache defines the PUBLIC API of the active cache.
All of the details like (sharding, refresh scheduling, single-flight loading)
are hidden behind this interface.

There is deliberately no Put or Remove: entries are only ever created and
replaced by successful loads.
*/
type Cache[K comparable, V any] interface {

	/*
		Get retrieves the value associated with the given key.

		BEHAVIOR:
		-------------------
		1. Key cached and fresh:
		   - Return the value immediately

		2. Key cached but stale (past the refresh point, before the timeout):
		   - Return the value immediately
		   - Reload it in the background, unless a load is already running

		3. Key missing or expired:
		   - Load it (or wait for the load already running)
		   - Return the new value, or the load error
	*/
	Get(ctx context.Context, key K) (V, error)

	/*
		GetAll retrieves many keys concurrently, with the same rules as Get.
		Keys that fail are missing from the map and reported in the error.
	*/
	GetAll(ctx context.Context, keys []K) (map[K]V, error)

	/*
		Peek returns the cached value without ever loading.
		The value may be stale or even expired.
	*/
	Peek(key K) (V, bool)

	// Len returns the number of cached entries.
	Len() int
}
