package shard

import (
	"sync/atomic"

	"github.com/krisalay/active-cache/types"
)

/*
This file defines how entries are actually stored inside a shard. This is NOT a normal map.
- Reads should be very fast
- Reads should NOT require locks
- Writes are rare (one per load) and can afford extra work

To achieve this, we use a technique called: "Copy-On-Write" (COW)
*/

// Store is the interface used by a shard to store and retrieve cache entries.
type Store[K comparable, V any] interface {

	// Get retrieves an entry by key.
	Get(K) (*types.CacheEntry[V], bool)

	// Put inserts or replaces an entry. Callers serialize Put per store.
	Put(K, *types.CacheEntry[V])

	// Size returns how many entries are stored.
	Size() int64
}

/*
cowStore is a Copy-On-Write implementation of Store.

- Readers always see an immutable snapshot
- Writers create a NEW copy of the map
- The new map replaces the old one atomically

A reader that starts after a Put returns is guaranteed to see the new entry.
*/
type cowStore[K comparable, V any] struct {
	data atomic.Pointer[map[K]*types.CacheEntry[V]]

	// size tracks the number of entries so Size does not need to load the map.
	size atomic.Int64
}

// NewCOWStore returns an empty copy-on-write store.
func NewCOWStore[K comparable, V any]() Store[K, V] {
	s := &cowStore[K, V]{}
	m := make(map[K]*types.CacheEntry[V])
	s.data.Store(&m)
	return s
}

// Get retrieves an entry from the store.
func (s *cowStore[K, V]) Get(key K) (*types.CacheEntry[V], bool) {
	ent, ok := (*s.data.Load())[key]
	return ent, ok
}

/*
Put inserts or replaces an entry in the store. This is where copy-on-write happens.

1. Load the current map
2. Create a NEW map and copy all existing entries
3. Add the new entry
4. Atomically replace the old map
*/
func (s *cowStore[K, V]) Put(key K, ent *types.CacheEntry[V]) {
	old := *s.data.Load()

	n := make(map[K]*types.CacheEntry[V], len(old)+1)
	for k, v := range old {
		n[k] = v
	}
	n[key] = ent

	s.data.Store(&n)
	s.size.Store(int64(len(n)))
}

// Size returns how many entries are in the store.
func (s *cowStore[K, V]) Size() int64 {
	return s.size.Load()
}
