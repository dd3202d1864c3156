package types

import "time"

/*
CacheEntry is one successfully loaded value and the moment it was loaded.

Entries are immutable. A refresh never touches an existing entry,
it builds a new one and the store swaps the pointer.
That is what lets readers use an entry without holding any lock.
*/
type CacheEntry[V any] struct {
	Value    V
	LoadedAt time.Time
}

// NewCacheEntry creates an entry loaded at the given time.
func NewCacheEntry[V any](value V, loadedAt time.Time) *CacheEntry[V] {
	return &CacheEntry[V]{Value: value, LoadedAt: loadedAt}
}

// Age reports how old the entry is at now.
func (e *CacheEntry[V]) Age(now time.Time) time.Duration {
	return now.Sub(e.LoadedAt)
}
