package shard

import (
	"sync"

	"github.com/krisalay/active-cache/types"
)

/*
This file defines what a "Shard" is. A shard is a small, independent piece of the cache.
Instead of having: One big cache and one big lock
We split the cache into many shards. Each shard:
- Holds some portion of the entries
- Tracks which of its keys are being loaded right now
- Has its own lock for writes

Keys in different shards never contend with each other.
*/
type Shard[K comparable, V any] struct {

	// Store holds the key → entry data for this shard. Reads are lock-free.
	Store Store[K, V]

	// mu protects writes to Store and the flights map.
	// Publishing a new entry and clearing the key's flight happen under one lock hold.
	mu sync.Mutex

	// flights holds the single in-flight load for each key being loaded.
	flights map[K]*Call[V]
}

func NewShard[K comparable, V any]() *Shard[K, V] {
	return &Shard[K, V]{
		Store:   NewCOWStore[K, V](),
		flights: make(map[K]*Call[V]),
	}
}

/*
Acquire returns the in-flight load for key.

If no load is in flight, a new Call is registered and leader is true: the caller
owns the load and must finish it with Complete. Otherwise the existing Call is
returned and leader is false.
*/
func (s *Shard[K, V]) Acquire(key K) (call *Call[V], leader bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.flights[key]; ok {
		return c, false
	}
	c := newCall[V]()
	s.flights[key] = c
	return c, true
}

/*
Complete finishes a load started with Acquire.

On success (ent != nil) the entry is published first, then the flight is removed
and waiters are released, all under the shard lock. On failure nothing is
stored: a failed load never creates or replaces an entry.
*/
func (s *Shard[K, V]) Complete(key K, call *Call[V], ent *types.CacheEntry[V], err error) {
	s.finish(key, call, ent, err, false)
}

/*
Abandon finishes a load started with Acquire that produced no result of its own:
the leader's context ended first, or the load was never run. Nothing is stored.
Waiters get err, and Abandoned on the call reports true so that a waiter that is
still interested can load the key itself.
*/
func (s *Shard[K, V]) Abandon(key K, call *Call[V], err error) {
	s.finish(key, call, nil, err, true)
}

func (s *Shard[K, V]) finish(key K, call *Call[V], ent *types.CacheEntry[V], err error, abandoned bool) {
	s.mu.Lock()
	if err == nil && ent != nil {
		if cur, ok := s.Store.Get(key); !ok || cur != ent {
			s.Store.Put(key, ent)
		}
	}
	if s.flights[key] == call {
		delete(s.flights, key)
	}
	s.mu.Unlock()

	var v V
	if ent != nil {
		v = ent.Value
	}
	call.finish(v, err, abandoned)
}

// Loading reports whether a load is in flight for key.
func (s *Shard[K, V]) Loading(key K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.flights[key]
	return ok
}
