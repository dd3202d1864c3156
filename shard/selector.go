package shard

import "hash/maphash"

/*
This file decides HOW a cache key is assigned to a shard.
If every key went to the same shard, that shard's lock would become a bottleneck.
*/

// Selector decides which shard should handle a given key.
type Selector[K comparable, V any] interface {
	Select(K, []*Shard[K, V]) *Shard[K, V]
}

// HashSelector spreads keys over shards by hashing them with a per-cache seed.
type HashSelector[K comparable, V any] struct {
	seed maphash.Seed
}

func NewHashSelector[K comparable, V any]() *HashSelector[K, V] {
	return &HashSelector[K, V]{seed: maphash.MakeSeed()}
}

// Select chooses the shard for a given key.
func (h *HashSelector[K, V]) Select(key K, shards []*Shard[K, V]) *Shard[K, V] {
	idx := maphash.Comparable(h.seed, key) % uint64(len(shards))
	return shards[idx]
}
