package shard_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/krisalay/active-cache/shard"
	"github.com/krisalay/active-cache/types"
	"github.com/stretchr/testify/require"
)

func TestAcquireSingleLeader(t *testing.T) {
	sh := shard.NewShard[string, int]()

	call, leader := sh.Acquire("k")
	require.True(t, leader)
	require.True(t, sh.Loading("k"))

	again, leader := sh.Acquire("k")
	require.False(t, leader)
	require.Same(t, call, again)

	// Other keys are independent.
	_, leader = sh.Acquire("other")
	require.True(t, leader)
}

func TestCompletePublishesAndReleases(t *testing.T) {
	sh := shard.NewShard[string, int]()
	call, _ := sh.Acquire("k")
	waiter, _ := sh.Acquire("k")

	ent := types.NewCacheEntry(42, time.Now())
	sh.Complete("k", call, ent, nil)

	v, err := waiter.Wait(context.Background())
	require.NoError(t, err)
	require.Equal(t, 42, v)
	require.False(t, sh.Loading("k"))

	got, ok := sh.Store.Get("k")
	require.True(t, ok)
	require.Same(t, ent, got)
}

func TestCompleteFailureStoresNothing(t *testing.T) {
	sh := shard.NewShard[string, int]()
	old := types.NewCacheEntry(1, time.Now())
	sh.Store.Put("k", old)

	call, _ := sh.Acquire("k")
	errLoad := errors.New("load failed")
	sh.Complete("k", call, nil, errLoad)

	_, err := call.Wait(context.Background())
	require.ErrorIs(t, err, errLoad)
	require.False(t, sh.Loading("k"))

	got, _ := sh.Store.Get("k")
	require.Same(t, old, got)
}

func TestCompleteFailureIsNotAbandoned(t *testing.T) {
	sh := shard.NewShard[string, int]()
	call, _ := sh.Acquire("k")
	waiter, _ := sh.Acquire("k")

	errLoad := fmt.Errorf("backend timed out: %w", context.DeadlineExceeded)
	sh.Complete("k", call, nil, errLoad)

	_, err := waiter.Wait(context.Background())
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.False(t, waiter.Abandoned())
}

func TestAbandonReleasesWithoutStoring(t *testing.T) {
	sh := shard.NewShard[string, int]()
	call, _ := sh.Acquire("k")
	waiter, _ := sh.Acquire("k")

	sh.Abandon("k", call, context.Canceled)

	_, err := waiter.Wait(context.Background())
	require.ErrorIs(t, err, context.Canceled)
	require.True(t, waiter.Abandoned())
	require.False(t, sh.Loading("k"))
	require.Zero(t, sh.Store.Size())

	// The key is free for a new leader.
	_, leader := sh.Acquire("k")
	require.True(t, leader)
}

func TestCallWaitHonoursContext(t *testing.T) {
	sh := shard.NewShard[string, int]()
	call, _ := sh.Acquire("k")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := call.Wait(ctx)
	require.ErrorIs(t, err, context.Canceled)

	// Still in flight until the leader completes it.
	require.True(t, sh.Loading("k"))
}

func TestCOWStoreSnapshot(t *testing.T) {
	s := shard.NewCOWStore[string, string]()
	require.Zero(t, s.Size())

	first := types.NewCacheEntry("v1", time.Now())
	s.Put("a", first)
	s.Put("b", types.NewCacheEntry("v2", time.Now()))
	require.Equal(t, int64(2), s.Size())

	// Replacing swaps the pointer, the old entry is left untouched.
	s.Put("a", types.NewCacheEntry("v3", time.Now()))
	require.Equal(t, int64(2), s.Size())
	require.Equal(t, "v1", first.Value)

	got, ok := s.Get("a")
	require.True(t, ok)
	require.Equal(t, "v3", got.Value)

	_, ok = s.Get("missing")
	require.False(t, ok)
}

func TestHashSelectorIsStable(t *testing.T) {
	shards := make([]*shard.Shard[int, int], 8)
	for i := range shards {
		shards[i] = shard.NewShard[int, int]()
	}
	sel := shard.NewHashSelector[int, int]()

	used := make(map[*shard.Shard[int, int]]bool)
	for k := 0; k < 1000; k++ {
		sh := sel.Select(k, shards)
		require.Same(t, sh, sel.Select(k, shards), fmt.Sprint("key ", k))
		used[sh] = true
	}
	require.Greater(t, len(used), 1)
}
