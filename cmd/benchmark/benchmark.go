package main

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	cache "github.com/krisalay/active-cache"
	"github.com/krisalay/active-cache/executor"
	"github.com/krisalay/active-cache/types"
)

// ================= BENCHMARK =================

func main() {
	ctx := context.Background()

	const (
		shards     = 16
		keys       = 100000
		goroutines = 200
		opsPerG    = 5000
		timeout    = 200 * time.Millisecond
		latency    = time.Millisecond
		refreshers = 8
	)

	fmt.Println("\n================ ACTIVE CACHE LOAD BENCHMARK =================")

	fmt.Println("CONFIG")
	fmt.Println("---------------------------------")
	fmt.Println("Shards       :", shards)
	fmt.Println("Keys         :", keys)
	fmt.Println("Timeout      :", timeout)
	fmt.Println("Loader Delay :", latency)
	fmt.Println("Goroutines   :", goroutines)
	fmt.Println("Refreshers   :", refreshers)
	fmt.Println("Ops/Goroutine:", opsPerG)
	fmt.Println("---------------------------------")

	// ---------------- Loader ----------------
	var loads atomic.Int64
	loader := types.LoaderFunc[string, int](func(ctx context.Context, key string) (int, error) {
		loads.Add(1)
		time.Sleep(latency)
		return len(key), nil
	})

	stats := &types.Stats{}
	pool := executor.NewPool(refreshers)
	defer pool.Close()

	c, err := cache.New[string, int](loader, timeout,
		cache.WithShards(shards),
		cache.WithExecutor(pool),
		cache.WithMetrics(stats),
		cache.WithFanout(64),
	)
	if err != nil {
		panic(err)
	}

	// ---------------- Warmup ----------------
	fmt.Println("Warming up cache...")
	warm := make([]string, 10000)
	for i := range warm {
		warm[i] = fmt.Sprintf("key-%d", i)
	}
	if _, err := c.GetAll(ctx, warm); err != nil {
		panic(err)
	}
	fmt.Println("Warmup complete.")

	// ---------------- Load Test ----------------
	fmt.Println("Running concurrency benchmark...")

	start := time.Now()

	wg := sync.WaitGroup{}
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < opsPerG; j++ {
				key := fmt.Sprintf("key-%d", (id*opsPerG+j)%keys)
				c.Get(ctx, key)
			}
		}(i)
	}

	wg.Wait()

	duration := time.Since(start)
	backlog := pool.Pending()
	totalOps := goroutines * opsPerG
	snap := stats.Snapshot()

	fmt.Println("\n================ RESULTS =================")
	fmt.Printf("Total Operations : %d\n", totalOps)
	fmt.Printf("Total Time       : %v\n", duration)
	fmt.Printf("Throughput       : %.2f ops/sec\n", float64(totalOps)/duration.Seconds())
	fmt.Printf("Loader Calls     : %d\n", loads.Load())
	fmt.Printf("Refreshes        : %d\n", snap.Refreshes)
	fmt.Printf("Refresh Backlog  : %d\n", backlog)
	fmt.Printf("Hit Rate         : %.2f\n", snap.HitRate())
	fmt.Println("=========================================")
}
