package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	cache "github.com/krisalay/active-cache"
	"github.com/krisalay/active-cache/executor"
	"github.com/krisalay/active-cache/types"
)

// ================= METADATA SERVICE =================

// MetadataService stands in for a slow remote lookup. Every load returns a new version.
type MetadataService struct {
	mu       sync.Mutex
	versions map[string]int
	down     bool
	latency  time.Duration
}

func NewMetadataService(latency time.Duration) *MetadataService {
	return &MetadataService{versions: make(map[string]int), latency: latency}
}

func (s *MetadataService) Load(ctx context.Context, key string) (string, error) {
	select {
	case <-time.After(s.latency):
	case <-ctx.Done():
		return "", ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down {
		fmt.Println("SERVICE → load:", key, "FAILED")
		return "", errors.New("metadata service unavailable")
	}
	s.versions[key]++
	v := fmt.Sprintf("%s@v%d", key, s.versions[key])
	fmt.Println("SERVICE → load:", key, "=", v)
	return v, nil
}

func (s *MetadataService) SetDown(down bool) {
	s.mu.Lock()
	s.down = down
	s.mu.Unlock()
}

// ================= MAIN =================

func main() {
	ctx := context.Background()

	const timeout = 1 * time.Second

	fmt.Println("\n==================== SYSTEM BOOT ====================")
	fmt.Println("TIMEOUT         :", timeout)
	fmt.Println("REFRESH AFTER   :", timeout/2)
	fmt.Println("LOADER LATENCY  : 100ms")

	service := NewMetadataService(100 * time.Millisecond)
	stats := &types.Stats{}

	pool := executor.NewPool(2)
	defer pool.Close()

	c, err := cache.New[string, string](service, timeout,
		cache.WithExecutor(pool),
		cache.WithMetrics(stats),
	)
	if err != nil {
		panic(err)
	}

	get := func(key string) {
		start := time.Now()
		v, err := c.Get(ctx, key)
		if err != nil {
			fmt.Printf("CACHE   → GET %s failed after %v: %v\n", key, time.Since(start).Round(time.Millisecond), err)
			return
		}
		fmt.Printf("CACHE   → GET %s = %s (%v)\n", key, v, time.Since(start).Round(time.Millisecond))
	}

	// ====================================================
	fmt.Println("\n==================== 1) MISSING ====================")
	get("schema")

	// ====================================================
	fmt.Println("\n==================== 2) FRESH ====================")
	get("schema")

	// ====================================================
	fmt.Println("\n==================== 3) STALE ====================")
	time.Sleep(600 * time.Millisecond)
	get("schema")
	fmt.Println("CACHE   → refresh running in background")
	time.Sleep(200 * time.Millisecond)
	get("schema")

	// ====================================================
	fmt.Println("\n==================== 4) EXPIRED ====================")
	time.Sleep(timeout + 100*time.Millisecond)
	get("schema")

	// ====================================================
	fmt.Println("\n==================== 5) SINGLEFLIGHT ====================")
	wg := sync.WaitGroup{}
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			v, _ := c.Get(ctx, "table")
			fmt.Printf("GOROUTINE-%d → GET table = %v\n", id, v)
		}(i)
	}
	wg.Wait()

	// ====================================================
	fmt.Println("\n==================== 6) FAILURES ====================")
	service.SetDown(true)
	get("column")
	time.Sleep(600 * time.Millisecond)
	get("table")
	time.Sleep(200 * time.Millisecond)
	fmt.Println("CACHE   → background refresh failed, stale value kept")
	get("table")
	service.SetDown(false)
	get("column")

	// ====================================================
	snap := stats.Snapshot()
	fmt.Println("\n==================== METRICS ====================")
	fmt.Printf("HITS        : %d\n", snap.Hits)
	fmt.Printf("MISSES      : %d\n", snap.Misses)
	fmt.Printf("EXPIRED     : %d\n", snap.Expired)
	fmt.Printf("REFRESHES   : %d\n", snap.Refreshes)
	fmt.Printf("LOAD ERRORS : %d\n", snap.LoadErrors)
	fmt.Printf("HIT RATE    : %.2f\n", snap.HitRate())
	fmt.Printf("ENTRIES     : %d\n", c.Len())
}
