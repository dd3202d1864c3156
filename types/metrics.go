package types

import "sync/atomic"

// This file defines how the cache reports what it is doing.

/*
Metrics is an interface that defines what the cache wants to measure.
Each method represents an event in the cache lifecycle. The cache will call these methods whenever something happens.
*/
type Metrics interface {

	// Hit is called when the cache returns a cached value without waiting for a load.
	Hit()

	// Miss is called when the cache has no entry for a key and has to load it synchronously.
	Miss()

	// Expire is called when an entry is too old to be served and has to be reloaded synchronously.
	Expire()

	// Refresh is called when a background refresh is scheduled for a stale entry.
	Refresh()

	// LoadError is called every time the loader fails, on either path.
	LoadError()
}

/*
NoopMetrics is a "do nothing" implementation of Metrics.
It lets the cache call metrics unconditionally instead of checking for nil everywhere.
*/
type NoopMetrics struct{}

func (NoopMetrics) Hit()       {}
func (NoopMetrics) Miss()      {}
func (NoopMetrics) Expire()    {}
func (NoopMetrics) Refresh()   {}
func (NoopMetrics) LoadError() {}

// Stats is a Metrics implementation backed by atomic counters.
type Stats struct {
	hits       atomic.Int64
	misses     atomic.Int64
	expired    atomic.Int64
	refreshes  atomic.Int64
	loadErrors atomic.Int64
}

func (s *Stats) Hit()       { s.hits.Add(1) }
func (s *Stats) Miss()      { s.misses.Add(1) }
func (s *Stats) Expire()    { s.expired.Add(1) }
func (s *Stats) Refresh()   { s.refreshes.Add(1) }
func (s *Stats) LoadError() { s.loadErrors.Add(1) }

// Snapshot is a point-in-time copy of Stats.
type Snapshot struct {
	Hits       int64
	Misses     int64
	Expired    int64
	Refreshes  int64
	LoadErrors int64
}

// HitRate returns hits / (hits + misses + expired), or 0 when nothing was read.
func (s Snapshot) HitRate() float64 {
	total := s.Hits + s.Misses + s.Expired
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Snapshot returns a point-in-time copy of the counters.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Hits:       s.hits.Load(),
		Misses:     s.misses.Load(),
		Expired:    s.expired.Load(),
		Refreshes:  s.refreshes.Load(),
		LoadErrors: s.loadErrors.Load(),
	}
}
