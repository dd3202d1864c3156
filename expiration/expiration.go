// This file defines how the age of a cache entry maps to what the cache does with it.

package expiration

import "time"

// State is the per-key state evaluated on every read.
type State int

const (
	// Missing means there is no entry for the key. The caller must wait for a load.
	Missing State = iota

	// Fresh means the entry is young enough to be returned as-is.
	Fresh

	// Stale means the entry can still be returned, but a background refresh should start.
	Stale

	// Expired means the entry is too old to be returned. The caller must wait for a reload.
	Expired
)

func (s State) String() string {
	switch s {
	case Missing:
		return "missing"
	case Fresh:
		return "fresh"
	case Stale:
		return "stale"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}

/*
Strategy is the interface that all expiration rules must follow. Instead of hard-coding
the age thresholds into the cache, we define a strategy so they can be swapped easily.
*/
type Strategy interface {

	// State classifies an entry loaded at loadedAt, as seen at now.
	// It never returns Missing; absent entries are classified by the caller.
	State(loadedAt, now time.Time) State
}
