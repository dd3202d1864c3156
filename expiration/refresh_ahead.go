package expiration

import (
	"errors"
	"time"
)

// DefaultRefreshRatio is the fraction of the timeout after which an entry becomes stale.
const DefaultRefreshRatio = 0.5

/*
RefreshAhead implements "refresh-ahead" expiration:

	0 ........ Timeout*RefreshRatio ........ Timeout ........>
	|   Fresh   |           Stale            |   Expired

A RefreshRatio of 1 leaves no stale window, which turns the cache into a plain
TTL cache that reloads synchronously on expiry.
*/
type RefreshAhead struct {

	// Timeout is the age at which an entry must be reloaded before being returned.
	Timeout time.Duration

	// RefreshRatio is the fraction of Timeout at which a background refresh starts.
	RefreshRatio float64
}

// NewRefreshAhead validates and returns a RefreshAhead strategy.
func NewRefreshAhead(timeout time.Duration, ratio float64) (*RefreshAhead, error) {
	if timeout <= 0 {
		return nil, errors.New("timeout must be positive")
	}
	if ratio <= 0 || ratio > 1 {
		return nil, errors.New("refresh ratio must be in (0, 1]")
	}
	return &RefreshAhead{Timeout: timeout, RefreshRatio: ratio}, nil
}

// RefreshAfter returns the age at which an entry turns stale.
func (r *RefreshAhead) RefreshAfter() time.Duration {
	return time.Duration(float64(r.Timeout) * r.RefreshRatio)
}

// State classifies an entry by its age at now.
func (r *RefreshAhead) State(loadedAt, now time.Time) State {
	age := now.Sub(loadedAt)
	switch {
	case age >= r.Timeout:
		return Expired
	case age >= r.RefreshAfter():
		return Stale
	default:
		return Fresh
	}
}
