package cache

import (
	"errors"
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/krisalay/active-cache/executor"
	"github.com/krisalay/active-cache/expiration"
	"github.com/krisalay/active-cache/types"
)

const (
	defaultShards = 16
	defaultFanout = 8
)

type config struct {
	clock        clock.Clock
	executor     executor.Executor
	fanout       int
	metrics      types.Metrics
	refreshRatio float64
	shards       int
}

// Option is a function that sets a value in a config.
type Option func(*config) error

// getOpts creates a config and applies Options to it.
func getOpts(opts []Option) (config, error) {
	cfg := config{
		fanout:       defaultFanout,
		refreshRatio: expiration.DefaultRefreshRatio,
		shards:       defaultShards,
	}
	for i, opt := range opts {
		if err := opt(&cfg); err != nil {
			return config{}, fmt.Errorf("option %d failed: %s", i, err)
		}
	}
	return cfg, nil
}

// WithRefreshRatio sets the fraction of the timeout after which a cached value
// is refreshed in the background while still being served. A ratio of 1
// disables background refresh, so values are only reloaded once expired.
//
// Default is 0.5.
func WithRefreshRatio(ratio float64) Option {
	return func(cfg *config) error {
		if ratio <= 0 || ratio > 1 {
			return fmt.Errorf("refresh ratio %v not in (0, 1]", ratio)
		}
		cfg.refreshRatio = ratio
		return nil
	}
}

// WithExecutor sets the executor that background refreshes are submitted to.
//
// Default is the process-wide pool returned by executor.Shared, created the
// first time a refresh is needed.
func WithExecutor(e executor.Executor) Option {
	return func(cfg *config) error {
		if e == nil {
			return errors.New("nil executor")
		}
		cfg.executor = e
		return nil
	}
}

// WithShards sets the number of independently locked shards keys are spread over.
//
// Default is 16.
func WithShards(n int) Option {
	return func(cfg *config) error {
		if n < 1 {
			return fmt.Errorf("shard count must be positive, got %d", n)
		}
		cfg.shards = n
		return nil
	}
}

// WithFanout sets how many keys GetAll loads concurrently.
//
// Default is 8.
func WithFanout(n int) Option {
	return func(cfg *config) error {
		if n < 1 {
			return fmt.Errorf("fanout must be positive, got %d", n)
		}
		cfg.fanout = n
		return nil
	}
}

// WithMetrics sets the receiver of cache events.
func WithMetrics(m types.Metrics) Option {
	return func(cfg *config) error {
		cfg.metrics = m
		return nil
	}
}

// WithClock sets the time source used to stamp and age entries. Useful for
// testing refresh behavior without sleeping.
func WithClock(clk clock.Clock) Option {
	return func(cfg *config) error {
		cfg.clock = clk
		return nil
	}
}
