package cache

import (
	"context"
	"sync"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

/*
GetAll calls Get for every key, with at most fanout keys in progress at once.

Each key follows exactly the same rules as Get. The returned map holds every
key that produced a value. Failed keys are left out, and their errors are
combined into the returned *multierror.Error.
*/
func (c *ActiveCache[K, V]) GetAll(ctx context.Context, keys []K) (map[K]V, error) {
	var (
		mu   sync.Mutex
		out  = make(map[K]V, len(keys))
		errs *multierror.Error
	)

	var g errgroup.Group
	g.SetLimit(c.fanout)

	for _, key := range keys {
		g.Go(func() error {
			v, err := c.Get(ctx, key)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = multierror.Append(errs, err)
				return nil
			}
			out[key] = v
			return nil
		})
	}
	_ = g.Wait()

	return out, errs.ErrorOrNil()
}
