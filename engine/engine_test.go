package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/krisalay/active-cache/engine"
	"github.com/krisalay/active-cache/expiration"
	"github.com/krisalay/active-cache/types"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, loader types.Loader[string, string], metrics types.Metrics) (*engine.CacheEngine[string, string], *clock.Mock) {
	t.Helper()
	exp, err := expiration.NewRefreshAhead(time.Second, 0.5)
	require.NoError(t, err)
	clk := clock.NewMock()
	return engine.NewCacheEngine(exp, nil, loader, metrics, clk), clk
}

func TestEngineLoadStampsCompletionTime(t *testing.T) {
	var clk *clock.Mock
	loader := types.LoaderFunc[string, string](func(ctx context.Context, key string) (string, error) {
		clk.Add(300 * time.Millisecond)
		return "v-" + key, nil
	})
	e, mock := newEngine(t, loader, nil)
	clk = mock
	start := clk.Now()

	ent, err := e.Load(context.Background(), "k")
	require.NoError(t, err)
	require.Equal(t, "v-k", ent.Value)
	require.Equal(t, start.Add(300*time.Millisecond), ent.LoadedAt)
	require.Equal(t, expiration.Fresh, e.State(ent))
}

func TestEngineState(t *testing.T) {
	e, clk := newEngine(t, types.LoaderFunc[string, string](nil), nil)
	require.Equal(t, expiration.Missing, e.State(nil))

	ent := types.NewCacheEntry("v", clk.Now())
	clk.Add(600 * time.Millisecond)
	require.Equal(t, expiration.Stale, e.State(ent))
	clk.Add(400 * time.Millisecond)
	require.Equal(t, expiration.Expired, e.State(ent))
}

func TestEngineLoadErrors(t *testing.T) {
	errBackend := errors.New("backend down")
	stats := &types.Stats{}
	e, _ := newEngine(t, types.LoaderFunc[string, string](func(ctx context.Context, key string) (string, error) {
		if key == "panic" {
			panic("bad key")
		}
		return "", errBackend
	}), stats)

	ent, err := e.Load(context.Background(), "k")
	require.Nil(t, ent)
	require.ErrorIs(t, err, errBackend)
	require.EqualError(t, err, "cannot load key k: backend down")

	ent, err = e.Load(context.Background(), "panic")
	require.Nil(t, ent)
	var loadErr *types.LoadError
	require.ErrorAs(t, err, &loadErr)
	require.Equal(t, "panic", loadErr.Key)

	require.Equal(t, int64(2), stats.Snapshot().LoadErrors)
}
