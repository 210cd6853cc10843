package cache

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*miniredis.Miniredis, *Cache) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	c := NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() {
		_ = c.Close()
		mr.Close()
	})
	return mr, c
}

type ctxKey struct{}

func TestGetOrLoad_HitAndMiss(t *testing.T) {
	mr, c := newTestCache(t)
	ctx := context.Background()
	var loads atomic.Int32
	load := func(context.Context) ([]byte, error) {
		loads.Add(1)
		return []byte("v"), nil
	}

	for i := 0; i < 3; i++ {
		b, err := c.GetOrLoad(ctx, "k", time.Minute, load)
		require.NoError(t, err)
		assert.Equal(t, "v", string(b))
	}
	assert.EqualValues(t, 1, loads.Load())
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
	assert.Greater(t, mr.TTL("k"), time.Duration(0))
}

func TestGetOrLoad_CallerCancelDoesNotFailSharedLoad(t *testing.T) {
	mr, c := newTestCache(t)
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	var loadErr atomic.Value
	var sawValue atomic.Bool
	load := func(ctx context.Context) ([]byte, error) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		if err := ctx.Err(); err != nil {
			loadErr.Store(err)
			return nil, err
		}
		sawValue.Store(ctx.Value(ctxKey{}) == "first")
		return []byte("listings"), nil
	}

	first, cancel := context.WithCancel(context.WithValue(context.Background(), ctxKey{}, "first"))
	firstDone := make(chan error, 1)
	go func() {
		_, err := c.GetOrLoad(first, "k", time.Minute, load)
		firstDone <- err
	}()
	<-started
	cancel()
	assert.ErrorIs(t, <-firstDone, context.Canceled, "the caller that gave up sees its own cancellation")

	secondDone := make(chan []byte, 1)
	go func() {
		b, err := c.GetOrLoad(context.Background(), "k", time.Minute, load)
		assert.NoError(t, err)
		secondDone <- b
	}()
	time.Sleep(20 * time.Millisecond)
	close(release)

	select {
	case b := <-secondDone:
		assert.Equal(t, "listings", string(b))
	case <-time.After(2 * time.Second):
		t.Fatal("second caller never returned")
	}
	assert.Nil(t, loadErr.Load(), "load ran with a cancelled context")
	assert.True(t, sawValue.Load(), "load keeps the request values")
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "listings", got)
}

func TestGetOrLoad_LoadTimeout(t *testing.T) {
	mr, c := newTestCache(t)
	c.LoadTimeout = 10 * time.Millisecond

	_, err := c.GetOrLoad(context.Background(), "k", time.Minute, func(ctx context.Context) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, mr.Exists("k"))
}

func TestGetOrLoad_RedisDown(t *testing.T) {
	c := NewFromClient(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1}))
	t.Cleanup(func() { _ = c.Close() })

	b, err := c.GetOrLoad(context.Background(), "k", time.Minute, func(context.Context) ([]byte, error) {
		return []byte("from store"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "from store", string(b))
}

func TestGenerationAndBump(t *testing.T) {
	_, c := newTestCache(t)
	ctx := context.Background()

	n, err := c.Generation(ctx, "gen")
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = c.Bump(ctx, "gen")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = c.Generation(ctx, "gen")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
