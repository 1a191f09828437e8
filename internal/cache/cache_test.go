package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newMemoryCache(t *testing.T) (*Cache, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	backend, err := NewMemoryBackend(16)
	require.NoError(t, err)
	return New(backend.WithClock(clock.Now), time.Minute), clock
}

func TestGetCached_ProducerRunsOnceWithinTTL(t *testing.T) {
	c, _ := newMemoryCache(t)
	ctx := context.Background()

	calls := 0
	producer := func(context.Context) (int, error) {
		calls++
		return 42, nil
	}

	first, err := GetCached(ctx, c, "k", 0, producer)
	require.NoError(t, err)
	second, err := GetCached(ctx, c, "k", 0, producer)
	require.NoError(t, err)

	assert.Equal(t, 42, first)
	assert.Equal(t, 42, second)
	assert.Equal(t, 1, calls)

	stats := c.Stats(ctx)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 0.5, stats.HitRate, 0.0001)
}

type countingBackend struct {
	Backend
	lenCalls atomic.Int32
}

func (b *countingBackend) Len(ctx context.Context) (int, error) {
	b.lenCalls.Add(1)
	return b.Backend.Len(ctx)
}

func TestHitRate_DoesNotCountEntries(t *testing.T) {
	memory, err := NewMemoryBackend(16)
	require.NoError(t, err)
	backend := &countingBackend{Backend: memory}
	c := New(backend, time.Minute)
	ctx := context.Background()

	assert.Equal(t, 0.0, c.HitRate())

	producer := func(context.Context) (string, error) { return "v", nil }
	for i := 0; i < 4; i++ {
		_, err := GetCached(ctx, c, "tags:all", 0, producer)
		require.NoError(t, err)
	}

	assert.InDelta(t, 0.75, c.HitRate(), 0.0001)
	assert.Equal(t, int32(0), backend.lenCalls.Load())

	stats := c.Stats(ctx)
	assert.Equal(t, 1, stats.Entries)
	assert.InDelta(t, 0.75, stats.HitRate, 0.0001)
	assert.Equal(t, int32(1), backend.lenCalls.Load())
}

func TestGetCached_ExpiredEntryIsRecomputed(t *testing.T) {
	c, clock := newMemoryCache(t)
	ctx := context.Background()

	calls := 0
	producer := func(context.Context) (int, error) {
		calls++
		return calls, nil
	}

	v, _ := GetCached(ctx, c, "k", 10*time.Second, producer)
	assert.Equal(t, 1, v)

	clock.Advance(9 * time.Second)
	v, _ = GetCached(ctx, c, "k", 10*time.Second, producer)
	assert.Equal(t, 1, v)

	// exactly ttl old counts as expired
	clock.Advance(time.Second)
	v, _ = GetCached(ctx, c, "k", 10*time.Second, producer)
	assert.Equal(t, 2, v)
}

func TestGetCached_ProducerErrorNotCached(t *testing.T) {
	c, _ := newMemoryCache(t)
	ctx := context.Background()

	boom := errors.New("store unavailable")
	_, err := GetCached(ctx, c, "k", 0, func(context.Context) (string, error) {
		return "", boom
	})
	assert.ErrorIs(t, err, boom)

	v, err := GetCached(ctx, c, "k", 0, func(context.Context) (string, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestGetCached_ConcurrentMissesShareProducer(t *testing.T) {
	c, _ := newMemoryCache(t)
	ctx := context.Background()

	var calls atomic.Int32
	release := make(chan struct{})
	producer := func(context.Context) ([]string, error) {
		calls.Add(1)
		<-release
		return []string{"a", "b"}, nil
	}

	var wg sync.WaitGroup
	results := make([][]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := GetCached(ctx, c, "shared", 0, producer)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		assert.Equal(t, []string{"a", "b"}, r)
	}
}

func TestGetCached_NilCacheCallsProducer(t *testing.T) {
	v, err := GetCached(context.Background(), nil, "k", 0, func(context.Context) (int, error) {
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestInvalidate_Patterns(t *testing.T) {
	c, _ := newMemoryCache(t)
	ctx := context.Background()

	for _, key := range []string{"relationships:a", "relationships:b", "tag-usage:all", "analytics:summary"} {
		_, err := GetCached(ctx, c, key, 0, func(context.Context) (int, error) { return 1, nil })
		require.NoError(t, err)
	}

	assert.Equal(t, 2, c.Invalidate(ctx, "relationships:"))
	assert.Equal(t, 2, c.Stats(ctx).Entries)

	assert.Equal(t, 2, c.Invalidate(ctx, ""))
	assert.Equal(t, 0, c.Stats(ctx).Entries)
}

func TestSweep_RemovesOnlyExpired(t *testing.T) {
	c, clock := newMemoryCache(t)
	ctx := context.Background()

	_, _ = GetCached(ctx, c, "short", time.Second, func(context.Context) (int, error) { return 1, nil })
	_, _ = GetCached(ctx, c, "long", time.Hour, func(context.Context) (int, error) { return 1, nil })

	clock.Advance(2 * time.Second)
	assert.Equal(t, 1, c.Sweep(ctx))
	assert.Equal(t, 1, c.Stats(ctx).Entries)
}

func setupRedisCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return New(NewRedisBackend(client, "toolchest:cache:"), time.Minute), mr
}

func TestRedisBackend_ReadThroughAndExpiry(t *testing.T) {
	c, mr := setupRedisCache(t)
	ctx := context.Background()

	calls := 0
	producer := func(context.Context) (map[string]int, error) {
		calls++
		return map[string]int{"base64": calls}, nil
	}

	v, err := GetCached(ctx, c, "analytics:summary", 30*time.Second, producer)
	require.NoError(t, err)
	assert.Equal(t, 1, v["base64"])
	assert.True(t, mr.Exists("toolchest:cache:analytics:summary"))

	v, _ = GetCached(ctx, c, "analytics:summary", 30*time.Second, producer)
	assert.Equal(t, 1, v["base64"])

	mr.FastForward(31 * time.Second)
	v, _ = GetCached(ctx, c, "analytics:summary", 30*time.Second, producer)
	assert.Equal(t, 2, v["base64"])
	assert.Equal(t, 2, calls)
}

func TestRedisBackend_InvalidateBySubstring(t *testing.T) {
	c, mr := setupRedisCache(t)
	ctx := context.Background()

	for _, key := range []string{"relationships:x", "tag-usage:1", "charts:day"} {
		_, err := GetCached(ctx, c, key, 0, func(context.Context) (int, error) { return 1, nil })
		require.NoError(t, err)
	}
	require.NoError(t, mr.Set("unrelated", "keep"))

	assert.Equal(t, 1, c.Invalidate(ctx, "tag-usage"))
	assert.Equal(t, 2, c.Stats(ctx).Entries)

	assert.Equal(t, 2, c.Invalidate(ctx, ""))
	assert.True(t, mr.Exists("unrelated"))
}

func TestRedisBackend_UnavailableFallsThrough(t *testing.T) {
	c, mr := setupRedisCache(t)
	mr.Close()

	v, err := GetCached(context.Background(), c, "k", 0, func(context.Context) (string, error) {
		return "fresh", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", v)
}

func TestEscapeGlob(t *testing.T) {
	assert.Equal(t, `a\*b\?c\[d\]`, escapeGlob("a*b?c[d]"))
}
