package monitoring

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCollector(retention int) *Collector {
	return NewCollector(retention,
		WithResourceReader(func() (float64, float64) { return 40, 12.5 }),
		WithDBConnections(func() int { return 3 }),
		WithCacheHitRate(func() float64 { return 0.75 }),
	)
}

func TestCollector_CaptureSummarizesWindow(t *testing.T) {
	c := newTestCollector(10)

	for i := 1; i <= 20; i++ {
		status := 200
		if i%10 == 0 {
			status = 500
		}
		c.ObserveRequest("GET", "/api/v1/tags", status, time.Duration(i)*time.Millisecond)
	}

	snap := c.Capture()
	assert.Equal(t, int64(20), snap.RequestCount)
	assert.Equal(t, 10.5, snap.AvgResponseTimeMs)
	assert.Equal(t, 19.0, snap.P95ResponseTimeMs)
	assert.InDelta(t, 0.1, snap.ErrorRate, 0.0001)
	assert.Equal(t, 40.0, snap.MemoryUsedPercent)
	assert.Equal(t, 12.5, snap.CPUPercent)
	assert.Equal(t, 3, snap.DBOpenConnections)
	assert.Equal(t, 0.75, snap.CacheHitRate)
	assert.Positive(t, snap.Goroutines)

	// window is reset by Capture
	next := c.Capture()
	assert.Zero(t, next.RequestCount)
}

func TestCollector_CurrentFallsBackToLatestSnapshot(t *testing.T) {
	c := newTestCollector(10)
	c.ObserveRequest("GET", "/health", 200, 40*time.Millisecond)
	c.Capture()

	current := c.Current()
	assert.Equal(t, int64(1), current.RequestCount)
	assert.Equal(t, 40.0, current.AvgResponseTimeMs)
}

func TestCollector_RecentNewestFirstAndBounded(t *testing.T) {
	c := newTestCollector(3)

	for i := 1; i <= 5; i++ {
		for j := 0; j < i; j++ {
			c.ObserveRequest("GET", "/", 200, time.Millisecond)
		}
		c.Capture()
	}

	recent := c.Recent(10)
	require.Len(t, recent, 3)
	assert.Equal(t, int64(5), recent[0].RequestCount)
	assert.Equal(t, int64(4), recent[1].RequestCount)
	assert.Equal(t, int64(3), recent[2].RequestCount)

	assert.Len(t, c.Recent(2), 2)
	assert.Empty(t, newTestCollector(3).Recent(5))
}

func TestCollector_ConcurrentObserve(t *testing.T) {
	c := newTestCollector(10)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				c.ObserveRequest("POST", "/api/v1/tools/:slug/usage", 201, time.Millisecond)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1000), c.Capture().RequestCount)
}
