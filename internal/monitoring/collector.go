package monitoring

import (
	"math"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/ikkim/toolchest-backend/internal/app/model"
	"github.com/ikkim/toolchest-backend/pkg/logger"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

const maxWindowSamples = 10000

type requestSample struct {
	duration time.Duration
	failed   bool
}

// Collector aggregates request samples between snapshots and keeps a bounded snapshot history.
// Safe for concurrent use.
type Collector struct {
	mu        sync.Mutex
	window    []requestSample
	history   []model.MetricSnapshot // ring buffer
	next      int
	full      bool
	startedAt time.Time

	now          func() time.Time
	dbConns      func() int
	cacheHitRate func() float64
	resources    func() (memPercent, cpuPercent float64)
}

type Option func(*Collector)

// WithDBConnections reports the open connection count in snapshots
func WithDBConnections(fn func() int) Option {
	return func(c *Collector) { c.dbConns = fn }
}

func WithCacheHitRate(fn func() float64) Option {
	return func(c *Collector) { c.cacheHitRate = fn }
}

func WithClock(now func() time.Time) Option {
	return func(c *Collector) { c.now = now }
}

// WithResourceReader replaces the host memory/cpu reader
func WithResourceReader(fn func() (float64, float64)) Option {
	return func(c *Collector) { c.resources = fn }
}

func NewCollector(retention int, opts ...Option) *Collector {
	if retention <= 0 {
		retention = 1440
	}
	c := &Collector{
		history:   make([]model.MetricSnapshot, retention),
		now:       time.Now,
		resources: readHostResources,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.startedAt = c.now()
	return c
}

func (c *Collector) StartedAt() time.Time {
	return c.startedAt
}

func (c *Collector) Uptime() time.Duration {
	return c.now().Sub(c.startedAt)
}

// ObserveRequest records one finished HTTP request
func (c *Collector) ObserveRequest(method, route string, status int, d time.Duration) {
	observeHTTP(method, route, status, d)

	c.mu.Lock()
	if len(c.window) >= maxWindowSamples {
		c.window = c.window[1:]
	}
	c.window = append(c.window, requestSample{duration: d, failed: status >= 500})
	c.mu.Unlock()
}

// Current returns point-in-time metrics without closing the sampling window.
// With no requests since the last capture, request figures come from the latest snapshot.
func (c *Collector) Current() model.MetricSnapshot {
	c.mu.Lock()
	snap := summarize(c.window)
	if snap.RequestCount == 0 {
		if last, ok := c.latestLocked(); ok {
			snap.RequestCount = last.RequestCount
			snap.AvgResponseTimeMs = last.AvgResponseTimeMs
			snap.P95ResponseTimeMs = last.P95ResponseTimeMs
			snap.ErrorRate = last.ErrorRate
		}
	}
	c.mu.Unlock()

	c.fillRuntime(&snap)
	return snap
}

// Capture closes the current window, stores the snapshot and returns it
func (c *Collector) Capture() model.MetricSnapshot {
	c.mu.Lock()
	snap := summarize(c.window)
	c.window = c.window[:0]
	c.mu.Unlock()

	c.fillRuntime(&snap)
	SystemMemoryGauge.Set(snap.MemoryUsedPercent)
	SystemCPUGauge.Set(snap.CPUPercent)

	c.mu.Lock()
	c.history[c.next] = snap
	c.next = (c.next + 1) % len(c.history)
	if c.next == 0 {
		c.full = true
	}
	c.mu.Unlock()

	logger.Debug("Metric snapshot captured", map[string]interface{}{
		"request_count": snap.RequestCount,
		"error_rate":    snap.ErrorRate,
		"goroutines":    snap.Goroutines,
	})
	return snap
}

// Recent returns up to limit snapshots, newest first
func (c *Collector) Recent(limit int) []model.MetricSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	size := c.next
	if c.full {
		size = len(c.history)
	}
	if limit <= 0 || limit > size {
		limit = size
	}

	out := make([]model.MetricSnapshot, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (c.next - i + len(c.history)) % len(c.history)
		out = append(out, c.history[idx])
	}
	return out
}

func (c *Collector) latestLocked() (model.MetricSnapshot, bool) {
	if c.next == 0 && !c.full {
		return model.MetricSnapshot{}, false
	}
	return c.history[(c.next-1+len(c.history))%len(c.history)], true
}

func (c *Collector) fillRuntime(snap *model.MetricSnapshot) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	snap.CapturedAt = c.now().UTC()
	snap.Goroutines = runtime.NumGoroutine()
	snap.HeapAllocBytes = ms.HeapAlloc
	snap.MemoryUsedPercent, snap.CPUPercent = c.resources()
	if c.dbConns != nil {
		snap.DBOpenConnections = c.dbConns()
	}
	if c.cacheHitRate != nil {
		snap.CacheHitRate = c.cacheHitRate()
	}
}

func summarize(samples []requestSample) model.MetricSnapshot {
	var snap model.MetricSnapshot
	if len(samples) == 0 {
		return snap
	}

	durations := make([]float64, len(samples))
	var total float64
	failed := 0
	for i, s := range samples {
		ms := float64(s.duration) / float64(time.Millisecond)
		durations[i] = ms
		total += ms
		if s.failed {
			failed++
		}
	}
	sort.Float64s(durations)

	snap.RequestCount = int64(len(samples))
	snap.AvgResponseTimeMs = round2(total / float64(len(samples)))
	snap.P95ResponseTimeMs = round2(durations[percentileIndex(len(durations), 0.95)])
	snap.ErrorRate = float64(failed) / float64(len(samples))
	return snap
}

// percentileIndex uses the nearest-rank method
func percentileIndex(n int, p float64) int {
	idx := int(math.Ceil(p*float64(n))) - 1
	if idx < 0 {
		return 0
	}
	return idx
}

func readHostResources() (float64, float64) {
	var memPercent, cpuPercent float64
	if vm, err := mem.VirtualMemory(); err == nil {
		memPercent = round2(vm.UsedPercent)
	}
	if pcts, err := cpu.Percent(0, false); err == nil && len(pcts) > 0 {
		cpuPercent = round2(pcts[0])
	}
	return memPercent, cpuPercent
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
