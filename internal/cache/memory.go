package cache

import (
	"context"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type entry struct {
	data       []byte
	insertedAt time.Time
	ttl        time.Duration
}

// valid while now - insertedAt < ttl
func (e entry) expired(now time.Time) bool {
	return now.Sub(e.insertedAt) >= e.ttl
}

// MemoryBackend is a bounded in-process LRU with per-entry TTL
type MemoryBackend struct {
	entries *lru.Cache[string, entry]
	now     func() time.Time
}

func NewMemoryBackend(maxEntries int) (*MemoryBackend, error) {
	if maxEntries <= 0 {
		maxEntries = 1024
	}
	entries, err := lru.New[string, entry](maxEntries)
	if err != nil {
		return nil, err
	}
	return &MemoryBackend{entries: entries, now: time.Now}, nil
}

// WithClock replaces the time source; used by tests
func (m *MemoryBackend) WithClock(now func() time.Time) *MemoryBackend {
	m.now = now
	return m
}

func (m *MemoryBackend) Name() string {
	return "memory"
}

func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	e, ok := m.entries.Get(key)
	if !ok {
		return nil, false, nil
	}
	if e.expired(m.now()) {
		m.entries.Remove(key)
		return nil, false, nil
	}
	return e.data, true, nil
}

func (m *MemoryBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.entries.Add(key, entry{data: value, insertedAt: m.now(), ttl: ttl})
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, pattern string) (int, error) {
	if pattern == "" {
		n := m.entries.Len()
		m.entries.Purge()
		return n, nil
	}
	removed := 0
	for _, key := range m.entries.Keys() {
		if strings.Contains(key, pattern) && m.entries.Remove(key) {
			removed++
		}
	}
	return removed, nil
}

func (m *MemoryBackend) Sweep(_ context.Context) (int, error) {
	now := m.now()
	removed := 0
	for _, key := range m.entries.Keys() {
		if e, ok := m.entries.Peek(key); ok && e.expired(now) {
			if m.entries.Remove(key) {
				removed++
			}
		}
	}
	return removed, nil
}

func (m *MemoryBackend) Len(_ context.Context) (int, error) {
	return m.entries.Len(), nil
}
