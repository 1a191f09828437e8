package model

import "time"

// MetricSnapshot is a point-in-time view of the process, kept in memory only
type MetricSnapshot struct {
	CapturedAt        time.Time `json:"captured_at"`
	RequestCount      int64     `json:"request_count"`
	AvgResponseTimeMs float64   `json:"avg_response_time_ms"`
	P95ResponseTimeMs float64   `json:"p95_response_time_ms"`
	ErrorRate         float64   `json:"error_rate"`
	Goroutines        int       `json:"goroutines"`
	HeapAllocBytes    uint64    `json:"heap_alloc_bytes"`
	MemoryUsedPercent float64   `json:"memory_used_percent"`
	CPUPercent        float64   `json:"cpu_percent"`
	DBOpenConnections int       `json:"db_open_connections"`
	CacheHitRate      float64   `json:"cache_hit_rate"`
}
