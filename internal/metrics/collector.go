// Package metrics provides in-memory runtime statistics collection.
package metrics

import (
	"log/slog"
	"math"
	"sync"
	"time"
)

// OperationMetrics holds aggregated metrics for a single operation type.
type OperationMetrics struct {
	Count     int64
	Failures  int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration
}

// OperationSnapshot provides computed stats from raw metrics.
type OperationSnapshot struct {
	Count       int64
	Failures    int64
	TotalTimeMs int64
	AvgTimeMs   float64
	MinTimeMs   int64
	MaxTimeMs   int64
}

// Snapshot represents the process statistics at a point in time.
type Snapshot struct {
	UptimeSeconds float64
	TextGenerate  *OperationSnapshot
	ImageGenerate *OperationSnapshot
	StoreWrite    *OperationSnapshot
}

// Operation names for the collector.
const (
	OpTextGenerate  = "text_generate"
	OpImageGenerate = "image_generate"
	OpStoreWrite    = "store_write"
)

// Collector aggregates in-memory runtime statistics.
// All methods are thread-safe.
type Collector struct {
	mu        sync.RWMutex
	startTime time.Time
	ops       map[string]*OperationMetrics
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		ops:       make(map[string]*OperationMetrics),
	}
}

// getOrCreate returns existing metrics or creates new ones for an operation.
// Caller must hold write lock.
func (c *Collector) getOrCreate(op string) *OperationMetrics {
	m, ok := c.ops[op]
	if !ok {
		m = &OperationMetrics{MinTime: time.Duration(math.MaxInt64)}
		c.ops[op] = m
	}
	return m
}

// RecordTiming records timing for an operation. A non-nil err counts as a failure.
func (c *Collector) RecordTiming(op string, duration time.Duration, err error) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.getOrCreate(op)
	m.Count++
	m.TotalTime += duration
	if err != nil {
		m.Failures++
	}

	if duration < m.MinTime {
		m.MinTime = duration
	}
	if duration > m.MaxTime {
		m.MaxTime = duration
	}
}

// Time runs fn and records its duration under op.
func (c *Collector) Time(op string, fn func() error) error {
	start := time.Now()
	err := fn()
	c.RecordTiming(op, time.Since(start), err)
	return err
}

// snapshotOp creates a snapshot for an operation, returning nil if no data.
func snapshotOp(m *OperationMetrics) *OperationSnapshot {
	if m == nil || m.Count == 0 {
		return nil
	}

	return &OperationSnapshot{
		Count:       m.Count,
		Failures:    m.Failures,
		TotalTimeMs: m.TotalTime.Milliseconds(),
		AvgTimeMs:   float64(m.TotalTime.Milliseconds()) / float64(m.Count),
		MinTimeMs:   m.MinTime.Milliseconds(),
		MaxTimeMs:   m.MaxTime.Milliseconds(),
	}
}

// Snapshot returns a point-in-time snapshot of all metrics.
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Snapshot{
		UptimeSeconds: time.Since(c.startTime).Seconds(),
		TextGenerate:  snapshotOp(c.ops[OpTextGenerate]),
		ImageGenerate: snapshotOp(c.ops[OpImageGenerate]),
		StoreWrite:    snapshotOp(c.ops[OpStoreWrite]),
	}
}

// LogValue renders the snapshot as a slog group.
func (s Snapshot) LogValue() slog.Value {
	attrs := []slog.Attr{slog.Float64("uptime_seconds", s.UptimeSeconds)}
	for _, op := range []struct {
		name string
		snap *OperationSnapshot
	}{
		{OpTextGenerate, s.TextGenerate},
		{OpImageGenerate, s.ImageGenerate},
		{OpStoreWrite, s.StoreWrite},
	} {
		if op.snap == nil {
			continue
		}
		attrs = append(attrs, slog.Group(op.name,
			"count", op.snap.Count,
			"failures", op.snap.Failures,
			"avg_ms", op.snap.AvgTimeMs,
			"max_ms", op.snap.MaxTimeMs,
		))
	}
	return slog.GroupValue(attrs...)
}
