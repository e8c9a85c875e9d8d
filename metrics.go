package veffgo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus
// (see package promcollector).
type MetricsCollector interface {
	// RecordWrite is called after each Write call.
	// rows is the number of records in the batch, err is nil if successful.
	RecordWrite(writer string, rows int, duration time.Duration, err error)

	// RecordClose is called once per writer when its artifact is released.
	RecordClose(writer string, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordWrite(string, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordClose(string, time.Duration, error)      {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and tests without external dependencies.
type BasicMetricsCollector struct {
	WriteCount      atomic.Int64
	WriteErrors     atomic.Int64
	WriteRows       atomic.Int64
	WriteTotalNanos atomic.Int64
	CloseCount      atomic.Int64
	CloseErrors     atomic.Int64
}

// RecordWrite implements MetricsCollector.
func (b *BasicMetricsCollector) RecordWrite(_ string, rows int, duration time.Duration, err error) {
	b.WriteCount.Add(1)
	b.WriteTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.WriteErrors.Add(1)
		return
	}
	b.WriteRows.Add(int64(rows))
}

// RecordClose implements MetricsCollector.
func (b *BasicMetricsCollector) RecordClose(_ string, _ time.Duration, err error) {
	b.CloseCount.Add(1)
	if err != nil {
		b.CloseErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		WriteCount:    b.WriteCount.Load(),
		WriteErrors:   b.WriteErrors.Load(),
		WriteRows:     b.WriteRows.Load(),
		WriteAvgNanos: b.getAvgWriteNanos(),
		CloseCount:    b.CloseCount.Load(),
		CloseErrors:   b.CloseErrors.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgWriteNanos() int64 {
	count := b.WriteCount.Load()
	if count == 0 {
		return 0
	}
	return b.WriteTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	WriteCount    int64
	WriteErrors   int64
	WriteRows     int64
	WriteAvgNanos int64
	CloseCount    int64
	CloseErrors   int64
}
