package annoset

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; the
// promcollector package provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordImport is called after each import. items is the number of
	// items read, warnings the number of skipped records.
	RecordImport(format string, items, warnings int, duration time.Duration, err error)

	// RecordExport is called after each export.
	RecordExport(format string, items int, duration time.Duration, err error)

	// RecordMerge is called after each merge with the number of input
	// sources and reported conflicts.
	RecordMerge(sources, conflicts int, duration time.Duration, err error)

	// RecordTransform is called after each materialized transform run.
	RecordTransform(steps, items int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordImport(string, int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordExport(string, int, time.Duration, error)      {}
func (NoopMetricsCollector) RecordMerge(int, int, time.Duration, error)          {}
func (NoopMetricsCollector) RecordTransform(int, int, time.Duration, error)      {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	ImportCount      atomic.Int64
	ImportErrors     atomic.Int64
	ImportItems      atomic.Int64
	ImportWarnings   atomic.Int64
	ImportTotalNanos atomic.Int64
	ExportCount      atomic.Int64
	ExportErrors     atomic.Int64
	ExportItems      atomic.Int64
	MergeCount       atomic.Int64
	MergeErrors      atomic.Int64
	MergeConflicts   atomic.Int64
	MergeTotalNanos  atomic.Int64
	TransformCount   atomic.Int64
	TransformErrors  atomic.Int64
	TransformSteps   atomic.Int64
	TransformItems   atomic.Int64
}

// RecordImport implements MetricsCollector.
func (b *BasicMetricsCollector) RecordImport(_ string, items, warnings int, duration time.Duration, err error) {
	b.ImportCount.Add(1)
	b.ImportTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ImportErrors.Add(1)
		return
	}
	b.ImportItems.Add(int64(items))
	b.ImportWarnings.Add(int64(warnings))
}

// RecordExport implements MetricsCollector.
func (b *BasicMetricsCollector) RecordExport(_ string, items int, _ time.Duration, err error) {
	b.ExportCount.Add(1)
	if err != nil {
		b.ExportErrors.Add(1)
		return
	}
	b.ExportItems.Add(int64(items))
}

// RecordMerge implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMerge(_, conflicts int, duration time.Duration, err error) {
	b.MergeCount.Add(1)
	b.MergeTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.MergeErrors.Add(1)
		return
	}
	b.MergeConflicts.Add(int64(conflicts))
}

// RecordTransform implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTransform(steps, items int, _ time.Duration, err error) {
	b.TransformCount.Add(1)
	if err != nil {
		b.TransformErrors.Add(1)
		return
	}
	b.TransformSteps.Add(int64(steps))
	b.TransformItems.Add(int64(items))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		ImportCount:     b.ImportCount.Load(),
		ImportErrors:    b.ImportErrors.Load(),
		ImportItems:     b.ImportItems.Load(),
		ImportWarnings:  b.ImportWarnings.Load(),
		ImportAvgNanos:  avg(b.ImportTotalNanos.Load(), b.ImportCount.Load()),
		ExportCount:     b.ExportCount.Load(),
		ExportErrors:    b.ExportErrors.Load(),
		ExportItems:     b.ExportItems.Load(),
		MergeCount:      b.MergeCount.Load(),
		MergeErrors:     b.MergeErrors.Load(),
		MergeConflicts:  b.MergeConflicts.Load(),
		MergeAvgNanos:   avg(b.MergeTotalNanos.Load(), b.MergeCount.Load()),
		TransformCount:  b.TransformCount.Load(),
		TransformErrors: b.TransformErrors.Load(),
		TransformSteps:  b.TransformSteps.Load(),
		TransformItems:  b.TransformItems.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	ImportCount     int64
	ImportErrors    int64
	ImportItems     int64
	ImportWarnings  int64
	ImportAvgNanos  int64
	ExportCount     int64
	ExportErrors    int64
	ExportItems     int64
	MergeCount      int64
	MergeErrors     int64
	MergeConflicts  int64
	MergeAvgNanos   int64
	TransformCount  int64
	TransformErrors int64
	TransformSteps  int64
	TransformItems  int64
}
