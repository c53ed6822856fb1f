package promcollector

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/annoset"
)

var _ annoset.MetricsCollector = (*Collector)(nil)

// Collector implements annoset.MetricsCollector with Prometheus counters
// and histograms.
type Collector struct {
	operations *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	items      *prometheus.CounterVec
	warnings   *prometheus.CounterVec
	conflicts  prometheus.Counter
	sources    prometheus.Histogram
}

type options struct {
	namespace string
	buckets   []float64
}

// Option configures a Collector.
type Option func(*options)

// WithNamespace prefixes all metric names. Default "annoset".
func WithNamespace(ns string) Option {
	return func(o *options) {
		o.namespace = ns
	}
}

// WithBuckets sets the latency histogram buckets in seconds.
func WithBuckets(b []float64) Option {
	return func(o *options) {
		o.buckets = b
	}
}

// New creates a collector and registers its metrics with reg. A nil reg
// uses prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer, optFns ...Option) (*Collector, error) {
	o := options{
		namespace: "annoset",
		buckets:   prometheus.DefBuckets,
	}
	for _, fn := range optFns {
		fn(&o)
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace,
			Name:      "operations_total",
			Help:      "Total dataset operations by operation, format and status",
		}, []string{"op", "format", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: o.namespace,
			Name:      "operation_duration_seconds",
			Help:      "Latency of dataset operations",
			Buckets:   o.buckets,
		}, []string{"op", "status"}),
		items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace,
			Name:      "items_total",
			Help:      "Items processed by successful operations",
		}, []string{"op", "format"}),
		warnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace,
			Name:      "import_warnings_total",
			Help:      "Records skipped while importing",
		}, []string{"format"}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: o.namespace,
			Name:      "merge_conflicts_total",
			Help:      "Conflicts reported by merges",
		}),
		sources: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: o.namespace,
			Name:      "merge_sources",
			Help:      "Number of sources per merge",
			Buckets:   prometheus.LinearBuckets(1, 1, 8),
		}),
	}

	for _, col := range []prometheus.Collector{c.operations, c.latency, c.items, c.warnings, c.conflicts, c.sources} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (c *Collector) observe(op, format string, d time.Duration, err error) {
	st := status(err)
	c.operations.WithLabelValues(op, format, st).Inc()
	c.latency.WithLabelValues(op, st).Observe(d.Seconds())
}

// RecordImport implements annoset.MetricsCollector.
func (c *Collector) RecordImport(format string, items, warnings int, d time.Duration, err error) {
	c.observe("import", format, d, err)
	if err != nil {
		return
	}
	c.items.WithLabelValues("import", format).Add(float64(items))
	c.warnings.WithLabelValues(format).Add(float64(warnings))
}

// RecordExport implements annoset.MetricsCollector.
func (c *Collector) RecordExport(format string, items int, d time.Duration, err error) {
	c.observe("export", format, d, err)
	if err == nil {
		c.items.WithLabelValues("export", format).Add(float64(items))
	}
}

// RecordMerge implements annoset.MetricsCollector.
func (c *Collector) RecordMerge(sources, conflicts int, d time.Duration, err error) {
	c.observe("merge", "", d, err)
	if err != nil {
		return
	}
	c.sources.Observe(float64(sources))
	c.conflicts.Add(float64(conflicts))
}

// RecordTransform implements annoset.MetricsCollector.
func (c *Collector) RecordTransform(_, items int, d time.Duration, err error) {
	c.observe("transform", "", d, err)
	if err == nil {
		c.items.WithLabelValues("transform", "").Add(float64(items))
	}
}
