package annoset

import (
	"log/slog"

	"github.com/hupe1980/annoset/codec"
	"github.com/hupe1980/annoset/format"
	"github.com/hupe1980/annoset/transform"
)

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
	workers          int
	ioLimit          int64
	memoryLimit      int64
	mediaCache       int64
	compression      codec.Compression
	formats          *format.Registry
	transforms       *transform.Registry
}

// Option configures a Session.
type Option func(*options)

// WithMetricsCollector configures metrics collection for operations.
// Pass NoopMetricsCollector{} to disable, or implement custom collector.
//
// Example:
//
//	metrics := &annoset.BasicMetricsCollector{}
//	s, _ := annoset.New(annoset.WithMetricsCollector(metrics))
//	// ... use s ...
//	stats := metrics.GetStats()
//	fmt.Printf("Imports: %d, warnings: %d\n", stats.ImportCount, stats.ImportWarnings)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := annoset.NewJSONLogger(slog.LevelInfo)
//	s, _ := annoset.New(annoset.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithWorkers bounds the number of items processed concurrently by
// merges. 0 uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithIOLimit throttles blob reads and writes to bytesPerSec.
// 0 means unlimited.
func WithIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.ioLimit = bytesPerSec
	}
}

// WithMemoryLimit caps the memory reserved by the media cache.
// 0 means unlimited.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithMediaCache keeps up to capacity bytes of decoded images in memory.
// 0 disables the cache.
func WithMediaCache(capacity int64) Option {
	return func(o *options) {
		o.mediaCache = capacity
	}
}

// WithCompression sets the default compression of exported annotation
// documents. Formats without compression support ignore it.
func WithCompression(c codec.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithFormats replaces the format registry. The default is
// format.Default() with the built-in formats.
func WithFormats(r *format.Registry) Option {
	return func(o *options) {
		o.formats = r
	}
}

// WithTransforms replaces the transform registry used by RunPipeline.
// The default is transform.Default().
func WithTransforms(r *transform.Registry) Option {
	return func(o *options) {
		o.transforms = r
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.formats == nil {
		o.formats = format.Default()
	}
	if o.transforms == nil {
		o.transforms = transform.Default()
	}
	return o
}
