package annoset

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/annoset/blobstore"
	"github.com/hupe1980/annoset/codec"
	"github.com/hupe1980/annoset/dataset"
	"github.com/hupe1980/annoset/format"
	"github.com/hupe1980/annoset/media"
	"github.com/hupe1980/annoset/merge"
	"github.com/hupe1980/annoset/resource"
	"github.com/hupe1980/annoset/transform"

	// Built-in formats register themselves with format.Default().
	_ "github.com/hupe1980/annoset/format/native"
	_ "github.com/hupe1980/annoset/format/yolo"
)

// AutoFormat asks Import to detect the format of the source.
const AutoFormat = "auto"

// Session bundles the registries, resource limits, logger and metrics
// shared by dataset operations. It is safe for concurrent use.
type Session struct {
	opts  options
	log   *Logger
	rc    *resource.Controller
	cache *media.Cache
}

// New creates a session.
func New(optFns ...Option) (*Session, error) {
	o := applyOptions(optFns)
	if o.workers < 0 {
		return nil, dataset.Invalid("workers", "must not be negative, got %d", o.workers)
	}
	if o.ioLimit < 0 || o.memoryLimit < 0 || o.mediaCache < 0 {
		return nil, dataset.Invalid("limits", "must not be negative")
	}

	s := &Session{
		opts: o,
		log:  o.logger,
		rc: resource.NewController(resource.Config{
			MaxWorkers:         int64(o.workers),
			IOLimitBytesPerSec: o.ioLimit,
			MemoryLimitBytes:   o.memoryLimit,
		}),
	}
	if o.mediaCache > 0 {
		s.cache = media.NewCache(o.mediaCache, s.rc)
	}
	return s, nil
}

// Formats returns the names of the registered formats.
func (s *Session) Formats() []string {
	return s.opts.formats.Names()
}

// Transforms returns the names of the registered transforms.
func (s *Session) Transforms() []string {
	return s.opts.transforms.Names()
}

// Resources returns the controller that bounds the session's workers,
// IO and media memory.
func (s *Session) Resources() *resource.Controller {
	return s.rc
}

// MediaCacheStats returns hit and miss counts of the media cache.
func (s *Session) MediaCacheStats() (hits, misses int64) {
	if s.cache == nil {
		return 0, 0
	}
	return s.cache.Stats()
}

// Detect returns the single format that recognises the store.
func (s *Session) Detect(ctx context.Context, store blobstore.Store) (string, error) {
	found, err := s.opts.formats.Detect(ctx, store)
	if err != nil {
		return "", err
	}
	switch len(found) {
	case 0:
		return "", format.Errorf(AutoFormat, "", "no registered format recognises the source")
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("%w: %s", ErrAmbiguousFormat, strings.Join(found, ", "))
	}
}

func (s *Session) lookup(ctx context.Context, name string, store blobstore.Store) (format.Format, error) {
	if name == "" || name == AutoFormat {
		detected, err := s.Detect(ctx, store)
		if err != nil {
			return nil, err
		}
		name = detected
	}
	f, err := s.opts.formats.Lookup(name)
	if err != nil {
		return nil, unsupported("format", name, err)
	}
	return f, nil
}

func (s *Session) formatOptions(name string, fo format.Options) format.Options {
	if fo.Resources == nil {
		fo.Resources = s.rc
	}
	if fo.MediaCache == nil {
		fo.MediaCache = s.cache
	}
	if fo.Logger == nil {
		fo.Logger = s.log.WithFormat(name).Logger
	}
	if fo.Compression == codec.None {
		fo.Compression = s.opts.compression
	}
	return fo
}

// Import reads a dataset from store in the named format. An empty name or
// AutoFormat detects the format. Records that could not be read are
// returned as warnings.
func (s *Session) Import(ctx context.Context, name string, store blobstore.Store, fo format.Options) (*dataset.Dataset, []format.Warning, error) {
	start := time.Now()

	f, err := s.lookup(ctx, name, store)
	if err != nil {
		err = translateError(err)
		s.record(ctx, name, 0, 0, start, err)
		return nil, nil, err
	}

	ds, warnings, err := f.Extract(ctx, store, s.formatOptions(f.Name(), fo))
	err = translateError(err)

	items := 0
	if ds != nil {
		items = ds.Len()
	}
	s.record(ctx, f.Name(), items, len(warnings), start, err)
	if err != nil {
		return nil, warnings, err
	}
	return ds, warnings, nil
}

func (s *Session) record(ctx context.Context, name string, items, warnings int, start time.Time, err error) {
	d := time.Since(start)
	s.opts.metricsCollector.RecordImport(name, items, warnings, d, err)
	s.log.LogImport(ctx, name, items, warnings, d, err)
}

// Export writes src to store in the named format.
func (s *Session) Export(ctx context.Context, src dataset.Source, name string, store blobstore.Store, fo format.Options) error {
	start := time.Now()

	f, err := s.opts.formats.Lookup(name)
	if err != nil {
		err = unsupported("format", name, err)
		s.opts.metricsCollector.RecordExport(name, 0, time.Since(start), err)
		s.log.LogExport(ctx, name, 0, time.Since(start), err)
		return err
	}

	err = translateError(f.Export(ctx, src, store, s.formatOptions(name, fo)))

	items := 0
	if err == nil {
		items = dataset.Count(src)
	}
	d := time.Since(start)
	s.opts.metricsCollector.RecordExport(name, items, d, err)
	s.log.LogExport(ctx, name, items, d, err)
	return err
}

// Convert imports from one store and exports to another.
func (s *Session) Convert(ctx context.Context, from string, src blobstore.Store, to string, dst blobstore.Store, fo format.Options) ([]format.Warning, error) {
	ds, warnings, err := s.Import(ctx, from, src, fo)
	if err != nil {
		return warnings, err
	}
	if err := s.Export(ctx, ds, to, dst, fo); err != nil {
		return warnings, err
	}
	return warnings, nil
}

// Filter returns a lazy view of src restricted by a query expression.
func (s *Session) Filter(src dataset.Source, expr string, mode transform.Mode, opts ...transform.FilterOption) (dataset.Source, error) {
	f, err := transform.NewFilter(expr, mode, opts...)
	if err != nil {
		return nil, translateError(err)
	}
	return f.Apply(src), nil
}

// Transform applies steps in order and materializes the result.
func (s *Session) Transform(ctx context.Context, src dataset.Source, steps ...transform.Transform) (*dataset.Dataset, error) {
	return s.run(ctx, src, transform.NewPipeline(steps...))
}

// RunPipeline builds a pipeline from def with the session's transform
// registry and runs it over src.
func (s *Session) RunPipeline(ctx context.Context, src dataset.Source, def *transform.Definition) (*dataset.Dataset, error) {
	if def == nil {
		return nil, dataset.Invalid("definition", "must not be nil")
	}
	p, err := s.opts.transforms.Build(def)
	if err != nil {
		err = translateError(err)
		s.opts.metricsCollector.RecordTransform(len(def.Steps), 0, 0, err)
		s.log.LogTransform(ctx, len(def.Steps), 0, 0, err)
		return nil, err
	}
	return s.run(ctx, src, p)
}

func (s *Session) run(ctx context.Context, src dataset.Source, p *transform.Pipeline) (*dataset.Dataset, error) {
	start := time.Now()
	ds, err := p.Run(ctx, src, transform.WithLogger(s.log.Logger))
	err = translateError(err)

	items := 0
	if ds != nil {
		items = ds.Len()
	}
	d := time.Since(start)
	s.opts.metricsCollector.RecordTransform(p.Len(), items, d, err)
	s.log.LogTransform(ctx, p.Len(), items, d, err)
	if err != nil {
		return nil, err
	}
	return ds, nil
}

// Merge combines sources with the session's workers, resource limits and
// logger. opts are applied after the session defaults.
func (s *Session) Merge(ctx context.Context, sources []dataset.Source, opts ...merge.Option) (*dataset.Dataset, *merge.Report, error) {
	start := time.Now()

	all := append([]merge.Option{
		merge.WithResourceController(s.rc),
		merge.WithLogger(s.log.Logger),
	}, opts...)

	ds, report, err := merge.Merge(ctx, sources, all...)
	err = translateError(err)

	items, conflicts := 0, 0
	if report != nil {
		conflicts = len(report.Conflicts)
	}
	if ds != nil {
		items = ds.Len()
	}
	d := time.Since(start)
	s.opts.metricsCollector.RecordMerge(len(sources), conflicts, d, err)
	s.log.LogMerge(ctx, len(sources), items, conflicts, d, err)
	if err != nil {
		return nil, nil, err
	}
	return ds, report, nil
}

// IsNotFound reports whether err is caused by a missing item or blob.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, blobstore.ErrNotFound)
}
