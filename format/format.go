package format

import (
	"context"
	"log/slog"
	"strings"

	"github.com/hupe1980/annoset/blobstore"
	"github.com/hupe1980/annoset/codec"
	"github.com/hupe1980/annoset/dataset"
	"github.com/hupe1980/annoset/media"
	"github.com/hupe1980/annoset/resource"
)

// Options configures one extraction or export. Formats ignore options
// they do not support.
type Options struct {
	// SaveMedia writes image data next to the annotations on export.
	SaveMedia bool
	// ImageExt is the extension of saved images, e.g. ".png". Empty keeps
	// the extension of the source path, or ".jpg".
	ImageExt string
	// Compression applies to annotation documents of formats that
	// support it.
	Compression codec.Compression
	// Extra holds format specific settings.
	Extra map[string]string

	// Resources throttles blob IO. Nil means unlimited.
	Resources *resource.Controller
	// MediaCache caches images loaded from the store. May be nil.
	MediaCache *media.Cache
	// Logger receives progress and skipped records. Nil discards.
	Logger *slog.Logger
}

// Log returns the configured logger or a discarding one.
func (o Options) Log() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

// Ext returns the image extension for a media path.
func (o Options) Ext(path string) string {
	if o.ImageExt != "" {
		if !strings.HasPrefix(o.ImageExt, ".") {
			return "." + strings.ToLower(o.ImageExt)
		}
		return strings.ToLower(o.ImageExt)
	}
	return media.Ext(path, ".jpg")
}

// Extractor parses a dataset out of a store. It must not modify the store.
type Extractor interface {
	Extract(ctx context.Context, store blobstore.Store, opts Options) (*dataset.Dataset, []Warning, error)
}

// Exporter writes a dataset into a store.
type Exporter interface {
	Export(ctx context.Context, src dataset.Source, store blobstore.Store, opts Options) error
}

// Format is a named Extractor/Exporter pair.
type Format interface {
	Name() string
	Extractor
	Exporter
	// Detect reports whether the store looks like a dataset in this format.
	Detect(ctx context.Context, store blobstore.Store) (bool, error)
}
