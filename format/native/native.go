package native

import (
	"context"
	"maps"
	"path"
	"slices"
	"strconv"
	"strings"

	"github.com/hupe1980/annoset/blobstore"
	"github.com/hupe1980/annoset/codec"
	"github.com/hupe1980/annoset/dataset"
	"github.com/hupe1980/annoset/format"
)

// Name is the registered format name.
const Name = "native"

const (
	annotationsDir = "annotations/"
	imagesDir      = "images"
)

func init() {
	format.MustRegister(Format{})
}

// Format reads and writes the native format.
type Format struct{}

// Name returns "native".
func (Format) Name() string { return Name }

// Detect reports whether the store holds native annotation documents.
func (Format) Detect(ctx context.Context, store blobstore.Store) (bool, error) {
	names, err := documents(ctx, store)
	return len(names) > 0, err
}

func documents(ctx context.Context, store blobstore.Store) ([]string, error) {
	names, err := store.List(ctx, annotationsDir)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(names, func(n string) bool {
		_, ok := subsetOf(n)
		return !ok
	}), nil
}

// subsetOf derives the subset from a document name.
func subsetOf(name string) (string, bool) {
	rest, ok := strings.CutPrefix(name, annotationsDir)
	if !ok || strings.Contains(rest, "/") {
		return "", false
	}
	for _, c := range []codec.Compression{codec.None, codec.Zstd, codec.LZ4} {
		if s, ok := strings.CutSuffix(rest, ".json"+c.Ext()); ok && s != "" {
			return s, true
		}
	}
	return "", false
}

// Export writes one document per subset in sorted subset order. Items keep
// their order within a subset.
func (Format) Export(ctx context.Context, src dataset.Source, store blobstore.Store, opts format.Options) error {
	cats := encodeCategories(src.Categories())
	subsets := make(map[string][]itemDoc)
	for it := range src.Items() {
		if err := ctx.Err(); err != nil {
			return err
		}
		doc := encodeItem(it)
		if opts.SaveMedia && it.Media != nil {
			name := path.Join(imagesDir, it.Subset, it.ID+opts.Ext(it.Media.Path))
			saved, err := format.SaveMedia(ctx, store, it, name, opts)
			if err != nil {
				return err
			}
			if saved {
				doc.Media.Path = name
			}
		}
		subsets[it.Subset] = append(subsets[it.Subset], doc)
	}
	if len(subsets) == 0 {
		subsets[dataset.DefaultSubset] = []itemDoc{}
	}

	c := codec.Compressed{Codec: codec.Default, Compression: opts.Compression}
	for _, subset := range slices.Sorted(maps.Keys(subsets)) {
		data, err := c.Marshal(document{
			Info:       info{Version: formatVersion, Subset: subset},
			Categories: cats,
			Items:      subsets[subset],
		})
		if err != nil {
			return &format.FormatError{Format: Name, Path: subset, Err: err}
		}
		name := annotationsDir + subset + ".json" + opts.Compression.Ext()
		if err := format.WriteBlob(ctx, store, name, data, opts); err != nil {
			return err
		}
	}
	opts.Log().Debug("native export finished", "subsets", len(subsets))
	return nil
}

// Extract reads every document under annotations/. Records that cannot be
// decoded are skipped with a warning.
func (Format) Extract(ctx context.Context, store blobstore.Store, opts format.Options) (*dataset.Dataset, []format.Warning, error) {
	names, err := documents(ctx, store)
	if err != nil {
		return nil, nil, &format.FormatError{Format: Name, Path: annotationsDir, Err: err}
	}
	if len(names) == 0 {
		return nil, nil, format.Errorf(Name, annotationsDir, "no annotation documents")
	}

	var (
		ds       *dataset.Dataset
		warnings []format.Warning
	)
	c := codec.Compressed{Codec: codec.Default}
	for _, name := range names {
		data, err := format.ReadBlob(ctx, store, name, opts)
		if err != nil {
			return nil, nil, &format.FormatError{Format: Name, Path: name, Err: err}
		}
		var doc document
		if err := c.Unmarshal(data, &doc); err != nil {
			return nil, nil, &format.FormatError{Format: Name, Path: name, Err: err}
		}
		if doc.Info.Version > formatVersion {
			return nil, nil, format.Errorf(Name, name, "unsupported format version %d", doc.Info.Version)
		}
		cats, err := decodeCategories(doc.Categories)
		if err != nil {
			return nil, nil, &format.FormatError{Format: Name, Path: name, Err: err}
		}
		if ds == nil {
			ds = dataset.New(cats)
		} else if !cats.Equal(ds.Categories()) {
			warnings = append(warnings, format.Warning{Path: name, Message: "categories differ from the first document, keeping the first"})
		}

		subset := doc.Info.Subset
		if subset == "" {
			subset, _ = subsetOf(name)
		}
		labels := ds.Categories().Labels().Len()
		for _, itd := range doc.Items {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
			warn := func(msg string) {
				warnings = append(warnings, format.Warning{ItemID: itd.ID, Subset: subset, Path: name, Message: msg})
			}
			m, err := decodeMedia(itd.Media)
			if err != nil {
				warn(err.Error())
			}
			if m != nil && m.Path != "" {
				if m, err = format.AttachMedia(ctx, store, m.Path, m, opts); err != nil {
					return nil, nil, err
				}
			}
			it := dataset.NewItem(itd.ID, dataset.WithSubset(subset), dataset.WithMedia(m), dataset.WithAttributes(itd.Attributes))
			for i, ad := range itd.Annotations {
				a, err := decodeAnnotation(ad, labels)
				if err != nil {
					warn("annotation " + strconv.Itoa(i) + ": " + err.Error())
					continue
				}
				it.Annotations = append(it.Annotations, a)
			}
			if err := ds.Add(it); err != nil {
				warn(err.Error())
			}
		}
	}
	opts.Log().Debug("native import finished", "documents", len(names), "items", ds.Len(), "warnings", len(warnings))
	return ds, warnings, nil
}
