package yolo

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"maps"
	"path"
	"slices"
	"strconv"
	"strings"

	"github.com/hupe1980/annoset/annotation"
	"github.com/hupe1980/annoset/blobstore"
	"github.com/hupe1980/annoset/category"
	"github.com/hupe1980/annoset/dataset"
	"github.com/hupe1980/annoset/format"
	"github.com/hupe1980/annoset/media"
)

// Name is the registered format name.
const Name = "yolo"

const (
	namesFile = "obj.names"
	dataFile  = "obj.data"
	metaFile  = "images.meta"
	// listPrefix is prepended to paths in obj.data and subset lists, as
	// darknet expects them relative to its working directory.
	listPrefix = "data/"
)

func init() {
	format.MustRegister(Format{})
}

// Format reads and writes YOLO datasets.
type Format struct{}

// Name returns "yolo".
func (Format) Name() string { return Name }

// Detect reports whether obj.data exists.
func (Format) Detect(ctx context.Context, store blobstore.Store) (bool, error) {
	return blobstore.Exists(ctx, store, dataFile)
}

func subsetDir(subset string) string {
	return "obj_" + subset + "_data"
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

type exportedItem struct {
	it     *dataset.Item
	width  int
	height int
	image  string
}

// Export writes the dataset. It fails with a *format.FormatError when an
// item holding boxes has no known image size.
func (Format) Export(ctx context.Context, src dataset.Source, store blobstore.Store, opts format.Options) error {
	log := opts.Log()
	labels := src.Categories().Labels()

	subsets := make(map[string][]exportedItem)
	skipped := 0
	for it := range src.Items() {
		if err := ctx.Err(); err != nil {
			return err
		}
		e := exportedItem{it: it}
		w, h, ok := it.Size()
		if !ok && it.Media.HasData() {
			if _, err := it.Media.Load(ctx); err == nil {
				w, h, ok = it.Size()
			}
		}
		if ok {
			e.width, e.height = w, h
		}

		var buf bytes.Buffer
		for _, a := range it.Annotations {
			b, isBox := a.Shape.(annotation.Bbox)
			if !isBox || !a.HasLabel() {
				skipped++
				continue
			}
			if !ok || w == 0 || h == 0 {
				return format.Errorf(Name, it.Key().String(), "image size is required to export boxes")
			}
			fmt.Fprintf(&buf, "%d %s %s %s %s\n", a.Label,
				formatFloat((b.X+b.W/2)/float64(w)),
				formatFloat((b.Y+b.H/2)/float64(h)),
				formatFloat(b.W/float64(w)),
				formatFloat(b.H/float64(h)),
			)
		}

		dir := subsetDir(it.Subset)
		ext := ".jpg"
		if it.Media != nil {
			ext = opts.Ext(it.Media.Path)
		}
		e.image = path.Join(dir, it.ID+ext)
		if opts.SaveMedia {
			if _, err := format.SaveMedia(ctx, store, it, e.image, opts); err != nil {
				return err
			}
		}
		if err := format.WriteBlob(ctx, store, path.Join(dir, it.ID+".txt"), buf.Bytes(), opts); err != nil {
			return err
		}
		subsets[it.Subset] = append(subsets[it.Subset], e)
	}

	var data bytes.Buffer
	fmt.Fprintf(&data, "classes = %d\n", labels.Len())
	for _, subset := range slices.Sorted(maps.Keys(subsets)) {
		items := subsets[subset]
		var list, meta bytes.Buffer
		for _, e := range items {
			list.WriteString(listPrefix + e.image + "\n")
			if e.width > 0 && e.height > 0 {
				fmt.Fprintf(&meta, "%s %d %d\n", e.it.ID, e.width, e.height)
			}
		}
		if err := format.WriteBlob(ctx, store, subset+".txt", list.Bytes(), opts); err != nil {
			return err
		}
		if err := format.WriteBlob(ctx, store, path.Join(subsetDir(subset), metaFile), meta.Bytes(), opts); err != nil {
			return err
		}
		fmt.Fprintf(&data, "%s = %s%s.txt\n", subset, listPrefix, subset)
	}
	fmt.Fprintf(&data, "names = %s%s\n", listPrefix, namesFile)
	data.WriteString("backup = backup/\n")

	var names bytes.Buffer
	for _, n := range labels.Names() {
		names.WriteString(n + "\n")
	}
	if err := format.WriteBlob(ctx, store, namesFile, names.Bytes(), opts); err != nil {
		return err
	}
	if err := format.WriteBlob(ctx, store, dataFile, data.Bytes(), opts); err != nil {
		return err
	}
	if skipped > 0 {
		log.Warn("yolo export skipped annotations", "count", skipped, "reason", "only labelled boxes are supported")
	}
	return nil
}

// Extract reads a YOLO dataset. Malformed lines and boxes of items with
// unknown size are skipped with a warning.
func (Format) Extract(ctx context.Context, store blobstore.Store, opts format.Options) (*dataset.Dataset, []format.Warning, error) {
	raw, err := format.ReadBlob(ctx, store, dataFile, opts)
	if err != nil {
		return nil, nil, &format.FormatError{Format: Name, Path: dataFile, Err: err}
	}
	conf := parseData(raw)

	namesPath := strings.TrimPrefix(conf["names"], listPrefix)
	if namesPath == "" {
		namesPath = namesFile
	}
	rawNames, err := format.ReadBlob(ctx, store, namesPath, opts)
	if err != nil {
		return nil, nil, &format.FormatError{Format: Name, Path: namesPath, Err: err}
	}
	labels := category.NewLabelCategories()
	for _, n := range lines(rawNames) {
		if _, err := labels.Add(n, ""); err != nil {
			return nil, nil, &format.FormatError{Format: Name, Path: namesPath, Err: err}
		}
	}

	var warnings []format.Warning
	if c, ok := conf["classes"]; ok {
		if n, err := strconv.Atoi(c); err != nil || n != labels.Len() {
			warnings = append(warnings, format.Warning{Path: dataFile, Message: fmt.Sprintf("classes = %s but %d names", c, labels.Len())})
		}
	}

	ds := dataset.New(&category.Registry{Label: labels})
	for _, subset := range slices.Sorted(maps.Keys(conf)) {
		switch subset {
		case "classes", "names", "backup", "eval":
			continue
		}
		listPath := strings.TrimPrefix(conf[subset], listPrefix)
		r := &subsetReader{store: store, opts: opts, subset: subset, labels: labels.Len(), ds: ds}
		if err := r.read(ctx, listPath); err != nil {
			return nil, nil, err
		}
		warnings = append(warnings, r.warnings...)
	}
	opts.Log().Debug("yolo import finished", "items", ds.Len(), "warnings", len(warnings))
	return ds, warnings, nil
}

func parseData(raw []byte) map[string]string {
	out := make(map[string]string)
	for _, line := range lines(raw) {
		if strings.HasPrefix(line, "#") {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return out
}

// lines returns the non-empty trimmed lines of raw.
func lines(raw []byte) []string {
	var out []string
	sc := bufio.NewScanner(bytes.NewReader(raw))
	for sc.Scan() {
		if l := strings.TrimSpace(sc.Text()); l != "" {
			out = append(out, l)
		}
	}
	return out
}

type subsetReader struct {
	store    blobstore.Store
	opts     format.Options
	subset   string
	labels   int
	ds       *dataset.Dataset
	warnings []format.Warning
}

func (r *subsetReader) warn(id, file string, line int, msg string, args ...any) {
	r.warnings = append(r.warnings, format.Warning{
		ItemID: id, Subset: r.subset, Path: file, Line: line, Message: fmt.Sprintf(msg, args...),
	})
}

func (r *subsetReader) read(ctx context.Context, listPath string) error {
	dir := subsetDir(r.subset)
	raw, err := format.ReadBlob(ctx, r.store, listPath, r.opts)
	if err != nil {
		return &format.FormatError{Format: Name, Path: listPath, Err: err}
	}
	sizes := r.readMeta(ctx, path.Join(dir, metaFile))

	for _, image := range lines(raw) {
		if err := ctx.Err(); err != nil {
			return err
		}
		image = strings.TrimPrefix(image, listPrefix)
		rel, ok := strings.CutPrefix(image, dir+"/")
		if !ok {
			r.warn("", listPath, 0, "image %q outside %s", image, dir)
			continue
		}
		id := strings.TrimSuffix(rel, path.Ext(rel))

		desc := media.NewImage(image, nil)
		if s, ok := sizes[id]; ok {
			desc.Size = &s
		}
		desc, err := format.AttachMedia(ctx, r.store, image, desc, r.opts)
		if err != nil {
			return err
		}
		if desc.Size == nil && desc.HasData() {
			if s, err := r.imageSize(ctx, image); err == nil {
				desc.Size = s
			}
		}

		it := dataset.NewItem(id, dataset.WithSubset(r.subset), dataset.WithMedia(desc))
		labelsPath := path.Join(dir, id+".txt")
		data, err := format.ReadBlob(ctx, r.store, labelsPath, r.opts)
		if err != nil {
			r.warn(id, labelsPath, 0, "missing label file")
		}
		it.Annotations = r.parseBoxes(id, labelsPath, data, desc.Size)
		if err := r.ds.Add(it); err != nil {
			r.warn(id, listPath, 0, "%v", err)
		}
	}
	return nil
}

func (r *subsetReader) readMeta(ctx context.Context, name string) map[string]media.Size {
	out := make(map[string]media.Size)
	raw, err := format.ReadBlob(ctx, r.store, name, r.opts)
	if err != nil {
		return out
	}
	for n, line := range lines(raw) {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			r.warn("", name, n+1, "expected \"<id> <width> <height>\"")
			continue
		}
		w, errW := strconv.Atoi(fields[len(fields)-2])
		h, errH := strconv.Atoi(fields[len(fields)-1])
		if errW != nil || errH != nil || w <= 0 || h <= 0 {
			r.warn("", name, n+1, "invalid image size")
			continue
		}
		id := strings.Join(fields[:len(fields)-2], " ")
		out[id] = media.Size{Width: w, Height: h}
	}
	return out
}

func (r *subsetReader) imageSize(ctx context.Context, name string) (*media.Size, error) {
	data, err := format.ReadBlob(ctx, r.store, name, r.opts)
	if err != nil {
		return nil, err
	}
	d, err := media.FromReader(name, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return d.Size, nil
}

func (r *subsetReader) parseBoxes(id, file string, data []byte, size *media.Size) []*annotation.Annotation {
	var anns []*annotation.Annotation
	sc := bufio.NewScanner(bytes.NewReader(data))
	for n := 1; sc.Scan(); n++ {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 5 {
			r.warn(id, file, n, "expected 5 fields, got %d", len(fields))
			continue
		}
		label, err := strconv.Atoi(fields[0])
		if err != nil || label < 0 || label >= r.labels {
			r.warn(id, file, n, "invalid label %q", fields[0])
			continue
		}
		var v [4]float64
		bad := false
		for i := range v {
			if v[i], err = strconv.ParseFloat(fields[i+1], 64); err != nil {
				bad = true
			}
		}
		if bad {
			r.warn(id, file, n, "invalid coordinates")
			continue
		}
		if size == nil {
			r.warn(id, file, n, "image size unknown, box skipped")
			continue
		}
		w, h := float64(size.Width), float64(size.Height)
		bw, bh := v[2]*w, v[3]*h
		anns = append(anns, annotation.New(
			annotation.Bbox{X: v[0]*w - bw/2, Y: v[1]*h - bh/2, W: bw, H: bh},
			annotation.WithID(len(anns)),
			annotation.WithLabel(label),
		))
	}
	return anns
}
