package media

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // register decoder
)

// ErrNoData is returned by Load when a descriptor has no pixel source.
var ErrNoData = errors.New("media has no data")

// Kind is the type of a media unit.
type Kind uint8

const (
	KindImage Kind = iota
	KindVideoFrame
	KindPointCloud
)

var kindNames = [...]string{"image", "video_frame", "point_cloud"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ParseKind resolves a kind name.
func ParseKind(name string) (Kind, bool) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), true
		}
	}
	return 0, false
}

// Size is a width and height in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Loader resolves the pixel data of a media unit.
type Loader func(ctx context.Context) (image.Image, error)

// Descriptor describes one media unit. Size is nil when unknown.
type Descriptor struct {
	Kind Kind
	Size *Size
	Path string
	// Frame is the frame index of a video frame.
	Frame int
	// Related lists companion files, e.g. images of a point cloud.
	Related []string

	loader Loader
}

// NewImage describes an image at path.
func NewImage(path string, size *Size) *Descriptor {
	return &Descriptor{Kind: KindImage, Path: path, Size: size}
}

// NewVideoFrame describes one frame of a video.
func NewVideoFrame(path string, frame int, size *Size) *Descriptor {
	return &Descriptor{Kind: KindVideoFrame, Path: path, Frame: frame, Size: size}
}

// NewPointCloud describes a point cloud with optional related images.
func NewPointCloud(path string, related ...string) *Descriptor {
	return &Descriptor{Kind: KindPointCloud, Path: path, Related: related}
}

// FromImage wraps an in-memory image.
func FromImage(img image.Image) *Descriptor {
	b := img.Bounds()
	return &Descriptor{
		Kind:   KindImage,
		Size:   &Size{Width: b.Dx(), Height: b.Dy()},
		loader: func(context.Context) (image.Image, error) { return img, nil },
	}
}

// FromFile describes an image file, reading its size from the header
// only. The returned descriptor loads the file on demand.
func FromFile(path string) (*Descriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	d, err := FromReader(path, f)
	if err != nil {
		return nil, err
	}
	d.loader = func(context.Context) (image.Image, error) {
		return imaging.Open(path, imaging.AutoOrientation(true))
	}
	return d, nil
}

// FromReader describes an image by reading its header from r.
func FromReader(path string, r io.Reader) (*Descriptor, error) {
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return nil, fmt.Errorf("decode header of %s: %w", path, err)
	}
	return NewImage(path, &Size{Width: cfg.Width, Height: cfg.Height}), nil
}

// WithLoader returns a copy of d that resolves pixels with l.
func (d *Descriptor) WithLoader(l Loader) *Descriptor {
	c := d.Clone()
	c.loader = l
	return c
}

// HasData reports whether pixels can be loaded.
func (d *Descriptor) HasData() bool {
	return d != nil && d.loader != nil
}

// Load resolves the pixel data. When the size was unknown it is filled in.
func (d *Descriptor) Load(ctx context.Context) (image.Image, error) {
	if !d.HasData() {
		return nil, ErrNoData
	}
	img, err := d.loader(ctx)
	if err != nil {
		return nil, err
	}
	if d.Size == nil {
		b := img.Bounds()
		d.Size = &Size{Width: b.Dx(), Height: b.Dy()}
	}
	return img, nil
}

// Clone returns a copy sharing the loader.
func (d *Descriptor) Clone() *Descriptor {
	if d == nil {
		return nil
	}
	c := *d
	if d.Size != nil {
		s := *d.Size
		c.Size = &s
	}
	c.Related = append([]string(nil), d.Related...)
	return &c
}

// SameSize reports whether both descriptors have equal known dimensions,
// or both have none.
func SameSize(a, b *Descriptor) bool {
	var sa, sb *Size
	if a != nil {
		sa = a.Size
	}
	if b != nil {
		sb = b.Size
	}
	if sa == nil || sb == nil {
		return sa == nil && sb == nil
	}
	return *sa == *sb
}

// Decode decodes an image, applying EXIF orientation.
func Decode(r io.Reader) (image.Image, error) {
	return imaging.Decode(r, imaging.AutoOrientation(true))
}

// Encode writes img in the format implied by ext (".jpg", "png", ...).
func Encode(w io.Writer, img image.Image, ext string) error {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	format, err := imaging.FormatFromExtension(ext)
	if err != nil {
		return err
	}
	return imaging.Encode(w, img, format, imaging.JPEGQuality(95))
}

// Ext returns the lower-case extension of a media path, or def when the
// path has none.
func Ext(path, def string) string {
	if e := strings.ToLower(filepath.Ext(path)); e != "" {
		return e
	}
	return def
}
