package testutil

import (
	"fmt"
	"math/rand"
	"slices"
	"sync"

	"github.com/hupe1980/annoset/annotation"
	"github.com/hupe1980/annoset/attr"
	"github.com/hupe1980/annoset/category"
	"github.com/hupe1980/annoset/dataset"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Bbox returns a box with integral corners inside a width x height frame.
func (r *RNG) Bbox(width, height int) annotation.Bbox {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bboxLocked(width, height)
}

func (r *RNG) bboxLocked(width, height int) annotation.Bbox {
	w := 1 + r.rand.Intn(max(width/2, 1))
	h := 1 + r.rand.Intn(max(height/2, 1))
	x := r.rand.Intn(max(width-w, 1))
	y := r.rand.Intn(max(height-h, 1))
	return annotation.Bbox{X: float64(x), Y: float64(y), W: float64(w), H: float64(h)}
}

// Polygon returns a convex quadrilateral inscribed in a random box.
func (r *RNG) Polygon(width, height int) annotation.Polygon {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := r.bboxLocked(width, height)
	return annotation.Polygon{Points: []float64{
		b.X + b.W/2, b.Y,
		b.X + b.W, b.Y + b.H/2,
		b.X + b.W/2, b.Y + b.H,
		b.X, b.Y + b.H/2,
	}}
}

// Mask returns a mask covering a random box of the frame.
func (r *RNG) Mask(width, height int) annotation.Mask {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := r.bboxLocked(width, height)
	m := annotation.NewMask(width, height)
	m.SetRect(int(b.X), int(b.Y), int(b.X+b.W), int(b.Y+b.H))
	return m
}

// Points returns n keypoints with mixed visibility.
func (r *RNG) Points(n, width, height int) annotation.Points {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := annotation.Points{
		Points:     make([]float64, 2*n),
		Visibility: make([]annotation.Visibility, n),
	}
	for i := range n {
		p.Points[2*i] = float64(r.rand.Intn(max(width, 1)))
		p.Points[2*i+1] = float64(r.rand.Intn(max(height, 1)))
		p.Visibility[i] = annotation.Visibility(r.rand.Intn(3))
	}
	return p
}

// Shape returns a random shape of the given kind.
func (r *RNG) Shape(kind annotation.Kind, width, height int) annotation.Shape {
	switch kind {
	case annotation.KindBbox:
		return r.Bbox(width, height)
	case annotation.KindPolygon:
		return r.Polygon(width, height)
	case annotation.KindPolyLine:
		return annotation.PolyLine{Points: r.Polygon(width, height).Points[:6]}
	case annotation.KindMask:
		return r.Mask(width, height)
	case annotation.KindPoints:
		return r.Points(3, width, height)
	case annotation.KindCuboid3D:
		r.mu.Lock()
		defer r.mu.Unlock()
		var c annotation.Cuboid3D
		for i := range 3 {
			c.Position[i] = float64(r.rand.Intn(100))
			c.Rotation[i] = float64(r.rand.Intn(4)) / 2
			c.Scale[i] = float64(1 + r.rand.Intn(5))
		}
		return c
	case annotation.KindCaption:
		return annotation.Caption{Text: fmt.Sprintf("caption %d", r.Intn(1000))}
	default:
		return annotation.Label{}
	}
}

// DatasetConfig controls Dataset.
type DatasetConfig struct {
	Items          int
	Subsets        []string          // default: the default subset
	Labels         []string          // default: "label0", "label1", "label2"
	Kinds          []annotation.Kind // default: every kind
	MaxAnnotations int               // default: 4
	Width, Height  int               // default: 64 x 48
	Attributes     bool              // attach a few annotation attributes
}

func (c *DatasetConfig) defaults() {
	if len(c.Subsets) == 0 {
		c.Subsets = []string{dataset.DefaultSubset}
	}
	if len(c.Labels) == 0 {
		c.Labels = []string{"label0", "label1", "label2"}
	}
	if len(c.Kinds) == 0 {
		c.Kinds = annotation.Kinds()
	}
	if c.MaxAnnotations <= 0 {
		c.MaxAnnotations = 4
	}
	if c.Width <= 0 {
		c.Width = 64
	}
	if c.Height <= 0 {
		c.Height = 48
	}
}

// Dataset generates a valid dataset. Equal seeds give equal datasets.
func (r *RNG) Dataset(cfg DatasetConfig) *dataset.Dataset {
	cfg.defaults()
	ds := dataset.New(category.NewRegistry(cfg.Labels...))
	for i := range cfg.Items {
		subset := cfg.Subsets[r.Intn(len(cfg.Subsets))]
		n := r.Intn(cfg.MaxAnnotations + 1)
		anns := make([]*annotation.Annotation, 0, n)
		for j := range n {
			kind := cfg.Kinds[r.Intn(len(cfg.Kinds))]
			opts := []annotation.Option{
				annotation.WithID(j + 1),
				annotation.WithLabel(r.Intn(len(cfg.Labels))),
			}
			if cfg.Attributes {
				opts = append(opts,
					annotation.WithAttribute("occluded", attr.Bool(r.Intn(2) == 1)),
					annotation.WithAttribute("score", attr.Float(float64(r.Intn(100))/100)),
				)
			}
			anns = append(anns, annotation.New(r.Shape(kind, cfg.Width, cfg.Height), opts...))
		}
		it := dataset.NewItem(fmt.Sprintf("item_%04d", i),
			dataset.WithSubset(subset),
			dataset.WithImageSize(cfg.Width, cfg.Height),
			dataset.WithAnnotations(anns...),
		)
		if err := ds.Add(it); err != nil {
			panic(fmt.Errorf("testutil: generated invalid item: %w", err))
		}
	}
	return ds
}

// Kinds returns every annotation kind except the given ones.
func Kinds(except ...annotation.Kind) []annotation.Kind {
	return slices.DeleteFunc(annotation.Kinds(), func(k annotation.Kind) bool {
		return slices.Contains(except, k)
	})
}
