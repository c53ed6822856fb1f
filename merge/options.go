package merge

import (
	"log/slog"
	"maps"

	"github.com/hupe1980/annoset/annotation"
	"github.com/hupe1980/annoset/dataset"
	"github.com/hupe1980/annoset/geometry"
	"github.com/hupe1980/annoset/resource"
)

// Policy decides what is emitted for clusters that do not fully agree.
type Policy string

const (
	// Union keeps every member of a disagreeing cluster as a separate
	// annotation tagged with its source.
	Union Policy = "union"
	// Intersect keeps clusters seen in at least the quorum of sources and
	// emits one consensus annotation for each.
	Intersect Policy = "intersect"
	// Replace keeps the member of the priority source, or of the earliest
	// source when the priority source has none.
	Replace Policy = "replace"
)

// ParsePolicy converts a policy name.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case Union, Intersect, Replace:
		return p, nil
	case "":
		return Union, nil
	default:
		return "", dataset.Invalid("policy", "unknown merge policy %q", s)
	}
}

// SourceAttribute is the annotation attribute that records the source
// index of disagreeing cluster members kept separately under Union.
// Unmatched annotations are carried through untagged.
const SourceAttribute = "merge_source"

// DefaultThreshold is the minimum similarity of a match.
const DefaultThreshold = 0.5

type options struct {
	threshold     float64
	policy        Policy
	quorum        int
	priority      int
	labelAgnostic bool
	labelMapping  map[string]string
	epsilon       float64
	params        geometry.Params
	workers       int
	rc            *resource.Controller
	logger        *slog.Logger
}

func defaultOptions() options {
	return options{
		threshold: DefaultThreshold,
		policy:    Union,
		epsilon:   annotation.DefaultTolerance,
		params:    geometry.DefaultParams(),
	}
}

// Option configures a Merger.
type Option func(*options)

// WithThreshold sets the minimum similarity (inclusive) for two
// annotations to match. Default 0.5.
func WithThreshold(t float64) Option {
	return func(o *options) { o.threshold = t }
}

// WithPolicy sets the output policy. Default Union.
func WithPolicy(p Policy) Option {
	return func(o *options) { o.policy = p }
}

// WithQuorum sets how many sources must contribute to a cluster for
// Intersect to keep it. Zero means every source holding the item.
func WithQuorum(k int) Option {
	return func(o *options) { o.quorum = k }
}

// WithPrioritySource sets the source index preferred by Replace.
func WithPrioritySource(i int) Option {
	return func(o *options) { o.priority = i }
}

// WithLabelAgnostic lets annotations with different labels match.
func WithLabelAgnostic() Option {
	return func(o *options) { o.labelAgnostic = true }
}

// WithLabelMapping renames source labels before reconciliation, so that
// differently named categories can be unified.
func WithLabelMapping(m map[string]string) Option {
	return func(o *options) { o.labelMapping = maps.Clone(m) }
}

// WithEpsilon sets the coordinate tolerance for exact agreement.
func WithEpsilon(eps float64) Option {
	return func(o *options) { o.epsilon = eps }
}

// WithPointSigma sets the OKS falloff for keypoint similarity.
func WithPointSigma(sigma float64) Option {
	return func(o *options) { o.params.PointSigma = sigma }
}

// WithCuboidSigma sets the distance scale for cuboid similarity.
func WithCuboidSigma(sigma float64) Option {
	return func(o *options) { o.params.CuboidSigma = sigma }
}

// WithWorkers bounds the number of items merged in parallel. Zero uses
// the resource controller's worker count, or one.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithResourceController shares worker slots with other components.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) { o.rc = rc }
}

// WithLogger sets the logger. Nil discards.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func (o *options) validate(sources int) error {
	if o.threshold <= 0 || o.threshold > 1 {
		return dataset.Invalid("threshold", "must be in (0, 1], got %g", o.threshold)
	}
	if _, err := ParsePolicy(string(o.policy)); err != nil {
		return err
	}
	if o.quorum < 0 || o.quorum > sources {
		return dataset.Invalid("quorum", "must be in [0, %d], got %d", sources, o.quorum)
	}
	if o.priority < 0 || o.priority >= sources {
		return dataset.Invalid("priority", "source index %d out of range [0, %d)", o.priority, sources)
	}
	if o.epsilon < 0 {
		return dataset.Invalid("epsilon", "must not be negative")
	}
	if o.params.PointSigma <= 0 || o.params.CuboidSigma <= 0 {
		return dataset.Invalid("sigma", "must be positive")
	}
	return nil
}
