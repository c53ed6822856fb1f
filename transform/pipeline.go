package transform

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/hupe1980/annoset/dataset"
)

// Pipeline applies transforms in order. Each step wraps the output of the
// previous one; no state is shared between steps.
type Pipeline struct {
	steps []Transform
}

// NewPipeline creates a pipeline from steps.
func NewPipeline(steps ...Transform) *Pipeline {
	return &Pipeline{steps: slices.Clone(steps)}
}

// Append adds steps at the end.
func (p *Pipeline) Append(steps ...Transform) *Pipeline {
	p.steps = append(p.steps, steps...)
	return p
}

// Len returns the number of steps.
func (p *Pipeline) Len() int {
	return len(p.steps)
}

// Apply implements Transform, so pipelines nest.
func (p *Pipeline) Apply(src dataset.Source) dataset.Source {
	for _, t := range p.steps {
		src = t.Apply(src)
	}
	return src
}

type runOptions struct {
	logger *slog.Logger
}

// RunOption configures Run.
type RunOption func(*runOptions)

// WithLogger logs step progress at debug level.
func WithLogger(l *slog.Logger) RunOption {
	return func(o *runOptions) { o.logger = l }
}

// Run applies the pipeline and materializes the result. The context is
// checked between items.
func (p *Pipeline) Run(ctx context.Context, src dataset.Source, opts ...RunOption) (*dataset.Dataset, error) {
	o := runOptions{}
	for _, fn := range opts {
		fn(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}

	for i, t := range p.steps {
		o.logger.Debug("pipeline step", "index", i, "transform", stepName(t))
	}
	out := p.Apply(src)

	ds := dataset.New(out.Categories().Clone())
	for it := range out.Items() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := ds.Add(it.Clone()); err != nil {
			return nil, fmt.Errorf("materialize pipeline output: %w", err)
		}
	}
	o.logger.Debug("pipeline done", "steps", len(p.steps), "items", ds.Len())
	return ds, nil
}

// Definition records the pipeline. It fails when a step cannot describe
// itself.
func (p *Pipeline) Definition() (*Definition, error) {
	def := &Definition{}
	for i, t := range p.steps {
		switch d := t.(type) {
		case *Pipeline:
			sub, err := d.Definition()
			if err != nil {
				return nil, err
			}
			def.Steps = append(def.Steps, sub.Steps...)
		case Describer:
			def.Steps = append(def.Steps, d.Step())
		default:
			return nil, fmt.Errorf("step %d (%T) cannot be recorded", i, t)
		}
	}
	return def, nil
}

func stepName(t Transform) string {
	if d, ok := t.(Describer); ok {
		return d.Step().Name
	}
	return fmt.Sprintf("%T", t)
}
