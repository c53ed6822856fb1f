package transform

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/hupe1980/annoset/dataset"
)

// Factory builds a transform from definition parameters.
type Factory func(params map[string]any) (Transform, error)

// Registry maps transform names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory. Names must be unique.
func (r *Registry) Register(name string, f Factory) error {
	if name == "" || f == nil {
		return dataset.Invalid("name", "transform name and factory are required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("transform %q is already registered", name)
	}
	r.factories[name] = f
	return nil
}

// Lookup returns the factory registered under name.
func (r *Registry) Lookup(name string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[name]
	return f, ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.factories))
}

// New builds the transform for one step.
func (r *Registry) New(s Step) (Transform, error) {
	f, ok := r.Lookup(s.Name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTransform, s.Name)
	}
	return f(s.Params)
}

// Build creates a pipeline from a definition.
func (r *Registry) Build(def *Definition) (*Pipeline, error) {
	p := NewPipeline()
	for i, s := range def.Steps {
		t, err := r.New(s)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, s.Name, err)
		}
		p.Append(t)
	}
	return p, nil
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	r := NewRegistry()
	if err := RegisterBuiltins(r); err != nil {
		panic(err)
	}
	return r
})

// Default returns the process-wide registry holding the built-in
// transforms.
func Default() *Registry {
	return defaultRegistry()
}

// RegisterBuiltins adds the built-in transforms to r.
func RegisterBuiltins(r *Registry) error {
	builtins := map[string]Factory{
		"filter":              newFilterFactory,
		"remap_labels":        newRemapFactory,
		"project_labels":      newProjectFactory,
		"prune_labels":        noParams("prune_labels", PruneLabels{}),
		"split":               newSplitFactory,
		"reindex":             newReindexFactory,
		"reindex_annotations": newReindexAnnotationsFactory,
		"map_subsets":         newMapSubsetsFactory,
		"rename":              newRenameFactory,
		"remove_items":        newRemoveItemsFactory,
		"remove_annotations":  newRemoveAnnotationsFactory,
		"remove_attributes":   newRemoveAttributesFactory,
		"boxes_to_masks":      noParams("boxes_to_masks", BoxesToMasks{}),
		"polygons_to_masks":   noParams("polygons_to_masks", PolygonsToMasks{}),
	}
	for _, name := range slices.Sorted(maps.Keys(builtins)) {
		if err := r.Register(name, builtins[name]); err != nil {
			return err
		}
	}
	return nil
}

func noParams(name string, t Transform) Factory {
	return func(params map[string]any) (Transform, error) {
		if err := decodeParams(name, params, &struct{}{}); err != nil {
			return nil, err
		}
		return t, nil
	}
}

func newFilterFactory(params map[string]any) (Transform, error) {
	var p struct {
		Expr        string `yaml:"expr"`
		Mode        string `yaml:"mode"`
		RemoveEmpty bool   `yaml:"remove_empty"`
	}
	if err := decodeParams("filter", params, &p); err != nil {
		return nil, err
	}
	if p.Expr == "" {
		return nil, dataset.Invalid("expr", "filter needs an expression")
	}
	mode, err := ParseMode(p.Mode)
	if err != nil {
		return nil, err
	}
	var opts []FilterOption
	if p.RemoveEmpty {
		opts = append(opts, RemoveEmpty())
	}
	return NewFilter(p.Expr, mode, opts...)
}

func newRemapFactory(params map[string]any) (Transform, error) {
	var p struct {
		Mapping map[string]string `yaml:"mapping"`
		Default string            `yaml:"default"`
	}
	if err := decodeParams("remap_labels", params, &p); err != nil {
		return nil, err
	}
	return NewRemapLabels(p.Mapping, DefaultPolicy(p.Default))
}

func newProjectFactory(params map[string]any) (Transform, error) {
	var p struct {
		Labels []string `yaml:"labels"`
	}
	if err := decodeParams("project_labels", params, &p); err != nil {
		return nil, err
	}
	return NewProjectLabels(p.Labels...), nil
}

func newSplitFactory(params map[string]any) (Transform, error) {
	var p struct {
		Parts []SplitPart `yaml:"parts"`
		Seed  string      `yaml:"seed"`
	}
	if err := decodeParams("split", params, &p); err != nil {
		return nil, err
	}
	return NewSplit(p.Parts, p.Seed)
}

func newReindexFactory(params map[string]any) (Transform, error) {
	var p struct {
		Start int `yaml:"start"`
	}
	if err := decodeParams("reindex", params, &p); err != nil {
		return nil, err
	}
	return Reindex{Start: p.Start}, nil
}

func newReindexAnnotationsFactory(params map[string]any) (Transform, error) {
	var p struct {
		Start int `yaml:"start"`
	}
	if err := decodeParams("reindex_annotations", params, &p); err != nil {
		return nil, err
	}
	return ReindexAnnotations{Start: p.Start}, nil
}

func newMapSubsetsFactory(params map[string]any) (Transform, error) {
	var p struct {
		Mapping map[string]string `yaml:"mapping"`
	}
	if err := decodeParams("map_subsets", params, &p); err != nil {
		return nil, err
	}
	return NewMapSubsets(p.Mapping), nil
}

func newRenameFactory(params map[string]any) (Transform, error) {
	var p struct {
		Pattern     string `yaml:"pattern"`
		Replacement string `yaml:"replacement"`
	}
	if err := decodeParams("rename", params, &p); err != nil {
		return nil, err
	}
	return NewRenameItems(p.Pattern, p.Replacement)
}

type keyParam struct {
	ID     string `yaml:"id"`
	Subset string `yaml:"subset"`
}

func toKeys(in []keyParam) []dataset.Key {
	out := make([]dataset.Key, len(in))
	for i, k := range in {
		out[i] = dataset.Key{ID: k.ID, Subset: k.Subset}
	}
	return out
}

func newRemoveItemsFactory(params map[string]any) (Transform, error) {
	var p struct {
		Items []keyParam `yaml:"items"`
	}
	if err := decodeParams("remove_items", params, &p); err != nil {
		return nil, err
	}
	return NewRemoveItems(toKeys(p.Items)...), nil
}

func newRemoveAnnotationsFactory(params map[string]any) (Transform, error) {
	var p struct {
		Items []keyParam `yaml:"items"`
		IDs   []int      `yaml:"ids"`
	}
	if err := decodeParams("remove_annotations", params, &p); err != nil {
		return nil, err
	}
	return NewRemoveAnnotations(toKeys(p.Items), p.IDs...), nil
}

func newRemoveAttributesFactory(params map[string]any) (Transform, error) {
	var p struct {
		Items      []keyParam `yaml:"items"`
		Attributes []string   `yaml:"attributes"`
	}
	if err := decodeParams("remove_attributes", params, &p); err != nil {
		return nil, err
	}
	return NewRemoveAttributes(toKeys(p.Items), p.Attributes...), nil
}
