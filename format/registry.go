package format

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/hupe1980/annoset/blobstore"
)

// Registry maps format names to implementations. It is safe for
// concurrent use.
type Registry struct {
	mu      sync.RWMutex
	formats map[string]Format
}

// NewRegistry returns a registry holding formats.
func NewRegistry(formats ...Format) (*Registry, error) {
	r := &Registry{formats: make(map[string]Format)}
	for _, f := range formats {
		if err := r.Register(f); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a format. Names must be unique.
func (r *Registry) Register(f Format) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.formats == nil {
		r.formats = make(map[string]Format)
	}
	name := f.Name()
	if _, dup := r.formats[name]; dup {
		return fmt.Errorf("format %q already registered", name)
	}
	r.formats[name] = f
	return nil
}

// Lookup returns the format registered under name.
func (r *Registry) Lookup(name string) (Format, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.formats[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
	return f, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.formats))
	for n := range r.formats {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Detect returns the names of all formats that recognise the store, in
// sorted order.
func (r *Registry) Detect(ctx context.Context, store blobstore.Store) ([]string, error) {
	var found []string
	for _, name := range r.Names() {
		f, _ := r.Lookup(name)
		ok, err := f.Detect(ctx, store)
		if err != nil {
			return nil, err
		}
		if ok {
			found = append(found, name)
		}
	}
	return found, nil
}

var defaultRegistry = &Registry{}

// Default returns the process-wide registry built-in formats add
// themselves to.
func Default() *Registry {
	return defaultRegistry
}

// MustRegister adds f to the Default registry and panics on duplicates.
// Format packages call it from init.
func MustRegister(f Format) {
	if err := defaultRegistry.Register(f); err != nil {
		panic(err)
	}
}
