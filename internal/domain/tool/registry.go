package tool

import "fmt"

// Registry is the static tool table. It is read-only once built.
type Registry struct {
	order []string
	tools map[string]Descriptor
}

// NewRegistry validates the descriptors and builds a Registry
func NewRegistry(descriptors ...Descriptor) (*Registry, error) {
	r := &Registry{
		order: make([]string, 0, len(descriptors)),
		tools: make(map[string]Descriptor, len(descriptors)),
	}

	for _, d := range descriptors {
		if err := d.validate(); err != nil {
			return nil, err
		}
		if _, exists := r.tools[d.Name]; exists {
			return nil, fmt.Errorf("duplicate tool: %s", d.Name)
		}
		r.tools[d.Name] = d
		r.order = append(r.order, d.Name)
	}

	return r, nil
}

// Lookup returns the descriptor registered under name
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	d, ok := r.tools[name]
	return d, ok
}

// Names returns tool names in registration order
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Descriptors returns all descriptors in registration order
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Len returns the number of registered tools
func (r *Registry) Len() int {
	return len(r.order)
}
