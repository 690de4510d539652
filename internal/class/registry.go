package class

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a class name is not registered.
var ErrNotFound = errors.New("class not found")

// Registry maps class names to shared prototypes. Single-threaded, like
// the rest of the simulation core.
type Registry struct {
	classes map[string]*Class
}

// NewRegistry creates an empty class registry.
func NewRegistry() *Registry {
	return &Registry{classes: make(map[string]*Class, 32)}
}

// Add registers cls under its name. An existing class under the same
// name is re-pointed, not destroyed: live instances keep their reference
// to the old prototype until they are destroyed.
func (r *Registry) Add(cls *Class) {
	r.classes[cls.Name()] = cls
}

// Get returns the class registered under name.
func (r *Registry) Get(name string) (*Class, error) {
	cls, ok := r.classes[name]
	if !ok {
		return nil, fmt.Errorf("class %q: %w", name, ErrNotFound)
	}
	return cls, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.classes[name]
	return ok
}

// Remove unregisters name. Instances still referencing the class are
// unaffected; the prototype is reclaimed once the last one releases it.
func (r *Registry) Remove(name string) {
	delete(r.classes, name)
}

// Count returns the number of registered classes.
func (r *Registry) Count() int { return len(r.classes) }

// All returns a point-in-time snapshot of registered classes.
func (r *Registry) All() []*Class {
	out := make([]*Class, 0, len(r.classes))
	for _, c := range r.classes {
		out = append(out, c)
	}
	return out
}
