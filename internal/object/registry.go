package object

import (
	"fmt"
	"log/slog"

	"github.com/arcweld/worldstream/internal/class"
	"github.com/arcweld/worldstream/internal/demand"
	"github.com/arcweld/worldstream/internal/script"
)

// Registry owns all world objects of one world: the name-indexed map is
// the canonical owner of every record, plus the two callback hot-sets.
// Everything runs on the simulation goroutine; no locking.
type Registry struct {
	objects  map[string]*Object
	frameHot map[*Object]struct{}
	stepHot  map[*Object]struct{}

	nameCounter uint64

	streamer Streamer
	loader   demand.Loader
	reporter script.Reporter
}

// NewRegistry creates an empty registry wired to its collaborators. A
// nil streamer or reporter gets a no-op stand-in; a nil loader gets a
// fresh in-memory pool.
func NewRegistry(streamer Streamer, loader demand.Loader, reporter script.Reporter) *Registry {
	if streamer == nil {
		streamer = nopStreamer{}
	}
	if loader == nil {
		loader = demand.NewPool()
	}
	if reporter == nil {
		reporter = script.SlogReporter{}
	}
	return &Registry{
		objects:  make(map[string]*Object, 256),
		frameHot: make(map[*Object]struct{}, 64),
		stepHot:  make(map[*Object]struct{}, 64),
		streamer: streamer,
		loader:   loader,
		reporter: reporter,
	}
}

// Add creates a new object of cls under name and lists it with the
// streamer. An empty name gets a generated "Unnamed:<class>:<n>" name.
// An existing object under the same name is deleted first.
func (r *Registry) Add(name string, cls *class.Class) *Object {
	anonymous := false
	if name == "" {
		anonymous = true
		for {
			name = fmt.Sprintf("Unnamed:%s:%d", cls.Name(), r.nameCounter)
			r.nameCounter++
			if _, exists := r.objects[name]; !exists {
				break
			}
		}
	}

	if prev, ok := r.objects[name]; ok {
		r.Delete(prev)
	}

	o := newObject(r, name, cls)
	o.anonymous = anonymous
	r.objects[name] = o
	r.streamer.List(o)

	slog.Debug("object added", "object", name, "class", cls.Name(), "anonymous", anonymous)
	return o
}

// Delete tears the object down and removes it from the registry.
// Deactivation behaviors can trigger deletes of other objects, so during
// shutdown an object may already be gone by the time an outer Delete
// reaches the map; that is a no-op.
func (r *Registry) Delete(o *Object) {
	o.destroy()
	r.streamer.Unlist(o)

	if cur, ok := r.objects[o.name]; ok && cur == o {
		delete(r.objects, o.name)
	}
}

// DeleteAll deletes every object. Iteration runs over a snapshot so
// deletions cascading out of deactivation behaviors cannot corrupt the
// traversal; cascaded deletes simply make the outer one a no-op.
func (r *Registry) DeleteAll() {
	snapshot := make([]*Object, 0, len(r.objects))
	for _, o := range r.objects {
		snapshot = append(snapshot, o)
	}
	for _, o := range snapshot {
		r.Delete(o)
	}
}

// Get returns the object registered under name.
func (r *Registry) Get(name string) (*Object, error) {
	o, ok := r.objects[name]
	if !ok {
		return nil, fmt.Errorf("object %q: %w", name, ErrNotFound)
	}
	return o, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.objects[name]
	return ok
}

// Count returns the number of live objects.
func (r *Registry) Count() int { return len(r.objects) }

// All returns a point-in-time snapshot of all objects. The snapshot is
// safe to hold across mutations; the objects in it may be destroyed by
// the time they are inspected.
func (r *Registry) All() []*Object {
	out := make([]*Object, 0, len(r.objects))
	for _, o := range r.objects {
		out = append(out, o)
	}
	return out
}
