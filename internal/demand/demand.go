// Package demand implements demand loading of heavyweight resources.
// Objects hold a Ticket covering the resource names of their class;
// resource load state is shared between tickets and refcounted, so two
// objects of the same class load a mesh once and it stays resident until
// the last holder releases.
package demand

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrBroken marks a resource that cannot be loaded.
var ErrBroken = errors.New("resource broken")

// Loader resolves resource names into tickets.
type Loader interface {
	Acquire(resources []string) *Ticket
}

type resource struct {
	name   string
	loaded bool
	broken bool
	refs   int
}

// Pool is the in-memory loader. Resources unknown to the pool are
// created lazily on first acquire; MarkBroken makes a resource fail
// ImmediateLoad, exercising the activation self-destruct path.
type Pool struct {
	resources map[string]*resource
}

// NewPool creates an empty resource pool.
func NewPool() *Pool {
	return &Pool{resources: make(map[string]*resource, 64)}
}

// MarkBroken makes name fail all subsequent loads.
func (p *Pool) MarkBroken(name string) {
	p.resource(name).broken = true
}

// Resident reports whether name is currently loaded.
func (p *Pool) Resident(name string) bool {
	res, ok := p.resources[name]
	return ok && res.loaded
}

func (p *Pool) resource(name string) *resource {
	res, ok := p.resources[name]
	if !ok {
		res = &resource{name: name}
		p.resources[name] = res
	}
	return res
}

// Acquire returns a ticket covering the named resources and takes a
// reference on each. The ticket starts unloaded.
func (p *Pool) Acquire(resources []string) *Ticket {
	deps := make([]*resource, 0, len(resources))
	for _, name := range resources {
		res := p.resource(name)
		res.refs++
		deps = append(deps, res)
	}
	return &Ticket{pool: p, deps: deps}
}

// Ticket is one object's claim on its class resources.
type Ticket struct {
	pool     *Pool
	deps     []*resource
	released bool
}

// Loaded reports whether every covered resource is resident.
func (t *Ticket) Loaded() bool {
	if t == nil {
		return true
	}
	for _, res := range t.deps {
		if !res.loaded {
			return false
		}
	}
	return true
}

// ImmediateLoad synchronously loads every covered resource. The first
// broken resource aborts the load.
func (t *Ticket) ImmediateLoad() error {
	if t == nil {
		return nil
	}
	if t.released {
		return errors.New("load on released ticket")
	}
	for _, res := range t.deps {
		if res.broken {
			return fmt.Errorf("loading resource %q: %w", res.name, ErrBroken)
		}
		if !res.loaded {
			res.loaded = true
			slog.Debug("resource loaded", "resource", res.name)
		}
	}
	return nil
}

// Release drops the ticket's references. A resource with no holders left
// is evicted. Safe to call more than once.
func (t *Ticket) Release() {
	if t == nil || t.released {
		return
	}
	t.released = true
	for _, res := range t.deps {
		res.refs--
		if res.refs <= 0 {
			res.loaded = false
			res.refs = 0
		}
	}
	t.deps = nil
}
