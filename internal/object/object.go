// Package object implements the streamed world-object core: the
// name-indexed registry, the per-object lifecycle state machine,
// distance fade computation and frame/step callback dispatch. All
// operations run on the single simulation goroutine; the dominant hazard
// is reentrancy (a behavior deleting arbitrary objects mid-call), so
// every iteration works on a snapshot and every teardown is idempotent.
package object

import (
	"fmt"
	"log/slog"

	"github.com/arcweld/worldstream/internal/class"
	"github.com/arcweld/worldstream/internal/demand"
	"github.com/arcweld/worldstream/internal/script"
)

// Object is one world object. Objects are created by Registry.Add and
// torn down by Registry.Delete; all other holders keep non-owning
// handles. A destroyed object (nil class) is permanently inert and every
// operation on it fails with ErrDestroyed.
type Object struct {
	reg       *Registry
	name      string
	anonymous bool

	cls    *class.Class
	values *script.Table // per-object overrides, looked up before the class

	instance *script.Table // scripted state, non-nil iff activated
	demand   *demand.Ticket

	needsFrameCallbacks bool
	needsStepCallbacks  bool

	pos    Vec3
	radius float32
	index  int // streamer sphere index, -1 = unindexed

	near *Object
	far  *Object

	imposedFarFade float32
	lastFade       float32 // -1 = not computed since activation
}

func newObject(reg *Registry, name string, cls *class.Class) *Object {
	cls.Acquire()
	return &Object{
		reg:            reg,
		name:           name,
		cls:            cls,
		values:         script.NewTable(),
		demand:         reg.loader.Acquire(cls.Resources()),
		index:          -1,
		imposedFarFade: 1,
		lastFade:       -1,
	}
}

// Name returns the unique object name.
func (o *Object) Name() string { return o.name }

// Anonymous reports whether the name was generated by the registry.
func (o *Object) Anonymous() bool { return o.anonymous }

// Class returns the shared prototype, or nil once destroyed.
func (o *Object) Class() *class.Class { return o.cls }

// Destroyed reports whether the object has been torn down.
func (o *Object) Destroyed() bool { return o.cls == nil }

// Activated reports whether the object holds live scripted state.
func (o *Object) Activated() bool { return o.instance != nil }

// Instance returns the scripted state table, nil when not activated.
func (o *Object) Instance() *script.Table { return o.instance }

// SetValue stores a per-object override, consulted before the class by
// Field and behavior resolution. Setting nil removes the override.
func (o *Object) SetValue(key string, v any) error {
	if o.Destroyed() {
		return fmt.Errorf("setting %q on object %q: %w", key, o.name, ErrDestroyed)
	}
	o.values.Set(key, v)
	return nil
}

// Field resolves a named value, instance overrides first, then the
// class's shared definition. Absence is (nil, false), not an error.
func (o *Object) Field(name string) (any, bool, error) {
	if o.Destroyed() {
		return nil, false, fmt.Errorf("field %q on object %q: %w", name, o.name, ErrDestroyed)
	}
	if v := o.values.Get(name); v != nil {
		return v, true, nil
	}
	v, ok := o.cls.Get(name)
	if !ok || v == nil {
		return nil, false, nil
	}
	return v, true, nil
}

// Activate transitions the object to the activated state. No-op when
// already activated. Resources not yet resident are loaded synchronously
// here, since an explicit activation cannot wait for the background
// loader. Any failure (load error, missing activate behavior, behavior
// error) logs and deletes the object rather than leaving it half alive.
func (o *Object) Activate() error {
	if o.Activated() {
		return nil
	}
	// Scripted code can reach a handle after deleteObject.
	if o.Destroyed() {
		return fmt.Errorf("activating object %q: %w", o.name, ErrDestroyed)
	}

	if !o.demand.Loaded() {
		if err := o.demand.ImmediateLoad(); err != nil {
			o.reg.reporter.Report(err, o.name, "load")
			slog.Error("object raised an error on activation, destroying it",
				"object", o.name, "err", err)
			o.reg.Delete(o)
			return nil
		}
	}

	fn, ok := fieldAs[ActivateFunc](o, "activate")
	if !ok {
		slog.Error("activating object: class has no activate behavior",
			"object", o.name, "class", o.cls.Name())
		o.reg.Delete(o)
		return nil
	}

	// Attach the instance before the call so an error mid-activation
	// still leaves a table for the cleanup path to release.
	inst := script.NewTable()
	o.instance = inst

	if err := o.call("activate", func() error { return fn(o, inst) }); err != nil {
		slog.Error("object raised an error on activation, destroying it",
			"object", o.name, "err", err)
		o.reg.Delete(o)
		return nil
	}

	o.reg.streamer.ListAsActivated(o)
	o.lastFade = -1
	return nil
}

// Deactivate releases the scripted state. The returned bool is the
// "destroy me" signal: true when the deactivate behavior requests it,
// when the behavior errors, or when the class has no deactivate behavior
// (destroying the object keeps the condition from recurring). The
// instance reference is released on every path.
func (o *Object) Deactivate() (bool, error) {
	if o.Destroyed() {
		return false, fmt.Errorf("deactivating object %q: %w", o.name, ErrDestroyed)
	}
	if !o.Activated() {
		return false, nil
	}

	o.reg.streamer.UnlistAsActivated(o)

	fn, ok := fieldAs[DeactivateFunc](o, "deactivate")
	if !ok {
		slog.Error("deactivating object: class has no deactivate behavior",
			"object", o.name, "class", o.cls.Name())
		o.releaseInstance()
		return true, nil
	}

	destroyMe := false
	err := o.call("deactivate", func() error {
		var callErr error
		destroyMe, callErr = fn(o)
		return callErr
	})
	if err != nil {
		destroyMe = true
	}

	o.releaseInstance()
	return destroyMe, nil
}

// Init runs the class init behavior once after the object is added.
// A missing behavior or a behavior error deletes the object.
func (o *Object) Init() error {
	if o.Destroyed() {
		return fmt.Errorf("initializing object %q: %w", o.name, ErrDestroyed)
	}

	fn, ok := fieldAs[InitFunc](o, "init")
	if !ok {
		slog.Error("initializing object: class has no init behavior",
			"object", o.name, "class", o.cls.Name())
		o.reg.Delete(o)
		return nil
	}

	if err := o.call("init", func() error { return fn(o) }); err != nil {
		slog.Error("object raised an error on initialization, destroying it",
			"object", o.name, "err", err)
		o.reg.Delete(o)
	}
	return nil
}

// NotifyFade pushes a computed fade to the object's setFade behavior.
// Classes without one are fine; not everything animates fade. A behavior
// error deletes the object.
func (o *Object) NotifyFade(fade float32) error {
	if o.Destroyed() {
		return fmt.Errorf("fading object %q: %w", o.name, ErrDestroyed)
	}
	if !o.Activated() {
		return nil
	}

	fn, ok := fieldAs[FadeFunc](o, "setFade")
	if !ok {
		return nil
	}

	if err := o.call("setFade", func() error { return fn(o, fade) }); err != nil {
		o.reg.Delete(o)
	}
	return nil
}

// destroy tears the object down: hot-set removal, neighbor unlink,
// deactivation, class release, resource release, value release. Each
// step is idempotent and the whole call is a no-op on a destroyed
// object, because deactivation behaviors can reenter via deletes of
// other objects.
func (o *Object) destroy() {
	if o.Destroyed() {
		return
	}
	if o.needsFrameCallbacks {
		o.needsFrameCallbacks = false
		delete(o.reg.frameHot, o)
	}
	if o.needsStepCallbacks {
		o.needsStepCallbacks = false
		delete(o.reg.stepHot, o)
	}
	o.SetNear(nil)
	o.SetFar(nil)
	_, _ = o.Deactivate() // cls is still valid here, cannot fail
	o.cls.Release()
	o.cls = nil
	o.demand.Release()
	o.values.Release()
}

func (o *Object) releaseInstance() {
	o.instance.Release()
	o.instance = nil
}

// SetNeedsFrameCallbacks subscribes or unsubscribes the object from
// per-frame dispatch. Hot-set membership always mirrors the flag.
func (o *Object) SetNeedsFrameCallbacks(v bool) error {
	if o.Destroyed() {
		return fmt.Errorf("frame callback flag on object %q: %w", o.name, ErrDestroyed)
	}
	if v == o.needsFrameCallbacks {
		return nil
	}
	o.needsFrameCallbacks = v
	if v {
		o.reg.frameHot[o] = struct{}{}
	} else {
		delete(o.reg.frameHot, o)
	}
	return nil
}

// SetNeedsStepCallbacks subscribes or unsubscribes the object from
// per-step dispatch.
func (o *Object) SetNeedsStepCallbacks(v bool) error {
	if o.Destroyed() {
		return fmt.Errorf("step callback flag on object %q: %w", o.name, ErrDestroyed)
	}
	if v == o.needsStepCallbacks {
		return nil
	}
	o.needsStepCallbacks = v
	if v {
		o.reg.stepHot[o] = struct{}{}
	} else {
		delete(o.reg.stepHot, o)
	}
	return nil
}

// NeedsFrameCallbacks reports the frame-dispatch subscription.
func (o *Object) NeedsFrameCallbacks() bool { return o.needsFrameCallbacks }

// NeedsStepCallbacks reports the step-dispatch subscription.
func (o *Object) NeedsStepCallbacks() bool { return o.needsStepCallbacks }

// frameCallback invokes the frame hook. The returned bool is "keep
// calling me": false on a missing hook or a hook error.
func (o *Object) frameCallback(elapsed float32) (bool, error) {
	if o.Destroyed() {
		return false, fmt.Errorf("frame callback on object %q: %w", o.name, ErrDestroyed)
	}
	fn, ok := fieldAs[TickFunc](o, "frameCallback")
	if !ok {
		return false, nil
	}
	err := o.call("frameCallback", func() error { return fn(o, elapsed) })
	return err == nil, nil
}

// stepCallback invokes the step hook, same contract as frameCallback.
func (o *Object) stepCallback(elapsed float32) (bool, error) {
	if o.Destroyed() {
		return false, fmt.Errorf("step callback on object %q: %w", o.name, ErrDestroyed)
	}
	fn, ok := fieldAs[TickFunc](o, "stepCallback")
	if !ok {
		return false, nil
	}
	err := o.call("stepCallback", func() error { return fn(o, elapsed) })
	return err == nil, nil
}

// UpdateSphere moves and resizes the spatial sphere. Ignored while the
// object is unindexed.
func (o *Object) UpdateSphere(pos Vec3, radius float32) {
	if o.index == -1 {
		return
	}
	o.pos = pos
	o.radius = radius
	o.reg.streamer.UpdateSphere(o.index, pos, radius)
}

// UpdateSpherePosition moves the sphere, keeping the radius.
func (o *Object) UpdateSpherePosition(pos Vec3) {
	o.UpdateSphere(pos, o.radius)
}

// UpdateSphereRadius resizes the sphere in place.
func (o *Object) UpdateSphereRadius(radius float32) {
	o.UpdateSphere(o.pos, radius)
}

// Position returns the sphere center.
func (o *Object) Position() Vec3 { return o.pos }

// Radius returns the sphere radius.
func (o *Object) Radius() float32 { return o.radius }

// Index returns the streamer sphere index, -1 when unindexed.
func (o *Object) Index() int { return o.index }

// SetIndex is called by the streamer when listing/unlisting.
func (o *Object) SetIndex(i int) { o.index = i }

// SetNear links n as this object's near (higher-detail) neighbor and
// this object as n's far neighbor. Passing nil unlinks both directions.
func (o *Object) SetNear(n *Object) {
	if o.near == n {
		return
	}
	if o.near != nil && o.near.far == o {
		o.near.far = nil
	}
	o.near = n
	if n != nil {
		n.far = o
	}
}

// SetFar links f as this object's far (lower-detail) neighbor and this
// object as f's near neighbor. Passing nil unlinks both directions.
func (o *Object) SetFar(f *Object) {
	if o.far == f {
		return
	}
	if o.far != nil && o.far.near == o {
		o.far.near = nil
	}
	o.far = f
	if f != nil {
		f.near = o
	}
}

// Near returns the near neighbor, nil when unlinked.
func (o *Object) Near() *Object { return o.near }

// Far returns the far neighbor, nil when unlinked.
func (o *Object) Far() *Object { return o.far }

// ImposedFarFade returns the fade this object currently forces onto its
// far neighbor.
func (o *Object) ImposedFarFade() float32 { return o.imposedFarFade }

// LastFade returns the last fade pushed by the streamer, -1 when none
// has been computed since activation.
func (o *Object) LastFade() float32 { return o.lastFade }

// SetLastFade caches the fade most recently pushed to the object.
func (o *Object) SetLastFade(f float32) { o.lastFade = f }

// Loaded reports whether the object's demand-loaded resources are
// resident.
func (o *Object) Loaded() bool { return o.demand.Loaded() }
