package object

import (
	"fmt"

	"github.com/arcweld/worldstream/internal/script"
)

// Behavior signatures. Behaviors are registered as class fields (shared
// defaults) or per-object values (instance overrides) under the hook
// names "activate", "deactivate", "init", "setFade", "frameCallback" and
// "stepCallback". A behavior signals failure by returning an error.
type (
	// ActivateFunc receives the fresh instance table; the table is
	// already attached to the object when the call is made, so state
	// written before a failure is still released by the cleanup path.
	ActivateFunc func(o *Object, inst *script.Table) error

	// DeactivateFunc returns true to request destruction of the object.
	DeactivateFunc func(o *Object) (destroyMe bool, err error)

	// InitFunc runs once after an object is added to the world.
	InitFunc func(o *Object) error

	// FadeFunc applies a visibility fade in [0,1].
	FadeFunc func(o *Object, fade float32) error

	// TickFunc is the frame/step callback, elapsed in seconds.
	TickFunc func(o *Object, elapsed float32) error
)

// fieldAs resolves hook on the object (instance values first, class
// second) as a T. A value of the wrong type counts as absent. The caller
// must have checked the destroyed state already.
func fieldAs[T any](o *Object, hook string) (T, bool) {
	var fn T
	v := o.values.Get(hook)
	if v == nil {
		cv, ok := o.cls.Get(hook)
		if !ok || cv == nil {
			return fn, false
		}
		v = cv
	}
	fn, ok := v.(T)
	return fn, ok
}

// call invokes a behavior, converting panics into errors and routing any
// failure through the error reporter. One misbehaving object must never
// take down the frame; the call site applies its own recovery policy to
// the returned error.
func (o *Object) call(hook string, fn func() error) error {
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("behavior %q panicked: %v", hook, r)
			}
		}()
		return fn()
	}()
	if err != nil {
		o.reg.reporter.Report(err, o.name, hook)
	}
	return err
}
