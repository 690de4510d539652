package object

// DoFrameCallbacks invokes the frame hook on every subscribed object.
// The hot-set is snapshotted first: subscriptions changed by a hook
// during the pass take effect next pass, and every object subscribed at
// entry receives exactly one call. An object whose hook is missing or
// errored is unsubscribed; hook errors are otherwise contained. Hooks
// must not destroy other subscribers mid-pass — dispatch on a destroyed
// record is a contract violation and aborts with ErrDestroyed.
func (r *Registry) DoFrameCallbacks(elapsed float32) error {
	victims := make([]*Object, 0, len(r.frameHot))
	for o := range r.frameHot {
		victims = append(victims, o)
	}
	for _, o := range victims {
		keep, err := o.frameCallback(elapsed)
		if err != nil {
			return err
		}
		if !keep {
			if err := o.SetNeedsFrameCallbacks(false); err != nil {
				return err
			}
		}
	}
	return nil
}

// DoStepCallbacks invokes the step hook on every subscribed object,
// with the same snapshot and unsubscription semantics as
// DoFrameCallbacks.
func (r *Registry) DoStepCallbacks(elapsed float32) error {
	victims := make([]*Object, 0, len(r.stepHot))
	for o := range r.stepHot {
		victims = append(victims, o)
	}
	for _, o := range victims {
		keep, err := o.stepCallback(elapsed)
		if err != nil {
			return err
		}
		if !keep {
			if err := o.SetNeedsStepCallbacks(false); err != nil {
				return err
			}
		}
	}
	return nil
}
