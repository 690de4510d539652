package object

import "math"

// CalcFade computes the object's own visibility fade for the given
// squared distance to the viewer, pre-normalized so 1 is the outer
// activation radius. It also recomputes imposedFarFade, the suppression
// this object forces onto its far neighbor; the neighbor reads it on its
// own calculation, so callers must evaluate near objects before their
// dependents within a frame. One frame of staleness around activation
// changes is tolerated because activation resets the cached fade.
//
// overlap is true when an activated near neighbor is partially visible,
// i.e. both detail levels need blending this frame.
//
// Values are clamped at zero only; with range in [0,1] the arithmetic
// cannot exceed 1 (see DESIGN.md on the upper-clamp question).
func (o *Object) CalcFade(range2 float32) (fade float32, overlap bool) {
	out := o.reg.streamer.FadeOutFactor()
	over := o.reg.streamer.FadeOverlapFactor()

	rng := float32(math.Sqrt(float64(range2)))

	fade = 1
	// An inactive near neighbor has a stale imposed fade; skip it.
	if o.near != nil && o.near.Activated() {
		fade = o.near.imposedFarFade
		if fade < 1 {
			overlap = true
		}
	}

	if o.far == nil {
		if rng > out {
			fade = (1 - rng) / (1 - out)
		}
		// No far neighbor to suppress.
		o.imposedFarFade = 1
	} else {
		overmid := (over + 1) / 2
		switch {
		case rng > overmid:
			fade = (1 - rng) / (1 - overmid)
			o.imposedFarFade = 1
		case rng > over:
			o.imposedFarFade = 1 - (overmid-rng)/(overmid-over)
		default:
			o.imposedFarFade = 0
		}
	}

	if fade < 0 {
		fade = 0
	}
	if o.imposedFarFade < 0 {
		o.imposedFarFade = 0
	}
	return fade, overlap
}
