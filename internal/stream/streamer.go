// Package stream implements the spatial streaming scheduler: it indexes
// object spheres, activates and deactivates objects as the viewer moves,
// and drives per-frame fade notification in dependency order. It is the
// production implementation of object.Streamer.
package stream

import (
	"fmt"
	"log/slog"

	"github.com/arcweld/worldstream/internal/object"
)

// Streamer tracks listed spheres and the activated subset for one world.
// Single-threaded, driven from the frame loop.
type Streamer struct {
	reg *object.Registry

	spheres   []*object.Object
	activated map[*object.Object]struct{}

	fadeOut         float32
	fadeOverlap     float32
	activationRange float32
}

// New creates a streamer with the given fade factors and outer
// activation range (world units added to each object's radius).
func New(fadeOut, fadeOverlap, activationRange float32) *Streamer {
	return &Streamer{
		activated:       make(map[*object.Object]struct{}, 64),
		fadeOut:         fadeOut,
		fadeOverlap:     fadeOverlap,
		activationRange: activationRange,
	}
}

// Bind attaches the registry. The registry needs the streamer at
// construction and the streamer needs the registry for deletes, so the
// back-reference is set after both exist.
func (s *Streamer) Bind(reg *object.Registry) {
	s.reg = reg
}

// List indexes a freshly added object.
func (s *Streamer) List(o *object.Object) {
	o.SetIndex(len(s.spheres))
	s.spheres = append(s.spheres, o)
}

// Unlist removes an object from the sphere index, swapping the last
// entry into its slot.
func (s *Streamer) Unlist(o *object.Object) {
	idx := o.Index()
	if idx < 0 || idx >= len(s.spheres) {
		return
	}
	last := len(s.spheres) - 1
	if idx != last {
		moved := s.spheres[last]
		s.spheres[idx] = moved
		moved.SetIndex(idx)
	}
	s.spheres = s.spheres[:last]
	o.SetIndex(-1)
	delete(s.activated, o)
}

// ListAsActivated adds the object to the activated set.
func (s *Streamer) ListAsActivated(o *object.Object) {
	s.activated[o] = struct{}{}
}

// UnlistAsActivated removes the object from the activated set.
func (s *Streamer) UnlistAsActivated(o *object.Object) {
	delete(s.activated, o)
}

// UpdateSphere is notified when an indexed sphere moves or resizes. The
// index stays valid; position and radius are read back from the object
// on the next scan, so there is nothing to recompute eagerly.
func (s *Streamer) UpdateSphere(index int, pos object.Vec3, radius float32) {
	if index < 0 || index >= len(s.spheres) {
		slog.Warn("sphere update for unknown index", "index", index)
	}
}

// FadeOutFactor returns the configured fade-out band start.
func (s *Streamer) FadeOutFactor() float32 { return s.fadeOut }

// FadeOverlapFactor returns the configured overlap band start.
func (s *Streamer) FadeOverlapFactor() float32 { return s.fadeOverlap }

// ActivatedCount returns the size of the activated set.
func (s *Streamer) ActivatedCount() int { return len(s.activated) }

// Listed returns the number of indexed spheres.
func (s *Streamer) Listed() int { return len(s.spheres) }

// normalizedRange2 maps squared viewer distance into the fade domain:
// 1 is the outer activation boundary for this object.
func (s *Streamer) normalizedRange2(o *object.Object, viewer object.Vec3) float32 {
	outer := s.activationRange + o.Radius()
	if outer <= 0 {
		return 1
	}
	d2 := o.Position().Sub(viewer).Len2()
	return d2 / (outer * outer)
}

// Update runs one streaming pass for the given viewer position:
// activate objects inside their activation boundary, deactivate those
// outside (honoring the destroy-me signal), then push recomputed fades.
// Only a contract violation escalates out of the pass.
func (s *Streamer) Update(viewer object.Vec3) error {
	if s.reg == nil {
		return fmt.Errorf("streamer not bound to a registry")
	}

	// Snapshot: activation behaviors may add or delete objects.
	scan := make([]*object.Object, len(s.spheres))
	copy(scan, s.spheres)

	for _, o := range scan {
		if o.Destroyed() || o.Index() == -1 {
			continue
		}
		nr2 := s.normalizedRange2(o, viewer)
		switch {
		case nr2 < 1 && !o.Activated():
			if err := o.Activate(); err != nil {
				return fmt.Errorf("streamer activating %q: %w", o.Name(), err)
			}
		case nr2 >= 1 && o.Activated():
			destroyMe, err := o.Deactivate()
			if err != nil {
				return fmt.Errorf("streamer deactivating %q: %w", o.Name(), err)
			}
			if destroyMe {
				s.reg.Delete(o)
			}
		}
	}

	return s.driveFades(viewer)
}

// driveFades recomputes and pushes fades for the activated set, walking
// near-to-far chains root first so a dependent always reads a fresh
// imposed fade. A fade is only pushed when it changed; activation resets
// the cached value, forcing an unconditional push on the next pass.
func (s *Streamer) driveFades(viewer object.Vec3) error {
	order := make([]*object.Object, 0, len(s.activated))
	seen := make(map[*object.Object]struct{}, len(s.activated))

	for o := range s.activated {
		if o.Near() != nil && o.Near().Activated() {
			continue // reached from its chain root below
		}
		for cur := o; cur != nil; cur = cur.Far() {
			if _, dup := seen[cur]; dup {
				break
			}
			seen[cur] = struct{}{}
			order = append(order, cur)
		}
	}

	for _, o := range order {
		if o.Destroyed() || !o.Activated() {
			continue // removed earlier in this pass
		}
		fade, _ := o.CalcFade(s.normalizedRange2(o, viewer))
		if fade == o.LastFade() {
			continue
		}
		o.SetLastFade(fade)
		if err := o.NotifyFade(fade); err != nil {
			return fmt.Errorf("streamer fading %q: %w", o.Name(), err)
		}
	}
	return nil
}
