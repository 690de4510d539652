package object

import (
	"github.com/arcweld/worldstream/internal/class"
	"github.com/arcweld/worldstream/internal/demand"
	"github.com/arcweld/worldstream/internal/script"
)

// stubStreamer records streamer traffic and serves fade factors.
type stubStreamer struct {
	out     float32
	overlap float32
	events  []string

	spheres int
}

func newStubStreamer() *stubStreamer {
	return &stubStreamer{out: 0.7, overlap: 0.7}
}

func (s *stubStreamer) List(o *Object) {
	o.SetIndex(s.spheres)
	s.spheres++
	s.events = append(s.events, "list:"+o.Name())
}

func (s *stubStreamer) Unlist(o *Object) {
	o.SetIndex(-1)
	s.events = append(s.events, "unlist:"+o.Name())
}

func (s *stubStreamer) ListAsActivated(o *Object) {
	s.events = append(s.events, "activated:"+o.Name())
}

func (s *stubStreamer) UnlistAsActivated(o *Object) {
	s.events = append(s.events, "deactivated:"+o.Name())
}

func (s *stubStreamer) UpdateSphere(index int, pos Vec3, radius float32) {
	s.events = append(s.events, "sphere")
}

func (s *stubStreamer) FadeOutFactor() float32     { return s.out }
func (s *stubStreamer) FadeOverlapFactor() float32 { return s.overlap }

func newTestRegistry() (*Registry, *stubStreamer) {
	st := newStubStreamer()
	return NewRegistry(st, demand.NewPool(), script.NopReporter{}), st
}

// fullClass returns a class with well-behaved versions of every hook.
// destroyMe controls the deactivate signal.
func fullClass(name string, destroyMe bool) *class.Class {
	return class.New(name, map[string]any{
		"activate": ActivateFunc(func(o *Object, inst *script.Table) error {
			inst.Set("activated", true)
			return nil
		}),
		"deactivate": DeactivateFunc(func(o *Object) (bool, error) {
			return destroyMe, nil
		}),
		"init": InitFunc(func(o *Object) error {
			return nil
		}),
		"setFade": FadeFunc(func(o *Object, fade float32) error {
			return nil
		}),
		"frameCallback": TickFunc(func(o *Object, elapsed float32) error {
			return nil
		}),
		"stepCallback": TickFunc(func(o *Object, elapsed float32) error {
			return nil
		}),
	})
}
