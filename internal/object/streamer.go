package object

// Streamer is the spatial/streaming scheduler the registry reports to.
// It owns the sphere index and the activated set, and supplies the fade
// tuning constants. The production implementation lives in
// internal/stream; tests use stubs.
type Streamer interface {
	// List indexes a freshly added record; Unlist removes it.
	List(o *Object)
	Unlist(o *Object)

	// ListAsActivated and UnlistAsActivated track the activated subset.
	ListAsActivated(o *Object)
	UnlistAsActivated(o *Object)

	// UpdateSphere refreshes the indexed sphere at index.
	UpdateSphere(index int, pos Vec3, radius float32)

	// FadeOutFactor is the normalized range at which an object with no
	// far neighbor starts fading out. FadeOverlapFactor bounds the band
	// in which a near object suppresses its far neighbor.
	FadeOutFactor() float32
	FadeOverlapFactor() float32
}

// nopStreamer keeps a registry usable without a spatial collaborator.
type nopStreamer struct{}

func (nopStreamer) List(*Object)                    {}
func (nopStreamer) Unlist(*Object)                  {}
func (nopStreamer) ListAsActivated(*Object)         {}
func (nopStreamer) UnlistAsActivated(*Object)       {}
func (nopStreamer) UpdateSphere(int, Vec3, float32) {}
func (nopStreamer) FadeOutFactor() float32          { return 0.7 }
func (nopStreamer) FadeOverlapFactor() float32      { return 0.7 }
