// Package loop drives the simulation: a frame ticker running streaming
// and frame callbacks, and a step ticker running step callbacks.
package loop

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/arcweld/worldstream/internal/object"
	"github.com/arcweld/worldstream/internal/stream"
)

// ViewerFunc supplies the current viewer position each frame.
type ViewerFunc func() object.Vec3

// Runner owns the frame and step tickers for one world.
type Runner struct {
	reg      *object.Registry
	streamer *stream.Streamer
	viewer   ViewerFunc

	frameInterval time.Duration
	stepInterval  time.Duration

	stopCh chan struct{}
}

// NewRunner creates a runner. viewer may be nil for a fixed origin
// viewer.
func NewRunner(reg *object.Registry, streamer *stream.Streamer, viewer ViewerFunc,
	frameInterval, stepInterval time.Duration) *Runner {
	if viewer == nil {
		viewer = func() object.Vec3 { return object.Vec3{} }
	}
	return &Runner{
		reg:           reg,
		streamer:      streamer,
		viewer:        viewer,
		frameInterval: frameInterval,
		stepInterval:  stepInterval,
		stopCh:        make(chan struct{}),
	}
}

// Run starts the loop (blocks until context is canceled or Stop is
// called). Script errors never end the run; a contract violation does.
func (r *Runner) Run(ctx context.Context) error {
	frameTicker := time.NewTicker(r.frameInterval)
	defer frameTicker.Stop()
	stepTicker := time.NewTicker(r.stepInterval)
	defer stepTicker.Stop()

	slog.Info("simulation loop started",
		"frame_interval", r.frameInterval,
		"step_interval", r.stepInterval)

	lastFrame := time.Now()
	lastStep := lastFrame

	for {
		select {
		case <-ctx.Done():
			slog.Info("simulation loop stopping")
			return ctx.Err()

		case <-r.stopCh:
			slog.Info("simulation loop stopped")
			return nil

		case now := <-frameTicker.C:
			elapsed := float32(now.Sub(lastFrame).Seconds())
			lastFrame = now
			if err := r.Frame(elapsed); err != nil {
				return err
			}

		case now := <-stepTicker.C:
			elapsed := float32(now.Sub(lastStep).Seconds())
			lastStep = now
			if err := r.Step(elapsed); err != nil {
				return err
			}
		}
	}
}

// Stop ends the loop.
func (r *Runner) Stop() {
	close(r.stopCh)
}

// Frame runs one frame: streaming update then frame callbacks.
func (r *Runner) Frame(elapsed float32) error {
	if r.streamer != nil {
		if err := r.streamer.Update(r.viewer()); err != nil {
			return fmt.Errorf("frame streaming update: %w", err)
		}
	}
	if err := r.reg.DoFrameCallbacks(elapsed); err != nil {
		return fmt.Errorf("frame callbacks: %w", err)
	}
	return nil
}

// Step runs one simulation step.
func (r *Runner) Step(elapsed float32) error {
	if err := r.reg.DoStepCallbacks(elapsed); err != nil {
		return fmt.Errorf("step callbacks: %w", err)
	}
	return nil
}
