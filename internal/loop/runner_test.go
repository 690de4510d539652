package loop

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcweld/worldstream/internal/class"
	"github.com/arcweld/worldstream/internal/demand"
	"github.com/arcweld/worldstream/internal/object"
	"github.com/arcweld/worldstream/internal/script"
	"github.com/arcweld/worldstream/internal/stream"
)

func tickerClass(frames, steps *int) *class.Class {
	return class.New("Ticker", map[string]any{
		"activate": object.ActivateFunc(func(o *object.Object, inst *script.Table) error {
			return nil
		}),
		"deactivate": object.DeactivateFunc(func(o *object.Object) (bool, error) {
			return false, nil
		}),
		"frameCallback": object.TickFunc(func(o *object.Object, elapsed float32) error {
			*frames++
			return nil
		}),
		"stepCallback": object.TickFunc(func(o *object.Object, elapsed float32) error {
			*steps++
			return nil
		}),
	})
}

func TestFrameAndStep(t *testing.T) {
	s := stream.New(0.7, 0.7, 100)
	reg := object.NewRegistry(s, demand.NewPool(), script.NopReporter{})
	s.Bind(reg)

	frames, steps := 0, 0
	o := reg.Add("obj", tickerClass(&frames, &steps))
	o.UpdateSphere(object.Vec3{X: 10}, 5)
	require.NoError(t, o.SetNeedsFrameCallbacks(true))
	require.NoError(t, o.SetNeedsStepCallbacks(true))

	r := NewRunner(reg, s, nil, time.Millisecond, time.Millisecond)

	require.NoError(t, r.Frame(0.016))
	assert.Equal(t, 1, frames)
	assert.Equal(t, 0, steps)
	assert.True(t, o.Activated(), "frame runs the streaming update")

	require.NoError(t, r.Step(0.1))
	assert.Equal(t, 1, steps)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	reg := object.NewRegistry(nil, demand.NewPool(), script.NopReporter{})
	r := NewRunner(reg, nil, nil, time.Millisecond, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("runner did not stop on cancel")
	}
}

func TestRunStopsOnStop(t *testing.T) {
	reg := object.NewRegistry(nil, demand.NewPool(), script.NopReporter{})
	r := NewRunner(reg, nil, nil, time.Millisecond, time.Millisecond)

	done := make(chan error, 1)
	go func() { done <- r.Run(context.Background()) }()

	time.Sleep(10 * time.Millisecond)
	r.Stop()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("runner did not stop")
	}
}
