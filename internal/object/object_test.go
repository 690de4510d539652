package object

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcweld/worldstream/internal/class"
	"github.com/arcweld/worldstream/internal/demand"
	"github.com/arcweld/worldstream/internal/script"
)

func TestActivateDeactivate(t *testing.T) {
	reg, st := newTestRegistry()
	o := reg.Add("obj", fullClass("Thing", false))

	require.NoError(t, o.Activate())
	assert.True(t, o.Activated())
	assert.NotNil(t, o.Instance())
	assert.Equal(t, true, o.Instance().Get("activated"))
	assert.Contains(t, st.events, "activated:obj")
	assert.Equal(t, float32(-1), o.LastFade())

	// Second activation is a no-op.
	inst := o.Instance()
	require.NoError(t, o.Activate())
	assert.Same(t, inst, o.Instance())

	destroyMe, err := o.Deactivate()
	require.NoError(t, err)
	assert.False(t, destroyMe)
	assert.False(t, o.Activated())
	assert.Nil(t, o.Instance())
	assert.False(t, o.Destroyed())
	assert.True(t, reg.Has("obj"))
	assert.Contains(t, st.events, "deactivated:obj")

	// Deactivating an inactive object reports "not destroyed".
	destroyMe, err = o.Deactivate()
	require.NoError(t, err)
	assert.False(t, destroyMe)
}

func TestDeactivateRequestsDestroy(t *testing.T) {
	reg, _ := newTestRegistry()
	o := reg.Add("obj", fullClass("Thing", true))

	require.NoError(t, o.Activate())
	destroyMe, err := o.Deactivate()
	require.NoError(t, err)
	assert.True(t, destroyMe)
	// The signal is the caller's to honor; the object itself survives.
	assert.False(t, o.Destroyed())

	reg.Delete(o)
	assert.True(t, o.Destroyed())
	assert.False(t, reg.Has("obj"))
}

func TestActivateWithoutActivateBehavior(t *testing.T) {
	reg, _ := newTestRegistry()
	cls := class.New("Inert", map[string]any{})
	o := reg.Add("obj", cls)

	require.NoError(t, o.Activate())
	assert.True(t, o.Destroyed())
	assert.False(t, reg.Has("obj"))
}

func TestActivateBehaviorError(t *testing.T) {
	reg, _ := newTestRegistry()
	cls := class.New("Broken", map[string]any{
		"activate": ActivateFunc(func(o *Object, inst *script.Table) error {
			inst.Set("partial", 1)
			return errors.New("boom")
		}),
		"deactivate": DeactivateFunc(func(o *Object) (bool, error) {
			return false, nil
		}),
	})
	o := reg.Add("obj", cls)

	require.NoError(t, o.Activate())
	assert.True(t, o.Destroyed())
	assert.False(t, reg.Has("obj"))
}

func TestActivateBehaviorPanicIsContained(t *testing.T) {
	reg, _ := newTestRegistry()
	cls := class.New("Panicky", map[string]any{
		"activate": ActivateFunc(func(o *Object, inst *script.Table) error {
			panic("scripted explosion")
		}),
		"deactivate": DeactivateFunc(func(o *Object) (bool, error) {
			return false, nil
		}),
	})
	o := reg.Add("obj", cls)

	require.NotPanics(t, func() {
		require.NoError(t, o.Activate())
	})
	assert.True(t, o.Destroyed())
}

func TestActivateLoadFailure(t *testing.T) {
	pool := demand.NewPool()
	pool.MarkBroken("meshes/broken.mesh")
	st := newStubStreamer()
	reg := NewRegistry(st, pool, script.NopReporter{})

	cls := class.New("Heavy", map[string]any{
		"activate": ActivateFunc(func(o *Object, inst *script.Table) error {
			return nil
		}),
	}, "meshes/broken.mesh")
	o := reg.Add("obj", cls)

	require.NoError(t, o.Activate())
	assert.True(t, o.Destroyed())
	assert.False(t, reg.Has("obj"))
}

func TestActivateLoadsResources(t *testing.T) {
	pool := demand.NewPool()
	st := newStubStreamer()
	reg := NewRegistry(st, pool, script.NopReporter{})

	cls := class.New("Heavy", map[string]any{
		"activate": ActivateFunc(func(o *Object, inst *script.Table) error {
			return nil
		}),
		"deactivate": DeactivateFunc(func(o *Object) (bool, error) {
			return false, nil
		}),
	}, "meshes/rock.mesh")
	o := reg.Add("obj", cls)

	assert.False(t, o.Loaded())
	require.NoError(t, o.Activate())
	assert.True(t, o.Loaded())
	assert.True(t, pool.Resident("meshes/rock.mesh"))

	// Destroy releases the last claim and the resource is evicted.
	reg.Delete(o)
	assert.False(t, pool.Resident("meshes/rock.mesh"))
}

func TestMissingDeactivateBehavior(t *testing.T) {
	reg, _ := newTestRegistry()
	cls := class.New("HalfDone", map[string]any{
		"activate": ActivateFunc(func(o *Object, inst *script.Table) error {
			return nil
		}),
	})
	o := reg.Add("obj", cls)
	require.NoError(t, o.Activate())

	destroyMe, err := o.Deactivate()
	require.NoError(t, err)
	assert.True(t, destroyMe, "missing deactivate behavior must request destroy")
	assert.Nil(t, o.Instance())
}

func TestDeactivateBehaviorError(t *testing.T) {
	reg, _ := newTestRegistry()
	cls := class.New("Flaky", map[string]any{
		"activate": ActivateFunc(func(o *Object, inst *script.Table) error {
			return nil
		}),
		"deactivate": DeactivateFunc(func(o *Object) (bool, error) {
			return false, errors.New("deactivate failed")
		}),
	})
	o := reg.Add("obj", cls)
	require.NoError(t, o.Activate())

	destroyMe, err := o.Deactivate()
	require.NoError(t, err)
	assert.True(t, destroyMe)
	assert.Nil(t, o.Instance())
}

func TestOperationsOnDestroyed(t *testing.T) {
	reg, _ := newTestRegistry()
	o := reg.Add("obj", fullClass("Thing", false))
	reg.Delete(o)
	require.True(t, o.Destroyed())

	assert.ErrorIs(t, o.Activate(), ErrDestroyed)
	_, err := o.Deactivate()
	assert.ErrorIs(t, err, ErrDestroyed)
	assert.ErrorIs(t, o.Init(), ErrDestroyed)
	assert.ErrorIs(t, o.NotifyFade(0.5), ErrDestroyed)
	assert.ErrorIs(t, o.SetNeedsFrameCallbacks(true), ErrDestroyed)
	assert.ErrorIs(t, o.SetNeedsStepCallbacks(true), ErrDestroyed)
	assert.ErrorIs(t, o.SetValue("k", 1), ErrDestroyed)
	_, _, err = o.Field("anything")
	assert.ErrorIs(t, err, ErrDestroyed)
}

func TestInit(t *testing.T) {
	reg, _ := newTestRegistry()

	t.Run("runs init behavior", func(t *testing.T) {
		ran := false
		cls := class.New("Init", map[string]any{
			"init": InitFunc(func(o *Object) error {
				ran = true
				return nil
			}),
		})
		o := reg.Add("obj", cls)
		require.NoError(t, o.Init())
		assert.True(t, ran)
		assert.False(t, o.Destroyed())
	})

	t.Run("missing init deletes object", func(t *testing.T) {
		o := reg.Add("obj2", class.New("NoInit", map[string]any{}))
		require.NoError(t, o.Init())
		assert.True(t, o.Destroyed())
		assert.False(t, reg.Has("obj2"))
	})

	t.Run("init error deletes object", func(t *testing.T) {
		cls := class.New("BadInit", map[string]any{
			"init": InitFunc(func(o *Object) error {
				return errors.New("init failed")
			}),
			"deactivate": DeactivateFunc(func(o *Object) (bool, error) {
				return false, nil
			}),
		})
		o := reg.Add("obj3", cls)
		require.NoError(t, o.Init())
		assert.True(t, o.Destroyed())
	})
}

func TestNotifyFade(t *testing.T) {
	reg, _ := newTestRegistry()

	t.Run("not activated is a no-op", func(t *testing.T) {
		o := reg.Add("obj", fullClass("Thing", false))
		require.NoError(t, o.NotifyFade(0.5))
	})

	t.Run("missing setFade is silently accepted", func(t *testing.T) {
		cls := class.New("NoFade", map[string]any{
			"activate": ActivateFunc(func(o *Object, inst *script.Table) error {
				return nil
			}),
			"deactivate": DeactivateFunc(func(o *Object) (bool, error) {
				return false, nil
			}),
		})
		o := reg.Add("nf", cls)
		require.NoError(t, o.Activate())
		require.NoError(t, o.NotifyFade(0.5))
		assert.False(t, o.Destroyed())
	})

	t.Run("behavior receives the fade", func(t *testing.T) {
		var got float32 = -1
		cls := fullClass("Fader", false)
		cls.Set("setFade", FadeFunc(func(o *Object, fade float32) error {
			got = fade
			return nil
		}))
		o := reg.Add("fader", cls)
		require.NoError(t, o.Activate())
		require.NoError(t, o.NotifyFade(0.25))
		assert.Equal(t, float32(0.25), got)
	})

	t.Run("behavior error deletes object", func(t *testing.T) {
		cls := fullClass("BadFader", false)
		cls.Set("setFade", FadeFunc(func(o *Object, fade float32) error {
			return errors.New("fade failed")
		}))
		o := reg.Add("bad", cls)
		require.NoError(t, o.Activate())
		require.NoError(t, o.NotifyFade(0.5))
		assert.True(t, o.Destroyed())
		assert.False(t, reg.Has("bad"))
	})
}

func TestFieldResolution(t *testing.T) {
	reg, _ := newTestRegistry()
	cls := class.New("Thing", map[string]any{"color": "red", "size": 3})
	o := reg.Add("obj", cls)

	v, ok, err := o.Field("color")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "red", v)

	// Instance override shadows the class default.
	require.NoError(t, o.SetValue("color", "blue"))
	v, ok, err = o.Field("color")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "blue", v)

	// Clearing the override falls back to the class.
	require.NoError(t, o.SetValue("color", nil))
	v, _, _ = o.Field("color")
	assert.Equal(t, "red", v)

	_, ok, err = o.Field("missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInstanceOverridesBehavior(t *testing.T) {
	reg, _ := newTestRegistry()
	classCalled, instCalled := false, false
	cls := class.New("Thing", map[string]any{
		"activate": ActivateFunc(func(o *Object, inst *script.Table) error {
			classCalled = true
			return nil
		}),
		"deactivate": DeactivateFunc(func(o *Object) (bool, error) {
			return false, nil
		}),
	})
	o := reg.Add("obj", cls)
	require.NoError(t, o.SetValue("activate", ActivateFunc(func(o *Object, inst *script.Table) error {
		instCalled = true
		return nil
	})))

	require.NoError(t, o.Activate())
	assert.True(t, instCalled)
	assert.False(t, classCalled)
}

func TestHotSetFlagMirror(t *testing.T) {
	reg, _ := newTestRegistry()
	o := reg.Add("obj", fullClass("Thing", false))

	require.NoError(t, o.SetNeedsFrameCallbacks(true))
	assert.True(t, o.NeedsFrameCallbacks())
	assert.Contains(t, reg.frameHot, o)

	// Setting the same value twice is a no-op.
	require.NoError(t, o.SetNeedsFrameCallbacks(true))
	assert.Len(t, reg.frameHot, 1)

	require.NoError(t, o.SetNeedsFrameCallbacks(false))
	assert.NotContains(t, reg.frameHot, o)

	require.NoError(t, o.SetNeedsStepCallbacks(true))
	assert.Contains(t, reg.stepHot, o)

	// Destroy clears membership.
	reg.Delete(o)
	assert.Empty(t, reg.stepHot)
}

func TestNearFarLinking(t *testing.T) {
	reg, _ := newTestRegistry()
	near := reg.Add("near", fullClass("Lod", false))
	far := reg.Add("far", fullClass("Lod", false))

	far.SetNear(near)
	assert.Same(t, near, far.Near())
	assert.Same(t, far, near.Far())

	// Destroying one side unlinks both directions.
	reg.Delete(near)
	assert.Nil(t, far.Near())
	assert.Nil(t, near.Far())
	assert.False(t, far.Destroyed())
}

func TestUpdateSphere(t *testing.T) {
	reg, st := newTestRegistry()
	o := reg.Add("obj", fullClass("Thing", false))
	require.NotEqual(t, -1, o.Index())

	o.UpdateSphere(Vec3{X: 1, Y: 2, Z: 3}, 10)
	assert.Equal(t, Vec3{X: 1, Y: 2, Z: 3}, o.Position())
	assert.Equal(t, float32(10), o.Radius())
	assert.Contains(t, st.events, "sphere")

	o.UpdateSpherePosition(Vec3{X: 4})
	assert.Equal(t, float32(10), o.Radius())
	assert.Equal(t, Vec3{X: 4}, o.Position())

	o.UpdateSphereRadius(20)
	assert.Equal(t, Vec3{X: 4}, o.Position())
	assert.Equal(t, float32(20), o.Radius())

	// Unindexed objects ignore sphere updates.
	o.SetIndex(-1)
	o.UpdateSphere(Vec3{X: 9}, 1)
	assert.Equal(t, Vec3{X: 4}, o.Position())
}
