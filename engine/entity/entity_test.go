package entity

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-stage/common"
	"github.com/Carmen-Shannon/oxy-stage/engine/animation"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVisual struct {
	pos   mgl32.Vec3
	calls int
}

func (v *fakeVisual) SetTranslation(pos mgl32.Vec3) {
	v.pos = pos
	v.calls++
}

func TestNewEntityDefaults(t *testing.T) {
	e := NewEntity("hero", "scene-1",
		WithPosition(mgl32.Vec3{1, 2, 3}),
		WithMotion(mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 0, 0.5}, mgl32.Vec3{0, 0, 0.25}),
		WithModel("resources/hero/scene.gltf"),
		WithIdleClip("idle"),
	)

	assert.Equal(t, Pending, e.LoadStatus())
	assert.Equal(t, Idle, e.State())
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, e.Position())
	assert.Equal(t, mgl32.Vec3{0, 0, 0.5}, e.Acceleration())
	assert.Equal(t, "idle", e.IdleClip())
	require.NotNil(t, e.Animation())
	assert.False(t, e.Animation().Ready())
}

func TestApplyMoveBeforeLoadIsReconciled(t *testing.T) {
	e := NewEntity("hero", "scene-1")
	e.ApplyMove(common.AxisZ, 1.5)
	e.ApplyMove(common.AxisX, -1)
	assert.Equal(t, Moving, e.State())
	assert.Equal(t, mgl32.Vec3{-1, 0, 1.5}, e.Position())

	assert.False(t, e.Reconcile(), "nothing to reconcile while pending")

	v := &fakeVisual{}
	require.NoError(t, e.MarkLoaded(v))
	assert.True(t, e.Reconcile())
	assert.Equal(t, mgl32.Vec3{-1, 0, 1.5}, v.pos)
	assert.False(t, e.Reconcile())
	assert.Equal(t, 2, v.calls)
}

func TestMarkLoadedTwice(t *testing.T) {
	e := NewEntity("hero", "scene-1")
	require.NoError(t, e.MarkLoaded(&fakeVisual{}))
	assert.ErrorIs(t, e.MarkLoaded(&fakeVisual{}), ErrAlreadyLoaded)
	assert.Equal(t, Loaded, e.LoadStatus())
}

func TestMarkFailed(t *testing.T) {
	e := NewEntity("hero", "scene-1")
	reason := errors.New("404")
	e.MarkFailed(reason)
	assert.Equal(t, Failed, e.LoadStatus())
	assert.ErrorIs(t, e.FailReason(), reason)
	assert.Nil(t, e.Visual())
	assert.ErrorIs(t, e.MarkLoaded(&fakeVisual{}), ErrAlreadyLoaded)
}

func TestSettle(t *testing.T) {
	e := NewEntity("hero", "scene-1")
	assert.False(t, e.Settle())

	e.ApplyMove(common.AxisZ, 1)
	assert.False(t, e.Settle(), "moved this tick")
	assert.Equal(t, Moving, e.State())
	assert.True(t, e.Settle())
	assert.Equal(t, Idle, e.State())
}

func TestWithAnimation(t *testing.T) {
	c := animation.NewController()
	e := NewEntity("hero", "scene-1", WithAnimation(c))
	assert.Same(t, c, e.Animation())
}

func TestStoreLifecycle(t *testing.T) {
	s := NewStore()
	hero := s.Spawn("hero", "cave")
	bat := s.Spawn("bat", "cave")
	elf := s.Spawn("elf", "forest")
	assert.Equal(t, 3, s.Len())
	assert.NotEqual(t, ID(0), hero.ID())

	got, ok := s.Get(hero.ID())
	require.True(t, ok)
	assert.Same(t, hero, got)

	found, ok := s.Find("cave", "bat")
	require.True(t, ok)
	assert.Equal(t, bat.ID(), found.ID())
	_, ok = s.Find("forest", "bat")
	assert.False(t, ok)

	assert.Len(t, s.InScene("cave"), 2)
	assert.Equal(t, 2, s.RemoveScene("cave"))

	_, ok = s.Get(hero.ID())
	assert.False(t, ok, "handle is stale after its scene is removed")
	_, ok = s.Get(elf.ID())
	assert.True(t, ok)

	// Freed slots are reused with a new generation.
	again := s.Spawn("hero", "cave-2")
	assert.NotEqual(t, hero.ID(), again.ID())
	_, ok = s.Get(hero.ID())
	assert.False(t, ok)
	_, ok = s.Get(ID(0))
	assert.False(t, ok)
	_, ok = s.Get(newID(99, 1))
	assert.False(t, ok)
}
