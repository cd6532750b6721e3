package scene

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// disposeCounter wraps a descriptor and counts Dispose calls, including no-op repeats.
type disposeCounter struct {
	Descriptor
	calls int
}

func (d *disposeCounter) Dispose() {
	d.calls++
	d.Descriptor.Dispose()
}

func counted(name string) *disposeCounter {
	return &disposeCounter{Descriptor: NewDescriptor(name)}
}

func TestRegisterActivatesFirstScene(t *testing.T) {
	r := NewRegistry()
	assert.Nil(t, r.Active())

	require.NoError(t, r.Register(NewDescriptor("forest")))
	require.NotNil(t, r.Active())
	assert.Equal(t, "forest", r.Active().Name())

	require.NoError(t, r.Register(NewDescriptor("cave")))
	assert.Equal(t, "forest", r.Active().Name())
	assert.Equal(t, []string{"forest", "cave"}, r.Names())
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(NewDescriptor("forest")))
	assert.ErrorIs(t, r.Register(NewDescriptor("forest")), ErrDuplicateScene)
}

func TestActivateUnknown(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(NewDescriptor("forest")))
	assert.ErrorIs(t, r.Activate("swamp"), ErrUnknownScene)
	assert.Equal(t, "forest", r.Active().Name())
}

func TestSwitchDisposesOutgoingOnly(t *testing.T) {
	forest, cave := counted("forest"), counted("cave")
	r := NewRegistry()
	require.NoError(t, r.Register(forest))
	require.NoError(t, r.Register(cave))

	require.NoError(t, r.Activate("cave"))
	assert.Equal(t, 1, forest.calls)
	assert.Zero(t, cave.calls)
	assert.True(t, forest.Disposed())
	assert.False(t, cave.Disposed())
	assert.Equal(t, "cave", r.Active().Name())
}

func TestActivateActiveIsNoop(t *testing.T) {
	forest := counted("forest")
	r := NewRegistry()
	require.NoError(t, r.Register(forest))
	require.NoError(t, r.Activate("forest"))
	require.NoError(t, r.Activate("forest"))
	assert.Zero(t, forest.calls)
}

func TestActivateDisposedWithoutRebuild(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(NewDescriptor("forest")))
	require.NoError(t, r.Register(NewDescriptor("cave")))
	require.NoError(t, r.Activate("cave"))

	assert.ErrorIs(t, r.Activate("forest"), ErrSceneDisposed)
	assert.Equal(t, "cave", r.Active().Name())
	assert.False(t, r.Active().Disposed())
}

func TestActivateDisposedRebuilds(t *testing.T) {
	builds := 0
	r := NewRegistry(WithRebuild(func(name string) (Descriptor, error) {
		builds++
		return NewDescriptor(name), nil
	}))
	require.NoError(t, r.Register(NewDescriptor("forest")))
	first, _ := r.Get("forest")
	require.NoError(t, r.Register(NewDescriptor("cave")))

	require.NoError(t, r.Activate("cave"))
	require.NoError(t, r.Activate("forest"))
	assert.Equal(t, 1, builds)

	active := r.Active()
	assert.Equal(t, "forest", active.Name())
	assert.NotEqual(t, first.ID(), active.ID())
	assert.False(t, active.Disposed())

	cave, _ := r.Get("cave")
	assert.True(t, cave.Disposed())
}

func TestActivateRebuildFailureKeepsCurrent(t *testing.T) {
	r := NewRegistry(WithRebuild(func(string) (Descriptor, error) {
		return nil, errors.New("config gone")
	}))
	require.NoError(t, r.Register(NewDescriptor("forest")))
	require.NoError(t, r.Register(NewDescriptor("cave")))
	require.NoError(t, r.Activate("cave"))

	err := r.Activate("forest")
	require.Error(t, err)
	assert.Equal(t, "cave", r.Active().Name())
	assert.False(t, r.Active().Disposed())
}

func TestActiveAlwaysRegistered(t *testing.T) {
	r := NewRegistry(WithRebuild(func(name string) (Descriptor, error) { return NewDescriptor(name), nil }))
	names := []string{"a", "b", "c"}
	for _, n := range names {
		require.NoError(t, r.Register(NewDescriptor(n)))
	}
	for _, step := range []string{"b", "b", "zzz", "a", "c", "a", "c", "c"} {
		_ = r.Activate(step)
		require.NotNil(t, r.Active())
		assert.Contains(t, names, r.Active().Name())
		assert.False(t, r.Active().Disposed())
	}
}

func TestTeardown(t *testing.T) {
	forest, cave := counted("forest"), counted("cave")
	r := NewRegistry()
	require.NoError(t, r.Register(forest))
	require.NoError(t, r.Register(cave))
	r.Teardown()
	assert.Nil(t, r.Active())
	assert.True(t, forest.Disposed())
	assert.True(t, cave.Disposed())
}

func TestActivatedHookSeesEachActivation(t *testing.T) {
	var seen []string
	r := NewRegistry(
		WithRebuild(func(name string) (Descriptor, error) { return NewDescriptor(name), nil }),
		WithActivated(func(d Descriptor) { seen = append(seen, d.Name()) }),
	)
	require.NoError(t, r.Register(NewDescriptor("forest")))
	require.NoError(t, r.Register(NewDescriptor("cave")))
	require.NoError(t, r.Activate("cave"))
	require.NoError(t, r.Activate("cave"))
	require.NoError(t, r.Activate("forest"))
	assert.Error(t, r.Activate("nowhere"))

	assert.Equal(t, []string{"forest", "cave", "forest"}, seen)
}
