package scene

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-stage/engine/animation"
	"github.com/Carmen-Shannon/oxy-stage/engine/light"
	"github.com/Carmen-Shannon/oxy-stage/engine/resource"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type countingReleaser struct {
	counts map[resource.Resource]int
	fail   resource.Resource
}

func newCountingReleaser() *countingReleaser {
	return &countingReleaser{counts: make(map[resource.Resource]int)}
}

func (c *countingReleaser) Release(r resource.Resource) error {
	c.counts[r]++
	if r == c.fail {
		return errors.New("release failed")
	}
	return nil
}

func (c *countingReleaser) total() int {
	n := 0
	for _, v := range c.counts {
		n += v
	}
	return n
}

// treeFragment builds two trees sharing one bark material.
func treeFragment() (Fragment, *resource.Material) {
	bark := &resource.Material{Name: "bark"}
	root := NewNode("trees")
	for _, name := range []string{"oak", "pine"} {
		n := NewNode(name)
		n.Drawables = append(n.Drawables, Drawable{
			Geometry: &resource.Geometry{Name: name},
			Material: bark,
		})
		root.AddChild(n)
	}
	return Fragment{Root: root}, bark
}

func TestDisposeReleasesSharedMaterialOnce(t *testing.T) {
	rel := newCountingReleaser()
	sun := light.NewLight(light.LightTypeDirectional, light.WithName("sun"), light.WithShadow(light.DefaultShadow()))
	s := NewDescriptor("forest", WithReleaser(rel), WithLights(sun))

	frag, bark := treeFragment()
	require.True(t, s.Attach(frag))
	assert.Equal(t, 4, s.Resources().Len(), "two geometries, one material, one shadow map")

	s.Dispose()
	assert.True(t, s.Disposed())
	assert.Equal(t, 4, rel.total())
	assert.Equal(t, 1, rel.counts[bark])
	assert.Equal(t, 1, rel.counts[sun.ShadowMap()])
	assert.Nil(t, s.Root())
	assert.Zero(t, s.Resources().Len())
}

func TestDisposeIsIdempotent(t *testing.T) {
	rel := newCountingReleaser()
	hooks := 0
	s := NewDescriptor("forest", WithReleaser(rel), WithDisposeHook(func(Descriptor) { hooks++ }))
	frag, _ := treeFragment()
	s.Attach(frag)

	s.Dispose()
	first := rel.total()
	s.Dispose()
	assert.Equal(t, first, rel.total())
	assert.Equal(t, 1, hooks)
}

func TestDisposeLogsReleaseErrors(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	rel := newCountingReleaser()
	frag, bark := treeFragment()
	rel.fail = bark

	s := NewDescriptor("forest", WithReleaser(rel), WithLogger(zap.New(core)))
	s.Attach(frag)
	s.Dispose()

	failed := logs.FilterMessage("release failed")
	require.Equal(t, 1, failed.Len())
	assert.Equal(t, zapcore.ErrorLevel, failed.All()[0].Level)
	assert.Equal(t, "material:bark", failed.All()[0].ContextMap()["resource"])
	assert.Equal(t, 1, logs.FilterMessage("scene disposed").Len())
}

func TestAttachAfterDisposeIsDropped(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	s := NewDescriptor("cave", WithLogger(zap.New(core)))
	s.Dispose()

	frag, _ := treeFragment()
	assert.False(t, s.Attach(frag))
	assert.Zero(t, s.Resources().Len())
	assert.Equal(t, 1, logs.FilterMessage("dropping fragment for disposed scene").Len())
}

func TestAttachNilRoot(t *testing.T) {
	s := NewDescriptor("cave")
	assert.False(t, s.Attach(Fragment{Clips: []animation.Clip{{Name: "walk"}}}))
}

func TestDescriptorDefaults(t *testing.T) {
	a := NewDescriptor("forest", WithClearColor([4]float32{0.1, 0.2, 0.1, 1}))
	b := NewDescriptor("forest")
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, "forest", a.Name())
	assert.Equal(t, [4]float32{0.1, 0.2, 0.1, 1}, a.ClearColor())
	require.NotNil(t, a.Root())

	a.AddEntity(7)
	assert.Len(t, a.Entities(), 1)
}

func TestNodeWalkComposesTransforms(t *testing.T) {
	root := NewNode("root")
	root.Translation = mgl32.Vec3{1, 0, 0}
	child := NewNode("child")
	child.SetTranslation(mgl32.Vec3{0, 2, 0})
	root.AddChild(child)
	root.AddChild(nil)

	var worlds []mgl32.Vec3
	root.Walk(func(n *Node, world mgl32.Mat4) bool {
		worlds = append(worlds, world.Col(3).Vec3())
		return true
	})
	require.Len(t, worlds, 2)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, worlds[0])
	assert.Equal(t, mgl32.Vec3{1, 2, 0}, worlds[1])

	visited := 0
	root.Walk(func(*Node, mgl32.Mat4) bool {
		visited++
		return false
	})
	assert.Equal(t, 1, visited)
}
