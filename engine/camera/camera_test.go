package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCameraDefaults(t *testing.T) {
	c := NewCamera()
	assert.InDelta(t, Radians(75), c.Fov(), 1e-6)
	assert.Equal(t, float32(0.1), c.Near())
	assert.Equal(t, float32(1000), c.Far())
	assert.Equal(t, c.ProjectionMatrix().Mul4(c.ViewMatrix()), c.ViewProjectionMatrix())
}

func TestCameraSettersRecompute(t *testing.T) {
	c := NewCamera(WithPosition(mgl32.Vec3{0, 0, 10}), WithTarget(mgl32.Vec3{}), WithClipPlanes(1, 50))
	before := c.ViewProjectionMatrix()

	c.SetAspect(16.0 / 9.0)
	assert.NotEqual(t, before, c.ViewProjectionMatrix())

	c.SetAspect(0)
	assert.InDelta(t, 16.0/9.0, c.Aspect(), 1e-6)

	// The origin projects to the center of clip space.
	p := c.ViewProjectionMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, 0, p.X()/p.W(), 1e-5)
	assert.InDelta(t, 0, p.Y()/p.W(), 1e-5)
}

func TestCameraDegenerateLookAt(t *testing.T) {
	c := NewCamera(WithPosition(mgl32.Vec3{1, 1, 1}), WithTarget(mgl32.Vec3{1, 1, 1}))
	assert.Equal(t, mgl32.Ident4(), c.ViewMatrix())
}

func TestFollowModes(t *testing.T) {
	subject := mgl32.Vec3{2, 0, 5}
	start := mgl32.Vec3{0, 5, 10}

	cam := NewCamera(WithPosition(start))
	NewCameraController().Follow(cam, subject)
	assert.Equal(t, start, cam.Position())
	assert.Equal(t, mgl32.Vec3{}, cam.Target())

	cam = NewCamera(WithPosition(start))
	NewCameraController(WithFollowMode(FollowLocked)).Follow(cam, subject)
	assert.Equal(t, start, cam.Position())
	assert.Equal(t, subject, cam.Target())

	cam = NewCamera(WithPosition(start))
	ctrl := NewCameraController(WithFollowMode(FollowOffset), WithFollowOffset(mgl32.Vec3{0, 2, -4}))
	ctrl.Follow(cam, subject)
	assert.Equal(t, mgl32.Vec3{2, 2, 1}, cam.Position())
	assert.Equal(t, subject, cam.Target())

	ctrl.SetMode(FollowFree, mgl32.Vec3{})
	ctrl.Follow(cam, mgl32.Vec3{9, 9, 9})
	assert.Equal(t, subject, cam.Target())
	ctrl.Follow(nil, subject)
}

func TestParseFollowMode(t *testing.T) {
	m, err := ParseFollowMode("Offset")
	require.NoError(t, err)
	assert.Equal(t, FollowOffset, m)
	assert.Equal(t, "offset", m.String())

	m, err = ParseFollowMode("")
	require.NoError(t, err)
	assert.Equal(t, FollowFree, m)

	_, err = ParseFollowMode("orbit")
	assert.Error(t, err)
}
