package camera

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

type cameraImpl struct {
	mu *sync.Mutex

	position mgl32.Vec3
	target   mgl32.Vec3
	up       mgl32.Vec3

	fov    float32
	aspect float32
	near   float32
	far    float32

	viewMatrix           mgl32.Mat4
	projectionMatrix     mgl32.Mat4
	viewProjectionMatrix mgl32.Mat4
}

// Camera defines a perspective camera looking from a position at a target.
// View and projection matrices are recomputed whenever a parameter changes.
// Safe for concurrent use; window resize callbacks set the aspect from the window thread.
type Camera interface {
	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - mgl32.Vec3: the eye position
	Position() mgl32.Vec3

	// Target returns the look-at point.
	//
	// Returns:
	//   - mgl32.Vec3: the target
	Target() mgl32.Vec3

	// Up returns the camera's up vector.
	//
	// Returns:
	//   - mgl32.Vec3: the up vector
	Up() mgl32.Vec3

	// Fov returns the vertical field of view in radians.
	//
	// Returns:
	//   - float32: field of view in radians
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// Near returns the near clipping plane distance.
	//
	// Returns:
	//   - float32: near plane distance
	Near() float32

	// Far returns the far clipping plane distance.
	//
	// Returns:
	//   - float32: far plane distance
	Far() float32

	// ViewMatrix returns the world-to-view transform.
	//
	// Returns:
	//   - mgl32.Mat4: the view matrix
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix returns the perspective projection.
	//
	// Returns:
	//   - mgl32.Mat4: the projection matrix
	ProjectionMatrix() mgl32.Mat4

	// ViewProjectionMatrix returns projection * view.
	//
	// Returns:
	//   - mgl32.Mat4: the combined matrix
	ViewProjectionMatrix() mgl32.Mat4

	// SetPosition moves the camera.
	//
	// Parameters:
	//   - pos: the new eye position
	SetPosition(pos mgl32.Vec3)

	// SetTarget changes the look-at point.
	//
	// Parameters:
	//   - target: the new target
	SetTarget(target mgl32.Vec3)

	// LookAt sets position and target together.
	//
	// Parameters:
	//   - pos: the new eye position
	//   - target: the new target
	LookAt(pos, target mgl32.Vec3)

	// SetFov sets the vertical field of view in radians.
	//
	// Parameters:
	//   - fov: field of view in radians
	SetFov(fov float32)

	// SetAspect sets the aspect ratio. Non-positive values are ignored.
	//
	// Parameters:
	//   - aspect: width / height
	SetAspect(aspect float32)

	SetNear(near float32)
	SetFar(far float32)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera with the given options.
// Defaults: 75° field of view, near 0.1, far 1000, positioned at (0, 5, 10) looking at the origin.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:       &sync.Mutex{},
		position: mgl32.Vec3{0, 5, 10},
		target:   mgl32.Vec3{0, 0, 0},
		up:       mgl32.Vec3{0, 1, 0},
		fov:      Radians(75),
		aspect:   1.0,
		near:     0.1,
		far:      1000.0,
	}
	for _, option := range options {
		option(c)
	}
	c.updateMatrices()
	return c
}

// Radians converts degrees to radians.
func Radians(deg float32) float32 {
	return deg * (math.Pi / 180.0)
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) Target() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *cameraImpl) Up() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) SetPosition(pos mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = pos
	c.updateMatrices()
}

func (c *cameraImpl) SetTarget(target mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = target
	c.updateMatrices()
}

func (c *cameraImpl) LookAt(pos, target mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = pos
	c.target = target
	c.updateMatrices()
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = fov
	c.updateMatrices()
}

func (c *cameraImpl) SetAspect(aspect float32) {
	if aspect <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) SetNear(near float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.near = near
	c.updateMatrices()
}

func (c *cameraImpl) SetFar(far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.far = far
	c.updateMatrices()
}

// updateMatrices recalculates the view, projection and view-projection matrices.
// A position equal to the target keeps the previous view matrix.
// Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	if !c.position.ApproxEqual(c.target) {
		c.viewMatrix = mgl32.LookAtV(c.position, c.target, c.up)
	} else if c.viewMatrix == (mgl32.Mat4{}) {
		c.viewMatrix = mgl32.Ident4()
	}
	c.projectionMatrix = mgl32.Perspective(c.fov, c.aspect, c.near, c.far)
	c.viewProjectionMatrix = c.projectionMatrix.Mul4(c.viewMatrix)
}
