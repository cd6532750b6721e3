package camera

import "github.com/go-gl/mathgl/mgl32"

type CameraBuilderOption func(*cameraImpl)

// WithPosition sets the camera's world-space position.
//
// Parameters:
//   - pos: the eye position
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's position
func WithPosition(pos mgl32.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.position = pos
	}
}

// WithTarget sets the camera's look-at point.
//
// Parameters:
//   - target: the look-at point
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's target
func WithTarget(target mgl32.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.target = target
	}
}

// WithUp sets the camera's up vector.
func WithUp(up mgl32.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.up = up
	}
}

// WithFovDegrees sets the camera's vertical field of view in degrees.
//
// Parameters:
//   - deg: field of view in degrees
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's field of view
func WithFovDegrees(deg float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.fov = Radians(deg)
	}
}

// WithAspect sets the camera's aspect ratio (width / height).
//
// Parameters:
//   - aspect: the aspect ratio to set
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's aspect ratio
func WithAspect(aspect float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		if aspect > 0 {
			c.aspect = aspect
		}
	}
}

// WithClipPlanes sets the near and far clipping plane distances.
//
// Parameters:
//   - near: near plane distance
//   - far: far plane distance
//
// Returns:
//   - CameraBuilderOption: a function that sets the clip planes
func WithClipPlanes(near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.near = near
		c.far = far
	}
}
