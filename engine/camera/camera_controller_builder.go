package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraControllerBuilderOption is a functional option for configuring a CameraController.
type CameraControllerBuilderOption func(*followController)

// WithFollowMode sets the initial follow mode.
//
// Parameters:
//   - mode: the follow mode
//
// Returns:
//   - CameraControllerBuilderOption: option function to apply
func WithFollowMode(mode FollowMode) CameraControllerBuilderOption {
	return func(c *followController) {
		c.mode = mode
	}
}

// WithFollowOffset sets the subject-relative offset used by FollowOffset.
//
// Parameters:
//   - offset: the camera offset from the subject
//
// Returns:
//   - CameraControllerBuilderOption: option function to apply
func WithFollowOffset(offset mgl32.Vec3) CameraControllerBuilderOption {
	return func(c *followController) {
		c.offset = offset
	}
}
