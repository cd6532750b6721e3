package stage

import (
	"github.com/Carmen-Shannon/oxy-stage/engine/camera"
	"github.com/Carmen-Shannon/oxy-stage/engine/resource"
	"go.uber.org/zap"
)

// StageBuilderOption is a functional option for configuring a Stage.
type StageBuilderOption func(*stage)

// WithCamera sets the camera scenes are rendered through.
//
// Parameters:
//   - cam: the camera
//
// Returns:
//   - StageBuilderOption: option function to apply
func WithCamera(cam camera.Camera) StageBuilderOption {
	return func(s *stage) {
		s.camera = cam
	}
}

// WithFollowController sets how the camera tracks the followed entity.
//
// Parameters:
//   - c: the follow controller
//
// Returns:
//   - StageBuilderOption: option function to apply
func WithFollowController(c camera.CameraController) StageBuilderOption {
	return func(s *stage) {
		s.follow = c
	}
}

// WithReleaser sets the releaser every scene built by the stage disposes its resources through.
// This is normally the renderer.
//
// Parameters:
//   - r: the releaser
//
// Returns:
//   - StageBuilderOption: option function to apply
func WithReleaser(r resource.Releaser) StageBuilderOption {
	return func(s *stage) {
		s.releaser = r
	}
}

// WithLogger sets the logger shared by the stage, its registry and its scenes.
func WithLogger(l *zap.Logger) StageBuilderOption {
	return func(s *stage) {
		if l != nil {
			s.logger = l
		}
	}
}
