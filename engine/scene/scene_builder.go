package scene

import (
	"github.com/Carmen-Shannon/oxy-stage/engine/light"
	"github.com/Carmen-Shannon/oxy-stage/engine/resource"
	"go.uber.org/zap"
)

// SceneBuilderOption is a functional option for configuring a Descriptor.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithLights adds lights to the scene.
//
// Parameters:
//   - lights: the lights to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLights(lights ...light.Light) SceneBuilderOption {
	return func(s *scene) {
		s.lights = append(s.lights, lights...)
	}
}

// WithClearColor sets the background color.
//
// Parameters:
//   - rgba: the clear color
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithClearColor(rgba [4]float32) SceneBuilderOption {
	return func(s *scene) {
		s.clearColor = rgba
	}
}

// WithReleaser sets the backend that frees resources on Dispose.
// Without one, Dispose only drops references.
//
// Parameters:
//   - r: the releaser, usually the renderer
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithReleaser(r resource.Releaser) SceneBuilderOption {
	return func(s *scene) {
		s.releaser = r
	}
}

// WithDisposeHook registers a function run once when the scene is disposed, after its
// resources are released.
//
// Parameters:
//   - hook: the function to run
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithDisposeHook(hook func(Descriptor)) SceneBuilderOption {
	return func(s *scene) {
		if hook != nil {
			s.onDispose = append(s.onDispose, hook)
		}
	}
}

// WithLogger sets the logger used for disposal and dropped-fragment messages.
func WithLogger(l *zap.Logger) SceneBuilderOption {
	return func(s *scene) {
		if l != nil {
			s.logger = l
		}
	}
}
