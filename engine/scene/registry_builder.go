package scene

import "go.uber.org/zap"

// RegistryBuilderOption is a functional option for configuring a Registry.
type RegistryBuilderOption func(r *registry)

// WithRebuild sets the function used to recreate a scene that was disposed by an earlier switch.
// Without it, activating a disposed scene fails with ErrSceneDisposed.
//
// Parameters:
//   - fn: the rebuild function
//
// Returns:
//   - RegistryBuilderOption: option function to apply
func WithRebuild(fn RebuildFunc) RegistryBuilderOption {
	return func(r *registry) {
		r.rebuild = fn
	}
}

// WithActivated sets a function called with the new active scene after every activation,
// including the implicit one when the first scene is registered.
func WithActivated(fn func(Descriptor)) RegistryBuilderOption {
	return func(r *registry) {
		r.activated = fn
	}
}

// WithRegistryLogger sets the logger for registration and activation messages.
func WithRegistryLogger(l *zap.Logger) RegistryBuilderOption {
	return func(r *registry) {
		if l != nil {
			r.logger = l
		}
	}
}
