package input

import "go.uber.org/zap"

// RouterBuilderOption is a functional option for configuring a Router.
type RouterBuilderOption func(*router)

// WithBinding maps a key to a command. A later binding for the same key replaces the earlier one.
//
// Parameters:
//   - keyCode: the virtual key code
//   - cmd: the command to route
//
// Returns:
//   - RouterBuilderOption: option function to apply
func WithBinding(keyCode uint32, cmd Command) RouterBuilderOption {
	return func(r *router) {
		if cmd != nil {
			r.bindings[keyCode] = cmd
		}
	}
}

// WithWalkClip sets the clip played on forward movement. Empty disables it.
//
// Parameters:
//   - name: the clip name
//
// Returns:
//   - RouterBuilderOption: option function to apply
func WithWalkClip(name string) RouterBuilderOption {
	return func(r *router) {
		r.walkClip = name
	}
}

// WithLogger sets the logger dropped commands are reported to.
func WithLogger(l *zap.Logger) RouterBuilderOption {
	return func(r *router) {
		if l != nil {
			r.logger = l
		}
	}
}
