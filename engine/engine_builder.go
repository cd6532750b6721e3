package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-stage/engine/input"
	"github.com/Carmen-Shannon/oxy-stage/engine/renderer"
	"github.com/Carmen-Shannon/oxy-stage/engine/window"
	"go.uber.org/zap"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled.Store(enabled)
	}
}

// WithTickRate sets the engine tick rate in ticks per second.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60.0
		}
		e.engineTickRate = time.Duration(float64(time.Second) / fps)
	}
}

// WithWindow sets the window the engine pumps events from.
// Key presses are routed through the router and resize events reach the renderer and camera.
//
// Parameters:
//   - w: the window
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithRouter sets the router that maps key presses to commands and applies them.
//
// Parameters:
//   - r: the router
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRouter(r input.Router) EngineBuilderOption {
	return func(e *engine) {
		e.router = r
	}
}

// WithRenderer sets the renderer the active scene is drawn with each tick.
//
// Parameters:
//   - r: the renderer
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithInboxSize sets how many posted messages are buffered between ticks.
func WithInboxSize(n int) EngineBuilderOption {
	return func(e *engine) {
		if n > 0 {
			e.inboxSize = n
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) EngineBuilderOption {
	return func(e *engine) {
		if l != nil {
			e.logger = l
		}
	}
}
