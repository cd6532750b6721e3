package renderer

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingPresentMode = &mode
	}
}

// WithMSAA sets the multisample anti-aliasing sample count for the renderer.
// When not specified, the default is MSAA4x.
//
// Parameters:
//   - count: MSAAOff or MSAA4x
//
// Returns:
//   - RendererBuilderOption: a function that applies the MSAA option to a renderer
func WithMSAA(count MSAASampleCount) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingMSAA = &count
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}

// WithAmbient sets the ambient light color added to every lit surface.
//
// Parameters:
//   - color: linear RGB
//
// Returns:
//   - RendererBuilderOption: a function that applies the ambient option to a renderer
func WithAmbient(color mgl32.Vec3) RendererBuilderOption {
	return func(r *renderer) {
		r.ambient = color
	}
}

// WithLogger sets the renderer's logger.
//
// Parameters:
//   - log: the logger; nil keeps the no-op default
//
// Returns:
//   - RendererBuilderOption: a function that applies the logger option to a renderer
func WithLogger(log *zap.Logger) RendererBuilderOption {
	return func(r *renderer) {
		if log != nil {
			r.log = log
		}
	}
}
