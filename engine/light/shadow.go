package light

import "github.com/go-gl/mathgl/mgl32"

// DefaultShadowMapSize is the default width and height in texels of a shadow depth texture.
const DefaultShadowMapSize uint32 = 4096

// DefaultShadowBias is the constant depth bias applied to shadow comparisons
// to reduce shadow acne artifacts.
const DefaultShadowBias float32 = -0.001

// DefaultShadowNear is the default near plane of the orthographic shadow projection.
const DefaultShadowNear float32 = 0.5

// DefaultShadowFar is the default far plane of the orthographic shadow projection.
const DefaultShadowFar float32 = 500.0

// DefaultShadowHalfExtent is the default orthographic half-extent in world units.
const DefaultShadowHalfExtent float32 = 50.0

// Shadow holds the shadow camera of a directional light.
// Left/Right and Top/Bottom may be swapped to mirror the projection.
type Shadow struct {
	Bias    float32
	MapSize uint32
	Near    float32
	Far     float32
	Left    float32
	Right   float32
	Top     float32
	Bottom  float32
}

// DefaultShadow returns the shadow settings used by scene lights unless a config overrides them.
//
// Returns:
//   - Shadow: the defaults
func DefaultShadow() Shadow {
	return Shadow{
		Bias:    DefaultShadowBias,
		MapSize: DefaultShadowMapSize,
		Near:    DefaultShadowNear,
		Far:     DefaultShadowFar,
		Left:    DefaultShadowHalfExtent,
		Right:   -DefaultShadowHalfExtent,
		Top:     DefaultShadowHalfExtent,
		Bottom:  -DefaultShadowHalfExtent,
	}
}

// Projection returns the orthographic projection of the shadow camera.
func (s Shadow) Projection() mgl32.Mat4 {
	return mgl32.Ortho(s.Left, s.Right, s.Bottom, s.Top, s.Near, s.Far)
}
