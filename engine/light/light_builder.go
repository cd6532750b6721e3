package light

import "github.com/go-gl/mathgl/mgl32"

// LightBuilderOption is a function that configures a Light instance during construction.
type LightBuilderOption func(*lightImpl)

// WithName is an option builder that sets the light label.
//
// Parameters:
//   - name: the label
//
// Returns:
//   - LightBuilderOption: a function that applies the name option to a lightImpl
func WithName(name string) LightBuilderOption {
	return func(l *lightImpl) {
		if name != "" {
			l.name = name
		}
	}
}

// WithPosition is an option builder that sets the world-space position of the light.
//
// Parameters:
//   - pos: the position
//
// Returns:
//   - LightBuilderOption: a function that applies the position option to a lightImpl
func WithPosition(pos mgl32.Vec3) LightBuilderOption {
	return func(l *lightImpl) {
		l.position = pos
	}
}

// WithTarget is an option builder that sets the point a directional light aims at.
//
// Parameters:
//   - target: the target point
//
// Returns:
//   - LightBuilderOption: a function that applies the target option to a lightImpl
func WithTarget(target mgl32.Vec3) LightBuilderOption {
	return func(l *lightImpl) {
		l.target = target
	}
}

// WithColor is an option builder that sets the RGB color of the light.
//
// Parameters:
//   - color: the color as (r, g, b)
//
// Returns:
//   - LightBuilderOption: a function that applies the color option to a lightImpl
func WithColor(color mgl32.Vec3) LightBuilderOption {
	return func(l *lightImpl) {
		l.color = color
	}
}

// WithHexColor is an option builder that sets the color from a 0xRRGGBB value.
func WithHexColor(hex uint32) LightBuilderOption {
	return func(l *lightImpl) {
		l.color = HexColor(hex)
	}
}

// WithIntensity is an option builder that sets the scalar intensity multiplier.
//
// Parameters:
//   - intensity: the intensity value
//
// Returns:
//   - LightBuilderOption: a function that applies the intensity option to a lightImpl
func WithIntensity(intensity float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.intensity = intensity
	}
}

// WithRange is an option builder that sets the attenuation distance of a point light.
func WithRange(lightRange float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.lightRange = lightRange
	}
}

// WithEnabled is an option builder that sets whether the light is active for rendering.
func WithEnabled(enabled bool) LightBuilderOption {
	return func(l *lightImpl) {
		l.enabled = enabled
	}
}

// WithShadow is an option builder that makes the light cast shadows with the given settings.
// The light allocates a shadow-map resource sized to shadow.MapSize.
//
// Parameters:
//   - shadow: the shadow camera settings
//
// Returns:
//   - LightBuilderOption: a function that applies the shadow option to a lightImpl
func WithShadow(shadow Shadow) LightBuilderOption {
	return func(l *lightImpl) {
		if shadow.MapSize == 0 {
			shadow.MapSize = DefaultShadowMapSize
		}
		l.shadow = &shadow
	}
}

// HexColor converts a 0xRRGGBB value to an RGB vector in [0, 1].
//
// Parameters:
//   - hex: the packed color
//
// Returns:
//   - mgl32.Vec3: the color
func HexColor(hex uint32) mgl32.Vec3 {
	return mgl32.Vec3{
		float32((hex>>16)&0xFF) / 255.0,
		float32((hex>>8)&0xFF) / 255.0,
		float32(hex&0xFF) / 255.0,
	}
}
