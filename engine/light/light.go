package light

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-stage/engine/resource"
	"github.com/go-gl/mathgl/mgl32"
)

// LightType identifies the kind of light source.
type LightType int

const (
	// LightTypeDirectional represents a distant source such as the sun. It shines from its
	// position toward its target with no distance attenuation.
	LightTypeDirectional LightType = iota

	// LightTypePoint represents a light that emits in all directions from a position and
	// attenuates with distance up to its range.
	LightTypePoint
)

// ParseLightType converts "directional" or "point" to a LightType.
//
// Parameters:
//   - s: the type name
//
// Returns:
//   - LightType: the parsed type
//   - error: error if s is not a known light type
func ParseLightType(s string) (LightType, error) {
	switch s {
	case "", "directional":
		return LightTypeDirectional, nil
	case "point":
		return LightTypePoint, nil
	}
	return 0, fmt.Errorf("unknown light type %q", s)
}

func (t LightType) String() string {
	if t == LightTypePoint {
		return "point"
	}
	return "directional"
}

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	name       string
	lightType  LightType
	position   mgl32.Vec3
	target     mgl32.Vec3
	color      mgl32.Vec3
	intensity  float32
	lightRange float32
	enabled    bool

	shadow    *Shadow
	shadowMap *resource.ShadowMap
}

// Light defines the interface for a light source in a scene.
//
// A light that casts shadows owns a shadow-map resource. The scene that holds the light
// releases that resource when it is disposed.
type Light interface {
	// Name returns the light label used in logs and resource labels.
	//
	// Returns:
	//   - string: the name
	Name() string

	// Type returns the kind of light source.
	//
	// Returns:
	//   - LightType: the light type
	Type() LightType

	// Position returns the world-space position of the light.
	//
	// Returns:
	//   - mgl32.Vec3: the position
	Position() mgl32.Vec3

	// Target returns the point a directional light aims at.
	//
	// Returns:
	//   - mgl32.Vec3: the target
	Target() mgl32.Vec3

	// Direction returns the normalized direction from position to target.
	// Returns the zero vector when position and target coincide.
	//
	// Returns:
	//   - mgl32.Vec3: the normalized direction
	Direction() mgl32.Vec3

	// Color returns the RGB color of the light.
	//
	// Returns:
	//   - mgl32.Vec3: color as (r, g, b)
	Color() mgl32.Vec3

	// Intensity returns the scalar intensity multiplier.
	//
	// Returns:
	//   - float32: the intensity
	Intensity() float32

	// Range returns the attenuation distance of a point light.
	//
	// Returns:
	//   - float32: the range
	Range() float32

	// Enabled returns whether this light contributes to rendering.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// CastsShadows returns whether this light has a shadow configuration.
	//
	// Returns:
	//   - bool: true if the light casts shadows
	CastsShadows() bool

	// Shadow returns the shadow configuration, or nil if the light casts no shadows.
	//
	// Returns:
	//   - *Shadow: the shadow settings
	Shadow() *Shadow

	// ShadowMap returns the depth target resource for a shadow-casting light, or nil.
	//
	// Returns:
	//   - *resource.ShadowMap: the shadow map
	ShadowMap() *resource.ShadowMap

	// ShadowViewProjection computes the light-space matrix used to render and sample the shadow map.
	//
	// Returns:
	//   - mgl32.Mat4: the view-projection matrix, identity if the light casts no shadows
	ShadowViewProjection() mgl32.Mat4

	SetPosition(pos mgl32.Vec3)
	SetTarget(target mgl32.Vec3)
	SetColor(color mgl32.Vec3)
	SetIntensity(intensity float32)
	SetEnabled(enabled bool)
}

var _ Light = &lightImpl{}

// NewLight creates a new Light of the specified type with sensible defaults and
// any provided options applied.
//
// Parameters:
//   - lightType: the kind of light to create
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: a new Light instance
func NewLight(lightType LightType, opts ...LightBuilderOption) Light {
	l := &lightImpl{
		name:       lightType.String(),
		lightType:  lightType,
		position:   mgl32.Vec3{0, 10, 0},
		target:     mgl32.Vec3{0, 0, 0},
		color:      mgl32.Vec3{1, 1, 1},
		intensity:  1.0,
		lightRange: 10.0,
		enabled:    true,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.shadow != nil {
		l.shadowMap = &resource.ShadowMap{Name: l.name, Size: l.shadow.MapSize}
	}
	return l
}

func (l *lightImpl) Name() string {
	return l.name
}

func (l *lightImpl) Type() LightType {
	return l.lightType
}

func (l *lightImpl) Position() mgl32.Vec3 {
	return l.position
}

func (l *lightImpl) Target() mgl32.Vec3 {
	return l.target
}

func (l *lightImpl) Direction() mgl32.Vec3 {
	d := l.target.Sub(l.position)
	if d.Len() == 0 {
		return mgl32.Vec3{}
	}
	return d.Normalize()
}

func (l *lightImpl) Color() mgl32.Vec3 {
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	return l.intensity
}

func (l *lightImpl) Range() float32 {
	return l.lightRange
}

func (l *lightImpl) Enabled() bool {
	return l.enabled
}

func (l *lightImpl) CastsShadows() bool {
	return l.shadow != nil
}

func (l *lightImpl) Shadow() *Shadow {
	return l.shadow
}

func (l *lightImpl) ShadowMap() *resource.ShadowMap {
	return l.shadowMap
}

func (l *lightImpl) ShadowViewProjection() mgl32.Mat4 {
	if l.shadow == nil {
		return mgl32.Ident4()
	}
	return l.shadow.Projection().Mul4(mgl32.LookAtV(l.position, l.target, mgl32.Vec3{0, 1, 0}))
}

func (l *lightImpl) SetPosition(pos mgl32.Vec3) {
	l.position = pos
}

func (l *lightImpl) SetTarget(target mgl32.Vec3) {
	l.target = target
}

func (l *lightImpl) SetColor(color mgl32.Vec3) {
	l.color = color
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.intensity = intensity
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.enabled = enabled
}
