package light

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSunLight(t *testing.T) {
	sun := NewLight(LightTypeDirectional,
		WithName("sun"),
		WithHexColor(0xFFFFFF),
		WithIntensity(1.0),
		WithPosition(mgl32.Vec3{-100, 100, 100}),
		WithTarget(mgl32.Vec3{0, 0, 0}),
		WithShadow(DefaultShadow()),
	)

	assert.Equal(t, mgl32.Vec3{1, 1, 1}, sun.Color())
	require.True(t, sun.CastsShadows())
	require.NotNil(t, sun.ShadowMap())
	assert.Equal(t, uint32(4096), sun.ShadowMap().Size)
	assert.Equal(t, "shadow_map:sun", sun.ShadowMap().Label())
	assert.InDelta(t, -0.001, sun.Shadow().Bias, 1e-9)

	dir := sun.Direction()
	assert.InDelta(t, 1.0, dir.Len(), 1e-5)
	assert.Greater(t, dir.X(), float32(0))
	assert.Less(t, dir.Y(), float32(0))
	assert.NotEqual(t, mgl32.Ident4(), sun.ShadowViewProjection())
}

func TestLightWithoutShadow(t *testing.T) {
	bulb := NewLight(LightTypePoint, WithRange(4))
	assert.False(t, bulb.CastsShadows())
	assert.Nil(t, bulb.ShadowMap())
	assert.Equal(t, mgl32.Ident4(), bulb.ShadowViewProjection())
	assert.Equal(t, float32(4), bulb.Range())
	assert.Equal(t, "point", bulb.Name())
}

func TestDirectionDegenerate(t *testing.T) {
	l := NewLight(LightTypeDirectional, WithPosition(mgl32.Vec3{}))
	assert.Equal(t, mgl32.Vec3{}, l.Direction())
}

func TestParseLightType(t *testing.T) {
	lt, err := ParseLightType("point")
	require.NoError(t, err)
	assert.Equal(t, LightTypePoint, lt)
	_, err = ParseLightType("spot")
	assert.Error(t, err)
}

func TestShadowDefaultsMapSize(t *testing.T) {
	l := NewLight(LightTypeDirectional, WithShadow(Shadow{Near: 1, Far: 10}))
	assert.Equal(t, DefaultShadowMapSize, l.ShadowMap().Size)
}
