package common

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAxis(t *testing.T) {
	for in, want := range map[string]Axis{"x": AxisX, "Y": AxisY, " z ": AxisZ} {
		got, err := ParseAxis(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseAxis("w")
	assert.Error(t, err)
}

func TestAxisUnit(t *testing.T) {
	assert.Equal(t, mgl32.Vec3{0, 0, 1}, ForwardAxis.Unit())
	assert.Equal(t, mgl32.Vec3{}, Axis(7).Unit())
	assert.Equal(t, "y", AxisY.String())
}

func TestKeyByName(t *testing.T) {
	code, ok := KeyByName("1")
	require.True(t, ok)
	assert.Equal(t, uint32(Key1), code)

	code, ok = KeyByName("UP")
	require.True(t, ok)
	assert.Equal(t, uint32(KeyUp), code)

	_, ok = KeyByName("f13")
	assert.False(t, ok)
}

func TestCoalesceAndClamp(t *testing.T) {
	assert.Equal(t, "b", Coalesce("", "b", "c"))
	assert.Equal(t, 0, Coalesce(0, 0))
	assert.Equal(t, float32(2), Clamp(float32(3), 0, 2))
	assert.Equal(t, 0, Clamp(-1, 0, 5))
}
