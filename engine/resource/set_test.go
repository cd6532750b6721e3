package resource

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetDedupsByIdentity(t *testing.T) {
	shared := &Material{Name: "bark"}
	twin := &Material{Name: "bark"}

	var s Set
	assert.True(t, s.Add(shared))
	assert.False(t, s.Add(shared))
	assert.True(t, s.Add(twin), "equal fields but distinct identity")
	assert.False(t, s.Add(nil))
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Contains(shared))
}

func TestSetReleaseAll(t *testing.T) {
	geo := &Geometry{Name: "trunk"}
	mat := &Material{Name: "bark"}
	bad := &ShadowMap{Name: "sun"}

	var released []Resource
	rel := ReleaserFunc(func(r Resource) error {
		if r == Resource(bad) {
			return errors.New("device lost")
		}
		released = append(released, r)
		return nil
	})

	var s Set
	s.Add(geo)
	s.Add(mat)
	s.Add(bad)

	var failed []Resource
	n := s.ReleaseAll(rel, func(r Resource, err error) {
		require.Error(t, err)
		failed = append(failed, r)
	})

	assert.Equal(t, 2, n)
	assert.Equal(t, []Resource{geo, mat}, released)
	assert.Equal(t, []Resource{bad}, failed)
	assert.Zero(t, s.Len())
}

func TestKindLabels(t *testing.T) {
	assert.Equal(t, "material:bark", (&Material{Name: "bark"}).Label())
	assert.Equal(t, KindShadowMap, (&ShadowMap{}).Kind())
	assert.Equal(t, "geometry", KindGeometry.String())
	assert.Equal(t, 2, (&Geometry{Positions: make([]float32, 6)}).VertexCount())
}
