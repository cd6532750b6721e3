package loader

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

type primitiveLoaderBackendImpl struct{}

var _ loaderBackend = &primitiveLoaderBackendImpl{}

func newPrimitiveLoaderBackend() loaderBackend {
	return &primitiveLoaderBackendImpl{}
}

func (b *primitiveLoaderBackendImpl) Import(path string, _ Kind) (*template, error) {
	name := strings.ToLower(strings.TrimPrefix(path, BuiltinPrefix))
	var g geometryData
	switch name {
	case "cube":
		g = cubeGeometry()
	case "plane":
		g = planeGeometry(100)
	default:
		return nil, fmt.Errorf("unknown builtin primitive %q", name)
	}
	g.name = BuiltinPrefix + name

	root := newNodeTemplate(name)
	root.primitives = []primitiveRef{{geometry: 0, material: 0}}
	return &template{
		name:       name,
		roots:      []*nodeTemplate{root},
		geometries: []geometryData{g},
		materials:  []materialData{{name: BuiltinPrefix + name, baseColor: [4]float32{0.6, 0.6, 0.6, 1}, roughness: 1}},
	}, nil
}

// cubeGeometry is a unit cube centred at the origin with flat per-face normals.
func cubeGeometry() geometryData {
	faces := []struct {
		normal, u, v mgl32.Vec3
	}{
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
	}
	var g geometryData
	for i, f := range faces {
		c := f.normal.Mul(0.5)
		for _, s := range [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
			p := c.Add(f.u.Mul(0.5 * s[0])).Add(f.v.Mul(0.5 * s[1]))
			g.positions = append(g.positions, p[:]...)
			g.normals = append(g.normals, f.normal[:]...)
		}
		base := uint32(i * 4)
		g.indices = append(g.indices, base, base+1, base+2, base, base+2, base+3)
	}
	return g
}

// planeGeometry is a size x size ground quad in the XZ plane facing +Y.
func planeGeometry(size float32) geometryData {
	h := size / 2
	return geometryData{
		positions: []float32{-h, 0, h, h, 0, h, h, 0, -h, -h, 0, -h},
		normals:   []float32{0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1, 0},
		indices:   []uint32{0, 1, 2, 0, 2, 3},
	}
}
