package loader

import (
	"github.com/Carmen-Shannon/oxy-stage/engine/animation"
	"github.com/Carmen-Shannon/oxy-stage/engine/resource"
	"github.com/Carmen-Shannon/oxy-stage/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// Track is the keyframe timeline of one animated node property.
// A Clip's Payload is a []Track.
type Track struct {
	Node  string
	Path  string // translation, rotation, scale or weights
	Times []float32
}

type geometryData struct {
	name      string
	positions []float32
	normals   []float32
	indices   []uint32
}

type materialData struct {
	name      string
	baseColor [4]float32
	metallic  float32
	roughness float32
}

type primitiveRef struct {
	geometry int
	material int // -1 selects the default material
}

type nodeTemplate struct {
	name        string
	translation mgl32.Vec3
	rotation    mgl32.Quat
	scale       mgl32.Vec3
	primitives  []primitiveRef
	children    []*nodeTemplate
}

// template is the parsed, immutable form of an asset. Parsed documents are cached as templates;
// every load instantiates fresh resources from it so that two scenes never share a resource
// that one of them would release.
type template struct {
	name       string
	roots      []*nodeTemplate
	geometries []geometryData
	materials  []materialData
	clips      []animation.Clip
}

var defaultMaterial = materialData{
	name:      "default",
	baseColor: [4]float32{0.8, 0.8, 0.8, 1},
	roughness: 1,
}

// instantiate builds a new scene fragment. Within one fragment, primitives that reference the
// same geometry or material index share a single resource.
func (t *template) instantiate() scene.Fragment {
	geos := make([]*resource.Geometry, len(t.geometries))
	for i, g := range t.geometries {
		geos[i] = &resource.Geometry{
			Name:      g.name,
			Positions: g.positions,
			Normals:   g.normals,
			Indices:   g.indices,
		}
	}
	mats := make([]*resource.Material, len(t.materials))
	for i, m := range t.materials {
		mats[i] = newMaterial(m)
	}
	var fallback *resource.Material
	material := func(idx int) *resource.Material {
		if idx >= 0 && idx < len(mats) {
			return mats[idx]
		}
		if fallback == nil {
			fallback = newMaterial(defaultMaterial)
		}
		return fallback
	}

	var build func(nt *nodeTemplate) *scene.Node
	build = func(nt *nodeTemplate) *scene.Node {
		n := scene.NewNode(nt.name)
		n.Translation = nt.translation
		n.Rotation = nt.rotation
		n.Scale = nt.scale
		for _, p := range nt.primitives {
			if p.geometry < 0 || p.geometry >= len(geos) {
				continue
			}
			n.Drawables = append(n.Drawables, scene.Drawable{
				Geometry: geos[p.geometry],
				Material: material(p.material),
			})
		}
		for _, c := range nt.children {
			n.AddChild(build(c))
		}
		return n
	}

	root := scene.NewNode(t.name)
	for _, nt := range t.roots {
		root.AddChild(build(nt))
	}

	clips := make([]animation.Clip, len(t.clips))
	copy(clips, t.clips)
	return scene.Fragment{Root: root, Clips: clips}
}

func newMaterial(m materialData) *resource.Material {
	return &resource.Material{
		Name:      m.name,
		BaseColor: m.baseColor,
		Metallic:  m.metallic,
		Roughness: m.roughness,
	}
}

func newNodeTemplate(name string) *nodeTemplate {
	return &nodeTemplate{name: name, rotation: mgl32.QuatIdent(), scale: mgl32.Vec3{1, 1, 1}}
}
