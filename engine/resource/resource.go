// Package resource defines the GPU-backed assets owned by a scene and the identity set used
// to release each of them exactly once.
package resource

import "fmt"

// Kind classifies a Resource.
type Kind int

const (
	KindGeometry Kind = iota
	KindMaterial
	KindShadowMap
)

func (k Kind) String() string {
	switch k {
	case KindGeometry:
		return "geometry"
	case KindMaterial:
		return "material"
	case KindShadowMap:
		return "shadow_map"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Resource is a releasable asset referenced from a scene graph.
// Identity is the value itself: implementations must be pointer types so that two drawables
// sharing one material compare equal and are released once.
type Resource interface {
	// Kind returns the resource classification.
	//
	// Returns:
	//   - Kind: the resource kind
	Kind() Kind

	// Label returns a human-readable label used in logs.
	//
	// Returns:
	//   - string: the label
	Label() string
}

// Releaser frees the backend memory held for a Resource.
// The renderer is the Releaser in a running viewer.
type Releaser interface {
	// Release frees the backend state of r.
	//
	// Parameters:
	//   - r: the resource to free
	//
	// Returns:
	//   - error: error if the backend failed to free r
	Release(r Resource) error
}

// ReleaserFunc adapts a function to the Releaser interface.
type ReleaserFunc func(r Resource) error

func (f ReleaserFunc) Release(r Resource) error {
	return f(r)
}

// Geometry is vertex and index data for one mesh primitive.
type Geometry struct {
	Name      string
	Positions []float32 // xyz triples
	Normals   []float32 // xyz triples, may be empty
	Indices   []uint32
}

var _ Resource = &Geometry{}

func (g *Geometry) Kind() Kind    { return KindGeometry }
func (g *Geometry) Label() string { return "geometry:" + g.Name }

// VertexCount returns the number of vertices in the geometry.
func (g *Geometry) VertexCount() int {
	return len(g.Positions) / 3
}

// Material holds the surface parameters a drawable is shaded with.
type Material struct {
	Name      string
	BaseColor [4]float32
	Metallic  float32
	Roughness float32
}

var _ Resource = &Material{}

func (m *Material) Kind() Kind    { return KindMaterial }
func (m *Material) Label() string { return "material:" + m.Name }

// ShadowMap is the depth target a shadow-casting light renders into.
type ShadowMap struct {
	Name string
	Size uint32
}

var _ Resource = &ShadowMap{}

func (s *ShadowMap) Kind() Kind    { return KindShadowMap }
func (s *ShadowMap) Label() string { return "shadow_map:" + s.Name }
