package scene

import (
	"github.com/Carmen-Shannon/oxy-stage/engine/animation"
	"github.com/Carmen-Shannon/oxy-stage/engine/entity"
	"github.com/Carmen-Shannon/oxy-stage/engine/resource"
	"github.com/go-gl/mathgl/mgl32"
)

// Drawable pairs a geometry with the material it is shaded with.
// Several drawables may share one material or geometry.
type Drawable struct {
	Geometry *resource.Geometry
	Material *resource.Material
}

// Node is an element of a scene graph. Its local transform is translation * rotation * scale.
type Node struct {
	Name        string
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3
	Drawables   []Drawable
	Children    []*Node
}

var _ entity.Visual = &Node{}

// NewNode creates an empty node with unit scale.
//
// Parameters:
//   - name: the node name
//
// Returns:
//   - *Node: the node
func NewNode(name string) *Node {
	return &Node{Name: name, Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}}
}

// SetTranslation moves the node, satisfying entity.Visual.
func (n *Node) SetTranslation(pos mgl32.Vec3) {
	n.Translation = pos
}

// AddChild appends child below n.
func (n *Node) AddChild(child *Node) {
	if child == nil {
		return
	}
	n.Children = append(n.Children, child)
}

// Local returns the node's local transform matrix.
func (n *Node) Local() mgl32.Mat4 {
	return mgl32.Translate3D(n.Translation.X(), n.Translation.Y(), n.Translation.Z()).
		Mul4(n.Rotation.Normalize().Mat4()).
		Mul4(mgl32.Scale3D(n.Scale.X(), n.Scale.Y(), n.Scale.Z()))
}

// Walk visits n and its descendants depth-first with their world transforms.
// Returning false from fn skips the node's children.
//
// Parameters:
//   - fn: visitor receiving each node and its world matrix
func (n *Node) Walk(fn func(node *Node, world mgl32.Mat4) bool) {
	n.walk(mgl32.Ident4(), fn)
}

func (n *Node) walk(parent mgl32.Mat4, fn func(*Node, mgl32.Mat4) bool) {
	world := parent.Mul4(n.Local())
	if !fn(n, world) {
		return
	}
	for _, c := range n.Children {
		c.walk(world, fn)
	}
}

// CollectResources adds every geometry and material reachable from n to set.
//
// Parameters:
//   - set: destination identity set
func (n *Node) CollectResources(set *resource.Set) {
	n.Walk(func(node *Node, _ mgl32.Mat4) bool {
		for _, d := range node.Drawables {
			if d.Geometry != nil {
				set.Add(d.Geometry)
			}
			if d.Material != nil {
				set.Add(d.Material)
			}
		}
		return true
	})
}

// Fragment is the unit a model load produces: a subtree plus any animation clips it carries.
type Fragment struct {
	Root  *Node
	Clips []animation.Clip
}
