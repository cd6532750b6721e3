package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-stage/engine/animation"
	"github.com/go-gl/mathgl/mgl32"
)

// importGLTF converts a decoded document into a template: the node tree of the default scene,
// one geometry per mesh primitive, one material per glTF material and one clip per animation.
func importGLTF(f *gltfFile, name string) (*template, error) {
	doc := &f.doc
	t := &template{name: name}

	// Flatten mesh primitives into geometry indices.
	primBase := make([]int, len(doc.Meshes))
	for mi, mesh := range doc.Meshes {
		primBase[mi] = len(t.geometries)
		for pi, prim := range mesh.Primitives {
			g, err := importPrimitive(f, prim, fmt.Sprintf("%s/%s#%d", name, meshName(mesh, mi), pi))
			if err != nil {
				return nil, fmt.Errorf("mesh %d primitive %d: %w", mi, pi, err)
			}
			t.geometries = append(t.geometries, g)
		}
	}

	for i, m := range doc.Materials {
		md := defaultMaterial
		md.name = m.Name
		if md.name == "" {
			md.name = fmt.Sprintf("%s/material#%d", name, i)
		}
		if pbr := m.PbrMetallicRoughness; pbr != nil {
			md.metallic = 1
			if pbr.BaseColorFactor != nil {
				md.baseColor = *pbr.BaseColorFactor
			} else {
				md.baseColor = [4]float32{1, 1, 1, 1}
			}
			if pbr.MetallicFactor != nil {
				md.metallic = *pbr.MetallicFactor
			}
			if pbr.RoughnessFactor != nil {
				md.roughness = *pbr.RoughnessFactor
			}
		}
		t.materials = append(t.materials, md)
	}

	roots, err := sceneRoots(doc)
	if err != nil {
		return nil, err
	}
	visiting := make(map[int]bool)
	var build func(idx int) (*nodeTemplate, error)
	build = func(idx int) (*nodeTemplate, error) {
		if idx < 0 || idx >= len(doc.Nodes) {
			return nil, fmt.Errorf("node %d out of range", idx)
		}
		if visiting[idx] {
			return nil, fmt.Errorf("node %d is its own ancestor", idx)
		}
		visiting[idx] = true
		defer delete(visiting, idx)

		gn := doc.Nodes[idx]
		nt := newNodeTemplate(nodeName(gn, idx))
		applyNodeTransform(nt, gn)

		if gn.Mesh != nil {
			mi := *gn.Mesh
			if mi < 0 || mi >= len(doc.Meshes) {
				return nil, fmt.Errorf("node %d: mesh %d out of range", idx, mi)
			}
			for pi, prim := range doc.Meshes[mi].Primitives {
				ref := primitiveRef{geometry: primBase[mi] + pi, material: -1}
				if prim.Material != nil {
					ref.material = *prim.Material
				}
				nt.primitives = append(nt.primitives, ref)
			}
		}
		for _, c := range gn.Children {
			child, err := build(c)
			if err != nil {
				return nil, err
			}
			nt.children = append(nt.children, child)
		}
		return nt, nil
	}
	for _, r := range roots {
		nt, err := build(r)
		if err != nil {
			return nil, err
		}
		t.roots = append(t.roots, nt)
	}

	for ai, anim := range doc.Animations {
		clip, err := importAnimation(f, anim, ai)
		if err != nil {
			return nil, fmt.Errorf("animation %d: %w", ai, err)
		}
		t.clips = append(t.clips, clip)
	}

	return t, nil
}

func importPrimitive(f *gltfFile, prim gltfPrimitive, name string) (geometryData, error) {
	g := geometryData{name: name}
	if prim.Mode != nil && *prim.Mode != gltfPrimitiveModeTriangles {
		return g, fmt.Errorf("unsupported primitive mode %d", *prim.Mode)
	}
	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return g, fmt.Errorf("primitive has no POSITION attribute")
	}
	positions, err := f.floats(posIdx, gltfAccessorTypeVec3)
	if err != nil {
		return g, fmt.Errorf("positions: %w", err)
	}
	g.positions = positions

	if nIdx, ok := prim.Attributes["NORMAL"]; ok {
		if g.normals, err = f.floats(nIdx, gltfAccessorTypeVec3); err != nil {
			return g, fmt.Errorf("normals: %w", err)
		}
	}

	vertexCount := uint32(len(positions) / 3)
	if prim.Indices != nil {
		if g.indices, err = f.indices(*prim.Indices); err != nil {
			return g, fmt.Errorf("indices: %w", err)
		}
		for _, ix := range g.indices {
			if ix >= vertexCount {
				return g, fmt.Errorf("index %d exceeds vertex count %d", ix, vertexCount)
			}
		}
	} else {
		g.indices = make([]uint32, vertexCount)
		for i := range g.indices {
			g.indices[i] = uint32(i)
		}
	}
	return g, nil
}

// importAnimation reads sampler input timelines. A clip lasts until its latest keyframe.
func importAnimation(f *gltfFile, anim gltfAnimation, index int) (animation.Clip, error) {
	clip := animation.Clip{Name: anim.Name, Policy: animation.Loop}
	if clip.Name == "" {
		clip.Name = fmt.Sprintf("animation#%d", index)
	}

	inputs := make(map[int][]float32)
	var tracks []Track
	for _, ch := range anim.Channels {
		if ch.Sampler < 0 || ch.Sampler >= len(anim.Samplers) {
			return clip, fmt.Errorf("channel sampler %d out of range", ch.Sampler)
		}
		in := anim.Samplers[ch.Sampler].Input
		times, ok := inputs[in]
		if !ok {
			var err error
			if times, err = f.floats(in, gltfAccessorTypeScalar); err != nil {
				return clip, fmt.Errorf("sampler input: %w", err)
			}
			inputs[in] = times
		}
		for _, ts := range times {
			if ts > clip.Duration {
				clip.Duration = ts
			}
		}

		node := ""
		if ch.Target.Node != nil && *ch.Target.Node >= 0 && *ch.Target.Node < len(f.doc.Nodes) {
			node = nodeName(f.doc.Nodes[*ch.Target.Node], *ch.Target.Node)
		}
		tracks = append(tracks, Track{Node: node, Path: ch.Target.Path, Times: times})
	}
	clip.Payload = tracks
	return clip, nil
}

func sceneRoots(doc *gltfDocument) ([]int, error) {
	if len(doc.Scenes) == 0 {
		// No scene: every node that is nobody's child is a root.
		isChild := make(map[int]bool)
		for _, n := range doc.Nodes {
			for _, c := range n.Children {
				isChild[c] = true
			}
		}
		var roots []int
		for i := range doc.Nodes {
			if !isChild[i] {
				roots = append(roots, i)
			}
		}
		return roots, nil
	}
	si := 0
	if doc.Scene != nil {
		si = *doc.Scene
	}
	if si < 0 || si >= len(doc.Scenes) {
		return nil, fmt.Errorf("default scene %d out of range", si)
	}
	return doc.Scenes[si].Nodes, nil
}

func applyNodeTransform(nt *nodeTemplate, gn gltfNode) {
	if gn.Matrix != nil {
		m := mgl32.Mat4(*gn.Matrix)
		nt.translation = m.Col(3).Vec3()
		sx := m.Col(0).Vec3().Len()
		sy := m.Col(1).Vec3().Len()
		sz := m.Col(2).Vec3().Len()
		nt.scale = mgl32.Vec3{sx, sy, sz}
		if sx != 0 && sy != 0 && sz != 0 {
			rot := mgl32.Mat3FromCols(
				m.Col(0).Vec3().Mul(1/sx),
				m.Col(1).Vec3().Mul(1/sy),
				m.Col(2).Vec3().Mul(1/sz),
			)
			nt.rotation = mgl32.Mat4ToQuat(rot.Mat4())
		}
		return
	}
	if gn.Translation != nil {
		nt.translation = mgl32.Vec3(*gn.Translation)
	}
	if gn.Rotation != nil {
		r := *gn.Rotation
		nt.rotation = mgl32.Quat{W: r[3], V: mgl32.Vec3{r[0], r[1], r[2]}}
	}
	if gn.Scale != nil {
		nt.scale = mgl32.Vec3(*gn.Scale)
	}
}

func nodeName(n gltfNode, index int) string {
	if n.Name != "" {
		return n.Name
	}
	return fmt.Sprintf("node#%d", index)
}

func meshName(m gltfMesh, index int) string {
	if m.Name != "" {
		return m.Name
	}
	return fmt.Sprintf("mesh#%d", index)
}
