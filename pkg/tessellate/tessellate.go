// Package tessellate walks a scene and produces world-space triangle meshes:
// one per rendered node and one per collision proxy, so both can be drawn
// together in a preview.
package tessellate

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/collidergen/pkg/kernel"
	"github.com/chazu/collidergen/pkg/scene"
)

// transformStack accumulates local-to-world matrices during traversal.
type transformStack struct {
	mats []mgl64.Mat4
}

func newTransformStack() *transformStack {
	return &transformStack{}
}

func (ts *transformStack) push(local mgl64.Mat4) {
	ts.mats = append(ts.mats, ts.top().Mul4(local))
}

func (ts *transformStack) pop() {
	if len(ts.mats) > 0 {
		ts.mats = ts.mats[:len(ts.mats)-1]
	}
}

// top returns the accumulated transform, identity when empty.
func (ts *transformStack) top() mgl64.Mat4 {
	if len(ts.mats) == 0 {
		return mgl64.Ident4()
	}
	return ts.mats[len(ts.mats)-1]
}

// Tessellate walks the scene from its root and returns render meshes and
// proxy meshes in world space. The scene is not modified.
func Tessellate(s *scene.Scene, k kernel.Kernel) ([]*kernel.Mesh, error) {
	if s == nil {
		return nil, nil
	}
	meshes, err := walkNode(s, k, s.Root(), newTransformStack())
	if err != nil {
		return nil, fmt.Errorf("tessellate: %w", err)
	}
	return meshes, nil
}

// walkNode pushes the node's transform, emits its meshes, recurses into
// children, then pops.
func walkNode(s *scene.Scene, k kernel.Kernel, id scene.NodeID, ts *transformStack) ([]*kernel.Mesh, error) {
	n := s.Node(id)
	if n == nil {
		return nil, nil
	}
	ts.push(s.LocalMatrix(id))
	defer ts.pop()
	world := ts.top()

	var meshes []*kernel.Mesh
	if n.Renderer {
		if m := s.Mesh(n.Mesh); m != nil {
			meshes = append(meshes, fromScene(m, n.Name, kernel.KindRender, world))
		}
	}

	for i, sh := range n.Shapes {
		m, err := handleShape(s, k, sh, world)
		if err != nil {
			return nil, fmt.Errorf("node %q shape %d: %w", n.Name, i, err)
		}
		if m != nil {
			m.Name = n.Name
			meshes = append(meshes, m)
		}
	}

	for _, child := range s.Children(id) {
		collected, err := walkNode(s, k, child, ts)
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, collected...)
	}
	return meshes, nil
}

// handleShape tessellates one proxy. Degenerate primitives yield nil.
func handleShape(s *scene.Scene, k kernel.Kernel, sh scene.Shape, world mgl64.Mat4) (*kernel.Mesh, error) {
	var solid kernel.Solid
	var kind kernel.Kind
	var center mgl64.Vec3

	switch v := sh.(type) {
	case scene.BoxShape:
		size, ok := thicken(v.Size)
		if !ok {
			return nil, nil
		}
		solid, kind, center = k.Box(size[0], size[1], size[2]), kernel.KindBox, v.Center
	case scene.SphereShape:
		if v.Radius <= 0 {
			return nil, nil
		}
		solid, kind, center = k.Sphere(v.Radius), kernel.KindSphere, v.Center
	case scene.CapsuleShape:
		if v.Radius <= 0 {
			return nil, nil
		}
		solid = k.Capsule(v.Height, v.Radius)
		switch v.Direction {
		case scene.AxisX:
			solid = k.Rotate(solid, 0, 90, 0)
		case scene.AxisY:
			solid = k.Rotate(solid, 90, 0, 0)
		}
		kind, center = kernel.KindCapsule, v.Center
	case scene.MeshShape:
		m := s.Mesh(v.Mesh)
		if m == nil {
			return nil, nil
		}
		return fromScene(m, "", kernel.KindMesh, world), nil
	default:
		return nil, fmt.Errorf("unsupported shape %T", sh)
	}

	if center != (mgl64.Vec3{}) {
		solid = k.Translate(solid, center[0], center[1], center[2])
	}
	mesh, err := k.ToMesh(solid)
	if err != nil {
		return nil, fmt.Errorf("ToMesh failed: %w", err)
	}
	mesh.Kind = kind
	mesh.Transform(world)
	return mesh, nil
}

// thicken gives flat boxes a sliver of depth so they still mesh. A box
// with no extent at all reports false.
func thicken(size mgl64.Vec3) (mgl64.Vec3, bool) {
	longest := math.Max(size[0], math.Max(size[1], size[2]))
	if longest <= 0 {
		return size, false
	}
	min := longest * 0.01
	for i := range size {
		size[i] = math.Max(size[i], min)
	}
	return size, true
}

// fromScene converts scene geometry to an unshared-vertex kernel mesh with
// flat normals, transformed by world.
func fromScene(m *scene.Mesh, name string, kind kernel.Kind, world mgl64.Mat4) *kernel.Mesh {
	tris := m.TriangleCount()
	out := &kernel.Mesh{
		Vertices: make([]float32, 0, tris*9),
		Normals:  make([]float32, 0, tris*9),
		Indices:  make([]uint32, 0, tris*3),
		Name:     name,
		Kind:     kind,
	}
	for t := 0; t < tris; t++ {
		var p [3]mgl64.Vec3
		valid := true
		for j := 0; j < 3; j++ {
			idx := int(m.Triangles[3*t+j])
			if idx >= len(m.Vertices) {
				valid = false
				break
			}
			p[j] = mgl64.TransformCoordinate(m.Vertices[idx], world)
		}
		if !valid {
			continue
		}
		base := uint32(len(out.Vertices) / 3)
		n := p[1].Sub(p[0]).Cross(p[2].Sub(p[0]))
		if l := n.Len(); l > 0 {
			n = n.Mul(1 / l)
		}
		for j := 0; j < 3; j++ {
			out.Vertices = append(out.Vertices, float32(p[j][0]), float32(p[j][1]), float32(p[j][2]))
			out.Normals = append(out.Normals, float32(n[0]), float32(n[1]), float32(n[2]))
			out.Indices = append(out.Indices, base+uint32(j))
		}
	}
	return out
}
