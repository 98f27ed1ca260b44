package kernel

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Kind labels what a mesh depicts.
type Kind string

const (
	KindRender  Kind = "render"
	KindBox     Kind = "box"
	KindCapsule Kind = "capsule"
	KindSphere  Kind = "sphere"
	KindMesh    Kind = "mesh"
)

// IsProxy reports whether the mesh shows a collision proxy rather than
// render geometry.
func (k Kind) IsProxy() bool {
	return k != KindRender && k != ""
}

// Mesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	Name     string    `json:"name"`     // scene node the mesh came from
	Kind     Kind      `json:"kind"`
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Vertex returns vertex i.
func (m *Mesh) Vertex(i int) mgl64.Vec3 {
	return mgl64.Vec3{
		float64(m.Vertices[3*i]),
		float64(m.Vertices[3*i+1]),
		float64(m.Vertices[3*i+2]),
	}
}

// Transform maps every vertex through mat in place. Normals are rotated by
// the inverse transpose and renormalized.
func (m *Mesh) Transform(mat mgl64.Mat4) {
	for i := 0; i < m.VertexCount(); i++ {
		v := mgl64.TransformCoordinate(m.Vertex(i), mat)
		m.Vertices[3*i] = float32(v[0])
		m.Vertices[3*i+1] = float32(v[1])
		m.Vertices[3*i+2] = float32(v[2])
	}
	if len(m.Normals) != len(m.Vertices) {
		return
	}
	nm := mat.Mat3().Inv().Transpose()
	for i := 0; i < len(m.Normals)/3; i++ {
		n := nm.Mul3x1(mgl64.Vec3{
			float64(m.Normals[3*i]),
			float64(m.Normals[3*i+1]),
			float64(m.Normals[3*i+2]),
		})
		if l := n.Len(); l > 0 {
			n = n.Mul(1 / l)
		}
		m.Normals[3*i] = float32(n[0])
		m.Normals[3*i+1] = float32(n[1])
		m.Normals[3*i+2] = float32(n[2])
	}
}

// Bounds returns the axis-aligned bounds of the vertices. ok is false for
// an empty mesh.
func (m *Mesh) Bounds() (min, max mgl64.Vec3, ok bool) {
	if m == nil || m.IsEmpty() {
		return min, max, false
	}
	min = mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	max = mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for i := 0; i < m.VertexCount(); i++ {
		v := m.Vertex(i)
		for a := 0; a < 3; a++ {
			min[a] = math.Min(min[a], v[a])
			max[a] = math.Max(max[a], v[a])
		}
	}
	return min, max, true
}
