package scene

import "github.com/go-gl/mathgl/mgl64"

// NodeID addresses a node in the scene arena.
type NodeID int

// NoNode is the parent of the root and of nodes not yet attached.
const NoNode NodeID = -1

// Valid reports whether id can address a node at all.
func (id NodeID) Valid() bool {
	return id >= 0
}

// MeshID addresses a mesh in the scene arena.
type MeshID int

// NoMesh marks a node without renderable geometry.
const NoMesh MeshID = -1

// Node is a position in the imported hierarchy.
type Node struct {
	ID       NodeID
	Name     string
	Parent   NodeID
	Children []NodeID

	// Local transform relative to Parent.
	Position mgl64.Vec3
	Rotation mgl64.Quat
	Scale    mgl64.Vec3

	Mesh     MeshID // shared, not owned
	Renderer bool
	Shapes   []Shape
}

// HasMesh reports whether the node references renderable geometry.
func (n *Node) HasMesh() bool {
	return n.Mesh != NoMesh
}

// Mesh is renderable geometry. A mesh may be referenced by several nodes;
// rewriting its vertices affects all of them.
type Mesh struct {
	Name      string
	Vertices  []mgl64.Vec3
	Triangles []uint32 // 3 indices per triangle
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Triangles) / 3
}

// Bounds returns the axis-aligned bounds of the vertices in mesh space.
// ok is false for a mesh without vertices.
func (m *Mesh) Bounds() (min, max mgl64.Vec3, ok bool) {
	if m == nil || len(m.Vertices) == 0 {
		return mgl64.Vec3{}, mgl64.Vec3{}, false
	}
	min, max = m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		for i := 0; i < 3; i++ {
			if v[i] < min[i] {
				min[i] = v[i]
			}
			if v[i] > max[i] {
				max[i] = v[i]
			}
		}
	}
	return min, max, true
}

// boxCorners lists the unit cube corners in the order used by boxTriangles.
var boxCorners = [8]mgl64.Vec3{
	{-0.5, -0.5, -0.5}, {0.5, -0.5, -0.5}, {0.5, 0.5, -0.5}, {-0.5, 0.5, -0.5},
	{-0.5, -0.5, 0.5}, {0.5, -0.5, 0.5}, {0.5, 0.5, 0.5}, {-0.5, 0.5, 0.5},
}

// boxTriangles winds every face counter-clockwise seen from outside.
var boxTriangles = []uint32{
	0, 2, 1, 0, 3, 2, // -z
	4, 5, 6, 4, 6, 7, // +z
	0, 1, 5, 0, 5, 4, // -y
	3, 7, 6, 3, 6, 2, // +y
	0, 4, 7, 0, 7, 3, // -x
	1, 2, 6, 1, 6, 5, // +x
}

// BoxMesh returns a closed box mesh of the given size centered at center.
func BoxMesh(name string, size, center mgl64.Vec3) *Mesh {
	m := &Mesh{Name: name, Vertices: make([]mgl64.Vec3, len(boxCorners))}
	for i, c := range boxCorners {
		m.Vertices[i] = mgl64.Vec3{c[0] * size[0], c[1] * size[1], c[2] * size[2]}.Add(center)
	}
	m.Triangles = append([]uint32(nil), boxTriangles...)
	return m
}
