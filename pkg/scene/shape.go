package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ShapeKind enumerates the collision shape proxies a node can carry.
type ShapeKind int

const (
	ShapeBox     ShapeKind = iota // oriented box
	ShapeCapsule                  // capsule along one local axis
	ShapeSphere                   // sphere
	ShapeMesh                     // collider built from mesh geometry
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeBox:
		return "box"
	case ShapeCapsule:
		return "capsule"
	case ShapeSphere:
		return "sphere"
	case ShapeMesh:
		return "mesh"
	default:
		return "unknown"
	}
}

// Axis selects a local axis.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return "unknown"
	}
}

// Shape is a collision shape proxy attached to a node. The set of
// implementations is closed: BoxShape, CapsuleShape, SphereShape, MeshShape.
// Shapes are values, so assigning one copies its whole configuration.
type Shape interface {
	Kind() ShapeKind
	shape() // marker method restricting implementations to this package
}

// BoxShape is a box collider in node-local space.
type BoxShape struct {
	Center mgl64.Vec3
	Size   mgl64.Vec3
}

func (BoxShape) Kind() ShapeKind { return ShapeBox }
func (BoxShape) shape()          {}

// CapsuleShape is a capsule collider. Height includes both caps.
type CapsuleShape struct {
	Center    mgl64.Vec3
	Radius    float64
	Height    float64
	Direction Axis
}

func (CapsuleShape) Kind() ShapeKind { return ShapeCapsule }
func (CapsuleShape) shape()          {}

// SphereShape is a sphere collider.
type SphereShape struct {
	Center mgl64.Vec3
	Radius float64
}

func (SphereShape) Kind() ShapeKind { return ShapeSphere }
func (SphereShape) shape()          {}

// MeshShape is a collider using the geometry of a mesh. A Convex collider
// is restricted to the convex hull of that geometry.
type MeshShape struct {
	Mesh   MeshID
	Convex bool
}

func (MeshShape) Kind() ShapeKind { return ShapeMesh }
func (MeshShape) shape()          {}

// ShapeCenter returns the center offset of s. Mesh colliders have none.
func ShapeCenter(s Shape) (mgl64.Vec3, bool) {
	switch v := s.(type) {
	case BoxShape:
		return v.Center, true
	case CapsuleShape:
		return v.Center, true
	case SphereShape:
		return v.Center, true
	}
	return mgl64.Vec3{}, false
}

// WithCenter returns a copy of s with its center replaced. Shapes without a
// center are returned unchanged.
func WithCenter(s Shape, c mgl64.Vec3) Shape {
	switch v := s.(type) {
	case BoxShape:
		v.Center = c
		return v
	case CapsuleShape:
		v.Center = c
		return v
	case SphereShape:
		v.Center = c
		return v
	}
	return s
}

// FitShape creates a shape of the given kind sized to the bounds of the
// node's mesh, the way an editor sizes a freshly added collider. Nodes
// without geometry get the default unit-sized shape.
func (s *Scene) FitShape(kind ShapeKind, id NodeID) Shape {
	n := s.Node(id)
	var mesh *Mesh
	meshID := NoMesh
	if n != nil && n.HasMesh() {
		meshID = n.Mesh
		mesh = s.Mesh(n.Mesh)
	}

	if kind == ShapeMesh {
		return MeshShape{Mesh: meshID}
	}

	min, max, ok := mesh.Bounds()
	if !ok {
		return defaultShape(kind)
	}
	center := min.Add(max).Mul(0.5)
	size := max.Sub(min)
	half := size.Mul(0.5)

	switch kind {
	case ShapeBox:
		return BoxShape{Center: center, Size: size}
	case ShapeSphere:
		return SphereShape{Center: center, Radius: math.Max(half[0], math.Max(half[1], half[2]))}
	case ShapeCapsule:
		dir := AxisY
		if size[0] > size[dir] {
			dir = AxisX
		}
		if size[2] > size[dir] {
			dir = AxisZ
		}
		var radius float64
		for i := 0; i < 3; i++ {
			if Axis(i) != dir && half[i] > radius {
				radius = half[i]
			}
		}
		return CapsuleShape{
			Center:    center,
			Radius:    radius,
			Height:    math.Max(size[dir], 2*radius),
			Direction: dir,
		}
	}
	return defaultShape(kind)
}

func defaultShape(kind ShapeKind) Shape {
	switch kind {
	case ShapeCapsule:
		return CapsuleShape{Radius: 0.5, Height: 2, Direction: AxisY}
	case ShapeSphere:
		return SphereShape{Radius: 0.5}
	case ShapeMesh:
		return MeshShape{Mesh: NoMesh}
	default:
		return BoxShape{Size: mgl64.Vec3{1, 1, 1}}
	}
}
