// Package kernel defines the geometry kernel used to tessellate collision
// proxies for preview. Implementations produce solids for the primitive
// proxy shapes and turn them into triangle meshes.
package kernel

// Solid is an opaque handle to a geometry kernel solid.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel builds proxy primitives. All primitives are centered on the origin.
type Kernel interface {
	Box(x, y, z float64) Solid
	Sphere(radius float64) Solid
	// Capsule is aligned with the Z axis; height includes both caps.
	Capsule(height, radius float64) Solid

	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees

	ToMesh(s Solid) (*Mesh, error)
}
