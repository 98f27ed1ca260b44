package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Euler builds a rotation from angles in degrees, applied about Z, then X,
// then Y, matching the convention of common content tools.
func Euler(x, y, z float64) mgl64.Quat {
	qx := mgl64.QuatRotate(mgl64.DegToRad(x), mgl64.Vec3{1, 0, 0})
	qy := mgl64.QuatRotate(mgl64.DegToRad(y), mgl64.Vec3{0, 1, 0})
	qz := mgl64.QuatRotate(mgl64.DegToRad(z), mgl64.Vec3{0, 0, 1})
	return qy.Mul(qx).Mul(qz)
}

// AngleBetween returns the angle in degrees between two rotations.
func AngleBetween(a, b mgl64.Quat) float64 {
	d := math.Abs(a.Normalize().Dot(b.Normalize()))
	if d > 1 {
		d = 1
	}
	return mgl64.RadToDeg(2 * math.Acos(d))
}

// LocalMatrix returns translation * rotation * scale for the node.
func (s *Scene) LocalMatrix(id NodeID) mgl64.Mat4 {
	n := s.Node(id)
	if n == nil {
		return mgl64.Ident4()
	}
	t := mgl64.Translate3D(n.Position[0], n.Position[1], n.Position[2])
	sc := mgl64.Scale3D(n.Scale[0], n.Scale[1], n.Scale[2])
	return t.Mul4(n.Rotation.Normalize().Mat4()).Mul4(sc)
}

// WorldMatrix returns the node's local-to-world matrix, including the root's
// own transform.
func (s *Scene) WorldMatrix(id NodeID) mgl64.Mat4 {
	m := mgl64.Ident4()
	for cur := id; ; {
		n := s.Node(cur)
		if n == nil {
			return m
		}
		m = s.LocalMatrix(cur).Mul4(m)
		cur = n.Parent
	}
}

// TransformPoint maps p from the node's local space into world space.
func (s *Scene) TransformPoint(id NodeID, p mgl64.Vec3) mgl64.Vec3 {
	return mgl64.TransformCoordinate(p, s.WorldMatrix(id))
}

// InverseTransformPoint maps p from world space into the node's local space.
func (s *Scene) InverseTransformPoint(id NodeID, p mgl64.Vec3) mgl64.Vec3 {
	return mgl64.TransformCoordinate(p, s.WorldMatrix(id).Inv())
}
