package kernel

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// --- Mesh helper method tests ---

func TestMeshVertexCount(t *testing.T) {
	tests := []struct {
		name     string
		vertices []float32
		want     int
	}{
		{"empty", nil, 0},
		{"one vertex", []float32{1, 2, 3}, 1},
		{"four vertices", []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Vertices: tt.vertices}
			if got := m.VertexCount(); got != tt.want {
				t.Errorf("VertexCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshTriangleCount(t *testing.T) {
	tests := []struct {
		name    string
		indices []uint32
		want    int
	}{
		{"empty", nil, 0},
		{"one triangle", []uint32{0, 1, 2}, 1},
		{"two triangles", []uint32{0, 1, 2, 2, 3, 0}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Indices: tt.indices}
			if got := m.TriangleCount(); got != tt.want {
				t.Errorf("TriangleCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshIsEmpty(t *testing.T) {
	t.Run("empty mesh", func(t *testing.T) {
		m := &Mesh{}
		if !m.IsEmpty() {
			t.Error("IsEmpty() = false for empty mesh, want true")
		}
	})
	t.Run("non-empty mesh", func(t *testing.T) {
		m := &Mesh{Vertices: []float32{1, 2, 3}}
		if m.IsEmpty() {
			t.Error("IsEmpty() = true for non-empty mesh, want false")
		}
	})
}

func TestKindIsProxy(t *testing.T) {
	tests := []struct {
		kind Kind
		want bool
	}{
		{KindRender, false},
		{"", false},
		{KindBox, true},
		{KindCapsule, true},
		{KindSphere, true},
		{KindMesh, true},
	}
	for _, tt := range tests {
		if got := tt.kind.IsProxy(); got != tt.want {
			t.Errorf("%q.IsProxy() = %v, want %v", tt.kind, got, tt.want)
		}
	}
}

func TestMeshTransform(t *testing.T) {
	m := &Mesh{
		Vertices: []float32{1, 0, 0, 0, 1, 0},
		Normals:  []float32{1, 0, 0, 0, 1, 0},
		Indices:  []uint32{0, 1, 0},
	}
	// Translate by (10,0,0) after a 90 degree turn about Z.
	mat := mgl64.Translate3D(10, 0, 0).Mul4(mgl64.HomogRotate3DZ(math.Pi / 2))
	m.Transform(mat)

	want := []mgl64.Vec3{{10, 1, 0}, {9, 0, 0}}
	for i, w := range want {
		if !m.Vertex(i).ApproxEqualThreshold(w, 1e-5) {
			t.Errorf("vertex %d = %v, want %v", i, m.Vertex(i), w)
		}
	}
	n0 := mgl64.Vec3{float64(m.Normals[0]), float64(m.Normals[1]), float64(m.Normals[2])}
	if !n0.ApproxEqualThreshold(mgl64.Vec3{0, 1, 0}, 1e-5) {
		t.Errorf("normal 0 = %v, want [0 1 0]", n0)
	}
}

func TestMeshTransformScaledNormals(t *testing.T) {
	m := &Mesh{
		Vertices: []float32{0, 0, 0},
		Normals:  []float32{0, 1, 0},
	}
	m.Transform(mgl64.Scale3D(1, 4, 1))
	if got := m.Normals[1]; math.Abs(float64(got)-1) > 1e-6 {
		t.Errorf("normal should stay unit length, got y=%f", got)
	}
}

func TestMeshBounds(t *testing.T) {
	var nilMesh *Mesh
	if _, _, ok := nilMesh.Bounds(); ok {
		t.Error("nil mesh should have no bounds")
	}
	if _, _, ok := (&Mesh{}).Bounds(); ok {
		t.Error("empty mesh should have no bounds")
	}

	m := &Mesh{Vertices: []float32{-1, 2, 3, 4, -5, 6}}
	min, max, ok := m.Bounds()
	if !ok {
		t.Fatal("expected bounds")
	}
	if min != (mgl64.Vec3{-1, -5, 3}) || max != (mgl64.Vec3{4, 2, 6}) {
		t.Errorf("bounds = %v..%v", min, max)
	}
}

// --- Compile-time interface check with a stub kernel ---

// stubSolid is a minimal Solid implementation for testing.
type stubSolid struct {
	minBB, maxBB [3]float64
}

func (s *stubSolid) BoundingBox() (min, max [3]float64) {
	return s.minBB, s.maxBB
}

// stubKernel proves the interface is satisfiable.
type stubKernel struct{}

func (k *stubKernel) Box(x, y, z float64) Solid {
	return &stubSolid{
		minBB: [3]float64{-x / 2, -y / 2, -z / 2},
		maxBB: [3]float64{x / 2, y / 2, z / 2},
	}
}

func (k *stubKernel) Sphere(r float64) Solid {
	return &stubSolid{minBB: [3]float64{-r, -r, -r}, maxBB: [3]float64{r, r, r}}
}

func (k *stubKernel) Capsule(height, radius float64) Solid {
	return &stubSolid{
		minBB: [3]float64{-radius, -radius, -height / 2},
		maxBB: [3]float64{radius, radius, height / 2},
	}
}

func (k *stubKernel) Translate(s Solid, _, _, _ float64) Solid { return s }
func (k *stubKernel) Rotate(s Solid, _, _, _ float64) Solid    { return s }

func (k *stubKernel) ToMesh(_ Solid) (*Mesh, error) {
	return &Mesh{}, nil
}

var _ Solid = (*stubSolid)(nil)
var _ Kernel = (*stubKernel)(nil)

func TestStubKernelBoxBoundingBox(t *testing.T) {
	var k Kernel = &stubKernel{}
	s := k.Box(10, 20, 30)
	min, max := s.BoundingBox()
	if min != [3]float64{-5, -10, -15} {
		t.Errorf("Box min = %v, want [-5 -10 -15]", min)
	}
	if max != [3]float64{5, 10, 15} {
		t.Errorf("Box max = %v, want [5 10 15]", max)
	}
}

func TestStubKernelToMesh(t *testing.T) {
	var k Kernel = &stubKernel{}
	m, err := k.ToMesh(k.Sphere(1))
	if err != nil {
		t.Fatalf("ToMesh() error = %v", err)
	}
	if m == nil {
		t.Fatal("ToMesh() returned nil mesh")
	}
	if !m.IsEmpty() {
		t.Error("stub ToMesh() should return empty mesh")
	}
}
