package sdfx

import (
	"math"
	"testing"

	"github.com/chazu/collidergen/pkg/kernel"
)

func checkMesh(t *testing.T, mesh *kernel.Mesh) {
	t.Helper()
	if mesh.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	triCount := mesh.TriangleCount()
	if triCount == 0 {
		t.Fatal("expected non-zero triangle count")
	}
	if len(mesh.Vertices) != len(mesh.Normals) {
		t.Fatalf("vertices length %d != normals length %d", len(mesh.Vertices), len(mesh.Normals))
	}
	if len(mesh.Indices) != triCount*3 {
		t.Fatalf("indices length %d != triCount*3 %d", len(mesh.Indices), triCount*3)
	}
}

func checkBounds(t *testing.T, s kernel.Solid, wantMin, wantMax [3]float64, tol float64) {
	t.Helper()
	min, max := s.BoundingBox()
	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-wantMin[i]) > tol {
			t.Errorf("min[%d] = %f, expected ~%f", i, min[i], wantMin[i])
		}
		if math.Abs(max[i]-wantMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected ~%f", i, max[i], wantMax[i])
		}
	}
}

func TestNewDefaultCells(t *testing.T) {
	if got := New(0).Cells(); got != DefaultMeshCells {
		t.Errorf("Cells() = %d, want %d", got, DefaultMeshCells)
	}
	if got := New(16).Cells(); got != 16 {
		t.Errorf("Cells() = %d, want 16", got)
	}
}

func TestBox(t *testing.T) {
	k := New(16)
	box := k.Box(4, 2, 1)
	mesh, err := k.ToMesh(box)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	checkMesh(t, mesh)
	checkBounds(t, box, [3]float64{-2, -1, -0.5}, [3]float64{2, 1, 0.5}, 0.01)
}

func TestSphere(t *testing.T) {
	k := New(16)
	sphere := k.Sphere(1.5)
	mesh, err := k.ToMesh(sphere)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	checkMesh(t, mesh)
	checkBounds(t, sphere, [3]float64{-1.5, -1.5, -1.5}, [3]float64{1.5, 1.5, 1.5}, 0.01)
	t.Logf("sphere triangle count: %d", mesh.TriangleCount())
}

func TestCapsule(t *testing.T) {
	k := New(16)
	capsule := k.Capsule(4, 0.5)
	mesh, err := k.ToMesh(capsule)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	checkMesh(t, mesh)
	checkBounds(t, capsule, [3]float64{-0.5, -0.5, -2}, [3]float64{0.5, 0.5, 2}, 0.01)
}

func TestCapsuleShorterThanDiameter(t *testing.T) {
	k := New(16)
	// Height below 2*radius is raised to a sphere-like capsule.
	capsule := k.Capsule(0.2, 1)
	checkBounds(t, capsule, [3]float64{-1, -1, -1}, [3]float64{1, 1, 1}, 0.01)
}

func TestTranslate(t *testing.T) {
	k := New(16)
	translated := k.Translate(k.Box(10, 10, 10), 100, 200, 300)
	checkBounds(t, translated,
		[3]float64{95, 195, 295},
		[3]float64{105, 205, 305}, 0.5)
}

func TestRotate(t *testing.T) {
	k := New(16)
	box := k.Box(100, 10, 10)

	// A long box along X rotated 90 degrees around Z should extend along Y instead.
	rotated := k.Rotate(box, 0, 0, 90)
	min, max := rotated.BoundingBox()

	xExtent := max[0] - min[0]
	yExtent := max[1] - min[1]

	const tol = 1.0
	if math.Abs(xExtent-10) > tol {
		t.Errorf("rotated X extent = %f, expected ~10", xExtent)
	}
	if math.Abs(yExtent-100) > tol {
		t.Errorf("rotated Y extent = %f, expected ~100", yExtent)
	}
}

func TestToMeshNil(t *testing.T) {
	if _, err := New(0).ToMesh(nil); err == nil {
		t.Error("expected error for nil solid")
	}
}
