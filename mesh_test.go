package main

import (
	"math"
	"testing"

	mgl "github.com/go-gl/mathgl/mgl32"
)

func TestPlaneMeshCounts(t *testing.T) {
	m, err := NewPlaneMesh(64, 64, 64, 64)
	if err != nil {
		t.Fatal(err)
	}
	if got := m.VertexCount(); got != 65*65 {
		t.Errorf("VertexCount() = %d, want %d", got, 65*65)
	}
	if got := len(m.Triangles); got != 64*64*6 {
		t.Errorf("len(Triangles) = %d, want %d", got, 64*64*6)
	}
	// 64·65 horizontal, 65·64 vertical and 64·64 diagonal edges
	if got := len(m.Lines) / 2; got != 12416 {
		t.Errorf("line count = %d, want 12416", got)
	}
}

func TestPlaneMeshLayout(t *testing.T) {
	m, err := NewPlaneMesh(4, 2, 2, 1)
	if err != nil {
		t.Fatal(err)
	}
	want := []float32{
		-2, 1, 0, 0, 1, 0, 2, 1, 0,
		-2, -1, 0, 0, -1, 0, 2, -1, 0,
	}
	if len(m.Positions) != len(want) {
		t.Fatalf("len(Positions) = %d, want %d", len(m.Positions), len(want))
	}
	for i := range want {
		if m.Positions[i] != want[i] {
			t.Fatalf("Positions = %v, want %v", m.Positions, want)
		}
	}
	wantTri := []uint16{0, 3, 1, 3, 4, 1, 1, 4, 2, 4, 5, 2}
	for i := range wantTri {
		if m.Triangles[i] != wantTri[i] {
			t.Fatalf("Triangles = %v, want %v", m.Triangles, wantTri)
		}
	}
}

func TestPlaneMeshValidate(t *testing.T) {
	if _, err := NewPlaneMesh(64, 64, 0, 64); err == nil {
		t.Error("zero segments accepted")
	}
	if _, err := NewPlaneMesh(0, 64, 64, 64); err == nil {
		t.Error("zero width accepted")
	}
	if _, err := NewPlaneMesh(64, 64, 256, 256); err == nil {
		t.Error("mesh beyond uint16 indices accepted")
	}
}

func TestSceneMeshTransform(t *testing.T) {
	m, err := NewSceneMesh(DefaultMeshConfig())
	if err != nil {
		t.Fatal(err)
	}
	if !m.Wireframe {
		t.Error("default mesh is not wireframe")
	}
	model := m.Transform.Matrix()
	origin := model.Mul4x1(mgl.Vec4{0, 0, 0, 1})
	if !origin.ApproxEqualThreshold(mgl.Vec4{0, -8, 0, 1}, 1e-5) {
		t.Errorf("origin maps to %v, want (0, -8, 0, 1)", origin)
	}
	// (0, 1, 0) is scaled by 2 and tilted back by 60 degrees
	up := model.Mul4x1(mgl.Vec4{0, 1, 0, 1})
	wantY := float32(-8 + 2*math.Cos(-math.Pi/3))
	wantZ := float32(2 * math.Sin(-math.Pi/3))
	if !up.ApproxEqualThreshold(mgl.Vec4{0, wantY, wantZ, 1}, 1e-5) {
		t.Errorf("(0,1,0) maps to %v, want (0, %v, %v, 1)", up, wantY, wantZ)
	}
}
