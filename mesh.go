package main

import (
	"fmt"
	"math"

	mgl "github.com/go-gl/mathgl/mgl32"
)

type MeshConfig struct {
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	SegmentsX int     `json:"segmentsX"`
	SegmentsY int     `json:"segmentsY"`
	Scale     float64 `json:"scale"`
	PositionY float64 `json:"positionY"`
	RotationX float64 `json:"rotationX"`
	Wireframe bool    `json:"wireframe"`
}

func DefaultMeshConfig() MeshConfig {
	return MeshConfig{
		Width:     64,
		Height:    64,
		SegmentsX: 64,
		SegmentsY: 64,
		Scale:     2,
		PositionY: -8,
		RotationX: -math.Pi / 3,
		Wireframe: true,
	}
}

// maxMeshVertices is what a uint16 index buffer can address.
const maxMeshVertices = 1 << 16

func (c MeshConfig) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("mesh size must be positive, got %vx%v", c.Width, c.Height)
	}
	if c.SegmentsX < 1 || c.SegmentsY < 1 {
		return fmt.Errorf("mesh segments must be at least 1, got %dx%d", c.SegmentsX, c.SegmentsY)
	}
	if n := (c.SegmentsX + 1) * (c.SegmentsY + 1); n > maxMeshVertices {
		return fmt.Errorf("mesh has %d vertices, at most %d supported", n, maxMeshVertices)
	}
	if c.Scale <= 0 {
		return fmt.Errorf("mesh scale must be positive, got %v", c.Scale)
	}
	return nil
}

// Transform places a mesh in the world.
type Transform struct {
	Scale    mgl.Vec3
	Position mgl.Vec3
	Rotation mgl.Vec3
}

// Matrix is T·Rx·Ry·Rz·S.
func (t Transform) Matrix() mgl.Mat4 {
	return mgl.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z()).
		Mul4(mgl.HomogRotate3DX(t.Rotation.X())).
		Mul4(mgl.HomogRotate3DY(t.Rotation.Y())).
		Mul4(mgl.HomogRotate3DZ(t.Rotation.Z())).
		Mul4(mgl.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z()))
}

// Mesh is a plane grid in the XY plane. The vertex shader supplies z.
type Mesh struct {
	Positions []float32
	Triangles []uint16
	Lines     []uint16
	Wireframe bool
	Transform Transform
}

func (m *Mesh) VertexCount() int {
	return len(m.Positions) / 3
}

// NewPlaneMesh builds a centred width×height plane split into segX×segY
// cells. Rows run from +y to -y, each row from -x to +x.
func NewPlaneMesh(width, height float64, segX, segY int) (*Mesh, error) {
	cfg := MeshConfig{Width: width, Height: height, SegmentsX: segX, SegmentsY: segY, Scale: 1}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	gridX, gridY := segX+1, segY+1
	cellW := width / float64(segX)
	cellH := height / float64(segY)
	positions := make([]float32, 0, gridX*gridY*3)
	for iy := range gridY {
		y := float64(iy)*cellH - height/2
		for ix := range gridX {
			x := float64(ix)*cellW - width/2
			positions = append(positions, float32(x), float32(-y), 0)
		}
	}
	triangles := make([]uint16, 0, segX*segY*6)
	for iy := range segY {
		for ix := range segX {
			a := uint16(ix + gridX*iy)
			b := uint16(ix + gridX*(iy+1))
			c := uint16(ix + 1 + gridX*(iy+1))
			d := uint16(ix + 1 + gridX*iy)
			triangles = append(triangles, a, b, d, b, c, d)
		}
	}
	return &Mesh{
		Positions: positions,
		Triangles: triangles,
		Lines:     triangleEdges(triangles),
		Transform: Transform{Scale: mgl.Vec3{1, 1, 1}},
	}, nil
}

// NewSceneMesh builds the plane described by cfg, including its placement.
func NewSceneMesh(cfg MeshConfig) (*Mesh, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m, err := NewPlaneMesh(cfg.Width, cfg.Height, cfg.SegmentsX, cfg.SegmentsY)
	if err != nil {
		return nil, err
	}
	s := float32(cfg.Scale)
	m.Wireframe = cfg.Wireframe
	m.Transform = Transform{
		Scale:    mgl.Vec3{s, s, s},
		Position: mgl.Vec3{0, float32(cfg.PositionY), 0},
		Rotation: mgl.Vec3{float32(cfg.RotationX), 0, 0},
	}
	return m, nil
}

// triangleEdges returns every distinct triangle edge once, as line pairs.
func triangleEdges(triangles []uint16) []uint16 {
	type edge struct{ a, b uint16 }
	seen := make(map[edge]struct{}, len(triangles))
	lines := make([]uint16, 0, len(triangles))
	for i := 0; i+2 < len(triangles); i += 3 {
		tri := triangles[i : i+3]
		for j := range 3 {
			a, b := tri[j], tri[(j+1)%3]
			if a > b {
				a, b = b, a
			}
			e := edge{a, b}
			if _, ok := seen[e]; ok {
				continue
			}
			seen[e] = struct{}{}
			lines = append(lines, a, b)
		}
	}
	return lines
}
