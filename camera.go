package main

import (
	"fmt"

	mgl "github.com/go-gl/mathgl/mgl32"
)

type CameraConfig struct {
	FOV          float64 `json:"fov"`
	Near         float64 `json:"near"`
	Far          float64 `json:"far"`
	Z            float64 `json:"z"`
	PointerScale float64 `json:"pointerScale"`
	Blend        float64 `json:"blend"`
}

func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		FOV:          75,
		Near:         0.1,
		Far:          1000,
		Z:            5,
		PointerScale: 0.0005,
		Blend:        0.05,
	}
}

func (c CameraConfig) Validate() error {
	if c.FOV <= 0 || c.FOV >= 180 {
		return fmt.Errorf("camera fov must be in (0, 180), got %v", c.FOV)
	}
	if c.Near <= 0 || c.Far <= c.Near {
		return fmt.Errorf("camera clip planes must satisfy 0 < near < far, got near=%v far=%v", c.Near, c.Far)
	}
	if !(c.Blend > 0 && c.Blend <= 1) {
		return fmt.Errorf("camera blend must be in (0, 1], got %v", c.Blend)
	}
	return nil
}

// Camera is a perspective camera on the z axis that eases its rotation
// towards a target derived from the pointer offset.
type Camera struct {
	cfg              CameraConfig
	aspect           float64
	pointerX         float64
	pointerY         float64
	rotX, rotY       float64
	targetX, targetY float64
}

func NewCamera(cfg CameraConfig) *Camera {
	return &Camera{cfg: cfg, aspect: 1}
}

// SetPointer records the pointer offset from the window centre in pixels.
func (c *Camera) SetPointer(x, y float64) {
	c.pointerX = x
	c.pointerY = y
}

func (c *Camera) Pointer() (x, y float64) {
	return c.pointerX, c.pointerY
}

// Ease moves the rotation one blend step closer to the pointer target.
// The horizontal pointer offset turns the camera around y, the vertical
// one around x.
func (c *Camera) Ease() {
	c.targetX = (1 - c.pointerX) * c.cfg.PointerScale
	c.targetY = (1 - c.pointerY) * c.cfg.PointerScale
	c.rotX += c.cfg.Blend * (c.targetY - c.rotX)
	c.rotY += c.cfg.Blend * (c.targetX - c.rotY)
}

func (c *Camera) Target() (x, y float64) {
	return c.targetX, c.targetY
}

func (c *Camera) Rotation() (x, y float64) {
	return c.rotX, c.rotY
}

func (c *Camera) SetAspect(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.aspect = float64(width) / float64(height)
}

func (c *Camera) Aspect() float64 {
	return c.aspect
}

func (c *Camera) Projection() mgl.Mat4 {
	return mgl.Perspective(
		mgl.DegToRad(float32(c.cfg.FOV)),
		float32(c.aspect),
		float32(c.cfg.Near),
		float32(c.cfg.Far))
}

// View is the inverse of the camera's world transform T(0,0,z)·Rx·Ry.
func (c *Camera) View() mgl.Mat4 {
	world := mgl.Translate3D(0, 0, float32(c.cfg.Z)).
		Mul4(mgl.HomogRotate3DX(float32(c.rotX))).
		Mul4(mgl.HomogRotate3DY(float32(c.rotY)))
	return world.Inv()
}
