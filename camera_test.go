package main

import (
	"math"
	"testing"

	mgl "github.com/go-gl/mathgl/mgl32"
)

func TestCameraEaseConverges(t *testing.T) {
	cfg := DefaultCameraConfig()
	c := NewCamera(cfg)
	c.SetPointer(200, -100)
	wantX := (1 - 200.0) * cfg.PointerScale
	wantY := (1 - -100.0) * cfg.PointerScale
	c.Ease()
	rx, ry := c.Rotation()
	if math.Abs(rx-cfg.Blend*wantY) > 1e-12 || math.Abs(ry-cfg.Blend*wantX) > 1e-12 {
		t.Fatalf("first step rotation = (%v, %v), want (%v, %v)", rx, ry, cfg.Blend*wantY, cfg.Blend*wantX)
	}
	// each step closes the same fraction of the remaining distance
	prev := math.Abs(wantY - rx)
	for range 10 {
		c.Ease()
		rx, _ = c.Rotation()
		gap := math.Abs(wantY - rx)
		if ratio := gap / prev; math.Abs(ratio-(1-cfg.Blend)) > 1e-9 {
			t.Fatalf("gap ratio = %v, want %v", ratio, 1-cfg.Blend)
		}
		prev = gap
	}
	for range 1000 {
		c.Ease()
	}
	rx, ry = c.Rotation()
	if math.Abs(rx-wantY) > 1e-9 || math.Abs(ry-wantX) > 1e-9 {
		t.Errorf("rotation = (%v, %v), want (%v, %v)", rx, ry, wantY, wantX)
	}
	tx, ty := c.Target()
	if tx != wantX || ty != wantY {
		t.Errorf("Target() = (%v, %v), want (%v, %v)", tx, ty, wantX, wantY)
	}
}

func TestCameraViewWithoutRotation(t *testing.T) {
	c := NewCamera(DefaultCameraConfig())
	want := mgl.Translate3D(0, 0, -5)
	if got := c.View(); !got.ApproxEqualThreshold(want, 1e-6) {
		t.Errorf("View() = %v, want %v", got, want)
	}
}

func TestCameraAspect(t *testing.T) {
	c := NewCamera(DefaultCameraConfig())
	c.SetAspect(1600, 800)
	if c.Aspect() != 2 {
		t.Errorf("Aspect() = %v, want 2", c.Aspect())
	}
	c.SetAspect(0, 100)
	if c.Aspect() != 2 {
		t.Errorf("Aspect() after zero width = %v, want 2", c.Aspect())
	}
	want := mgl.Perspective(mgl.DegToRad(75), 2, 0.1, 1000)
	if got := c.Projection(); !got.ApproxEqualThreshold(want, 1e-6) {
		t.Errorf("Projection() = %v, want %v", got, want)
	}
}

func TestCameraConfigValidate(t *testing.T) {
	bad := []CameraConfig{
		{FOV: 0, Near: 0.1, Far: 10, Blend: 0.05},
		{FOV: 75, Near: 0, Far: 10, Blend: 0.05},
		{FOV: 75, Near: 1, Far: 1, Blend: 0.05},
		{FOV: 75, Near: 0.1, Far: 10, Blend: 0},
		{FOV: 75, Near: 0.1, Far: 10, Blend: 1.5},
	}
	for _, cfg := range bad {
		if err := cfg.Validate(); err == nil {
			t.Errorf("Validate(%+v) succeeded, want error", cfg)
		}
	}
	if err := DefaultCameraConfig().Validate(); err != nil {
		t.Errorf("default config: %v", err)
	}
}
