package main

import (
	"fmt"
)

// DefaultClockStep is the per-frame increment used by most scenes.
const DefaultClockStep = 0.02

// Clock is the logical animation time. It advances once per rendered
// frame, not with wall time, so a slow frame slows the animation down.
type Clock struct {
	t    float64
	step float64
}

func NewClock(step float64) (*Clock, error) {
	if !(step > 0) {
		return nil, fmt.Errorf("clock step must be positive, got %v", step)
	}
	return &Clock{step: step}, nil
}

// Advance moves the clock forward by one step and returns the new time.
func (c *Clock) Advance() float64 {
	c.t += c.step
	return c.t
}

func (c *Clock) Time() float64 {
	return c.t
}

func (c *Clock) Step() float64 {
	return c.step
}
