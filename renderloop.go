package main

import (
	"fmt"
	"time"
)

// FrameScheduler runs fn once, at the next display refresh.
type FrameScheduler interface {
	RequestFrame(fn func())
}

type RenderLoopConfig struct {
	Clock           *Clock
	Params          *ShaderParams
	Camera          *Camera
	Device          Device
	Mesh            *Mesh
	Overlay         Overlay
	Scheduler       FrameScheduler
	Source          func() *SpectrumSource
	FramebufferSize func() Size
	TimeUniform     string
	SpectrumUniform string
}

// RenderLoop advances the clock, samples the spectrum, updates uniforms
// and draws one frame per tick, then schedules the next tick.
type RenderLoop struct {
	cfg        RenderLoopConfig
	frames     int
	stopped    bool
	drawErrors *errorThrottle
	hudErrors  *errorThrottle
}

func NewRenderLoop(cfg RenderLoopConfig) (*RenderLoop, error) {
	switch {
	case cfg.Clock == nil:
		return nil, fmt.Errorf("render loop: nil clock")
	case cfg.Params == nil:
		return nil, fmt.Errorf("render loop: nil shader params")
	case cfg.Device == nil:
		return nil, fmt.Errorf("render loop: nil device")
	case cfg.Scheduler == nil:
		return nil, fmt.Errorf("render loop: nil frame scheduler")
	}
	if cfg.TimeUniform == "" {
		cfg.TimeUniform = "time"
	}
	if cfg.SpectrumUniform == "" {
		cfg.SpectrumUniform = "u_data_arr"
	}
	if cfg.Source == nil {
		cfg.Source = func() *SpectrumSource { return nil }
	}
	if cfg.FramebufferSize == nil {
		cfg.FramebufferSize = func() Size { return Size{} }
	}
	return &RenderLoop{
		cfg:        cfg,
		drawErrors: newErrorThrottle("draw failed", time.Second),
		hudErrors:  newErrorThrottle("hud render failed", time.Second),
	}, nil
}

// Start schedules the first tick.
func (l *RenderLoop) Start() {
	l.stopped = false
	l.cfg.Scheduler.RequestFrame(l.Tick)
}

// Stop makes the next tick the last one.
func (l *RenderLoop) Stop() {
	l.stopped = true
}

func (l *RenderLoop) Frames() int {
	return l.frames
}

// DrawErrors is the number of failed draws so far.
func (l *RenderLoop) DrawErrors() int {
	return l.drawErrors.Total()
}

func (l *RenderLoop) LastDrawError() error {
	return l.drawErrors.LastError()
}

func (l *RenderLoop) Tick() {
	if l.stopped {
		return
	}
	c := l.cfg
	t := c.Clock.Advance()
	c.Params.SetFloat(c.TimeUniform, t)
	c.Params.SetSpectrum(c.SpectrumUniform, c.Source().Sample())
	if c.Camera != nil {
		c.Camera.Ease()
	}
	if err := c.Device.Draw(c.Mesh, c.Params); err != nil {
		l.drawErrors.Report(err)
	}
	if c.Overlay != nil {
		if err := c.Overlay.Render(c.FramebufferSize()); err != nil {
			l.hudErrors.Report(err)
		}
	}
	l.frames++
	c.Scheduler.RequestFrame(l.Tick)
}

// errorThrottle logs repeated errors at most once per interval, with the
// number of occurrences since the last log line.
type errorThrottle struct {
	msg      string
	interval time.Duration
	now      func() time.Time
	last     time.Time
	pending  int
	total    int
	lastErr  error
}

func newErrorThrottle(msg string, interval time.Duration) *errorThrottle {
	return &errorThrottle{msg: msg, interval: interval, now: time.Now}
}

// Report records err and returns true if it was logged.
func (et *errorThrottle) Report(err error) bool {
	et.total++
	et.pending++
	et.lastErr = err
	now := et.now()
	if !et.last.IsZero() && now.Sub(et.last) < et.interval {
		return false
	}
	logger.Error(et.msg, "error", err, "count", et.pending, "total", et.total)
	et.last = now
	et.pending = 0
	return true
}

func (et *errorThrottle) Total() int {
	return et.total
}

func (et *errorThrottle) LastError() error {
	return et.lastErr
}
