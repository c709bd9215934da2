package main

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// Analyser produces byte-quantised frequency magnitudes.
type Analyser interface {
	Bins() int
	ByteFrequencyData(dst []uint8)
}

type AnalyserConfig struct {
	FFTSize     int     `json:"fftSize"`
	Smoothing   float64 `json:"smoothing"`
	MinDecibels float64 `json:"minDecibels"`
	MaxDecibels float64 `json:"maxDecibels"`
}

func DefaultAnalyserConfig() AnalyserConfig {
	return AnalyserConfig{
		FFTSize:     1024,
		Smoothing:   0.8,
		MinDecibels: -100,
		MaxDecibels: -30,
	}
}

func (c AnalyserConfig) Bins() int {
	return c.FFTSize / 2
}

func (c AnalyserConfig) Validate() error {
	if !isPowerOfTwo(c.FFTSize) || c.FFTSize < 32 || c.FFTSize > 32768 {
		return fmt.Errorf("fftSize must be a power of two in [32, 32768], got %d", c.FFTSize)
	}
	if c.Smoothing < 0 || c.Smoothing > 1 {
		return fmt.Errorf("smoothing must be in [0, 1], got %v", c.Smoothing)
	}
	if c.MinDecibels >= c.MaxDecibels {
		return fmt.Errorf("minDecibels (%v) must be below maxDecibels (%v)", c.MinDecibels, c.MaxDecibels)
	}
	return nil
}

// FFTAnalyser follows the semantics of a Web Audio AnalyserNode: a
// Blackman-windowed FFT over the latest FFTSize samples of a tap,
// smoothed over time per bin and mapped linearly from
// [MinDecibels, MaxDecibels] onto 0..255.
type FFTAnalyser struct {
	cfg      AnalyserConfig
	tap      *Tap
	window   []float64
	frame    []float64
	smoothed []float64
}

func NewFFTAnalyser(cfg AnalyserConfig, tap *Tap) (*FFTAnalyser, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if tap == nil {
		return nil, fmt.Errorf("analyser needs a tap")
	}
	if tap.Size() < cfg.FFTSize {
		return nil, fmt.Errorf("tap holds %d samples, analyser needs %d", tap.Size(), cfg.FFTSize)
	}
	return &FFTAnalyser{
		cfg:      cfg,
		tap:      tap,
		window:   window.Blackman(cfg.FFTSize),
		frame:    make([]float64, cfg.FFTSize),
		smoothed: make([]float64, cfg.Bins()),
	}, nil
}

func (a *FFTAnalyser) Bins() int {
	return a.cfg.Bins()
}

func (a *FFTAnalyser) ByteFrequencyData(dst []uint8) {
	a.tap.Latest(a.frame)
	for i, w := range a.window {
		a.frame[i] *= w
	}
	spectrum := fft.FFTReal(a.frame)
	n := float64(a.cfg.FFTSize)
	tau := a.cfg.Smoothing
	minDB := a.cfg.MinDecibels
	scale := 255 / (a.cfg.MaxDecibels - minDB)
	for k := range a.smoothed {
		mag := cmplx.Abs(spectrum[k]) / n
		s := tau*a.smoothed[k] + (1-tau)*mag
		if math.IsNaN(s) || math.IsInf(s, 0) {
			s = 0
		}
		a.smoothed[k] = s
		if k >= len(dst) {
			continue
		}
		if s <= 0 {
			dst[k] = 0
			continue
		}
		db := 20 * math.Log10(s)
		dst[k] = uint8(clamp(math.Floor(scale*(db-minDB)), 0, 255))
	}
}
