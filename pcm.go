package main

import (
	"sync"
)

// PCM is a growing store of interleaved stereo samples at the output
// rate. Loaders append to it from their goroutine, the mixer reads it
// from the audio callback.
type PCM struct {
	mu       sync.RWMutex
	samples  []float32
	complete bool
}

func NewPCM() *PCM {
	return &PCM{}
}

func (p *PCM) Append(samples []float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.samples = append(p.samples, samples...)
}

// Finish marks the store as holding the whole track.
func (p *PCM) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.complete = true
}

// Reset drops everything appended so far, used before a retry.
func (p *PCM) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.samples = nil
	p.complete = false
}

func (p *PCM) Frames() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.samples) / outputChannels
}

func (p *PCM) Complete() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.complete
}

// ReadFrames copies frames starting at frame into dst and returns the
// number of frames copied.
func (p *PCM) ReadFrames(dst []float32, frame int) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	start := frame * outputChannels
	if frame < 0 || start >= len(p.samples) {
		return 0
	}
	n := copy(dst, p.samples[start:])
	return n / outputChannels
}
