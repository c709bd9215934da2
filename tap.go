package main

import (
	"sync"
)

// Tap is a ring buffer holding the most recent mono samples of a track.
// The audio callback writes into it, the analyser reads from it on the
// main thread.
type Tap struct {
	mu   sync.Mutex
	buf  []float32
	pos  int
	size int
}

func NewTap(size int) *Tap {
	return &Tap{
		buf:  make([]float32, size),
		size: size,
	}
}

func (t *Tap) Size() int {
	return t.size
}

// Write appends mono samples, overwriting the oldest ones.
func (t *Tap) Write(samples []float32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(samples) >= t.size {
		copy(t.buf, samples[len(samples)-t.size:])
		t.pos = 0
		return
	}
	for _, smp := range samples {
		t.buf[t.pos] = smp
		t.pos = (t.pos + 1) % t.size
	}
}

// WriteSilence appends n zero samples.
func (t *Tap) WriteSilence(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n > t.size {
		n = t.size
	}
	for range n {
		t.buf[t.pos] = 0
		t.pos = (t.pos + 1) % t.size
	}
}

// Latest fills dst with the last len(dst) samples in chronological order.
// If dst is longer than the ring, the front of dst is zeroed.
func (t *Tap) Latest(dst []float64) {
	n := len(dst)
	lead := 0
	if n > t.size {
		lead = n - t.size
		for i := range lead {
			dst[i] = 0
		}
		n = t.size
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	start := (t.pos - n + t.size) % t.size
	for i := range n {
		dst[lead+i] = float64(t.buf[(start+i)%t.size])
	}
}
