package main

import (
	"encoding/binary"
	"math"
	"sync"
)

const softClipKnee = 0.8

// softClip is linear up to the knee and bends smoothly towards ±1 above it.
func softClip(x float32) float32 {
	ax := math.Abs(float64(x))
	if ax <= softClipKnee {
		return x
	}
	span := 1 - softClipKnee
	y := softClipKnee + span*math.Tanh((ax-softClipKnee)/span)
	return float32(math.Copysign(y, float64(x)))
}

// Mixer pulls frames from its track groups and produces the output
// stream. Read makes it an io.Reader of float32 LE stereo for oto;
// ReadFloats serves callback based outputs.
type Mixer struct {
	mu     sync.Mutex
	groups []*TrackGroup
	mix    []float32
	stats  Box[MixerStats]
}

// MixerStats counts output periods. Only the audio goroutine writes it.
type MixerStats struct {
	Reads     int
	Underruns int
}

func (m *Mixer) Stats() MixerStats {
	return m.stats.Get()
}

func NewMixer(groups ...*TrackGroup) *Mixer {
	return &Mixer{groups: groups}
}

// SetGroups replaces every group the mixer plays.
func (m *Mixer) SetGroups(groups ...*TrackGroup) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups = groups
}

// ReadFloats fills out with interleaved stereo samples.
func (m *Mixer) ReadFloats(out []float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	frames := len(out) / outputChannels
	clear(out)
	stats := m.stats.Get()
	stats.Reads++
	for _, g := range m.groups {
		if g.render(out, frames) {
			stats.Underruns++
		}
	}
	m.stats.Set(stats)
	for i, smp := range out {
		out[i] = softClip(smp)
	}
}

func (m *Mixer) Read(p []byte) (int, error) {
	const frameBytes = outputChannels * 4
	frames := len(p) / frameBytes
	if frames == 0 {
		return 0, nil
	}
	m.mu.Lock()
	if cap(m.mix) < frames*outputChannels {
		m.mix = make([]float32, frames*outputChannels)
	}
	mix := m.mix[:frames*outputChannels]
	m.mu.Unlock()
	m.ReadFloats(mix)
	for i, smp := range mix {
		binary.LittleEndian.PutUint32(p[4*i:], math.Float32bits(smp))
	}
	return frames * frameBytes, nil
}
