package main

import (
	"fmt"
	"sync"
	"time"
)

// AudioOutput drives a Mixer from an audio device.
type AudioOutput interface {
	Start() error
	Close() error
}

const (
	OutputOto       = "oto"
	OutputPortAudio = "portaudio"
	OutputNone      = "none"
)

func NewAudioOutput(kind string, sampleRate int, m *Mixer) (AudioOutput, error) {
	switch kind {
	case OutputOto, "":
		return newOtoOutput(sampleRate, m), nil
	case OutputPortAudio:
		return newPortAudioOutput(sampleRate, m), nil
	case OutputNone:
		return newNullOutput(sampleRate, m), nil
	default:
		return nil, fmt.Errorf("unknown audio output %q (want oto, portaudio or none)", kind)
	}
}

const nullOutputPeriod = 20 * time.Millisecond

// nullOutput consumes mixer frames in real time without a device, so
// cursors and taps behave as if audio were playing.
type nullOutput struct {
	sampleRate int
	mixer      *Mixer
	done       chan struct{}
	wg         sync.WaitGroup
}

func newNullOutput(sampleRate int, m *Mixer) *nullOutput {
	return &nullOutput{sampleRate: sampleRate, mixer: m}
}

func (o *nullOutput) Start() error {
	if o.done != nil {
		return fmt.Errorf("null output already started")
	}
	o.done = make(chan struct{})
	frames := int(float64(o.sampleRate) * nullOutputPeriod.Seconds())
	buf := make([]float32, frames*outputChannels)
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(nullOutputPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-o.done:
				return
			case <-ticker.C:
				o.mixer.ReadFloats(buf)
			}
		}
	}()
	return nil
}

func (o *nullOutput) Close() error {
	if o.done != nil {
		close(o.done)
		o.wg.Wait()
		o.done = nil
	}
	return nil
}
