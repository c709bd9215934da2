package main

import (
	"errors"
	"fmt"

	"github.com/gordonklaus/portaudio"
)

const portAudioFramesPerBuffer = 512

type portAudioOutput struct {
	sampleRate int
	mixer      *Mixer
	stream     *portaudio.Stream
}

func newPortAudioOutput(sampleRate int, m *Mixer) *portAudioOutput {
	return &portAudioOutput{sampleRate: sampleRate, mixer: m}
}

func (o *portAudioOutput) Start() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("portaudio: %w", err)
	}
	stream, err := portaudio.OpenDefaultStream(0, outputChannels, float64(o.sampleRate), portAudioFramesPerBuffer,
		func(out []float32) {
			o.mixer.ReadFloats(out)
		})
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("portaudio: open stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("portaudio: start stream: %w", err)
	}
	o.stream = stream
	logger.Info("audio output started", "output", OutputPortAudio, "sampleRate", o.sampleRate)
	return nil
}

func (o *portAudioOutput) Close() error {
	if o.stream == nil {
		return nil
	}
	var errs []error
	if err := o.stream.Stop(); err != nil {
		errs = append(errs, err)
	}
	if err := o.stream.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := portaudio.Terminate(); err != nil {
		errs = append(errs, err)
	}
	o.stream = nil
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("portaudio: close: %w", err)
	}
	return nil
}
