package main

import (
	"fmt"

	"github.com/ebitengine/oto/v3"
)

var otoContext *oto.Context

// InitOtoContext creates the process wide oto context. oto allows only
// one per process.
func InitOtoContext(sampleRate int) error {
	if otoContext != nil {
		return nil
	}
	otoContextOptions := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: outputChannels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   0,
	}
	ctx, readyChan, err := oto.NewContext(otoContextOptions)
	if err != nil {
		return fmt.Errorf("oto: %w", err)
	}
	<-readyChan
	otoContext = ctx
	return nil
}

type otoOutput struct {
	sampleRate int
	mixer      *Mixer
	player     *oto.Player
}

func newOtoOutput(sampleRate int, m *Mixer) *otoOutput {
	return &otoOutput{sampleRate: sampleRate, mixer: m}
}

func (o *otoOutput) Start() error {
	if err := InitOtoContext(o.sampleRate); err != nil {
		return err
	}
	o.player = otoContext.NewPlayer(o.mixer)
	o.player.Play()
	logger.Info("audio output started", "output", OutputOto, "sampleRate", o.sampleRate)
	return nil
}

func (o *otoOutput) Close() error {
	if o.player == nil {
		return nil
	}
	o.player.Pause()
	err := o.player.Err()
	o.player = nil
	return err
}
