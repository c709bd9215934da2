package main

import (
	"fmt"

	"github.com/dh1tw/gosamplerate"
)

const (
	resampleConverter   = gosamplerate.SRC_SINC_FASTEST
	resampleBlockFrames = 1024
	resampleMaxRatio    = 1.0 * 16
	resampleMinRatio    = 1.0 / 16
)

func resampleRatio(fromRate, toRate int) (float64, error) {
	if fromRate <= 0 || toRate <= 0 {
		return 0, fmt.Errorf("invalid sample rates: %d -> %d", fromRate, toRate)
	}
	ratio := float64(toRate) / float64(fromRate)
	if !gosamplerate.IsValidRatio(ratio) || ratio < resampleMinRatio || ratio > resampleMaxRatio {
		return 0, fmt.Errorf("unsupported resample ratio %d -> %d", fromRate, toRate)
	}
	return ratio, nil
}

// resampleBuffer converts a whole interleaved stereo buffer to toRate.
func resampleBuffer(samples []float32, fromRate, toRate int) ([]float32, error) {
	if fromRate == toRate || len(samples) == 0 {
		return samples, nil
	}
	ratio, err := resampleRatio(fromRate, toRate)
	if err != nil {
		return nil, err
	}
	out, err := gosamplerate.Simple(samples, ratio, outputChannels, resampleConverter)
	if err != nil {
		return nil, fmt.Errorf("resample %d -> %d: %w", fromRate, toRate, err)
	}
	return out, nil
}

// streamResampler converts interleaved stereo chunks as they arrive from
// a network stream. With equal rates it passes chunks through.
type streamResampler struct {
	src     gosamplerate.Src
	ratio   float64
	enabled bool
}

func newStreamResampler(fromRate, toRate int) (*streamResampler, error) {
	if fromRate == toRate {
		return &streamResampler{}, nil
	}
	ratio, err := resampleRatio(fromRate, toRate)
	if err != nil {
		return nil, err
	}
	outputBufferLen := int(resampleBlockFrames*resampleMaxRatio) * outputChannels
	src, err := gosamplerate.New(resampleConverter, outputChannels, outputBufferLen)
	if err != nil {
		return nil, fmt.Errorf("create resampler: %w", err)
	}
	return &streamResampler{src: src, ratio: ratio, enabled: true}, nil
}

// Process converts one chunk. endOfInput flushes the converter.
func (r *streamResampler) Process(in []float32, endOfInput bool) ([]float32, error) {
	if !r.enabled {
		return in, nil
	}
	var out []float32
	blockLen := resampleBlockFrames * outputChannels
	for len(in) > 0 || endOfInput {
		n := min(len(in), blockLen)
		last := endOfInput && n == len(in)
		block, err := r.src.Process(in[:n], r.ratio, last)
		if err != nil {
			return nil, fmt.Errorf("resample chunk: %w", err)
		}
		out = append(out, block...)
		in = in[n:]
		if last {
			break
		}
	}
	return out, nil
}

func (r *streamResampler) Close() {
	if r.enabled {
		gosamplerate.Delete(r.src)
		r.enabled = false
	}
}
