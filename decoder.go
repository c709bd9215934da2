package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrEmptyAudio        = errors.New("audio contains no samples")
)

type audioFormat int

const (
	formatMP3 audioFormat = iota
	formatWAV
)

func (f audioFormat) String() string {
	switch f {
	case formatWAV:
		return "wav"
	default:
		return "mp3"
	}
}

// sniffFormat inspects the first bytes of a file. Anything that is not
// a RIFF/WAVE container is handed to the MP3 decoder, which rejects
// non-MP3 input itself.
func sniffFormat(head []byte) audioFormat {
	if len(head) >= 12 && bytes.Equal(head[0:4], []byte("RIFF")) && bytes.Equal(head[8:12], []byte("WAVE")) {
		return formatWAV
	}
	return formatMP3
}

// decodeAll decodes a complete in-memory file into interleaved stereo
// float samples at sampleRate.
func decodeAll(data []byte, sampleRate int) ([]float32, error) {
	var (
		samples []float32
		rate    int
		err     error
	)
	switch sniffFormat(data) {
	case formatWAV:
		samples, rate, err = decodeWAV(bytes.NewReader(data))
	default:
		samples, rate, err = decodeMP3(bytes.NewReader(data))
	}
	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, ErrEmptyAudio
	}
	return resampleBuffer(samples, rate, sampleRate)
}

func decodeMP3(r io.Reader) ([]float32, int, error) {
	d, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: mp3: %v", ErrUnsupportedFormat, err)
	}
	pcm, err := io.ReadAll(d)
	if err != nil {
		return nil, 0, fmt.Errorf("decode mp3: %w", err)
	}
	return int16LEToFloat(pcm), d.SampleRate(), nil
}

func decodeWAV(rs io.ReadSeeker) ([]float32, int, error) {
	d := wav.NewDecoder(rs)
	if !d.IsValidFile() {
		return nil, 0, fmt.Errorf("%w: invalid wav file", ErrUnsupportedFormat)
	}
	var buf *audio.IntBuffer
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("decode wav: %w", err)
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels <= 0 {
		return nil, 0, fmt.Errorf("decode wav: %w", ErrEmptyAudio)
	}
	bitDepth := buf.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = int(d.BitDepth)
	}
	if bitDepth <= 0 || bitDepth > 32 {
		return nil, 0, fmt.Errorf("%w: wav bit depth %d", ErrUnsupportedFormat, bitDepth)
	}
	return intToStereoFloat(buf.Data, buf.Format.NumChannels, bitDepth), buf.Format.SampleRate, nil
}

// intToStereoFloat maps integer PCM with any channel count onto
// interleaved stereo floats. Mono is duplicated, extra channels dropped.
func intToStereoFloat(data []int, nchannels, bitDepth int) []float32 {
	nframes := len(data) / nchannels
	scale := float32(int64(1) << (bitDepth - 1))
	if bitDepth == 8 {
		// 8-bit wav is unsigned
		out := make([]float32, nframes*outputChannels)
		for i := range nframes {
			l := float32(data[i*nchannels]-128) / 128
			r := l
			if nchannels > 1 {
				r = float32(data[i*nchannels+1]-128) / 128
			}
			out[2*i], out[2*i+1] = l, r
		}
		return out
	}
	out := make([]float32, nframes*outputChannels)
	for i := range nframes {
		l := float32(data[i*nchannels]) / scale
		r := l
		if nchannels > 1 {
			r = float32(data[i*nchannels+1]) / scale
		}
		out[2*i], out[2*i+1] = l, r
	}
	return out
}

func int16LEToFloat(pcm []byte) []float32 {
	out := make([]float32, len(pcm)/2)
	for i := range out {
		out[i] = float32(int16(binary.LittleEndian.Uint16(pcm[2*i:]))) / 32768
	}
	return out
}

// streamMP3 decodes an MP3 stream chunk by chunk into pcm. progress is
// called after every appended chunk with the number of frames stored.
func streamMP3(ctx context.Context, r io.Reader, sampleRate int, pcm *PCM, progress func(frames int)) error {
	d, err := mp3.NewDecoder(bufio.NewReader(r))
	if err != nil {
		return fmt.Errorf("%w: mp3: %v", ErrUnsupportedFormat, err)
	}
	rs, err := newStreamResampler(d.SampleRate(), sampleRate)
	if err != nil {
		return err
	}
	defer rs.Close()
	// 4 bytes per stereo int16 frame
	chunk := make([]byte, resampleBlockFrames*4)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, readErr := io.ReadFull(d, chunk)
		eof := errors.Is(readErr, io.EOF) || errors.Is(readErr, io.ErrUnexpectedEOF)
		if readErr != nil && !eof {
			return fmt.Errorf("decode mp3 stream: %w", readErr)
		}
		out, err := rs.Process(int16LEToFloat(chunk[:n-n%4]), eof)
		if err != nil {
			return err
		}
		if len(out) > 0 {
			pcm.Append(out)
			progress(pcm.Frames())
		}
		if eof {
			return nil
		}
	}
}
