package main

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// writeTestWAV writes a 16-bit WAV with a ramp in every channel and
// returns its path.
func writeTestWAV(t *testing.T, sampleRate, channels, frames int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	data := make([]int, frames*channels)
	for i := range frames {
		for c := range channels {
			data[i*channels+c] = (i % 100) * 100
		}
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSniffFormat(t *testing.T) {
	tests := []struct {
		head []byte
		want audioFormat
	}{
		{[]byte("RIFF\x24\x00\x00\x00WAVEfmt "), formatWAV},
		{[]byte("RIFF\x24\x00\x00\x00AVI "), formatMP3},
		{[]byte("ID3\x04\x00"), formatMP3},
		{[]byte{0xff, 0xfb, 0x90}, formatMP3},
		{nil, formatMP3},
	}
	for _, tt := range tests {
		if got := sniffFormat(tt.head); got != tt.want {
			t.Errorf("sniffFormat(%q) = %v, want %v", tt.head, got, tt.want)
		}
	}
}

func TestIntToStereoFloatMono(t *testing.T) {
	got := intToStereoFloat([]int{16384, -32768}, 1, 16)
	want := []float32{0.5, 0.5, -1, -1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("intToStereoFloat = %v, want %v", got, want)
		}
	}
}

func TestIntToStereoFloatDropsExtraChannels(t *testing.T) {
	got := intToStereoFloat([]int{128, 0, 255, 64, 128, 255}, 3, 8)
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	if got[0] != 0 || got[1] != -1 || math.Abs(float64(got[2]+0.5)) > 1e-6 || got[3] != 0 {
		t.Errorf("intToStereoFloat = %v, want [0 -1 -0.5 0]", got)
	}
}

func TestInt16LEToFloat(t *testing.T) {
	got := int16LEToFloat([]byte{0x00, 0x40, 0x00, 0x80})
	if len(got) != 2 || got[0] != 0.5 || got[1] != -1 {
		t.Errorf("int16LEToFloat = %v, want [0.5 -1]", got)
	}
}

func TestDecodeAllWAV(t *testing.T) {
	path := writeTestWAV(t, 44100, 1, 500)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	samples, err := decodeAll(data, 44100)
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 500*outputChannels {
		t.Fatalf("len(samples) = %d, want %d", len(samples), 500*outputChannels)
	}
	want := float32(100*10) / 32768
	if samples[20] != want || samples[21] != want {
		t.Errorf("frame 10 = (%v, %v), want (%v, %v)", samples[20], samples[21], want, want)
	}
}

const mp3FrameSamples = 1152

// silentMP3 returns frames MPEG-1 Layer III frames (128 kbit/s, 44.1 kHz,
// stereo) whose side info and main data are all zero.
func silentMP3(frames int) []byte {
	frame := make([]byte, 417)
	copy(frame, []byte{0xff, 0xfb, 0x90, 0x00})
	return bytes.Repeat(frame, frames)
}

func TestDecodeAllMP3(t *testing.T) {
	samples, err := decodeAll(silentMP3(8), 44100)
	if err != nil {
		t.Fatal(err)
	}
	frames := len(samples) / outputChannels
	if frames < 7*mp3FrameSamples || frames > 8*mp3FrameSamples {
		t.Errorf("decoded %d frames, want about %d", frames, 8*mp3FrameSamples)
	}
	for i, v := range samples {
		if v != 0 {
			t.Fatalf("samples[%d] = %v, want silence", i, v)
		}
	}
}

func TestDecodeAllRejectsGarbage(t *testing.T) {
	_, err := decodeAll([]byte("definitely not audio"), 44100)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("decodeAll(garbage) error = %v, want %v", err, ErrUnsupportedFormat)
	}
}

func TestResampleRatio(t *testing.T) {
	if r, err := resampleRatio(22050, 44100); err != nil || r != 2 {
		t.Errorf("resampleRatio(22050, 44100) = %v, %v, want 2, nil", r, err)
	}
	if _, err := resampleRatio(0, 44100); err == nil {
		t.Error("resampleRatio(0, 44100) succeeded")
	}
	if _, err := resampleRatio(1000, 48000); err == nil {
		t.Error("resampleRatio(1000, 48000) succeeded")
	}
	in := []float32{1, 2, 3, 4}
	out, err := resampleBuffer(in, 44100, 44100)
	if err != nil || len(out) != len(in) {
		t.Errorf("resampleBuffer with equal rates = %v, %v", out, err)
	}
}
