package main

import (
	"testing"
	"time"
)

func TestNewAudioOutputUnknown(t *testing.T) {
	if _, err := NewAudioOutput("alsa", 44100, NewMixer()); err == nil {
		t.Error("unknown output accepted")
	}
}

func TestNullOutputDrivesMixer(t *testing.T) {
	g := newTestGroup(t, 100000)
	markAllReady(t, g)
	g.Play()
	m := NewMixer(g)
	out, err := NewAudioOutput(OutputNone, testSampleRate, m)
	if err != nil {
		t.Fatal(err)
	}
	if err := out.Start(); err != nil {
		t.Fatal(err)
	}
	if err := out.Start(); err == nil {
		t.Error("second Start succeeded")
	}
	deadline := time.Now().Add(5 * time.Second)
	for g.CurrentTime() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if err := out.Close(); err != nil {
		t.Fatal(err)
	}
	if g.CurrentTime() == 0 {
		t.Error("null output did not advance the cursor")
	}
	stopped := g.CurrentTime()
	time.Sleep(50 * time.Millisecond)
	if g.CurrentTime() != stopped {
		t.Error("cursor moved after Close")
	}
}
