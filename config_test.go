package main

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SampleRate != 44100 {
		t.Errorf("SampleRate = %d, want 44100", cfg.SampleRate)
	}
	if cfg.AudioOutput != OutputOto {
		t.Errorf("AudioOutput = %q, want %q", cfg.AudioOutput, OutputOto)
	}
	if cfg.LoadAttempts != 3 || cfg.LoadBackoff != 500*time.Millisecond || cfg.LoadBackoffMax != 4*time.Second {
		t.Errorf("load policy = %d, %v, %v, want 3, 500ms, 4s", cfg.LoadAttempts, cfg.LoadBackoff, cfg.LoadBackoffMax)
	}
	if cfg.StreamReady != time.Second || cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("StreamReady, HTTPTimeout = %v, %v, want 1s, 30s", cfg.StreamReady, cfg.HTTPTimeout)
	}
	if cfg.FPSCap != 0 {
		t.Errorf("FPSCap = %v, want 0", cfg.FPSCap)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("WAVEFIELD_SAMPLE_RATE", "48000")
	t.Setenv("WAVEFIELD_AUDIO_OUTPUT", "none")
	t.Setenv("WAVEFIELD_LOAD_ATTEMPTS", "5")
	t.Setenv("WAVEFIELD_LOAD_BACKOFF", "250ms")
	t.Setenv("WAVEFIELD_STREAM_READY", "2s")
	t.Setenv("WAVEFIELD_LOG_LEVEL", "debug")
	t.Setenv("WAVEFIELD_LOG_FORMAT", "json")
	t.Setenv("WAVEFIELD_FPS_CAP", "30")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SampleRate != 48000 || cfg.AudioOutput != OutputNone || cfg.LoadAttempts != 5 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.LoadBackoff != 250*time.Millisecond || cfg.StreamReady != 2*time.Second {
		t.Errorf("LoadBackoff, StreamReady = %v, %v, want 250ms, 2s", cfg.LoadBackoff, cfg.StreamReady)
	}
	if cfg.LogLevel != "debug" || cfg.LogFormat != LogFormatJSON || cfg.FPSCap != 30 {
		t.Errorf("LogLevel, LogFormat, FPSCap = %q, %q, %v, want debug, json, 30", cfg.LogLevel, cfg.LogFormat, cfg.FPSCap)
	}
	lc := cfg.LoaderConfig()
	if lc.SampleRate != 48000 || lc.Attempts != 5 {
		t.Errorf("LoaderConfig() = %+v", lc)
	}
}

func TestLoadConfigInvalidValueFallsBack(t *testing.T) {
	t.Setenv("WAVEFIELD_SAMPLE_RATE", "fast")
	t.Setenv("WAVEFIELD_HTTP_TIMEOUT", "soon")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SampleRate != 44100 || cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("SampleRate, HTTPTimeout = %d, %v, want 44100, 30s", cfg.SampleRate, cfg.HTTPTimeout)
	}
}

func TestLoadConfigRejects(t *testing.T) {
	tests := map[string]string{
		"WAVEFIELD_AUDIO_OUTPUT":  "alsa",
		"WAVEFIELD_LOAD_ATTEMPTS": "0",
		"WAVEFIELD_SAMPLE_RATE":   "100",
		"WAVEFIELD_LOG_LEVEL":     "loud",
		"WAVEFIELD_LOG_FORMAT":    "xml",
		"WAVEFIELD_FPS_CAP":       "-1",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := LoadConfig(); err == nil {
				t.Errorf("%s=%s accepted", key, value)
			}
		})
	}
}

func TestResolveLogLevel(t *testing.T) {
	for _, level := range []string{"", "debug", "INFO", "warn", "error"} {
		if _, err := ResolveLogLevel(level); err != nil {
			t.Errorf("ResolveLogLevel(%q): %v", level, err)
		}
	}
	if _, err := ResolveLogLevel("verbose"); err == nil {
		t.Error("ResolveLogLevel(verbose) succeeded")
	}
}
