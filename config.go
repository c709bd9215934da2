package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

// Config is the runtime configuration read from WAVEFIELD_* variables.
type Config struct {
	SampleRate     int
	AudioOutput    string
	LoadAttempts   int
	LoadBackoff    time.Duration
	LoadBackoffMax time.Duration
	StreamReady    time.Duration
	HTTPTimeout    time.Duration
	LogLevel       string
	LogFormat      string
	FPSCap         float64
}

func LoadConfig() (Config, error) {
	cfg := Config{
		SampleRate:     envInt("WAVEFIELD_SAMPLE_RATE", 44100),
		AudioOutput:    envStr("WAVEFIELD_AUDIO_OUTPUT", OutputOto),
		LoadAttempts:   envInt("WAVEFIELD_LOAD_ATTEMPTS", 3),
		LoadBackoff:    envDuration("WAVEFIELD_LOAD_BACKOFF", 500*time.Millisecond),
		LoadBackoffMax: envDuration("WAVEFIELD_LOAD_BACKOFF_MAX", 4*time.Second),
		StreamReady:    envDuration("WAVEFIELD_STREAM_READY", time.Second),
		HTTPTimeout:    envDuration("WAVEFIELD_HTTP_TIMEOUT", 30*time.Second),
		LogLevel:       envStr("WAVEFIELD_LOG_LEVEL", "info"),
		LogFormat:      envStr("WAVEFIELD_LOG_FORMAT", LogFormatText),
		FPSCap:         envFloat("WAVEFIELD_FPS_CAP", 0),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.SampleRate < 8000 || c.SampleRate > 192000 {
		return fmt.Errorf("WAVEFIELD_SAMPLE_RATE must be in [8000, 192000], got %d", c.SampleRate)
	}
	switch c.AudioOutput {
	case OutputOto, OutputPortAudio, OutputNone:
	default:
		return fmt.Errorf("WAVEFIELD_AUDIO_OUTPUT must be oto, portaudio or none, got %q", c.AudioOutput)
	}
	if c.LoadAttempts < 1 {
		return fmt.Errorf("WAVEFIELD_LOAD_ATTEMPTS must be at least 1, got %d", c.LoadAttempts)
	}
	if c.LoadBackoff < 0 || c.LoadBackoffMax < c.LoadBackoff {
		return fmt.Errorf("load backoff must satisfy 0 <= WAVEFIELD_LOAD_BACKOFF <= WAVEFIELD_LOAD_BACKOFF_MAX")
	}
	if c.FPSCap < 0 {
		return fmt.Errorf("WAVEFIELD_FPS_CAP must not be negative, got %v", c.FPSCap)
	}
	if _, err := NewLogger(io.Discard, c.LogLevel, c.LogFormat); err != nil {
		return err
	}
	return nil
}

func (c Config) LoaderConfig() LoaderConfig {
	return LoaderConfig{
		SampleRate:  c.SampleRate,
		Attempts:    c.LoadAttempts,
		Backoff:     c.LoadBackoff,
		BackoffMax:  c.LoadBackoffMax,
		StreamReady: c.StreamReady,
		HTTPTimeout: c.HTTPTimeout,
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		logger.Warn("ignoring invalid integer", "key", key, "value", v)
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		logger.Warn("ignoring invalid number", "key", key, "value", v)
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		logger.Warn("ignoring invalid duration", "key", key, "value", v)
	}
	return fallback
}
