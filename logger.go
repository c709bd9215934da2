package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// logger is replaced by InitLogger once the configuration is known.
var logger = slog.New(slog.NewTextHandler(os.Stderr, nil))

func ResolveLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("invalid log level: %s", level)
}

// NewLogger builds a logger writing to w in the given format.
func NewLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	lvl, err := ResolveLogLevel(level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch format {
	case "", LogFormatText:
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case LogFormatJSON:
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("invalid log format: %s", format)
}

func InitLogger(level, format string) error {
	l, err := NewLogger(os.Stderr, level, format)
	if err != nil {
		return err
	}
	logger = l
	return nil
}
