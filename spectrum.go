package main

import (
	"errors"
	"fmt"
)

// SourceState is the load lifecycle of a SpectrumSource. Transitions are
// one-way: Uninitialized -> Loading -> Ready, or Loading -> Failed once
// all load attempts are used up.
type SourceState int

const (
	SourceUninitialized SourceState = iota
	SourceLoading
	SourceReady
	SourceFailed
)

func (s SourceState) String() string {
	switch s {
	case SourceUninitialized:
		return "uninitialized"
	case SourceLoading:
		return "loading"
	case SourceReady:
		return "ready"
	case SourceFailed:
		return "failed"
	default:
		return fmt.Sprintf("SourceState(%d)", int(s))
	}
}

// SpectrumSnapshot is one frame of frequency-bin magnitudes, 0..255 each.
// Callers must treat it as read-only.
type SpectrumSnapshot []uint8

// emptySnapshot is what the render loop feeds the shader when no source
// is bound at all.
var emptySnapshot = SpectrumSnapshot{}

var ErrSourceBound = errors.New("spectrum source already bound")

type SpectrumSource struct {
	bins     int
	state    SourceState
	href     string
	analyser Analyser
	err      error
}

func NewSpectrumSource(bins int) *SpectrumSource {
	if bins < 0 {
		bins = 0
	}
	return &SpectrumSource{bins: bins}
}

func (s *SpectrumSource) Bins() int {
	return s.bins
}

func (s *SpectrumSource) State() SourceState {
	if s == nil {
		return SourceUninitialized
	}
	return s.state
}

func (s *SpectrumSource) Href() string {
	return s.href
}

// Err returns the load error of a failed source.
func (s *SpectrumSource) Err() error {
	return s.err
}

// Bind attaches the source to an href and starts the Loading phase.
func (s *SpectrumSource) Bind(href string) error {
	if s.state != SourceUninitialized {
		logger.Warn("ignoring bind", "href", href, "state", s.state, "bound", s.href)
		return fmt.Errorf("bind %q: %w (state %s, href %q)", href, ErrSourceBound, s.state, s.href)
	}
	s.href = href
	s.state = SourceLoading
	return nil
}

// MarkReady is the "data available" signal. A source that is already
// ready or failed ignores it.
func (s *SpectrumSource) MarkReady(a Analyser) error {
	if a == nil {
		return fmt.Errorf("mark ready %q: nil analyser", s.href)
	}
	if a.Bins() != s.bins {
		return fmt.Errorf("mark ready %q: analyser has %d bins, source expects %d", s.href, a.Bins(), s.bins)
	}
	switch s.state {
	case SourceReady, SourceFailed:
		logger.Debug("ignoring ready signal", "href", s.href, "state", s.state)
		return nil
	}
	s.analyser = a
	s.state = SourceReady
	return nil
}

// MarkFailed ends the Loading phase with an error.
func (s *SpectrumSource) MarkFailed(err error) {
	if s.state == SourceReady || s.state == SourceFailed {
		return
	}
	s.err = err
	s.state = SourceFailed
}

// Sample returns the current spectrum. It never fails: a source that is
// not ready yields an all-zero snapshot of the configured length, and a
// nil source yields the empty snapshot.
func (s *SpectrumSource) Sample() SpectrumSnapshot {
	if s == nil {
		return emptySnapshot
	}
	out := make(SpectrumSnapshot, s.bins)
	if s.state != SourceReady {
		return out
	}
	s.analyser.ByteFrequencyData(out)
	return out
}
