package main

import (
	"fmt"
	"strings"
)

const (
	hudFontSize       FontSizeInPoints = 13
	hudMargin                          = 8
	hudMaxErrorLength                  = 120
)

var hudAtlasSize = Size{X: 16, Y: 8}

// Overlay is drawn on top of the scene after every frame.
type Overlay interface {
	Render(fbSize Size) error
}

// StatusSource provides the text the HUD shows.
type StatusSource interface {
	StatusLines() []string
	LastError() error
}

func formatClock(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// groupStatusLines renders one line per track, with a marker on the
// active one, followed by a transport line.
func groupStatusLines(g *TrackGroup) []string {
	if g == nil {
		return nil
	}
	active := g.ActiveIndex()
	var lines []string
	for i, t := range g.Tracks() {
		marker := " "
		if i == active {
			marker = ">"
		}
		buffered := float64(t.BufferedFrames()) / float64(g.SampleRate())
		lines = append(lines, fmt.Sprintf("%s %d %-12s %-8s gain %.2f buf %s", marker, i+1, t.Name, t.Source.State(), t.Gain(), formatClock(buffered)))
	}
	transport := "paused"
	switch {
	case g.Playing():
		transport = "playing"
	case g.PendingPlay():
		transport = "waiting for tracks"
	}
	lines = append(lines, fmt.Sprintf("  %s / %s %s", formatClock(g.CurrentTime()), formatClock(g.Duration()), transport))
	return lines
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// StatusOverlay draws status lines in the top left corner and the last
// error in red below them.
type StatusOverlay struct {
	source  StatusSource
	tm      *TileMap
	text    *TileDrawList
	errText *TileDrawList
	visible bool
}

func NewStatusOverlay(source StatusSource) (*StatusOverlay, error) {
	font, err := LoadGoMono()
	if err != nil {
		return nil, fmt.Errorf("hud: %w", err)
	}
	face, err := font.GetFace(hudFontSize)
	if err != nil {
		return nil, fmt.Errorf("hud: %w", err)
	}
	atlas, err := font.GetFaceImage(face, hudAtlasSize)
	if err != nil {
		return nil, fmt.Errorf("hud: %w", err)
	}
	tm, err := CreateTileMap(atlas, hudAtlasSize)
	if err != nil {
		return nil, fmt.Errorf("hud: %w", err)
	}
	errText := tm.CreateDrawList()
	errText.SetColor(1, 0.3, 0.3, 1)
	return &StatusOverlay{
		source:  source,
		tm:      tm,
		text:    tm.CreateDrawList(),
		errText: errText,
		visible: true,
	}, nil
}

func (o *StatusOverlay) Toggle() {
	o.visible = !o.visible
}

func (o *StatusOverlay) Visible() bool {
	return o.visible
}

func (o *StatusOverlay) Render(fbSize Size) error {
	o.text.Clear()
	o.errText.Clear()
	if !o.visible {
		return nil
	}
	lines := o.source.StatusLines()
	for row, line := range lines {
		o.text.DrawString(0, row, line)
	}
	if err := o.source.LastError(); err != nil {
		msg := strings.ReplaceAll(err.Error(), "\n", " ")
		o.errText.DrawString(0, len(lines), truncate(msg, hudMaxErrorLength))
	}
	origin := Size{X: hudMargin, Y: hudMargin}
	if err := o.text.Render(origin, fbSize); err != nil {
		return err
	}
	return o.errText.Render(origin, fbSize)
}

func (o *StatusOverlay) Close() error {
	return o.tm.Close()
}
