package main

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// DefaultAudibleGain is the gain of the active track in a group.
const DefaultAudibleGain = 0.5

// Track is one audio source of a group together with its spectrum.
type Track struct {
	ID      string
	Name    string
	Binding Binding
	Source  *SpectrumSource

	group *TrackGroup
	pcm   *PCM
	tap   *Tap
	gain  float64
}

func (t *Track) Gain() float64 {
	t.group.mu.Lock()
	defer t.group.mu.Unlock()
	return t.gain
}

func (t *Track) Playing() bool {
	return t.group.Playing()
}

// CurrentTime is the playback position in seconds. All tracks of a
// group share one cursor, so they always report the same value.
func (t *Track) CurrentTime() float64 {
	return t.group.CurrentTime()
}

// BufferedFrames reports how much decoded audio is available.
func (t *Track) BufferedFrames() int {
	return t.pcm.Frames()
}

// TrackGroup is a set of time-aligned tracks of which exactly one is
// audible. Switching the active track swaps gains instantly and never
// touches the shared cursor.
type TrackGroup struct {
	mu          sync.Mutex
	tracks      []*Track
	active      int
	audibleGain float64
	sampleRate  int
	analyser    AnalyserConfig
	cursor      int
	playing     bool
	pendingPlay bool

	scratch []float32
	mono    []float32
}

func (g *TrackGroup) SampleRate() int {
	return g.sampleRate
}

func NewTrackGroup(sampleRate int, audibleGain float64, analyser AnalyserConfig) (*TrackGroup, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	if !(audibleGain > 0 && audibleGain <= 1) {
		return nil, fmt.Errorf("audible gain must be in (0, 1], got %v", audibleGain)
	}
	if err := analyser.Validate(); err != nil {
		return nil, err
	}
	return &TrackGroup{
		audibleGain: audibleGain,
		sampleRate:  sampleRate,
		analyser:    analyser,
	}, nil
}

// AddTrack registers a new track and binds its spectrum source. The first
// track added becomes the active one.
func (g *TrackGroup) AddTrack(name string, b Binding) (*Track, error) {
	t := &Track{
		ID:      uuid.NewString(),
		Name:    name,
		Binding: b,
		Source:  NewSpectrumSource(g.analyser.Bins()),
		group:   g,
		pcm:     NewPCM(),
		tap:     NewTap(g.analyser.FFTSize),
	}
	if err := t.Source.Bind(b.Href); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.tracks = append(g.tracks, t)
	g.applyGainsLocked()
	return t, nil
}

func (g *TrackGroup) Tracks() []*Track {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]*Track(nil), g.tracks...)
}

func (g *TrackGroup) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.tracks)
}

func (g *TrackGroup) applyGainsLocked() {
	for i, t := range g.tracks {
		if i == g.active {
			t.gain = g.audibleGain
		} else {
			t.gain = 0
		}
	}
}

func (g *TrackGroup) Active() *Track {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.tracks) == 0 {
		return nil
	}
	return g.tracks[g.active]
}

func (g *TrackGroup) ActiveIndex() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active
}

// ActiveSource is the spectrum that feeds the renderer, nil for an
// empty group.
func (g *TrackGroup) ActiveSource() *SpectrumSource {
	if t := g.Active(); t != nil {
		return t.Source
	}
	return nil
}

// Activate makes track i the audible one.
func (g *TrackGroup) Activate(i int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if i < 0 || i >= len(g.tracks) {
		return fmt.Errorf("track %d out of range [0, %d)", i, len(g.tracks))
	}
	g.active = i
	g.applyGainsLocked()
	return nil
}

// Toggle switches to the next track: the enhance on/off switch of a two
// track group. A single track group is left alone.
func (g *TrackGroup) Toggle() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.tracks) < 2 {
		return
	}
	g.active = (g.active + 1) % len(g.tracks)
	g.applyGainsLocked()
}

func (g *TrackGroup) ReadyCount() int {
	n := 0
	for _, t := range g.Tracks() {
		if t.Source.State() == SourceReady {
			n++
		}
	}
	return n
}

func (g *TrackGroup) AllReady() bool {
	n := g.Len()
	return n > 0 && g.ReadyCount() == n
}

// Failed returns the first load error of the group, if any.
func (g *TrackGroup) Failed() error {
	for _, t := range g.Tracks() {
		if t.Source.State() == SourceFailed {
			return fmt.Errorf("track %q: %w", t.Name, t.Source.Err())
		}
	}
	return nil
}

// Play starts all tracks together. Until every track is ready the
// request is held and honoured by the ready signal of the last track.
// A group with a failed track cannot play and holds nothing.
func (g *TrackGroup) Play() {
	if err := g.Failed(); err != nil {
		logger.Warn("cannot play group", "error", err)
		return
	}
	if !g.AllReady() {
		g.mu.Lock()
		g.pendingPlay = true
		g.mu.Unlock()
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pendingPlay = false
	if g.endedLocked() {
		g.cursor = 0
	}
	g.playing = true
}

func (g *TrackGroup) Pause() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pendingPlay = false
	g.playing = false
}

func (g *TrackGroup) TogglePlay() {
	if g.Playing() || g.PendingPlay() {
		g.Pause()
	} else {
		g.Play()
	}
}

func (g *TrackGroup) Playing() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.playing
}

func (g *TrackGroup) PendingPlay() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pendingPlay
}

// TrackReady is the ready signal for one track; it must run on the main
// thread. It wires the track's analyser and releases a held Play once
// the whole group is ready.
func (g *TrackGroup) TrackReady(t *Track) error {
	a, err := NewFFTAnalyser(g.analyser, t.tap)
	if err != nil {
		return err
	}
	if err := t.Source.MarkReady(a); err != nil {
		return err
	}
	if g.AllReady() && g.PendingPlay() {
		g.Play()
	}
	return nil
}

// TrackFailed is the failure signal for one track.
func (g *TrackGroup) TrackFailed(t *Track, err error) {
	t.Source.MarkFailed(err)
	g.mu.Lock()
	g.pendingPlay = false
	g.mu.Unlock()
}

// durationFramesLocked is the length of the shortest track, counting
// only what has arrived for tracks that are still streaming.
func (g *TrackGroup) durationFramesLocked() int {
	if len(g.tracks) == 0 {
		return 0
	}
	frames := -1
	for _, t := range g.tracks {
		if n := t.pcm.Frames(); frames < 0 || n < frames {
			frames = n
		}
	}
	return frames
}

// endLocked returns the duration in frames and whether it is final. It
// is final once the shortest track is completely loaded: a complete
// track never grows, so no track can play past it.
func (g *TrackGroup) endLocked() (frames int, final bool) {
	frames = g.durationFramesLocked()
	for _, t := range g.tracks {
		if t.pcm.Complete() && t.pcm.Frames() == frames {
			return frames, true
		}
	}
	return frames, false
}

func (g *TrackGroup) endedLocked() bool {
	end, final := g.endLocked()
	return final && g.cursor >= end
}

func (g *TrackGroup) CurrentTime() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return float64(g.cursor) / float64(g.sampleRate)
}

func (g *TrackGroup) Duration() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return float64(g.durationFramesLocked()) / float64(g.sampleRate)
}

// Progress is the cursor position as a fraction of Duration.
func (g *TrackGroup) Progress() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	total := g.durationFramesLocked()
	if total == 0 {
		return 0
	}
	return float64(g.cursor) / float64(total)
}

// Seek moves the shared cursor to pct of the duration, pct in [0, 1].
func (g *TrackGroup) Seek(pct float64) {
	pct = clamp(pct, 0, 1)
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cursor = int(pct * float64(g.durationFramesLocked()))
}

func (g *TrackGroup) SeekBy(delta float64) {
	g.Seek(g.Progress() + delta)
}

// render mixes the next frames of every track into mix and feeds each
// track's tap with its pre-gain mono signal. The cursor moves only when
// every track has the frames; during an underrun the group outputs
// silence and holds position, and render reports the underrun.
func (g *TrackGroup) render(mix []float32, frames int) (underrun bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.playing || len(g.tracks) == 0 {
		for _, t := range g.tracks {
			t.tap.WriteSilence(frames)
		}
		return false
	}
	n := frames
	end, final := g.endLocked()
	available := end - g.cursor
	if available < n {
		if !final {
			n = 0
			underrun = true
		} else {
			n = max(available, 0)
		}
	}
	if cap(g.scratch) < frames*outputChannels {
		g.scratch = make([]float32, frames*outputChannels)
		g.mono = make([]float32, frames)
	}
	scratch := g.scratch[:n*outputChannels]
	mono := g.mono[:n]
	for _, t := range g.tracks {
		t.pcm.ReadFrames(scratch, g.cursor)
		gain := float32(t.gain)
		for i := range n {
			l, r := scratch[2*i], scratch[2*i+1]
			mono[i] = (l + r) / 2
			mix[2*i] += l * gain
			mix[2*i+1] += r * gain
		}
		t.tap.Write(mono)
		if n < frames {
			t.tap.WriteSilence(frames - n)
		}
	}
	g.cursor += n
	if final && g.cursor >= end {
		g.playing = false
		logger.Info("group finished", "time", float64(g.cursor)/float64(g.sampleRate))
	}
	return underrun
}
