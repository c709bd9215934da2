package main

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type loadResult struct {
	ready bool
	err   error
}

// newTestLoader returns a loader whose posted events land on a channel,
// standing in for the main thread, and whose backoff sleeps are recorded.
func newTestLoader(cfg LoaderConfig) (*Loader, chan Event, *[]time.Duration) {
	events := make(chan Event, 16)
	l := NewLoader(cfg, func(ev Event) { events <- ev })
	var delays []time.Duration
	l.sleep = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return ctx.Err()
	}
	return l, events, &delays
}

func testLoaderConfig() LoaderConfig {
	return LoaderConfig{
		SampleRate:  44100,
		Attempts:    3,
		Backoff:     500 * time.Millisecond,
		BackoffMax:  4 * time.Second,
		StreamReady: 10 * time.Millisecond,
		HTTPTimeout: 5 * time.Second,
	}
}

func runLoad(t *testing.T, l *Loader, events chan Event, b Binding, pcm *PCM) loadResult {
	t.Helper()
	done := make(chan loadResult, 1)
	l.Load(context.Background(), b, pcm, LoadCallbacks{
		OnReady:  func() { done <- loadResult{ready: true} },
		OnFailed: func(err error) { done <- loadResult{err: err} },
	})
	timeout := time.After(10 * time.Second)
	for {
		select {
		case ev := <-events:
			ev()
		case res := <-done:
			return res
		case <-timeout:
			t.Fatal("load did not finish")
		}
	}
}

func TestLoadFile(t *testing.T) {
	path := writeTestWAV(t, 44100, 2, 2000)
	l, events, _ := newTestLoader(testLoaderConfig())
	pcm := NewPCM()
	res := runLoad(t, l, events, Binding{Kind: BindFile, Href: path}, pcm)
	if !res.ready {
		t.Fatalf("load failed: %v", res.err)
	}
	if pcm.Frames() != 2000 || !pcm.Complete() {
		t.Errorf("Frames() = %d, Complete() = %v, want 2000, true", pcm.Frames(), pcm.Complete())
	}
}

func TestLoadMissingFileIsPermanent(t *testing.T) {
	l, events, delays := newTestLoader(testLoaderConfig())
	path := filepath.Join(t.TempDir(), "missing.wav")
	res := runLoad(t, l, events, Binding{Kind: BindFile, Href: path}, NewPCM())
	if !errors.Is(res.err, fs.ErrNotExist) {
		t.Errorf("error = %v, want %v", res.err, fs.ErrNotExist)
	}
	if len(*delays) != 0 {
		t.Errorf("retried a missing file %d times", len(*delays))
	}
}

func serveFile(t *testing.T, path string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "audio/wav")
		w.Write(data)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestLoadBuffer(t *testing.T) {
	srv, hits := serveFile(t, writeTestWAV(t, 44100, 1, 1500))
	l, events, _ := newTestLoader(testLoaderConfig())
	pcm := NewPCM()
	res := runLoad(t, l, events, Binding{Kind: BindBuffer, Href: srv.URL + "/a.wav"}, pcm)
	if !res.ready {
		t.Fatalf("load failed: %v", res.err)
	}
	if pcm.Frames() != 1500 {
		t.Errorf("Frames() = %d, want 1500", pcm.Frames())
	}
	if hits.Load() != 1 {
		t.Errorf("server hit %d times, want 1", hits.Load())
	}
}

func TestLoadStreamWAVFallsBackToFetch(t *testing.T) {
	srv, _ := serveFile(t, writeTestWAV(t, 44100, 2, 800))
	l, events, _ := newTestLoader(testLoaderConfig())
	pcm := NewPCM()
	res := runLoad(t, l, events, Binding{Kind: BindStream, Href: srv.URL + "/a.wav"}, pcm)
	if !res.ready {
		t.Fatalf("load failed: %v", res.err)
	}
	if pcm.Frames() != 800 || !pcm.Complete() {
		t.Errorf("Frames() = %d, Complete() = %v, want 800, true", pcm.Frames(), pcm.Complete())
	}
}

func waitComplete(t *testing.T, pcm *PCM) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for !pcm.Complete() {
		if time.Now().After(deadline) {
			t.Fatal("pcm never completed")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestLoadStreamMP3ReadyBeforeEnd(t *testing.T) {
	head, tail := silentMP3(10), silentMP3(20)
	release := make(chan struct{})
	var once sync.Once
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write(head)
		w.(http.Flusher).Flush()
		select {
		case <-release:
		case <-r.Context().Done():
			return
		}
		w.Write(tail)
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { once.Do(func() { close(release) }) })

	l, events, _ := newTestLoader(testLoaderConfig())
	pcm := NewPCM()
	res := runLoad(t, l, events, Binding{Kind: BindStream, Href: srv.URL + "/live.mp3"}, pcm)
	if !res.ready {
		t.Fatalf("load failed: %v", res.err)
	}
	if pcm.Complete() {
		t.Error("stream complete before the body ended")
	}
	if got, want := pcm.Frames(), l.streamReadyFrames(); got < want {
		t.Errorf("Frames() at ready = %d, want at least %d", got, want)
	}
	once.Do(func() { close(release) })
	waitComplete(t, pcm)
	if got := pcm.Frames(); got < 29*mp3FrameSamples || got > 30*mp3FrameSamples {
		t.Errorf("Frames() = %d, want about %d", got, 30*mp3FrameSamples)
	}
	if hits.Load() != 1 {
		t.Errorf("server hit %d times, want 1", hits.Load())
	}
}

func TestLoadStreamCutAfterReadyKeepsFrames(t *testing.T) {
	data := silentMP3(30)
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		// promise the whole file, send half, then drop the connection
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		w.Write(data[:len(data)/2])
	}))
	t.Cleanup(srv.Close)

	l, events, delays := newTestLoader(testLoaderConfig())
	pcm := NewPCM()
	res := runLoad(t, l, events, Binding{Kind: BindStream, Href: srv.URL + "/live.mp3"}, pcm)
	if !res.ready {
		t.Fatalf("load failed: %v", res.err)
	}
	waitComplete(t, pcm)
	if got := pcm.Frames(); got < l.streamReadyFrames() || got > 15*mp3FrameSamples {
		t.Errorf("Frames() = %d, want the buffered part of the stream", got)
	}
	if hits.Load() != 1 || len(*delays) != 0 {
		t.Errorf("hits = %d, retries = %d, want 1, 0", hits.Load(), len(*delays))
	}
	if len(events) != 0 {
		t.Errorf("%d events posted after ready, want none", len(events))
	}
}

func TestLoadRetriesThenFails(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	l, events, delays := newTestLoader(testLoaderConfig())
	pcm := NewPCM()
	res := runLoad(t, l, events, Binding{Kind: BindBuffer, Href: srv.URL}, pcm)
	if res.ready || res.err == nil {
		t.Fatal("load against a failing server reported ready")
	}
	if hits.Load() != 3 {
		t.Errorf("server hit %d times, want 3", hits.Load())
	}
	want := []time.Duration{500 * time.Millisecond, time.Second}
	if len(*delays) != len(want) {
		t.Fatalf("backoff delays = %v, want %v", *delays, want)
	}
	for i := range want {
		if (*delays)[i] != want[i] {
			t.Errorf("delay %d = %v, want %v", i, (*delays)[i], want[i])
		}
	}
}

func TestLoadNotFoundIsPermanent(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()
	l, events, _ := newTestLoader(testLoaderConfig())
	res := runLoad(t, l, events, Binding{Kind: BindStream, Href: srv.URL}, NewPCM())
	var se *httpStatusError
	if !errors.As(res.err, &se) || se.code != http.StatusNotFound {
		t.Errorf("error = %v, want a 404 status error", res.err)
	}
	if hits.Load() != 1 {
		t.Errorf("server hit %d times, want 1", hits.Load())
	}
}

func TestBackoffDelay(t *testing.T) {
	cfg := testLoaderConfig()
	want := []time.Duration{
		500 * time.Millisecond,
		time.Second,
		2 * time.Second,
		4 * time.Second,
		4 * time.Second,
	}
	for i, w := range want {
		if got := backoffDelay(cfg, i+1); got != w {
			t.Errorf("backoffDelay(%d) = %v, want %v", i+1, got, w)
		}
	}
}

func TestIsPermanent(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{ErrUnsupportedFormat, true},
		{ErrEmptyAudio, true},
		{&httpStatusError{code: 404}, true},
		{&httpStatusError{code: 429}, false},
		{&httpStatusError{code: 503}, false},
		{errors.New("connection reset"), false},
	}
	for _, tt := range tests {
		if got := isPermanent(tt.err); got != tt.want {
			t.Errorf("isPermanent(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
