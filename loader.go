package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"time"
)

type LoaderConfig struct {
	SampleRate  int
	Attempts    int
	Backoff     time.Duration
	BackoffMax  time.Duration
	StreamReady time.Duration
	HTTPTimeout time.Duration
}

// LoadCallbacks are posted to the main thread, never called on the
// loader goroutine.
type LoadCallbacks struct {
	OnReady  func()
	OnFailed func(err error)
}

// Loader fetches and decodes track audio with bounded retries. Failed
// attempts back off exponentially; after the last one the track is
// reported as failed instead of loading forever.
type Loader struct {
	cfg    LoaderConfig
	client *http.Client
	post   func(Event)
	sleep  func(ctx context.Context, d time.Duration) error
}

type httpStatusError struct {
	url  string
	code int
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("GET %s: %s", e.url, http.StatusText(e.code))
}

// bodyReader remembers the first read error other than io.EOF, so a
// transfer cut short is not mistaken for the end of the audio.
type bodyReader struct {
	r   io.Reader
	err error
}

func (b *bodyReader) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	if err != nil && err != io.EOF && b.err == nil {
		b.err = err
	}
	return n, err
}

func NewLoader(cfg LoaderConfig, post func(Event)) *Loader {
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}
	return &Loader{
		cfg: cfg,
		client: &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				ResponseHeaderTimeout: cfg.HTTPTimeout,
			},
		},
		post:  post,
		sleep: sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// backoffDelay returns the wait after the given failed attempt (1-based).
func backoffDelay(cfg LoaderConfig, attempt int) time.Duration {
	d := cfg.Backoff
	for i := 1; i < attempt; i++ {
		d *= 2
		if cfg.BackoffMax > 0 && d >= cfg.BackoffMax {
			return cfg.BackoffMax
		}
	}
	if cfg.BackoffMax > 0 && d > cfg.BackoffMax {
		return cfg.BackoffMax
	}
	return d
}

// isPermanent reports errors that another attempt cannot fix.
func isPermanent(err error) bool {
	if errors.Is(err, ErrUnsupportedFormat) || errors.Is(err, ErrEmptyAudio) || errors.Is(err, fs.ErrNotExist) {
		return true
	}
	var se *httpStatusError
	if errors.As(err, &se) {
		return se.code >= 400 && se.code < 500 && se.code != http.StatusTooManyRequests
	}
	return false
}

func (l *Loader) streamReadyFrames() int {
	return int(l.cfg.StreamReady.Seconds() * float64(l.cfg.SampleRate))
}

// Load starts loading b into pcm in the background.
func (l *Loader) Load(ctx context.Context, b Binding, pcm *PCM, cb LoadCallbacks) {
	go l.run(ctx, b, pcm, cb)
}

func (l *Loader) run(ctx context.Context, b Binding, pcm *PCM, cb LoadCallbacks) {
	ready := false
	signalReady := func() {
		if ready {
			return
		}
		ready = true
		logger.Info("track ready", "binding", b, "frames", pcm.Frames())
		l.post(cb.OnReady)
	}
	var lastErr error
	for attempt := 1; attempt <= l.cfg.Attempts; attempt++ {
		err := l.attempt(ctx, b, pcm, signalReady)
		if err == nil {
			pcm.Finish()
			signalReady()
			return
		}
		if ctx.Err() != nil {
			return
		}
		if ready {
			// playback already started from this data, a restart would
			// desync the group, so keep what arrived
			logger.Warn("stream ended early", "binding", b, "frames", pcm.Frames(), "error", err)
			pcm.Finish()
			return
		}
		lastErr = err
		if isPermanent(err) || attempt == l.cfg.Attempts {
			break
		}
		delay := backoffDelay(l.cfg, attempt)
		logger.Warn("load failed, retrying", "binding", b, "attempt", attempt, "attempts", l.cfg.Attempts, "delay", delay, "error", err)
		pcm.Reset()
		if err := l.sleep(ctx, delay); err != nil {
			return
		}
	}
	logger.Error("load failed", "binding", b, "error", lastErr)
	l.post(func() {
		cb.OnFailed(lastErr)
	})
}

func (l *Loader) attempt(ctx context.Context, b Binding, pcm *PCM, signalReady func()) error {
	switch b.Kind {
	case BindFile:
		data, err := os.ReadFile(b.Href)
		if err != nil {
			return err
		}
		return l.decodeInto(data, pcm)
	case BindBuffer:
		data, err := l.fetch(ctx, b.Href)
		if err != nil {
			return err
		}
		return l.decodeInto(data, pcm)
	case BindStream:
		return l.stream(ctx, b.Href, pcm, signalReady)
	default:
		return fmt.Errorf("unknown binding kind: %q", b.Kind)
	}
}

func (l *Loader) decodeInto(data []byte, pcm *PCM) error {
	samples, err := decodeAll(data, l.cfg.SampleRate)
	if err != nil {
		return err
	}
	pcm.Append(samples)
	return nil
}

func (l *Loader) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &httpStatusError{url: url, code: resp.StatusCode}
	}
	return resp, nil
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	if l.cfg.HTTPTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.cfg.HTTPTimeout)
		defer cancel()
	}
	resp, err := l.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	return data, nil
}

func (l *Loader) stream(ctx context.Context, url string, pcm *PCM, signalReady func()) error {
	resp, err := l.get(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body := &bodyReader{r: resp.Body}
	br := bufio.NewReader(body)
	head, _ := br.Peek(12)
	if sniffFormat(head) == formatWAV {
		// the wav decoder needs random access, so fall back to a full fetch
		data, err := io.ReadAll(br)
		if err != nil {
			return fmt.Errorf("read %s: %w", url, err)
		}
		return l.decodeInto(data, pcm)
	}
	readyFrames := l.streamReadyFrames()
	err = streamMP3(ctx, br, l.cfg.SampleRate, pcm, func(frames int) {
		if frames >= readyFrames {
			signalReady()
		}
	})
	if err == nil && body.err != nil {
		return fmt.Errorf("stream %s cut short: %w", url, body.err)
	}
	return err
}
