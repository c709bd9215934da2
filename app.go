package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
)

const seekStep = 0.05

type App struct {
	ctx        context.Context
	cfg        Config
	scene      SceneConfig
	sceneDir   string
	shouldExit bool
	events     chan Event
	loader     *Loader
	group      *TrackGroup
	cancelLoad context.CancelFunc
	mixer      *Mixer
	output     AudioOutput
	clock      *Clock
	params     *ShaderParams
	camera     *Camera
	mesh       *Mesh
	device     *GLDevice
	hud        *StatusOverlay
	loop       *RenderLoop
	host       *GlfwHost
	keyMap     KeyMap
	lastError  error
	readClip   func() (string, error)
}

// NewApp builds everything that does not need a GL context: tracks,
// mixer, clock, camera, mesh and key bindings. Loading starts in Init.
func NewApp(ctx context.Context, cfg Config, scene SceneConfig, sceneDir string) (*App, error) {
	if err := scene.Validate(); err != nil {
		return nil, err
	}
	clock, err := NewClock(scene.Clock.Step)
	if err != nil {
		return nil, err
	}
	mesh, err := NewSceneMesh(scene.Mesh)
	if err != nil {
		return nil, err
	}
	app := &App{
		ctx:      ctx,
		cfg:      cfg,
		scene:    scene,
		sceneDir: sceneDir,
		events:   make(chan Event, 1024),
		clock:    clock,
		params:   NewShaderParams(),
		camera:   NewCamera(scene.Camera),
		mesh:     mesh,
		readClip: clipboard.ReadAll,
	}
	app.loader = NewLoader(cfg.LoaderConfig(), func(ev Event) {
		app.postEvent(ev, false)
	})
	for name, v := range scene.Shader.Flags {
		app.params.SetFlag(name, v)
	}
	bindings, err := scene.Bindings(sceneDir)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(bindings))
	for i := range bindings {
		names[i] = scene.TrackName(i)
	}
	group, err := app.newGroup(names, bindings)
	if err != nil {
		return nil, err
	}
	app.group = group
	app.mixer = NewMixer(group)
	app.keyMap = app.createKeyMap()
	return app, nil
}

func (app *App) newGroup(names []string, bindings []Binding) (*TrackGroup, error) {
	group, err := NewTrackGroup(app.cfg.SampleRate, app.scene.Group.AudibleGain, app.scene.Analyser)
	if err != nil {
		return nil, err
	}
	for i, b := range bindings {
		if _, err := group.AddTrack(names[i], b); err != nil {
			return nil, err
		}
	}
	return group, nil
}

func (app *App) postEvent(ev Event, dropIfFull bool) {
	if dropIfFull {
		select {
		case app.events <- ev:
		default:
		}
	} else {
		app.events <- ev
	}
}

func (app *App) drainEvents() {
	for {
		select {
		case ev := <-app.events:
			ev()
		default:
			return
		}
	}
}

func (app *App) SetLastError(err error) {
	app.lastError = err
}

func (app *App) LastError() error {
	return app.lastError
}

// startLoading launches one loader per track of the current group.
func (app *App) startLoading() {
	ctx, cancel := context.WithCancel(app.ctx)
	app.cancelLoad = cancel
	group := app.group
	for _, t := range group.Tracks() {
		app.loader.Load(ctx, t.Binding, t.pcm, LoadCallbacks{
			OnReady: func() {
				if err := group.TrackReady(t); err != nil {
					logger.Error("track ready", "track", t.Name, "error", err)
					app.SetLastError(err)
				}
			},
			OnFailed: func(err error) {
				group.TrackFailed(t, err)
				app.SetLastError(fmt.Errorf("%s: %w", t.Name, err))
			},
		})
	}
	if app.scene.Group.Autoplay {
		group.Play()
	}
}

func (app *App) createKeyMap() KeyMap {
	km := CreateKeyMap()
	km.Bind("Space", func() {
		app.group.TogglePlay()
	})
	km.Bind("e", func() {
		app.group.Toggle()
		logger.Debug("toggle", "active", app.group.ActiveIndex())
	})
	for n := 1; n <= 9; n++ {
		km.Bind(digitKeys[n], func() {
			if err := app.group.Activate(n - 1); err != nil {
				logger.Debug("activate", "error", err)
			}
		})
	}
	km.Bind("0", func() {
		app.group.Seek(0)
	})
	for n := range 10 {
		km.Bind("S-"+digitKeys[n], func() {
			app.group.Seek(float64(n) / 10)
		})
	}
	km.Bind("Right", func() {
		app.group.SeekBy(seekStep)
	})
	km.Bind("Left", func() {
		app.group.SeekBy(-seekStep)
	})
	km.Bind("w", func() {
		app.params.ToggleFlag(wireframeFlag)
	})
	km.Bind("m", func() {
		app.params.ToggleFlag("mode")
	})
	km.Bind("h", func() {
		if app.hud != nil {
			app.hud.Toggle()
		}
	})
	km.Bind("C-v", app.PasteStream)
	km.Bind("Escape", app.Quit)
	km.Bind("C-q", app.Quit)
	return km
}

// PasteStream replaces the track of a single track scene with a stream
// of the URL on the clipboard.
func (app *App) PasteStream() {
	if len(app.scene.Group.Tracks) != 1 {
		app.SetLastError(fmt.Errorf("paste: only single track scenes accept a pasted stream"))
		return
	}
	text, err := app.readClip()
	if err != nil {
		app.SetLastError(fmt.Errorf("paste: %w", err))
		return
	}
	b, err := NewBinding(string(BindStream), strings.TrimSpace(text))
	if err != nil {
		app.SetLastError(fmt.Errorf("paste: %w", err))
		return
	}
	group, err := app.newGroup([]string{app.scene.TrackName(0)}, []Binding{b})
	if err != nil {
		app.SetLastError(fmt.Errorf("paste: %w", err))
		return
	}
	app.group.Pause()
	if app.cancelLoad != nil {
		app.cancelLoad()
	}
	app.group = group
	app.mixer.SetGroups(group)
	app.lastError = nil
	logger.Info("bound pasted stream", "binding", b)
	app.startLoading()
}

func (app *App) Init(host *GlfwHost) (err error) {
	defer func() {
		if err != nil {
			app.Close()
		}
	}()
	app.host = host
	output, err := NewAudioOutput(app.cfg.AudioOutput, app.cfg.SampleRate, app.mixer)
	if err != nil {
		return err
	}
	if err := output.Start(); err != nil {
		return fmt.Errorf("start audio output: %w", err)
	}
	app.output = output
	device, err := NewGLDevice(GLDeviceConfig{
		VertexShader:   app.scene.Shader.Vertex,
		FragmentShader: app.scene.Shader.Fragment,
		SpectrumLength: app.scene.Shader.SpectrumLength,
		ClearColor:     uint32(app.scene.ClearColor),
		Camera:         app.camera,
	})
	if err != nil {
		return err
	}
	app.device = device
	hud, err := NewStatusOverlay(app)
	if err != nil {
		return err
	}
	app.hud = hud
	loop, err := NewRenderLoop(RenderLoopConfig{
		Clock:           app.clock,
		Params:          app.params,
		Camera:          app.camera,
		Device:          device,
		Mesh:            app.mesh,
		Overlay:         hud,
		Scheduler:       host,
		Source:          app.activeSource,
		FramebufferSize: host.FramebufferSize,
		TimeUniform:     app.scene.Shader.TimeUniform,
		SpectrumUniform: app.scene.Shader.SpectrumUniform,
	})
	if err != nil {
		return err
	}
	app.loop = loop
	app.startLoading()
	loop.Start()
	return nil
}

// activeSource follows the current group, which C-v may replace.
func (app *App) activeSource() *SpectrumSource {
	return app.group.ActiveSource()
}

func (app *App) StatusLines() []string {
	lines := []string{fmt.Sprintf("%s  t %.2f step %g", app.scene.Name, app.clock.Time(), app.clock.Step())}
	lines = append(lines, groupStatusLines(app.group)...)
	if stats := app.mixer.Stats(); stats.Underruns > 0 {
		lines = append(lines, fmt.Sprintf("  underruns %d", stats.Underruns))
	}
	if app.loop != nil && app.loop.DrawErrors() > 0 {
		lines = append(lines, fmt.Sprintf("  draw errors %d", app.loop.DrawErrors()))
	}
	return lines
}

func (app *App) IsRunning() bool {
	return !app.shouldExit
}

func (app *App) Quit() {
	app.shouldExit = true
}

func (app *App) OnKey(keyName string) {
	if !app.keyMap.HandleKey(keyName) {
		logger.Debug("unbound key", "key", keyName)
	}
}

// OnCursorPos converts the cursor to an offset from the window centre.
func (app *App) OnCursorPos(x, y float64) {
	var half Size
	if app.host != nil {
		half = app.host.WindowSize().Div(2)
	}
	app.camera.SetPointer(x-float64(half.X), y-float64(half.Y))
}

func (app *App) OnFramebufferSize(width, height int) {
	logger.Debug("OnFramebufferSize", "width", width, "height", height)
	if app.device != nil {
		app.device.Resize(width, height)
	} else {
		app.camera.SetAspect(width, height)
	}
}

func (app *App) Update() error {
	app.drainEvents()
	return nil
}

func (app *App) Close() error {
	if app.loop != nil {
		app.loop.Stop()
	}
	if app.cancelLoad != nil {
		app.cancelLoad()
	}
	if app.output != nil {
		if err := app.output.Close(); err != nil {
			logger.Warn("close audio output", "error", err)
		}
	}
	if app.hud != nil {
		app.hud.Close()
	}
	if app.device != nil {
		app.device.Close()
	}
	return nil
}
