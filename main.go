package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
)

type options struct {
	logLevel  string
	scenePath string
	hrefs     []string
}

func usage() string {
	return "usage: wavefield [-l level] [-f scene.json] [href...]"
}

func parseArgs(args []string) (options, error) {
	var opts options
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-l", "-f":
			if i+1 == len(args) {
				return options{}, fmt.Errorf("%s needs an argument\n%s", arg, usage())
			}
			i++
			if arg == "-l" {
				opts.logLevel = args[i]
			} else {
				opts.scenePath = args[i]
			}
		case "-h", "--help":
			return options{}, fmt.Errorf("%s", usage())
		default:
			opts.hrefs = append(opts.hrefs, arg)
		}
	}
	if opts.scenePath == "" && len(opts.hrefs) == 0 {
		return options{}, fmt.Errorf("nothing to play\n%s", usage())
	}
	return opts, nil
}

// resolveScene loads the scene file if given. Hrefs on the command line
// replace its track list.
func resolveScene(opts options) (SceneConfig, string, error) {
	scene := DefaultScene()
	sceneDir := ""
	if opts.scenePath != "" {
		var err error
		if scene, err = LoadScene(opts.scenePath); err != nil {
			return SceneConfig{}, "", err
		}
		sceneDir = filepath.Dir(opts.scenePath)
	}
	if len(opts.hrefs) > 0 {
		scene.Group.Tracks = scene.Group.Tracks[:0]
		for i, href := range opts.hrefs {
			scene.Group.Tracks = append(scene.Group.Tracks, TrackConfig{
				Name: fmt.Sprintf("track%d", i+1),
				Href: href,
			})
		}
		sceneDir = ""
	}
	if err := scene.Validate(); err != nil {
		return SceneConfig{}, "", err
	}
	return scene, sceneDir, nil
}

func run(args []string) error {
	opts, err := parseArgs(args)
	if err != nil {
		return err
	}
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if err := InitLogger(cfg.LogLevel, cfg.LogFormat); err != nil {
		return err
	}
	scene, sceneDir, err := resolveScene(opts)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	app, err := NewApp(ctx, cfg, scene, sceneDir)
	if err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		app.postEvent(app.Quit, true)
	}()
	logger.Info("starting", "scene", scene.Name, "tracks", len(scene.Group.Tracks), "output", cfg.AudioOutput)
	return WithGL(fmt.Sprintf("wavefield : %s", scene.Name), cfg.FPSCap, app)
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("%v\n", err)
	}
}
