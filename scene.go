package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-homedir"
)

var ErrInvalidScene = errors.New("invalid scene")

type ClockConfig struct {
	Step float64 `json:"step"`
}

type ShaderConfig struct {
	Vertex          string          `json:"vertex"`
	Fragment        string          `json:"fragment"`
	TimeUniform     string          `json:"timeUniform"`
	SpectrumUniform string          `json:"spectrumUniform"`
	SpectrumLength  int             `json:"spectrumLength"`
	Flags           map[string]bool `json:"flags"`
}

type TrackConfig struct {
	Name string `json:"name"`
	Href string `json:"href"`
	Kind string `json:"kind"`
}

type GroupConfig struct {
	AudibleGain float64       `json:"audibleGain"`
	Autoplay    bool          `json:"autoplay"`
	Tracks      []TrackConfig `json:"tracks"`
}

// HexColor is an RGB colour written as "#rrggbb" or "0xrrggbb" in JSON.
type HexColor uint32

func (c *HexColor) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var n uint32
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("colour must be a string like \"#222222\" or a number")
		}
		*c = HexColor(n)
		return nil
	}
	s = strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(s), "#"), "0x")
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil || len(s) != 6 {
		return fmt.Errorf("invalid colour %q", s)
	}
	*c = HexColor(n)
	return nil
}

func (c HexColor) MarshalJSON() ([]byte, error) {
	return json.Marshal(fmt.Sprintf("#%06x", uint32(c)))
}

// SceneConfig is the declarative description of one sketch: mesh,
// camera, shaders and the tracks feeding them.
type SceneConfig struct {
	Name       string         `json:"name"`
	Clock      ClockConfig    `json:"clock"`
	Mesh       MeshConfig     `json:"mesh"`
	Camera     CameraConfig   `json:"camera"`
	Analyser   AnalyserConfig `json:"analyser"`
	Shader     ShaderConfig   `json:"shader"`
	Group      GroupConfig    `json:"group"`
	ClearColor HexColor       `json:"clearColor"`
}

func DefaultScene() SceneConfig {
	return SceneConfig{
		Name:     "plane",
		Clock:    ClockConfig{Step: DefaultClockStep},
		Mesh:     DefaultMeshConfig(),
		Camera:   DefaultCameraConfig(),
		Analyser: DefaultAnalyserConfig(),
		Shader: ShaderConfig{
			TimeUniform:     "time",
			SpectrumUniform: "u_data_arr",
			SpectrumLength:  DefaultSpectrumLength,
			Flags:           map[string]bool{"wireframe": true, "mode": false},
		},
		Group: GroupConfig{
			AudibleGain: DefaultAudibleGain,
			Autoplay:    true,
		},
		ClearColor: DefaultClearColor,
	}
}

func invalidScene(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidScene, fmt.Sprintf(format, args...))
}

func (s SceneConfig) Validate() error {
	if s.Clock.Step <= 0 {
		return invalidScene("clock step must be positive, got %v", s.Clock.Step)
	}
	if err := s.Analyser.Validate(); err != nil {
		return invalidScene("analyser: %v", err)
	}
	if err := s.Mesh.Validate(); err != nil {
		return invalidScene("%v", err)
	}
	if err := s.Camera.Validate(); err != nil {
		return invalidScene("%v", err)
	}
	if s.Shader.SpectrumLength <= 0 {
		return invalidScene("shader spectrumLength must be positive, got %d", s.Shader.SpectrumLength)
	}
	if s.Shader.Vertex == "" && s.Shader.SpectrumLength != builtinSpectrumLength {
		return invalidScene("the built-in vertex shader takes spectrumLength %d, got %d", builtinSpectrumLength, s.Shader.SpectrumLength)
	}
	if s.Shader.TimeUniform == "" || s.Shader.SpectrumUniform == "" {
		return invalidScene("shader uniform names must not be empty")
	}
	if len(s.Group.Tracks) == 0 {
		return invalidScene("group has no tracks")
	}
	if !(s.Group.AudibleGain > 0 && s.Group.AudibleGain <= 1) {
		return invalidScene("audible gain must be in (0, 1], got %v", s.Group.AudibleGain)
	}
	for i, t := range s.Group.Tracks {
		if strings.TrimSpace(t.Href) == "" {
			return invalidScene("track %d has no href", i+1)
		}
		if t.Kind != "" {
			if _, err := ParseBindingKind(t.Kind); err != nil {
				return invalidScene("track %d: %v", i+1, err)
			}
		}
	}
	return nil
}

// Bindings resolves the track list. Relative file paths are taken
// relative to baseDir.
func (s SceneConfig) Bindings(baseDir string) ([]Binding, error) {
	bindings := make([]Binding, 0, len(s.Group.Tracks))
	for i, t := range s.Group.Tracks {
		b, err := NewBinding(t.Kind, t.Href)
		if err != nil {
			return nil, fmt.Errorf("track %d: %w", i+1, err)
		}
		if b.Kind == BindFile && baseDir != "" && !filepath.IsAbs(b.Href) {
			b.Href = filepath.Join(baseDir, b.Href)
		}
		bindings = append(bindings, b)
	}
	return bindings, nil
}

// TrackName is the configured name of track i, or a numbered default.
func (s SceneConfig) TrackName(i int) string {
	if name := s.Group.Tracks[i].Name; name != "" {
		return name
	}
	return fmt.Sprintf("track%d", i+1)
}

// ParseScene decodes a scene on top of DefaultScene. Unknown fields are
// rejected so typos do not silently fall back to defaults.
func ParseScene(data []byte) (SceneConfig, error) {
	scene := DefaultScene()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&scene); err != nil {
		return SceneConfig{}, fmt.Errorf("%w: %v", ErrInvalidScene, err)
	}
	if err := scene.Validate(); err != nil {
		return SceneConfig{}, err
	}
	return scene, nil
}

func LoadScene(path string) (SceneConfig, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return SceneConfig{}, fmt.Errorf("load scene: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return SceneConfig{}, fmt.Errorf("load scene: %w", err)
	}
	scene, err := ParseScene(data)
	if err != nil {
		return SceneConfig{}, fmt.Errorf("load scene %s: %w", path, err)
	}
	return scene, nil
}
