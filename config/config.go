// Package config holds the settings of the renderer. Defaults are compiled in and can be overlaid by a YAML file.
package config

import (
	"log"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "renderer.yaml"

const MaxFramesInFlight = 8

var PresentModes = []string{"mailbox", "fifo", "immediate", "fifo_relaxed"}

var Projections = []string{"perspective", "orthographic"}

type Config struct {
	Window     Window     `yaml:"window"`
	Renderer   Renderer   `yaml:"renderer"`
	Shaders    Shaders    `yaml:"shaders"`
	Simulation Simulation `yaml:"simulation"`
	Camera     Camera     `yaml:"camera"`
}

type Window struct {
	Title  string `yaml:"title"`
	Width  int32  `yaml:"width"`
	Height int32  `yaml:"height"`
}

type Renderer struct {
	FramesInFlight int `yaml:"frames_in_flight"`
	// FenceTimeout bounds every wait on a frame fence, zero waits forever.
	FenceTimeout     Duration   `yaml:"fence_timeout"`
	PresentMode      string     `yaml:"present_mode"`
	Validation       bool       `yaml:"validation"`
	ValidationLayers []string   `yaml:"validation_layers"`
	ClearColor       [4]float32 `yaml:"clear_color"`
}

type Shaders struct {
	Vertex   string `yaml:"vertex"`
	Fragment string `yaml:"fragment"`
}

type Simulation struct {
	Gravity   float32  `yaml:"gravity"`
	Substeps  int      `yaml:"substeps"`
	FieldGrid int      `yaml:"field_grid"`
	TimeStep  Duration `yaml:"time_step"`
	// BodyMesh optionally replaces the circle of the bodies by the XY outline of a binary STL file.
	BodyMesh  string   `yaml:"body_mesh"`
}

// Camera configures the viewer. Near and far are view space depths in world units.
type Camera struct {
	Projection string  `yaml:"projection"`
	FovDegrees float32 `yaml:"fov_degrees"`
	Near       float32 `yaml:"near"`
	Far        float32 `yaml:"far"`
	// MoveSpeed is in world units per second, LookSpeed in radians per second.
	MoveSpeed float32 `yaml:"move_speed"`
	LookSpeed float32 `yaml:"look_speed"`
}

func Default() Config {
	return Config{
		Window: Window{
			Title:  "VCR renderer",
			Width:  800,
			Height: 600,
		},
		Renderer: Renderer{
			FramesInFlight:   2,
			PresentMode:      "mailbox",
			Validation:       true,
			ValidationLayers: []string{"VK_LAYER_KHRONOS_validation"},
			ClearColor:       [4]float32{0.01, 0.01, 0.01, 1},
		},
		Shaders: Shaders{
			Vertex:   "shaders/simple_shader.vert.spv",
			Fragment: "shaders/simple_shader.frag.spv",
		},
		Simulation: Simulation{
			Gravity:   0.81,
			Substeps:  5,
			FieldGrid: 40,
			TimeStep:  Duration(time.Second / 60),
		},
		Camera: Camera{
			Projection: "perspective",
			FovDegrees: 50,
			Near:       0.1,
			Far:        10,
			MoveSpeed:  3,
			LookSpeed:  1.5,
		},
	}
}

// Load returns the defaults overlaid with the YAML file at path. A missing file is not an error, the defaults are
// used as they are. The result is validated either way.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Printf("No config file at %s, using defaults", path)
	case err != nil:
		return Config{}, errors.Wrapf(err, "read config %s", path)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Wrapf(err, "parse config %s", path)
		}
		log.Printf("Loaded config from %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return errors.Newf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if c.Renderer.FramesInFlight < 1 || c.Renderer.FramesInFlight > MaxFramesInFlight {
		return errors.Newf("frames_in_flight %d out of range [1, %d]", c.Renderer.FramesInFlight, MaxFramesInFlight)
	}
	if c.Renderer.FenceTimeout < 0 {
		return errors.Newf("fence_timeout %s must not be negative", c.Renderer.FenceTimeout.Duration())
	}
	if !contains(PresentModes, c.Renderer.PresentMode) {
		return errors.Newf("present_mode %q is none of %v", c.Renderer.PresentMode, PresentModes)
	}
	if c.Shaders.Vertex == "" || c.Shaders.Fragment == "" {
		return errors.New("both shader paths are required")
	}
	if c.Simulation.Substeps < 1 {
		return errors.Newf("substeps %d must be at least 1", c.Simulation.Substeps)
	}
	if c.Simulation.FieldGrid < 0 {
		return errors.Newf("field_grid %d must not be negative", c.Simulation.FieldGrid)
	}
	if c.Simulation.TimeStep <= 0 {
		return errors.New("time_step must be positive")
	}
	return c.Camera.Validate()
}

func (c Camera) Validate() error {
	if !contains(Projections, c.Projection) {
		return errors.Newf("projection %q is none of %v", c.Projection, Projections)
	}
	if c.FovDegrees <= 0 || c.FovDegrees >= 180 {
		return errors.Newf("fov_degrees %g out of range (0, 180)", c.FovDegrees)
	}
	if c.Near <= 0 || c.Far <= c.Near {
		return errors.Newf("clip planes near %g, far %g need 0 < near < far", c.Near, c.Far)
	}
	if c.MoveSpeed < 0 || c.LookSpeed < 0 {
		return errors.New("camera speeds must not be negative")
	}
	return nil
}

// ActiveValidationLayers is empty when validation is switched off.
func (r Renderer) ActiveValidationLayers() []string {
	if !r.Validation {
		return nil
	}
	return r.ValidationLayers
}

func contains(options []string, s string) bool {
	for _, m := range options {
		if m == s {
			return true
		}
	}
	return false
}

// Duration wraps time.Duration for YAML unmarshaling from strings like "250ms".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	if s == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return errors.Wrapf(err, "invalid duration %q", s)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
