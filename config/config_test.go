package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "renderer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 2, cfg.Renderer.FramesInFlight)
	assert.Equal(t, time.Duration(0), cfg.Renderer.FenceTimeout.Duration())
	assert.Equal(t, "mailbox", cfg.Renderer.PresentMode)
	assert.Equal(t, "perspective", cfg.Camera.Projection)
	assert.Equal(t, float32(50), cfg.Camera.FovDegrees)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
window:
  title: test
renderer:
  frames_in_flight: 3
  fence_timeout: 2s
  present_mode: fifo
  validation: false
simulation:
  substeps: 10
camera:
  projection: orthographic
  far: 20
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Window.Title)
	// untouched keys keep their defaults
	assert.Equal(t, int32(800), cfg.Window.Width)
	assert.Equal(t, 3, cfg.Renderer.FramesInFlight)
	assert.Equal(t, 2*time.Second, cfg.Renderer.FenceTimeout.Duration())
	assert.Equal(t, "fifo", cfg.Renderer.PresentMode)
	assert.Empty(t, cfg.Renderer.ActiveValidationLayers())
	assert.Equal(t, 10, cfg.Simulation.Substeps)
	assert.Equal(t, Default().Shaders, cfg.Shaders)
	assert.Equal(t, "orthographic", cfg.Camera.Projection)
	assert.Equal(t, float32(20), cfg.Camera.Far)
	assert.Equal(t, float32(0.1), cfg.Camera.Near)
}

func TestLoadRejects(t *testing.T) {
	for _, tc := range []struct {
		name    string
		content string
	}{
		{name: "no frames in flight", content: "renderer:\n  frames_in_flight: 0\n"},
		{name: "too many frames in flight", content: "renderer:\n  frames_in_flight: 9\n"},
		{name: "unknown present mode", content: "renderer:\n  present_mode: vsync\n"},
		{name: "bad duration", content: "renderer:\n  fence_timeout: soon\n"},
		{name: "negative duration", content: "renderer:\n  fence_timeout: -1s\n"},
		{name: "zero width", content: "window:\n  width: 0\n"},
		{name: "no substeps", content: "simulation:\n  substeps: 0\n"},
		{name: "unknown projection", content: "camera:\n  projection: fisheye\n"},
		{name: "flat field of view", content: "camera:\n  fov_degrees: 180\n"},
		{name: "far before near", content: "camera:\n  near: 5\n  far: 1\n"},
		{name: "zero near plane", content: "camera:\n  near: 0\n"},
		{name: "negative look speed", content: "camera:\n  look_speed: -1\n"},
		{name: "broken yaml", content: "renderer: [\n"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			assert.Error(t, err)
		})
	}
}

func TestActiveValidationLayers(t *testing.T) {
	r := Default().Renderer
	assert.Equal(t, []string{"VK_LAYER_KHRONOS_validation"}, r.ActiveValidationLayers())
	r.Validation = false
	assert.Nil(t, r.ActiveValidationLayers())
}
