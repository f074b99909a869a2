package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/veandco/go-sdl2/sdl"

	"vcr_renderer/renderer"
)

var _ renderer.SurfaceProvider = (*Window)(nil)

func TestHandleEvent(t *testing.T) {
	for _, tc := range []struct {
		name      string
		events    []sdl.Event
		resized   bool
		minimized bool
		close     bool
	}{
		{name: "quit", events: []sdl.Event{&sdl.QuitEvent{Type: sdl.QUIT}}, close: true},
		{
			name:   "escape",
			events: []sdl.Event{&sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Sym: sdl.K_ESCAPE}}},
			close:  true,
		},
		{
			name:   "other key",
			events: []sdl.Event{&sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Sym: sdl.K_a}}},
		},
		{
			name:    "resize",
			events:  []sdl.Event{&sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_RESIZED}},
			resized: true,
		},
		{
			name:      "minimize",
			events:    []sdl.Event{&sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_MINIMIZED}},
			minimized: true,
		},
		{
			name: "minimize then restore",
			events: []sdl.Event{
				&sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_MINIMIZED},
				&sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_RESTORED},
			},
			resized: true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			w := &Window{}
			for _, ev := range tc.events {
				w.handleEvent(ev)
			}
			assert.Equal(t, tc.resized, w.Resized())
			assert.Equal(t, tc.minimized, w.Minimized())
			assert.Equal(t, tc.close, w.ShouldClose())
		})
	}
}

func TestResetResized(t *testing.T) {
	w := &Window{}
	w.handleEvent(&sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_SIZE_CHANGED})
	assert.True(t, w.Resized())
	w.ResetResized()
	assert.False(t, w.Resized())
}

func TestMinimizedWindowHasNoDrawableArea(t *testing.T) {
	w := &Window{}
	w.handleEvent(&sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_MINIMIZED})
	assert.True(t, w.DrawableExtent().IsZero())
}
