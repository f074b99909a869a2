// Package window provides the SDL window the renderer draws into together with the Vulkan instance and surface
// created for it.
package window

import (
	"fmt"
	"log"

	vk "github.com/goki/vulkan"
	"github.com/veandco/go-sdl2/sdl"

	"vcr_renderer/common"
	"vcr_renderer/config"
	"vcr_renderer/renderer"
)

const SDL_MAJOR, SDL_MINOR, SDL_PATCH = int(sdl.MAJOR_VERSION), int(sdl.MINOR_VERSION), int(sdl.PATCHLEVEL)

// Window encapsulates all window handling components and vulkan access objects to talk, to actual draw on screen. It
// uses SDL for window management and user input, for a Vulkan application. Thus simplifying the process of getting a
// vk.Surface to draw on and interact with. It implements renderer.SurfaceProvider.
type Window struct {
	Win  *sdl.Window
	Inst vk.Instance
	Surf vk.Surface

	resized   bool
	minimized bool
	close     bool
	destroyed bool
}

// NewWindow initializes SDL, opens a resizable Vulkan capable window, creates the Vulkan instance and finally the
// surface of the window. Everything created before a failing step is released again. On tear down, Destroy releases
// the surface, the instance and the window in that order.
func NewWindow(cfg config.Window, validationLayers []string) (*Window, error) {
	w := &Window{}
	if err := w.initSDLWindow(cfg.Title, cfg.Width, cfg.Height); err != nil {
		return nil, err
	}
	if err := initVulkan(); err != nil {
		w.destroySDL()
		return nil, err
	}
	inst, err := createVulkanInstance(w.Win, validationLayers)
	if err != nil {
		w.destroySDL()
		return nil, err
	}
	w.Inst = inst

	surf, err := common.SdlCreateVkSurface(w.Win, w.Inst)
	if err != nil {
		vk.DestroyInstance(w.Inst, nil)
		w.destroySDL()
		return nil, renderer.Mark(err, renderer.ErrResourceCreation, "create SDL window's Vulkan surface")
	}
	w.Surf = surf
	log.Printf("Generated SDL/Vulkan window - SDL: v%d.%d.%d", SDL_MAJOR, SDL_MINOR, SDL_PATCH)
	return w, nil
}

// Destroy is a convenience method to tear down all relevant instances (vk.Surface, vk.Instance and sdl.Window)
// that have been initialized by itself.
func (w *Window) Destroy() {
	if w.destroyed {
		return
	}
	w.destroyed = true
	vk.DestroySurface(w.Inst, w.Surf, nil)
	vk.DestroyInstance(w.Inst, nil)
	w.destroySDL()
}

func (w *Window) initSDLWindow(title string, width int32, height int32) error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return renderer.Mark(err, renderer.ErrResourceCreation, "initialize SDL")
	}
	log.Println("Initialized SDL")
	win, err := sdl.CreateWindow(
		title,
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		width,
		height,
		sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE|sdl.WINDOW_VULKAN,
	)
	if err != nil {
		sdl.Quit()
		return renderer.Mark(err, renderer.ErrResourceCreation, "create SDL window for use with Vulkan")
	}
	log.Printf("Created SDL window for use with Vulkan. Title: \"%s\", Width: %d, Height: %d", title, width, height)
	w.Win = win
	return nil
}

func (w *Window) destroySDL() {
	if w.Win != nil {
		if err := w.Win.Destroy(); err != nil {
			log.Printf("Failed to destroy SDL window: %v", err)
		}
		w.Win = nil
	}
	sdl.Quit()
}

// PollEvents drains the SDL event queue. Window state (close, resize, minimize) is tracked before each event is
// handed to handler, which may be nil.
func (w *Window) PollEvents(handler func(sdl.Event)) {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		w.handleEvent(event)
		if handler != nil {
			handler(event)
		}
	}
}

// WaitEvents blocks until at least one event arrives and processes it. It is used to sleep while the window has no
// drawable area.
func (w *Window) WaitEvents() {
	if event := sdl.WaitEvent(); event != nil {
		w.handleEvent(event)
	}
	w.PollEvents(nil)
}

func (w *Window) handleEvent(event sdl.Event) {
	switch ev := event.(type) {
	case *sdl.QuitEvent:
		w.close = true
	case *sdl.WindowEvent:
		switch ev.Event {
		case sdl.WINDOWEVENT_RESIZED, sdl.WINDOWEVENT_SIZE_CHANGED:
			w.resized = true
		case sdl.WINDOWEVENT_MINIMIZED:
			w.minimized = true
		case sdl.WINDOWEVENT_RESTORED, sdl.WINDOWEVENT_MAXIMIZED:
			w.minimized = false
			w.resized = true
		case sdl.WINDOWEVENT_CLOSE:
			w.close = true
		}
	case *sdl.KeyboardEvent:
		if ev.Type == sdl.KEYDOWN && ev.Keysym.Sym == sdl.K_ESCAPE {
			w.close = true
		}
	}
}

func (w *Window) DrawableExtent() renderer.Extent {
	if w.minimized {
		return renderer.Extent{}
	}
	width, height := w.Win.VulkanGetDrawableSize()
	if width < 0 || height < 0 {
		return renderer.Extent{}
	}
	return renderer.Extent{Width: uint32(width), Height: uint32(height)}
}

func (w *Window) Resized() bool   { return w.resized }
func (w *Window) ResetResized()   { w.resized = false }
func (w *Window) Minimized() bool { return w.minimized }
func (w *Window) ShouldClose() bool {
	return w.close
}

func (w *Window) String() string {
	return fmt.Sprintf("Window(resized: %t, minimized: %t, close: %t)", w.resized, w.minimized, w.close)
}
