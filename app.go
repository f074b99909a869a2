package main

import (
	"log"
	"math"
	"time"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
	"github.com/xlab/linmath"

	"vcr_renderer/common"
	"vcr_renderer/config"
	"vcr_renderer/model"
	"vcr_renderer/renderer"
	"vcr_renderer/scene"
	"vcr_renderer/systems"
	"vcr_renderer/window"
)

// App owns everything the renderer is made of. Fields are filled in creation order and torn down in reverse by
// Destroy, which copes with a partially built App.
type App struct {
	cfg config.Config

	win        *window.Window
	dev        *common.Device
	swapChain  *common.SwapChain
	renderPass vk.RenderPass
	models     []*model.Model
	world      *scene.World
	renderSys  *systems.SimpleRenderSystem
	scheduler  *renderer.FrameScheduler

	gravity     scene.GravitySystem
	vectorField scene.VectorFieldSystem

	camera     *scene.Camera
	viewer     scene.Transform3D
	controller window.KeyboardController
	cube       *scene.GameObject
}

// viewerStart puts the camera in front of the flat scene, which lies in the z = 0 plane.
var viewerStart = linmath.Vec3{0, 0, -2.5}

func NewApp(cfg config.Config) (app *App, err error) {
	app = &App{
		cfg:        cfg,
		world:      scene.NewWorld(),
		gravity:    scene.GravitySystem{Strength: cfg.Simulation.Gravity},
		viewer:     scene.NewTransform3D(),
		controller: window.NewKeyboardController(cfg.Camera.MoveSpeed, cfg.Camera.LookSpeed),
	}
	defer func() {
		if err != nil {
			app.Destroy()
			app = nil
		}
	}()

	projection, err := scene.ParseProjection(cfg.Camera.Projection)
	if err != nil {
		return app, err
	}
	app.camera = scene.NewCamera(projection, linmath.DegreesToRadians(cfg.Camera.FovDegrees), cfg.Camera.Near, cfg.Camera.Far)
	app.viewer.Translation = viewerStart

	validationLayers := cfg.Renderer.ActiveValidationLayers()
	if app.win, err = window.NewWindow(cfg.Window, validationLayers); err != nil {
		return app, err
	}
	if app.dev, err = common.NewDevice(app.win.Inst, app.win.Surf, validationLayers); err != nil {
		return app, err
	}

	scOpts := common.DefaultSwapChainOptions()
	if scOpts.PresentMode, err = common.ParsePresentMode(cfg.Renderer.PresentMode); err != nil {
		return app, err
	}
	scOpts.ClearColor = cfg.Renderer.ClearColor
	if app.swapChain, err = common.NewSwapChain(app.dev, app.win.Surf, app.win, scOpts); err != nil {
		return app, err
	}
	if app.renderPass, err = common.CreateRenderPass(app.dev.D, app.swapChain.Format.Format, app.swapChain.DepthFormat); err != nil {
		return app, err
	}
	if err = app.swapChain.CreateImageViewsAndFramebuffers(app.renderPass); err != nil {
		return app, err
	}

	if err = app.loadScene(); err != nil {
		return app, err
	}
	app.renderSys, err = systems.NewSimpleRenderSystem(app.dev, app.renderPass, systems.ShaderPaths{
		Vertex:   cfg.Shaders.Vertex,
		Fragment: cfg.Shaders.Fragment,
	}, app.world, app.camera)
	if err != nil {
		return app, err
	}

	app.scheduler, err = renderer.NewFrameScheduler(app.dev, app.win, app.swapChain, app.renderSys, renderer.Options{
		FramesInFlight: cfg.Renderer.FramesInFlight,
		FenceTimeout:   cfg.Renderer.FenceTimeout.Duration(),
	})
	if err != nil {
		return app, err
	}
	return app, nil
}

func (a *App) loadScene() error {
	bodyShape, err := model.Circle(64)
	if a.cfg.Simulation.BodyMesh != "" {
		bodyShape, err = model.LoadSTL(a.cfg.Simulation.BodyMesh)
	}
	if err != nil {
		return err
	}
	body, err := a.newModel(bodyShape)
	if err != nil {
		return err
	}
	arrow, err := a.newModel(model.Line())
	if err != nil {
		return err
	}
	scene.SeedGravityDemo(a.world, body, arrow, a.cfg.Simulation.FieldGrid)

	// static marker in the lower left corner
	tri, err := a.newModel(model.Sierpinski(4, linmath.Vec2{0, -1}, linmath.Vec2{-1, 1}, linmath.Vec2{1, 1}))
	if err != nil {
		return err
	}
	marker := a.world.Spawn("marker", tri, linmath.Vec3{0.15, 0.15, 0.2})
	marker.Transform.Scale = linmath.Vec2{0.2, 0.2}
	marker.Transform.Translation = linmath.Vec2{-0.8, -0.8}

	// spinning cube behind the upper right corner of the simulation plane
	cube, err := a.newModel(model.Cube())
	if err != nil {
		return err
	}
	a.cube = a.world.Spawn("cube", cube, linmath.Vec3{1, 1, 1})
	placement := scene.NewTransform3D()
	placement.Translation = linmath.Vec3{0.7, -0.6, 0.5}
	placement.Scale = linmath.Vec3{0.3, 0.3, 0.3}
	a.cube.Transform3D = &placement

	log.Printf("Scene holds %d objects using %d models", a.world.Len(), len(a.models))
	return nil
}

func (a *App) newModel(b model.Builder) (*model.Model, error) {
	m, err := model.NewModel(a.dev, b)
	if err != nil {
		return nil, err
	}
	a.models = append(a.models, m)
	return m, nil
}

// Run is the event loop: poll input, move the viewer, step the simulation, draw. It returns when the window is asked
// to close or a frame fails.
func (a *App) Run() error {
	t0 := time.Now()
	step := float32(a.cfg.Simulation.TimeStep.Duration().Seconds())
	bodies := a.world.Tagged(scene.TagBody)
	field := a.world.Tagged(scene.TagArrow)

	last := time.Now()
	for !a.win.ShouldClose() {
		a.win.PollEvents(nil)
		if a.win.ShouldClose() {
			break
		}
		if a.win.Minimized() {
			// Sleep until new events change the minimized state
			a.win.WaitEvents()
			last = time.Now()
			continue
		}
		now := time.Now()
		dt := float32(now.Sub(last).Seconds())
		last = now

		a.controller.MoveInPlaneXZ(a.win, dt, &a.viewer)
		a.camera.SetViewYXZ(a.viewer.Translation, a.viewer.Rotation)
		a.camera.SetAspect(a.swapChain.Extent().AspectRatio())
		a.spinCube(dt)

		a.gravity.Update(bodies, step, a.cfg.Simulation.Substeps)
		a.vectorField.Update(a.gravity, bodies, field)

		if err := a.scheduler.DrawFrame(); err != nil {
			return errors.Wrapf(err, "frame %d", a.scheduler.FramesDrawn())
		}
	}
	dt := time.Since(t0)
	log.Printf("Elapsed: %v, frames: %d, swapchain rebuilds: %d, rough avg fps: %.1f fps",
		dt, a.scheduler.FramesDrawn(), a.scheduler.Rebuilds(), float64(a.scheduler.FramesDrawn())/dt.Seconds())
	return nil
}

func (a *App) spinCube(dt float32) {
	r := &a.cube.Transform3D.Rotation
	r[1] = float32(math.Mod(float64(r[1]+dt), 2*math.Pi))
	r[0] = float32(math.Mod(float64(r[0]+dt/2), 2*math.Pi))
}

// Destroy waits for the GPU to finish and releases everything in reverse creation order.
func (a *App) Destroy() {
	if a.dev != nil {
		if err := a.dev.WaitIdle(); err != nil {
			log.Printf("Failed to wait for device idle on shutdown: %v", err)
		}
	}
	if a.scheduler != nil {
		if err := a.scheduler.Destroy(); err != nil {
			log.Printf("Failed to destroy frame scheduler: %v", err)
		}
	}
	if a.renderSys != nil {
		a.renderSys.Destroy()
	}
	a.world.Reset()
	for _, m := range a.models {
		m.Destroy()
	}
	a.models = nil
	if a.swapChain != nil {
		a.swapChain.Destroy()
	}
	if a.renderPass != nil {
		vk.DestroyRenderPass(a.dev.D, a.renderPass, nil)
	}
	if a.dev != nil {
		a.dev.Destroy()
	}
	if a.win != nil {
		a.win.Destroy()
	}
}
