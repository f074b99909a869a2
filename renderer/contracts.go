package renderer

import "time"

// The contracts in this file describe everything the frame loop needs from the window, the GPU device, the
// swapchain and whoever records draw calls. The Vulkan backed implementations live in the common, window and
// systems packages. Keeping the loop itself free of the raw bindings lets it run against fakes in tests.

// Extent is a 2D size in pixels. A zero width or height marks a degenerate (minimized) surface.
type Extent struct {
	Width  uint32
	Height uint32
}

func (e Extent) IsZero() bool {
	return e.Width == 0 || e.Height == 0
}

// AspectRatio is width / height, or 1 for a degenerate extent.
func (e Extent) AspectRatio() float32 {
	if e.IsZero() {
		return 1
	}
	return float32(e.Width) / float32(e.Height)
}

// SurfaceProvider is the window side of the loop: it reports its drawable size, can block until the next window
// event arrives and remembers whether a resize happened since the flag was last cleared. ShouldClose turns true
// once the user asked to close the window, a minimized window can be closed while the loop waits on its events.
type SurfaceProvider interface {
	DrawableExtent() Extent
	WaitEvents()
	Resized() bool
	ResetResized()
	ShouldClose() bool
}

// Fence is a GPU to CPU signal. Wait blocks until the fence is signalled or the timeout elapses. A timeout of
// zero or less waits forever.
type Fence interface {
	Wait(timeout time.Duration) error
	Reset() error
	Destroy()
}

// Semaphore is a GPU to GPU ordering primitive, the CPU never waits on it.
type Semaphore interface {
	Destroy()
}

type CommandBuffer interface {
	Reset() error
	Begin() error
	End() error
}

type PipelineStage int

const (
	StageTopOfPipe PipelineStage = iota
	StageColorAttachmentOutput
)

// SubmitInfo describes a single command buffer submission with one wait and one signal semaphore.
type SubmitInfo struct {
	CommandBuffer   CommandBuffer
	WaitSemaphore   Semaphore
	WaitStage       PipelineStage
	SignalSemaphore Semaphore
	Fence           Fence
}

type Queue interface {
	Submit(info SubmitInfo) error
}

// DeviceContext owns the logical device, its queues and the pool command buffers are allocated from.
type DeviceContext interface {
	GraphicsQueue() Queue
	AllocateCommandBuffers(count int) ([]CommandBuffer, error)
	FreeCommandBuffers(buffers []CommandBuffer)
	CreateSemaphore() (Semaphore, error)
	CreateFence(signaled bool) (Fence, error)
	WaitIdle() error
}

// Swapchain is the presentable image set bound to a surface. Recreate rebuilds it (and everything sized to it)
// for the current surface extent, it never touches the device or the pipeline.
type Swapchain interface {
	AcquireNextImage(signal Semaphore) (uint32, AcquireStatus, error)
	Present(imageIndex uint32, wait Semaphore) (PresentStatus, error)
	BeginRenderPass(cb CommandBuffer, imageIndex uint32) error
	EndRenderPass(cb CommandBuffer) error
	ImageCount() int
	Extent() Extent
	Recreate() error
}

// FrameInfo is handed to the RenderPassExecutor once per recorded frame. CommandBuffer is in the recording state
// and the render pass targeting the framebuffer of ImageIndex has already begun.
type FrameInfo struct {
	SlotIndex     int
	ImageIndex    uint32
	CommandBuffer CommandBuffer
	Extent        Extent
	FrameTime     time.Duration
}

// RenderPassExecutor records draw calls into an already begun render pass. It must neither begin nor end the
// command buffer or the render pass.
type RenderPassExecutor interface {
	Record(frame FrameInfo) error
}
