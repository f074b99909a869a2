package renderer

import (
	"log"
	"time"

	"github.com/cockroachdb/errors"
)

const DefaultFramesInFlight = 2

// Options configures a FrameScheduler. FramesInFlight is fixed for the lifetime of the scheduler. A FenceTimeout of
// zero waits forever for a frame slot to become free, a positive one turns an expired wait into ErrFenceTimeout.
type Options struct {
	FramesInFlight int
	FenceTimeout   time.Duration
	// OnStateChange is called for every state transition of the loop, it may be nil.
	OnStateChange func(from State, to State)
}

// FrameScheduler drives one rendering iteration at a time: wait for a free frame slot, acquire a swapchain image,
// record, submit and present. At most FramesInFlight frames are on the GPU at any time. Whenever the swapchain turns
// out to be stale the iteration is dropped and the swapchain (plus the per image semaphores) is rebuilt.
//
// The scheduler holds non owning references to the device, surface, swapchain and executor. It owns the frame
// slots and the render finished semaphores and releases them in Destroy.
type FrameScheduler struct {
	device    DeviceContext
	surface   SurfaceProvider
	swapchain Swapchain
	executor  RenderPassExecutor

	framesInFlight int
	fenceTimeout   time.Duration
	onStateChange  func(from State, to State)

	slots []frameSlot
	// renderFinished is indexed by swapchain image, not by frame slot. The presentation engine may still hold a
	// semaphore of an image when the slot that signalled it is reused.
	renderFinished []Semaphore

	cursor       int
	state        State
	failure      error
	rebuildAfter bool
	lastFrame    time.Time

	framesDrawn uint64
	rebuilds    uint64
	destroyed   bool
}

// NewFrameScheduler creates the frame slots and one render finished semaphore per swapchain image. On failure
// nothing created so far is leaked.
func NewFrameScheduler(device DeviceContext, surface SurfaceProvider, swapchain Swapchain, executor RenderPassExecutor, opts Options) (*FrameScheduler, error) {
	if opts.FramesInFlight == 0 {
		opts.FramesInFlight = DefaultFramesInFlight
	}
	if opts.FramesInFlight < 1 {
		return nil, errors.Newf("frames in flight must be at least 1, got %d", opts.FramesInFlight)
	}
	if swapchain.ImageCount() < 1 {
		return nil, Newf(ErrResourceCreation, "swapchain has no images")
	}

	slots, err := createFrameSlots(device, opts.FramesInFlight)
	if err != nil {
		return nil, err
	}
	renderFinished, err := createSemaphores(device, swapchain.ImageCount())
	if err != nil {
		destroyFrameSlots(device, slots)
		device.FreeCommandBuffers(slotBuffers(slots))
		return nil, err
	}

	s := &FrameScheduler{
		device:         device,
		surface:        surface,
		swapchain:      swapchain,
		executor:       executor,
		framesInFlight: opts.FramesInFlight,
		fenceTimeout:   opts.FenceTimeout,
		onStateChange:  opts.OnStateChange,
		slots:          slots,
		renderFinished: renderFinished,
		state:          StateIdle,
	}
	log.Printf("Frame scheduler ready: %d frames in flight, %d swapchain images", s.framesInFlight, len(s.renderFinished))
	return s, nil
}

func (s *FrameScheduler) Cursor() int {
	return s.cursor
}

func (s *FrameScheduler) State() State {
	return s.state
}

func (s *FrameScheduler) FramesInFlight() int {
	return s.framesInFlight
}

// FramesDrawn counts iterations that made it through presentation.
func (s *FrameScheduler) FramesDrawn() uint64 {
	return s.framesDrawn
}

// Rebuilds counts swapchain recreations triggered by the loop.
func (s *FrameScheduler) Rebuilds() uint64 {
	return s.rebuilds
}

func (s *FrameScheduler) setState(next State) {
	if s.state == next {
		return
	}
	prev := s.state
	s.state = next
	if s.onStateChange != nil {
		s.onStateChange(prev, next)
	}
}

// DrawFrame runs a single iteration of the loop. A stale swapchain is never reported as an error, the iteration
// is dropped and the swapchain rebuilt instead. Every returned error is fatal for the scheduler: it moves to
// StateFailed and later calls return the first failure again. Only Destroy is left to do.
func (s *FrameScheduler) DrawFrame() error {
	if s.destroyed {
		return errors.New("draw on destroyed frame scheduler")
	}
	if s.failure != nil {
		return errors.Wrap(s.failure, "frame scheduler failed before")
	}
	if err := s.drawFrame(); err != nil {
		s.failure = err
		s.setState(StateFailed)
		return err
	}
	return nil
}

func (s *FrameScheduler) drawFrame() error {
	slot := &s.slots[s.cursor]

	// Do not touch anything of this slot before the GPU is done with its previous submission
	if err := slot.inFlight.Wait(s.fenceTimeout); err != nil {
		return Mark(err, ErrFenceWait, "wait for frame slot %d", s.cursor)
	}

	s.setState(StateAcquiring)
	imageIndex, acquired, err := s.swapchain.AcquireNextImage(slot.imageAvailable)
	if err != nil {
		return Mark(err, ErrAcquire, "acquire image for frame slot %d", s.cursor)
	}
	switch acquired {
	case AcquireOutOfDate:
		// The fence stays signalled as no work was submitted for this slot
		_, err = s.rebuild()
		return err
	case AcquireSuboptimal:
		s.rebuildAfter = true
	}
	if int(imageIndex) >= len(s.renderFinished) {
		return Newf(ErrAcquire, "acquired image %d but swapchain has %d images", imageIndex, len(s.renderFinished))
	}

	s.setState(StateRecording)
	// Reset the fence only now that we know work will be submitted that signals it again
	if err := slot.inFlight.Reset(); err != nil {
		return Mark(err, ErrSubmit, "reset fence of frame slot %d", s.cursor)
	}
	if err := s.record(slot, imageIndex); err != nil {
		return Mark(err, ErrCommandRecord, "record frame slot %d for image %d", s.cursor, imageIndex)
	}

	renderFinished := s.renderFinished[imageIndex]
	err = s.device.GraphicsQueue().Submit(SubmitInfo{
		CommandBuffer:   slot.commandBuffer,
		WaitSemaphore:   slot.imageAvailable,
		WaitStage:       StageColorAttachmentOutput,
		SignalSemaphore: renderFinished,
		Fence:           slot.inFlight,
	})
	if err != nil {
		return Mark(err, ErrSubmit, "submit frame slot %d", s.cursor)
	}
	s.setState(StateSubmitted)

	s.setState(StatePresenting)
	presented, err := s.swapchain.Present(imageIndex, renderFinished)
	if err != nil {
		return Mark(err, ErrPresent, "present image %d", imageIndex)
	}
	stale := presented == PresentOutOfDate || presented == PresentSuboptimal || s.surface.Resized()
	if stale || s.rebuildAfter {
		s.surface.ResetResized()
		if _, err := s.rebuild(); err != nil {
			return err
		}
	}

	s.cursor = (s.cursor + 1) % s.framesInFlight
	s.framesDrawn++
	s.setState(StateIdle)
	return nil
}

func (s *FrameScheduler) record(slot *frameSlot, imageIndex uint32) error {
	cb := slot.commandBuffer
	if err := cb.Reset(); err != nil {
		return errors.Wrap(err, "reset command buffer")
	}
	if err := cb.Begin(); err != nil {
		return errors.Wrap(err, "begin command buffer")
	}
	if err := s.swapchain.BeginRenderPass(cb, imageIndex); err != nil {
		return errors.Wrap(err, "begin render pass")
	}

	now := time.Now()
	var frameTime time.Duration
	if !s.lastFrame.IsZero() {
		frameTime = now.Sub(s.lastFrame)
	}
	s.lastFrame = now

	err := s.executor.Record(FrameInfo{
		SlotIndex:     s.cursor,
		ImageIndex:    imageIndex,
		CommandBuffer: cb,
		Extent:        s.swapchain.Extent(),
		FrameTime:     frameTime,
	})
	if err != nil {
		return errors.Wrap(err, "record draw commands")
	}
	if err := s.swapchain.EndRenderPass(cb); err != nil {
		return errors.Wrap(err, "end render pass")
	}
	if err := cb.End(); err != nil {
		return errors.Wrap(err, "end command buffer")
	}
	return nil
}

// rebuild recreates the swapchain for the current surface size. A minimized window reports a zero extent, in that
// case we block on window events until it has a usable size again. If the window gets closed while we wait, the
// swapchain is left as it is and rebuilt reports false without an error, the caller is about to shut down anyway.
func (s *FrameScheduler) rebuild() (rebuilt bool, err error) {
	s.setState(StateRebuilding)
	for s.surface.DrawableExtent().IsZero() {
		if s.surface.ShouldClose() {
			log.Printf("Skipping swapchain rebuild, surface is closing")
			s.setState(StateIdle)
			return false, nil
		}
		s.surface.WaitEvents()
	}
	if err := s.swapchain.Recreate(); err != nil {
		return false, Mark(err, ErrSwapchainCreation, "recreate swapchain")
	}

	// Recreate waited for the device to go idle, no semaphore is in use anymore
	destroySemaphores(s.renderFinished)
	s.renderFinished = nil
	sems, err := createSemaphores(s.device, s.swapchain.ImageCount())
	if err != nil {
		return false, err
	}
	s.renderFinished = sems
	s.rebuildAfter = false
	s.rebuilds++

	ext := s.swapchain.Extent()
	log.Printf("Rebuilt swapchain (#%d): %dx%d with %d images", s.rebuilds, ext.Width, ext.Height, len(s.renderFinished))
	s.setState(StateIdle)
	return true, nil
}

// Destroy waits for the device to finish all submitted work and releases the frame slots and semaphores. Calling
// it more than once is a no-op.
func (s *FrameScheduler) Destroy() error {
	if s.destroyed {
		return nil
	}
	s.destroyed = true
	err := s.device.WaitIdle()
	if err != nil {
		err = errors.Wrap(err, "wait for device idle before releasing frame slots")
	}
	destroySemaphores(s.renderFinished)
	s.renderFinished = nil
	destroyFrameSlots(s.device, s.slots)
	s.device.FreeCommandBuffers(slotBuffers(s.slots))
	s.slots = nil
	log.Printf("Destroyed frame scheduler after %d frames and %d rebuilds", s.framesDrawn, s.rebuilds)
	return err
}

func slotBuffers(slots []frameSlot) []CommandBuffer {
	buffers := make([]CommandBuffer, len(slots))
	for i := range slots {
		buffers[i] = slots[i].commandBuffer
	}
	return buffers
}
