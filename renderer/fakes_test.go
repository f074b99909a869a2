package renderer

import (
	"time"

	"github.com/cockroachdb/errors"
)

// fakeGPU models just enough of a GPU to check the synchronisation of the frame loop. Submitted work stays pending
// until somebody waits on the fence it signals.
type fakeGPU struct {
	pending    int
	maxPending int
	violations []string

	semaphoresCreated   int
	semaphoresDestroyed int
	fencesCreated       int
	fencesDestroyed     int
	fenceResets         int
	buffersAllocated    int
	buffersFreed        int
	waitIdleCalls       int

	submits []SubmitInfo

	failFenceAfter     int
	failSemaphoreAfter int
	fenceWaitErr       error
	submitErr          error
}

func newFakeGPU() *fakeGPU {
	return &fakeGPU{failFenceAfter: -1, failSemaphoreAfter: -1}
}

func (g *fakeGPU) violate(msg string) {
	g.violations = append(g.violations, msg)
}

type fakeSemaphore struct {
	gpu       *fakeGPU
	id        int
	destroyed bool
}

func (s *fakeSemaphore) Destroy() {
	if s.destroyed {
		s.gpu.violate("semaphore destroyed twice")
		return
	}
	s.destroyed = true
	s.gpu.semaphoresDestroyed++
}

type fakeFence struct {
	gpu       *fakeGPU
	signaled  bool
	work      *fakeCommandBuffer
	destroyed bool
}

func (f *fakeFence) Wait(timeout time.Duration) error {
	if f.gpu.fenceWaitErr != nil {
		return f.gpu.fenceWaitErr
	}
	if f.work != nil {
		f.work.pending = false
		f.work = nil
		f.gpu.pending--
	}
	f.signaled = true
	return nil
}

func (f *fakeFence) Reset() error {
	if !f.signaled {
		f.gpu.violate("reset of an unsignalled fence")
	}
	f.signaled = false
	f.gpu.fenceResets++
	return nil
}

func (f *fakeFence) Destroy() {
	if f.destroyed {
		f.gpu.violate("fence destroyed twice")
		return
	}
	f.destroyed = true
	f.gpu.fencesDestroyed++
}

type fakeCommandBuffer struct {
	gpu       *fakeGPU
	pending   bool
	recording bool
	recorded  bool
}

func (c *fakeCommandBuffer) Reset() error {
	if c.pending {
		c.gpu.violate("reset of a command buffer that is still pending")
	}
	c.recorded = false
	return nil
}

func (c *fakeCommandBuffer) Begin() error {
	if c.pending {
		c.gpu.violate("begin on a command buffer that is still pending")
	}
	c.recording = true
	return nil
}

func (c *fakeCommandBuffer) End() error {
	if !c.recording {
		c.gpu.violate("end on a command buffer that is not recording")
	}
	c.recording = false
	c.recorded = true
	return nil
}

type fakeQueue struct {
	gpu *fakeGPU
}

func (q *fakeQueue) Submit(info SubmitInfo) error {
	g := q.gpu
	if g.submitErr != nil {
		return g.submitErr
	}
	cb := info.CommandBuffer.(*fakeCommandBuffer)
	fence := info.Fence.(*fakeFence)
	if !cb.recorded {
		g.violate("submit of a command buffer that was not recorded")
	}
	if fence.signaled {
		g.violate("submit with a fence that was not reset")
	}
	cb.pending = true
	fence.work = cb
	g.pending++
	if g.pending > g.maxPending {
		g.maxPending = g.pending
	}
	g.submits = append(g.submits, info)
	return nil
}

type fakeDevice struct {
	gpu   *fakeGPU
	queue *fakeQueue
}

func newFakeDevice() *fakeDevice {
	gpu := newFakeGPU()
	return &fakeDevice{gpu: gpu, queue: &fakeQueue{gpu: gpu}}
}

func (d *fakeDevice) GraphicsQueue() Queue {
	return d.queue
}

func (d *fakeDevice) AllocateCommandBuffers(count int) ([]CommandBuffer, error) {
	buffers := make([]CommandBuffer, count)
	for i := range buffers {
		buffers[i] = &fakeCommandBuffer{gpu: d.gpu}
	}
	d.gpu.buffersAllocated += count
	return buffers, nil
}

func (d *fakeDevice) FreeCommandBuffers(buffers []CommandBuffer) {
	d.gpu.buffersFreed += len(buffers)
}

func (d *fakeDevice) CreateSemaphore() (Semaphore, error) {
	g := d.gpu
	if g.failSemaphoreAfter >= 0 && g.semaphoresCreated >= g.failSemaphoreAfter {
		return nil, errors.New("out of semaphores")
	}
	g.semaphoresCreated++
	return &fakeSemaphore{gpu: g, id: g.semaphoresCreated}, nil
}

func (d *fakeDevice) CreateFence(signaled bool) (Fence, error) {
	g := d.gpu
	if g.failFenceAfter >= 0 && g.fencesCreated >= g.failFenceAfter {
		return nil, errors.New("out of fences")
	}
	g.fencesCreated++
	return &fakeFence{gpu: g, signaled: signaled}, nil
}

func (d *fakeDevice) WaitIdle() error {
	d.gpu.waitIdleCalls++
	return nil
}

type acquireResult struct {
	status AcquireStatus
	err    error
}

// fakeSwapchain hands out images round robin. Scripted acquire and present results are consumed first.
type fakeSwapchain struct {
	imageCount int
	extent     Extent
	next       uint32

	acquireScript []acquireResult
	presentScript []PresentStatus
	presentErr    error
	recreateErr   error
	// imageCountAfterRecreate changes the number of images on the next Recreate when non zero.
	imageCountAfterRecreate int

	acquires       int
	recreates      int
	renderPasses   int
	presentWaits   []Semaphore
	presentedIndex []uint32
}

func newFakeSwapchain(imageCount int) *fakeSwapchain {
	return &fakeSwapchain{imageCount: imageCount, extent: Extent{Width: 800, Height: 600}}
}

func (s *fakeSwapchain) AcquireNextImage(signal Semaphore) (uint32, AcquireStatus, error) {
	s.acquires++
	if len(s.acquireScript) > 0 {
		r := s.acquireScript[0]
		s.acquireScript = s.acquireScript[1:]
		if r.err != nil || r.status == AcquireOutOfDate {
			return 0, r.status, r.err
		}
		idx := s.next
		s.next = (s.next + 1) % uint32(s.imageCount)
		return idx, r.status, nil
	}
	idx := s.next
	s.next = (s.next + 1) % uint32(s.imageCount)
	return idx, AcquireSuccess, nil
}

func (s *fakeSwapchain) Present(imageIndex uint32, wait Semaphore) (PresentStatus, error) {
	if s.presentErr != nil {
		return PresentSuccess, s.presentErr
	}
	s.presentWaits = append(s.presentWaits, wait)
	s.presentedIndex = append(s.presentedIndex, imageIndex)
	if len(s.presentScript) > 0 {
		r := s.presentScript[0]
		s.presentScript = s.presentScript[1:]
		return r, nil
	}
	return PresentSuccess, nil
}

func (s *fakeSwapchain) BeginRenderPass(cb CommandBuffer, imageIndex uint32) error {
	s.renderPasses++
	return nil
}

func (s *fakeSwapchain) EndRenderPass(cb CommandBuffer) error {
	return nil
}

func (s *fakeSwapchain) ImageCount() int {
	return s.imageCount
}

func (s *fakeSwapchain) Extent() Extent {
	return s.extent
}

func (s *fakeSwapchain) Recreate() error {
	if s.recreateErr != nil {
		return s.recreateErr
	}
	s.recreates++
	s.next = 0
	if s.imageCountAfterRecreate > 0 {
		s.imageCount = s.imageCountAfterRecreate
	}
	return nil
}

// fakeSurface reports zeroExtents degenerate sizes before it returns a usable one, a negative count stays
// minimized forever. closeAfterWaits > 0 closes the surface once that many WaitEvents calls returned.
type fakeSurface struct {
	zeroExtents     int
	closeAfterWaits int
	closed          bool
	waits           int
	resized         bool
	resets          int
}

func (s *fakeSurface) DrawableExtent() Extent {
	if s.zeroExtents < 0 {
		return Extent{}
	}
	if s.zeroExtents > 0 {
		s.zeroExtents--
		return Extent{}
	}
	return Extent{Width: 800, Height: 600}
}

func (s *fakeSurface) WaitEvents() {
	s.waits++
	if s.waits > 1000 {
		panic("surface never became drawable")
	}
	if s.closeAfterWaits > 0 && s.waits >= s.closeAfterWaits {
		s.closed = true
	}
}

func (s *fakeSurface) ShouldClose() bool {
	return s.closed
}

func (s *fakeSurface) Resized() bool {
	return s.resized
}

func (s *fakeSurface) ResetResized() {
	s.resized = false
	s.resets++
}

type fakeExecutor struct {
	frames []FrameInfo
	err    error
}

func (e *fakeExecutor) Record(frame FrameInfo) error {
	if e.err != nil {
		return e.err
	}
	e.frames = append(e.frames, frame)
	return nil
}

type harness struct {
	device    *fakeDevice
	surface   *fakeSurface
	swapchain *fakeSwapchain
	executor  *fakeExecutor
}

func newHarness(imageCount int) *harness {
	return &harness{
		device:    newFakeDevice(),
		surface:   &fakeSurface{},
		swapchain: newFakeSwapchain(imageCount),
		executor:  &fakeExecutor{},
	}
}

func (h *harness) scheduler(opts Options) (*FrameScheduler, error) {
	return NewFrameScheduler(h.device, h.surface, h.swapchain, h.executor, opts)
}
