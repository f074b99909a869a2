package common

import (
	"math"
	"time"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"

	"vcr_renderer/renderer"
)

// Thin owning wrappers around the Vulkan handles the frame loop works with. Each of them implements the matching
// interface of the renderer package and releases its handle at most once.

type Semaphore struct {
	device    vk.Device
	VKSem     vk.Semaphore
	destroyed bool
}

func (s *Semaphore) Destroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true
	vk.DestroySemaphore(s.device, s.VKSem, nil)
}

type Fence struct {
	device    vk.Device
	VKFence   vk.Fence
	destroyed bool
}

// Wait blocks until the fence is signalled. A timeout of zero or less means no timeout at all.
func (f *Fence) Wait(timeout time.Duration) error {
	ns := uint64(math.MaxUint64)
	if timeout > 0 {
		ns = uint64(timeout.Nanoseconds())
	}
	res := vk.WaitForFences(f.device, 1, []vk.Fence{f.VKFence}, vk.True, ns)
	if res == vk.Timeout {
		return renderer.Newf(renderer.ErrFenceTimeout, "fence not signalled within %v", timeout)
	}
	return vk.Error(res)
}

func (f *Fence) Reset() error {
	return vk.Error(vk.ResetFences(f.device, 1, []vk.Fence{f.VKFence}))
}

func (f *Fence) Destroy() {
	if f.destroyed {
		return
	}
	f.destroyed = true
	vk.DestroyFence(f.device, f.VKFence, nil)
}

type CommandBuffer struct {
	VKBuffer vk.CommandBuffer
}

func (c *CommandBuffer) Reset() error {
	return vk.Error(vk.ResetCommandBuffer(c.VKBuffer, 0))
}

func (c *CommandBuffer) Begin() error {
	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
	}
	return vk.Error(vk.BeginCommandBuffer(c.VKBuffer, &beginInfo))
}

func (c *CommandBuffer) End() error {
	return vk.Error(vk.EndCommandBuffer(c.VKBuffer))
}

// Queue is a device queue together with the family it was taken from.
type Queue struct {
	VKQueue     vk.Queue
	FamilyIndex uint32
}

func (q *Queue) Submit(info renderer.SubmitInfo) error {
	cb, err := AsVkCommandBuffer(info.CommandBuffer)
	if err != nil {
		return err
	}
	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{cb},
	}
	if info.WaitSemaphore != nil {
		wait, err := asVkSemaphore(info.WaitSemaphore)
		if err != nil {
			return err
		}
		submitInfo.WaitSemaphoreCount = 1
		submitInfo.PWaitSemaphores = []vk.Semaphore{wait}
		submitInfo.PWaitDstStageMask = []vk.PipelineStageFlags{toVkStage(info.WaitStage)}
	}
	if info.SignalSemaphore != nil {
		signal, err := asVkSemaphore(info.SignalSemaphore)
		if err != nil {
			return err
		}
		submitInfo.SignalSemaphoreCount = 1
		submitInfo.PSignalSemaphores = []vk.Semaphore{signal}
	}
	var fence vk.Fence
	if info.Fence != nil {
		f, ok := info.Fence.(*Fence)
		if !ok {
			return errors.Newf("fence of type %T is not backed by Vulkan", info.Fence)
		}
		fence = f.VKFence
	}
	return vk.Error(vk.QueueSubmit(q.VKQueue, 1, []vk.SubmitInfo{submitInfo}, fence))
}

func (q *Queue) WaitIdle() error {
	return vk.Error(vk.QueueWaitIdle(q.VKQueue))
}

// AsVkCommandBuffer unwraps a command buffer handed out by Device.AllocateCommandBuffers.
func AsVkCommandBuffer(cb renderer.CommandBuffer) (vk.CommandBuffer, error) {
	c, ok := cb.(*CommandBuffer)
	if !ok {
		return nil, errors.Newf("command buffer of type %T is not backed by Vulkan", cb)
	}
	return c.VKBuffer, nil
}

func asVkSemaphore(s renderer.Semaphore) (vk.Semaphore, error) {
	sem, ok := s.(*Semaphore)
	if !ok {
		return nil, errors.Newf("semaphore of type %T is not backed by Vulkan", s)
	}
	return sem.VKSem, nil
}

func toVkStage(stage renderer.PipelineStage) vk.PipelineStageFlags {
	switch stage {
	case renderer.StageColorAttachmentOutput:
		return vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)
	default:
		return vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit)
	}
}
